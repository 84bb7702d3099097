package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/unitconv/internal/core"
	mw "github.com/JonMunkholm/unitconv/internal/web/middleware"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for service logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
