package web

// encoding.go negotiates the API wire format. JSON is the default; clients
// that send or accept application/msgpack (or application/x-msgpack) get
// MessagePack instead.

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/JonMunkholm/unitconv/internal/logging"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"

	// maxBodySize caps API request bodies (1MB).
	maxBodySize = 1 << 20
)

// isMsgpackType reports whether a Content-Type or Accept entry names msgpack.
func isMsgpackType(v string) bool {
	for _, part := range strings.Split(v, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == contentTypeMsgpack || mt == "application/x-msgpack" {
			return true
		}
	}
	return false
}

// wantsMsgpack checks if the client asked for a MessagePack response.
func wantsMsgpack(r *http.Request) bool {
	return isMsgpackType(r.Header.Get("Accept"))
}

// writeData encodes v in the negotiated format.
func writeData(w http.ResponseWriter, r *http.Request, status int, v any) {
	logger := logging.FromContext(r.Context())

	if wantsMsgpack(r) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			logger.Error("msgpack encode error", "error", err)
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		_, _ = w.Write(b)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("json encode error", "error", err)
	}
}

// decodeBody decodes the request body by its Content-Type into v.
// Every failure wraps core.ErrInvalidRequest.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer body.Close()

	var err error
	if isMsgpackType(r.Header.Get("Content-Type")) {
		err = msgpack.NewDecoder(body).Decode(v)
	} else {
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	}

	switch {
	case err == io.EOF:
		return fmt.Errorf("%w: empty body", core.ErrInvalidRequest)
	case err != nil:
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}
