package application

import "github.com/JonMunkholm/unitconv/internal/core"

type (
	categoryMsg string
	fromMsg     string
	toMsg       string
)

// ResultMsg carries a completed conversion.
type ResultMsg struct {
	Result core.Result
}

// ErrMsg carries a failed conversion.
type ErrMsg struct {
	Err error
}
