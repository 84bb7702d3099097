package units

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrUnknownCategory       = errors.New("unknown category")
	ErrUnknownUnit           = errors.New("unknown unit")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrInvalidValue          = errors.New("invalid value")
	ErrInvalidTable          = errors.New("invalid conversion table")
)

// Error describes a failed table lookup or conversion.
type Error struct {
	Op       string // operation that failed: "convert", "units", "table"
	Category string
	Unit     string // offending unit, if any
	Detail   string // extra context shown after the kind
	Err      error  // one of the Err* kinds
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.Unit != "" {
		msg += fmt.Sprintf(" %q", e.Unit)
	}
	if e.Category != "" {
		if errors.Is(e.Err, ErrUnknownCategory) {
			msg += fmt.Sprintf(" %q", e.Category)
		} else {
			msg += fmt.Sprintf(" in category %q", e.Category)
		}
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
