// Package core provides the application layer for unit conversion.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Every front end shows the same code for the same problem.
//
// # Conversion Errors (CONV001-CONV099)
//
//	CONV001 - Unknown category: The selected category does not exist
//	          Action: Pick one of the listed categories
//	          Matches: units.ErrUnknownCategory
//
//	CONV002 - Unknown unit: The selected unit does not belong to the category
//	          Action: Pick units listed for the selected category
//	          Matches: units.ErrUnknownUnit
//
//	CONV003 - Unsupported conversion: Temperature source is not Celsius
//	          Action: Convert from Celsius
//	          Matches: units.ErrUnsupportedConversion
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid number: The value is not a number
//	         Matches: ErrInvalidNumber, "invalid number"
//
//	VAL002 - Non-finite value: NaN or infinity was supplied
//	         Matches: units.ErrInvalidValue
//
//	VAL003 - Required field: No value was entered
//	         Matches: ErrValueRequired, "required field"
//
//	VAL004 - Batch too large: Too many conversions in one request
//	         Matches: ErrBatchTooLarge
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled. Patterns: "context canceled"
//	REQ002 - Request timeout. Patterns: "context deadline exceeded"
//	REQ003 - Malformed request body or parameters. Matches: ErrInvalidRequest
//	REQ004 - Unknown route. Matches: ErrNotFound
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests. Matches: ErrRateLimited, "rate limit"
//	RATE002 - Server busy: all batch slots are taken. Matches: ErrTooManyBatches
//
// # Authentication (AUTH001-AUTH099)
//
//	AUTH001 - Missing API key. Matches: ErrMissingAPIKey
//	AUTH002 - Invalid API key. Matches: ErrInvalidAPIKey
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original
// technical error.
//
// # Matching
//
// Sentinel errors are matched with errors.Is first, in table order. Errors
// that only exist as text (for example from net/http) are then matched
// case-insensitively with strings.Contains; the first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/unitconv/internal/units"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	// Message says what happened.
	Message string `json:"message" msgpack:"message"`
	// Action says what to do about it.
	Action string `json:"action,omitempty" msgpack:"action,omitempty"`
	// Code is the support reference.
	Code string `json:"code" msgpack:"code"`
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgUnknownCategory = UserMessage{
		Message: "Unknown category",
		Action:  "Pick one of the listed categories",
		Code:    "CONV001",
	}
	msgUnknownUnit = UserMessage{
		Message: "Unit does not belong to the selected category",
		Action:  "Pick units listed for the selected category",
		Code:    "CONV002",
	}
	msgUnsupported = UserMessage{
		Message: "This temperature unit cannot be used as a source",
		Action:  "Choose Celsius as the source unit",
		Code:    "CONV003",
	}
	msgInvalidNumber = UserMessage{
		Message: "The value is not a valid number",
		Action:  "Enter a number such as 12.5, 1,250 or 6.2e18",
		Code:    "VAL001",
	}
	msgNonFinite = UserMessage{
		Message: "The value must be a finite number",
		Action:  "Enter a regular number",
		Code:    "VAL002",
	}
	msgRequired = UserMessage{
		Message: "No value was entered",
		Action:  "Enter a value to convert",
		Code:    "VAL003",
	}
	msgBatchTooLarge = UserMessage{
		Message: "Too many conversions in one request",
		Action:  "Split the batch into smaller requests",
		Code:    "VAL004",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "REQ002",
	}
	msgNotFound = UserMessage{
		Message: "Nothing was found at this address",
		Action:  "Check the URL",
		Code:    "REQ004",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgBusy = UserMessage{
		Message: "The server is busy with other batches",
		Action:  "Retry in a few seconds",
		Code:    "RATE002",
	}
	msgMissingAPIKey = UserMessage{
		Message: "An API key is required",
		Action:  "Send your key in the X-API-Key header",
		Code:    "AUTH001",
	}
	msgInvalidAPIKey = UserMessage{
		Message: "The API key is not valid",
		Action:  "Check the key or ask an administrator for a new one",
		Code:    "AUTH002",
	}
	msgInvalidRequest = UserMessage{
		Message: "The request could not be understood",
		Action:  "Check the request format and try again",
		Code:    "REQ003",
	}
)

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{units.ErrUnknownCategory, msgUnknownCategory},
	{units.ErrUnknownUnit, msgUnknownUnit},
	{units.ErrUnsupportedConversion, msgUnsupported},
	{units.ErrInvalidValue, msgNonFinite},
	{ErrValueRequired, msgRequired},
	{ErrInvalidNumber, msgInvalidNumber},
	{ErrBatchTooLarge, msgBatchTooLarge},
	{ErrInvalidRequest, msgInvalidRequest},
	{ErrNotFound, msgNotFound},
	{ErrRateLimited, msgRateLimited},
	{ErrTooManyBatches, msgBusy},
	{ErrMissingAPIKey, msgMissingAPIKey},
	{ErrInvalidAPIKey, msgInvalidAPIKey},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that do not wrap a known sentinel.
var errorPatterns = []errorPattern{
	{"unknown category", msgUnknownCategory},
	{"unknown unit", msgUnknownUnit},
	{"unsupported conversion", msgUnsupported},
	{"invalid number", msgInvalidNumber},
	{"required field", msgRequired},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when nothing matches.
//
// Example:
//
//	_, err := units.Convert(1, "Fahrenheit", "Celsius", "Temperature")
//	msg := MapError(err)
//	// msg.Code == "CONV003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// ErrorCode returns the support code for err, or "" for nil.
func ErrorCode(err error) string {
	return MapError(err).Code
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
