package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same HTTP code, so messages can be
// customised without breaking errors.Is checks against the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "record not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "record already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	// ErrUnknownTable shares the not-found code; a table that does not exist
	// is indistinguishable from a missing resource over the wire.
	ErrUnknownTable = &Error{
		Code:    http.StatusNotFound,
		Message: "unknown table",
	}

	ErrUnavailable = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "record service unavailable",
	}
)

// FromStatus maps an HTTP status code returned by the record service back to
// a store error. Codes without a sentinel become a generic *Error.
func FromStatus(code int, msg string) *Error {
	var base *Error
	switch code {
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusConflict:
		base = ErrAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = ErrInvalidInput
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		base = ErrUnavailable
	default:
		base = &Error{Code: code, Message: http.StatusText(code)}
	}
	if msg == "" {
		return base.WithMessage(base.Message)
	}
	return base.WithMessage(msg)
}
