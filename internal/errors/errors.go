// Package errors provides the coded error taxonomy shared by the inventory engine,
// the upload pipeline and the record service.
//
// Usage:
//
//	// In the engine - return typed errors
//	if taken {
//	    return errors.Duplicatef("section %q already exists", name)
//	}
//
//	// In callers - check with errors.Is against a sentinel
//	if errors.Is(err, errors.ErrNotEmpty) {
//	    ...
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicate:
//	    case errors.CodeUploadFailed:
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeValidation      Code = "VALIDATION"
	CodeDuplicate       Code = "DUPLICATE"
	CodeUnknownLocation Code = "UNKNOWN_LOCATION"
	CodeNotEmpty        Code = "NOT_EMPTY"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeUploadFailed    Code = "UPLOAD_FAILED"
	CodePersistence     Code = "PERSISTENCE"
	CodeInconsistent    Code = "INCONSISTENT"
	CodeAbandoned       Code = "ABANDONED"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate, CodeNotEmpty:
		return http.StatusConflict
	case CodeValidation, CodeInvalidInput, CodeUnknownLocation:
		return http.StatusBadRequest
	case CodeUploadFailed, CodePersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDuplicate       = &Error{Code: CodeDuplicate, Message: "duplicate"}
	ErrUnknownLocation = &Error{Code: CodeUnknownLocation, Message: "unknown location"}
	ErrNotEmpty        = &Error{Code: CodeNotEmpty, Message: "not empty"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrUploadFailed    = &Error{Code: CodeUploadFailed, Message: "upload failed"}
	ErrPersistence     = &Error{Code: CodePersistence, Message: "persistence error"}
	ErrInconsistent    = &Error{Code: CodeInconsistent, Message: "inconsistent state"}
	ErrAbandoned       = &Error{Code: CodeAbandoned, Message: "abandoned"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Duplicatef creates a duplicate error with formatted message.
func Duplicatef(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicate, Message: fmt.Sprintf(format, args...)}
}

// UnknownLocationf creates an unknown location error with formatted message.
func UnknownLocationf(format string, args ...any) *Error {
	return &Error{Code: CodeUnknownLocation, Message: fmt.Sprintf(format, args...)}
}

// NotEmptyf creates a not empty error with formatted message.
func NotEmptyf(format string, args ...any) *Error {
	return &Error{Code: CodeNotEmpty, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput creates an invalid input error. Details carry the machine-readable reason.
func InvalidInput(msg string, reason any) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Details: reason}
}

// UploadFailed wraps a storage failure.
func UploadFailed(err error, msg string) *Error {
	return &Error{Code: CodeUploadFailed, Message: msg, cause: err}
}

// Persistence wraps a remote store failure.
func Persistence(err error, msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg, cause: err}
}

// Persistencef wraps a remote store failure with formatted message.
func Persistencef(err error, format string, args ...any) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf(format, args...), cause: err}
}

// Abandoned wraps the context error of a caller that gave up waiting.
func Abandoned(err error, msg string) *Error {
	return &Error{Code: CodeAbandoned, Message: msg, cause: err}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
