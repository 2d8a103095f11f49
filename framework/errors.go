package framework

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the recognized application-level failure: it carries the HTTP
// status code the exception handler uses to build the error response.
// Route-matching and dispatch catch exactly this kind; anything else is
// only intercepted at the render stage.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a recognized failure with the given status code.
func NewError(status int, message string) *Error {
	return &Error{StatusCode: status, Message: message}
}

// WrapError attaches a status code and message to an underlying cause.
func WrapError(status int, message string, err error) *Error {
	return &Error{StatusCode: status, Message: message, Err: err}
}

// BadRequest creates a 400 failure.
func BadRequest(message string) *Error { return NewError(http.StatusBadRequest, message) }

// Unauthorized creates a 401 failure.
func Unauthorized(message string) *Error { return NewError(http.StatusUnauthorized, message) }

// Forbidden creates a 403 failure.
func Forbidden(message string) *Error { return NewError(http.StatusForbidden, message) }

// NotFound creates a 404 failure.
func NotFound(message string) *Error { return NewError(http.StatusNotFound, message) }

// Internal creates a 500 failure.
func Internal(message string) *Error { return NewError(http.StatusInternalServerError, message) }

// AsError unwraps err to a recognized application failure.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the status code carried by err, or 500 for
// unrecognized failures.
func StatusOf(err error) int {
	if appErr, ok := AsError(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
