// Package apperror provides the domain error type for the Printwise
// backend. Errors carry an HTTP status code and a user-safe message; the
// Echo error handler maps them to responses. Raw storage errors must
// never reach the client -- wrap them in NewInternal.
package apperror

import (
	"fmt"
	"net/http"
)

// AppError is an error with an HTTP status, a machine-readable type tag,
// and a message safe to show the client. The wrapped internal error is
// for logs only.
type AppError struct {
	// Code is the HTTP status code.
	Code int `json:"-"`

	// Type is a machine-readable classifier (e.g. "bad_request").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging, never for clients.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "bad_request",
		Message: message,
	}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "unauthorized",
		Message: message,
	}
}

// NewInternal creates a 500 error. The real cause is kept in Internal for
// logging; the client sees only a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "an unexpected error occurred, please try again",
		Internal: err,
	}
}
