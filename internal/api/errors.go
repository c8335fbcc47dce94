package api

import (
	"errors"
	"fmt"
)

// Error represents a failed call through the gateway.
type Error struct {
	// Kind categorizes the error
	Kind string

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code (if applicable)
	Code int

	// Err is the underlying error
	Err error
}

// Error kinds.
const (
	KindNetwork      = "network"
	KindStatus       = "status"
	KindDecode       = "decode"
	KindUnauthorized = "unauthorized"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("api %s error (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a network error.
func NewNetworkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "failed to reach the chatbot service",
		Err:     err,
	}
}

// NewStatusError creates an error for a non-success status code.
func NewStatusError(code int, message string) *Error {
	return &Error{
		Kind:    KindStatus,
		Code:    code,
		Message: message,
	}
}

// NewUnauthorizedError creates an error for a rejected credential.
func NewUnauthorizedError(message string) *Error {
	if message == "" {
		message = "credential rejected"
	}
	return &Error{
		Kind:    KindUnauthorized,
		Code:    401,
		Message: message,
	}
}

// NewDecodeError creates an error for a malformed response body.
func NewDecodeError(err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: "malformed response from the chatbot service",
		Err:     err,
	}
}

// IsUnauthorized reports whether err carries a credential rejection.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
