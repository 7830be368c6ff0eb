// api/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries the HTTP status a failure should surface as, plus the
// short message safe to show to the caller. Internal causes stay in the
// wrapped error chain and are only logged server-side.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code=%d, message=%s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Validation is a missing or malformed required field. Never retried,
// never logged as fatal.
func Validation(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

// Duplicate is a rate-limit-style rejection (same submission inside the
// dedup window), surfaced as 429 so the client can back off.
func Duplicate(message string) *AppError {
	return &AppError{Code: http.StatusTooManyRequests, Message: message}
}

// Store wraps a failure talking to one of the backing stores. The caller
// sees a generic 500; the cause is kept for server-side logging.
func Store(cause error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: "Internal server error", cause: cause}
}

// StatusCode returns the HTTP status an error maps to, defaulting to 500
// for anything that is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to send to the caller. Unknown
// errors collapse to a generic message so internals never leak.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
