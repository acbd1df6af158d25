package daybrief

import (
	"errors"
	"fmt"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeCompletion   ErrorCode = "COMPLETION_FAILED"
	ErrCodeStore        ErrorCode = "STORE_ERROR"
	ErrCodeQuota        ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and additional context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode checks if an error matches a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Sentinel errors for the generation pipeline. Use errors.Is() to check.
var (
	// ErrCompletionFailed indicates the completion client exhausted every
	// retry and fallback model.
	ErrCompletionFailed = errors.New("completion failed after all attempts")
	// ErrInsufficientData indicates both news and finance were unavailable,
	// so the generation attempt was skipped without saving.
	ErrInsufficientData = errors.New("insufficient data for generation")
	// ErrGenerationInFlight indicates another generation attempt holds the
	// single-flight guard.
	ErrGenerationInFlight = errors.New("generation already in progress")
	// ErrQuotaExceeded indicates the manual trigger was already used today.
	ErrQuotaExceeded = errors.New("manual refresh already used today")
	// ErrGenerationTimeout indicates the manual attempt exceeded its ceiling.
	ErrGenerationTimeout = errors.New("generation timed out")
)
