// Package errors provides structured error types for the Sketchport application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and serve mode
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map to the phases of an export:
//   - PARSE_ERROR / SCHEMA_ERROR / EMPTY_DOCUMENT: document loading
//   - ENVIRONMENT_ERROR / TIMEOUT: headless capture
//   - IO_ERROR: artifact writing
//   - INVALID_*: option validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSchema, "missing elements array in %s", path)
//	if errors.Is(err, errors.ErrCodeSchema) {
//	    // Handle schema error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidBackend Code = "INVALID_BACKEND"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Document loading errors
	ErrCodeParse         Code = "PARSE_ERROR"
	ErrCodeSchema        Code = "SCHEMA_ERROR"
	ErrCodeEmptyDocument Code = "EMPTY_DOCUMENT"

	// Capture errors
	ErrCodeEnvironment Code = "ENVIRONMENT_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"

	// Resource errors
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNetwork      Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// CaptureTimeoutError reports that the headless page never signaled render
// completion within the configured bound. It carries the limit so callers
// can surface actionable guidance.
type CaptureTimeoutError struct {
	Limit time.Duration
}

// Error implements the error interface.
func (e *CaptureTimeoutError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("render completion not signaled within %s: increase the capture timeout or inspect the document for pathological element counts", e.Limit)
	}
	return "render completion not signaled before the capture timeout"
}

// Code returns the error code for this error type.
func (e *CaptureTimeoutError) Code() Code {
	return ErrCodeTimeout
}
