// Package errors provides the coded error type shared by the loader,
// materializer and writer.
//
// Every expected failure (missing file, corrupt input, nothing to save) is
// returned as an *Error carrying a machine-readable Code and a short message
// meant to be shown to the user verbatim.
//
//	err := errors.New(errors.ErrCodeNotFound, "file not found: %s", path)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Load errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeCorruptInput Code = "CORRUPT_INPUT"
	ErrCodeEmptyInput   Code = "EMPTY_INPUT"

	// Generate errors
	ErrCodeNoSourceLoaded   Code = "NO_SOURCE_LOADED"
	ErrCodeEmptyModel       Code = "EMPTY_MODEL"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"

	// Save errors
	ErrCodeLockedDestination Code = "LOCKED_DESTINATION"
	ErrCodeWriteFailure      Code = "WRITE_FAILURE"
	ErrCodeNothingGenerated  Code = "NOTHING_GENERATED"
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
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix or cause.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
