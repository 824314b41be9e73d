// Package errors provides structured error types for graphview.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP surface
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Malformed input (style values, attributes, sprite positions)
//   - NOT_FOUND_*: Unknown elements
//   - PRECONDITION_VIOLATION: Caller bookkeeping bugs (fatal)
//   - UNSUPPORTED: Accepted input whose rendering is not implemented
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidStyleValue, "bad size %q", v)
//	if errors.Is(err, errors.ErrCodeInvalidStyleValue) {
//	    // keep the previous value
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidStyleSheet, origErr, "load %s", path)
//
// Precondition violations are raised with [Precondition], which panics: they
// indicate a bug in the caller that must not be masked.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Malformed input errors
	ErrCodeInvalidInput          Code = "INVALID_INPUT"
	ErrCodeInvalidStyleValue     Code = "INVALID_STYLE_VALUE"
	ErrCodeInvalidStyleSheet     Code = "INVALID_STYLESHEET"
	ErrCodeInvalidSpritePosition Code = "INVALID_SPRITE_POSITION"
	ErrCodeInvalidAttribute      Code = "INVALID_ATTRIBUTE"
	ErrCodeInvalidConfig         Code = "INVALID_CONFIG"
	ErrCodeInvalidElementID      Code = "INVALID_ELEMENT_ID"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeElementNotFound Code = "NOT_FOUND_ELEMENT"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodePrecondition Code = "PRECONDITION_VIOLATION"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
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

// Precondition panics with an ErrCodePrecondition error.
// It is reserved for broken internal invariants, never for bad input data.
func Precondition(format string, args ...any) {
	panic(New(ErrCodePrecondition, format, args...))
}

// Unsupported returns an ErrCodeUnsupported error for a feature that is
// accepted as input but deliberately not implemented.
func Unsupported(format string, args ...any) *Error {
	return New(ErrCodeUnsupported, format, args...)
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

// Recover converts a recovered precondition panic back into an error.
// Other panic values are re-raised. Use it at API boundaries (HTTP handlers)
// that must report rather than crash:
//
//	defer errors.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok && e.Code == ErrCodePrecondition {
		*errp = e
		return
	}
	panic(r)
}
