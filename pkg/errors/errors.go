// Package errors provides structured error types for the RepoLens engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Only INVALID_PATH surfaces as a caller-visible failure from a scan.
// Every other condition is recovered locally and reflected in the profile
// as an omission or an explicit placeholder value.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPath, "not a directory: %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidPath) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(origErr, errors.ErrCodeManifestParse, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Scan input validation. The only fatal scan error.
	ErrCodeInvalidPath Code = "INVALID_PATH"

	// Locally recovered scan conditions. PERMISSION_DENIED surfaces
	// only when the repository root itself cannot be listed; below the
	// root it degrades to a placeholder tree node.
	ErrCodePermissionDenied Code = "PERMISSION_DENIED"
	ErrCodeManifestParse    Code = "MANIFEST_PARSE"
	ErrCodeUnreadableFile   Code = "UNREADABLE_FILE"

	// UNSUPPORTED_ECOSYSTEM is reserved for API consumers requesting a
	// parser by ecosystem name; no internal path attaches it because
	// detection only ever yields registered ecosystems.
	ErrCodeUnsupportedEcosystem Code = "UNSUPPORTED_ECOSYSTEM"

	// Resource not found errors (store, cache). NOT_FOUND is the
	// generic form reserved for non-profile resources.
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeProfileNotFound Code = "PROFILE_NOT_FOUND"

	// Internal errors. UNSUPPORTED is reserved for callers rejecting an
	// unimplemented option combination.
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
func Wrap(cause error, code Code, format string, args ...any) *Error {
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
