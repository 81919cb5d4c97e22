// Package errors provides structured error types for gdsutil.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the export/transform engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages naming the offending cell, layer or reference
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The layout-specific codes map one to one onto the failure kinds of the
// engine: unresolved references, boundary-layer problems, geometry that the
// stream format cannot express, empty template boxes, bad grid sizes and
// missing rename entries. Generic input, format and internal codes cover the
// surrounding tooling.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnresolvedReference, "no struct named %q", name).For(name)
//	if errors.Is(err, errors.ErrCodeUnresolvedReference) {
//	    // Handle missing struct
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout engine errors
	ErrCodeUnresolvedReference     Code = "UNRESOLVED_REFERENCE"
	ErrCodeAmbiguousBoundary       Code = "AMBIGUOUS_BOUNDARY"
	ErrCodeMissingBoundaryLayer    Code = "MISSING_BOUNDARY_LAYER"
	ErrCodeUnrepresentableGeometry Code = "UNREPRESENTABLE_GEOMETRY"
	ErrCodeEmptyBoundingBox        Code = "EMPTY_BOUNDING_BOX"
	ErrCodeInvalidGridTolerance    Code = "INVALID_GRID_TOLERANCE"
	ErrCodeMissingRenameEntry      Code = "MISSING_RENAME_ENTRY"
	ErrCodeCoordinateOverflow      Code = "COORDINATE_OVERFLOW"
	ErrCodeDuplicateName           Code = "DUPLICATE_NAME"
	ErrCodeReferenceCycle          Code = "REFERENCE_CYCLE"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPattern Code = "INVALID_PATTERN"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeParse          Code = "PARSE_ERROR"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Subject string // Offending identifier (cell, layer, reference name), optional
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

// For records the offending identifier and returns e for chaining.
func (e *Error) For(subject string) *Error {
	e.Subject = subject
	return e
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

// GetSubject extracts the offending identifier from an error, if available.
func GetSubject(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
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
