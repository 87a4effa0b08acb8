// Package errors provides structured error types for the ember engine and tools.
//
// This package defines error codes and types that enable:
//   - Per-subtree failure reporting from the layout engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending element
//
// # Error Codes
//
// The four engine failure kinds are:
//   - CONFIGURATION: invalid constraint nesting, such as a Fill child inside a Fit container
//   - CASCADE_RESOLUTION: a watch cycle, recovered by freezing one participant
//   - LAYOUT_RESOLUTION: an invalidation storm that exceeded the settle or dispatch cap
//   - RENDER_TARGET: geometry larger than the drawing surface, clamped
//
// The remaining codes follow the INVALID_* / NOT_FOUND / INTERNAL convention for
// API misuse and tooling errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "Fill width inside Fit container %q", name).At(child)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle configuration error
//	}
//
// Engine operations that fail per subtree return several *Error values combined
// with the standard library's errors.Join; Is and All inspect every member.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine failure kinds
	ErrCodeConfiguration     Code = "CONFIGURATION"
	ErrCodeCascadeResolution Code = "CASCADE_RESOLUTION"
	ErrCodeLayoutResolution  Code = "LAYOUT_RESOLUTION"
	ErrCodeRenderTarget      Code = "RENDER_TARGET"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidTrait  Code = "INVALID_TRAIT"
	ErrCodeInvalidScene  Code = "INVALID_SCENE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Element string // Offending element identity (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Element != "" {
		msg = fmt.Sprintf("[%s] %s", e.Element, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// At records the offending element identity and returns e.
func (e *Error) At(element string) *Error {
	e.Element = element
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

// Is reports whether err, or any error it wraps or joins, has the given code.
func Is(err error, code Code) bool {
	for _, e := range All(err) {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Join combines per-subtree failures into one error; nil members are
// dropped and Join returns nil when none remain.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// All returns every *Error reachable from err, following both single and
// multi-error (errors.Join) unwrapping, in depth-first order.
func All(err error) []*Error {
	var out []*Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if e, ok := err.(*Error); ok {
			out = append(out, e)
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
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
		if e.Element != "" {
			return fmt.Sprintf("%s: %s", e.Element, e.Message)
		}
		return e.Message
	}
	return err.Error()
}
