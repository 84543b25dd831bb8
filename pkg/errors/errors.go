// Package errors provides structured error handling for gridframe.
//
// Every error raised by the projection engine, the per-unit service and the
// marshalling layer is an *Error carrying one of a small set of types. Callers
// branch on the type with IsType and report Details (element id, column name,
// row) to their own users.
//
// # Basic Usage
//
//	err := errors.NotFound("generator %q not found", id).
//	    WithDetail("element_id", id)
//
//	if errors.IsType(err, errors.ErrorTypeNotFound) {
//	    // report the missing element
//	}
//
// Nothing in this module retries: projection and marshalling do not fail
// transiently, so there is no retryability classification.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing entity, key or column
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidValue represents an enum, topology or numeric value rejected by an operation
	ErrorTypeInvalidValue ErrorType = "invalid_value"
	// ErrorTypeUnsupported represents a write to a read-only column or a conversion missing its inputs
	ErrorTypeUnsupported ErrorType = "unsupported_operation"
	// ErrorTypeMarshalling represents an unknown foreign type or element code
	ErrorTypeMarshalling ErrorType = "marshalling"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns the detail stored under key, if any.
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// DetailString renders the details as sorted key=value pairs, suitable for
// messages handed across the native boundary.
func (e *Error) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return strings.Join(parts, " ")
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// NotFound creates an ErrorTypeNotFound error
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// InvalidValue creates an ErrorTypeInvalidValue error
func InvalidValue(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeInvalidValue, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// Unsupported creates an ErrorTypeUnsupported error
func Unsupported(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeUnsupported, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// Marshalling creates an ErrorTypeMarshalling error
func Marshalling(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeMarshalling, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// IsType checks if the error is of the given type. Only the outermost
// structured error in the chain is considered.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost structured error, or
// ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// As is a re-export of the standard library errors.As so callers of this
// package don't need two imports named errors.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a re-export of the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
