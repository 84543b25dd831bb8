// Package errors provides examples of structured error handling in gridframe.
package errors_test

import (
	"fmt"
	"io"

	"github.com/gridframe/gridframe/pkg/errors"
)

// Example demonstrates basic error creation with context details.
func Example() {
	err := errors.NotFound("generator %q not found", "GEN-9").
		WithDetail("element_id", "GEN-9").
		WithDetail("column", "id")

	fmt.Println(err.Error())
	fmt.Println(err.DetailString())

	// Output:
	// not_found: generator "GEN-9" not found
	// column=id element_id=GEN-9
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeConfig, "failed to read config file").
		WithDetail("file", "gridframe.yaml")

	if errors.IsType(err, errors.ErrorTypeConfig) {
		fmt.Println("This is a config error")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause is preserved")
	}

	// Output:
	// This is a config error
	// Cause is preserved
}

// ExampleErrorType demonstrates the engine's error taxonomy.
func ExampleErrorType() {
	fmt.Println(errors.InvalidValue("unknown energy source %q", "COAL"))
	fmt.Println(errors.Unsupported("column %q is read-only", "p"))
	fmt.Println(errors.Marshalling("unknown series type code %d", 9))

	// Output:
	// invalid_value: unknown energy source "COAL"
	// unsupported_operation: column "p" is read-only
	// marshalling: unknown series type code 9
}

// ExampleTypeOf shows classification of foreign errors.
func ExampleTypeOf() {
	fmt.Println(errors.TypeOf(errors.NotFound("bus %q not found", "B1")))
	fmt.Println(errors.TypeOf(io.EOF))

	// Output:
	// not_found
	// internal
}
