// Package must contains helpers for startup invariants that panic when an error is not nil.
package must

import "fmt"

// OK panics if err is not nil. The panic value is an error wrapping err.
// Use it only where an error means a programming or build mistake, such as a broken embedded file.
func OK(err error) {
	if err != nil {
		panic(fmt.Errorf("must: %w", err))
	}
}

// Any returns ret if err is nil and panics like OK otherwise.
//
//nolint:ireturn // Generic pass-through of the caller's type.
func Any[T any](ret T, err error) T {
	OK(err)

	return ret
}
