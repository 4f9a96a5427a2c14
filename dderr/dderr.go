// Package dderr classifies the error taxonomy used across the distributed
// directory core: invariant violations, transport failures, store I/O
// failures, user input errors, and resource exhaustion. Every fatal path in
// the core wraps one of these sentinels so ToolDriver (cmd/) can map errors
// to the right exit code without string matching.
package dderr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks a malformed plan, mismatched partition size, or any
	// other broken structural invariant. Always fatal.
	ErrInvariant = errors.New("invariant violation")
	// ErrTransport marks a failed send, receive, or collective operation.
	// Always fatal and nonrecoverable.
	ErrTransport = errors.New("transport failure")
	// ErrStoreIO marks a failed store open, a missing dataset, or a type
	// mismatch between the in-memory and on-disk record layouts.
	ErrStoreIO = errors.New("store I/O failure")
	// ErrUserInput marks a bad CLI flag or argument combination. Never has
	// side effects on a store.
	ErrUserInput = errors.New("user input error")
	// ErrResource marks an allocation that could not be satisfied.
	ErrResource = errors.New("resource exhaustion")
)

// Invariant builds an error from format/args, wrapped as an ErrInvariant.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}

// Transport wraps a transport-layer failure with context.
func Transport(ctx string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, ctx, err)
}

// StoreIO wraps a store I/O failure with context.
func StoreIO(ctx string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreIO, ctx, err)
}

// UserInput wraps a bad CLI argument with context.
func UserInput(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUserInput}, args...)...)
}

// Resource wraps a resource-exhaustion failure with context.
func Resource(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrResource}, args...)...)
}

// ExitCode maps an error produced by this package to a process exit code,
// following the §7 propagation policy: user input errors exit 1 with no
// side effects; everything else the core treats as fatal is reported with
// a non-zero, non-1 code so scripts can distinguish "bad invocation" from
// "ran and then aborted".
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrUserInput) {
		return 1
	}
	return 2
}
