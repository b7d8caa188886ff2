// Package apperr defines the error taxonomy shared by all core operations.
//
// Every service method returns an error wrapping exactly one of the four
// sentinels below, so callers branch with errors.Is and map each kind to
// whatever surface they expose. The core never retries and never formats
// user-facing messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input, e.g. a
	// non-positive amount or an empty description. Permanent for the input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a user, expense, split or group that
	// does not exist, or that the acting user is not allowed to see.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an operation that lost to prior state: settling an
	// already-settled split, adding an existing friendship or membership.
	ErrConflict = errors.New("conflict")

	// ErrIntegrity marks a store-level constraint violation surfaced from a
	// failed transaction.
	ErrIntegrity = errors.New("integrity violation")
)

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrValidation, args)...)
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

// Conflictf returns an error wrapping ErrConflict.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrConflict, args)...)
}

// Integrityf returns an error wrapping ErrIntegrity.
func Integrityf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrIntegrity, args)...)
}

func prepend(err error, args []any) []any {
	return append([]any{err}, args...)
}
