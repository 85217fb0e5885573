// Package errors defines the sentinel errors shared across the
// synchronization core. The façade lets these propagate to callers;
// everything transport-shaped is absorbed by the fallback cascade.
package errors

import "errors"

// Caller-facing errors. These survive the fallback cascade.
var (
	// ErrNotFound is returned when an item id cannot be located on any
	// store in the active cascade path.
	ErrNotFound = errors.New("item not found")

	// ErrConflict is returned when a create collides with an existing id
	// on a store that enforces uniqueness.
	ErrConflict = errors.New("duplicate id")

	// ErrNotArray is returned when an item-level operation is requested
	// against a collection holding an opaque (non-array) value.
	ErrNotArray = errors.New("collection is not an array")
)

// UnavailableError wraps an error that means a backing store could not
// be reached or answered with a server-side failure. The façade treats
// it as a signal to fall back, never as a caller-facing failure.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string { return e.Err.Error() }
func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err (or any error in its chain) is an
// UnavailableError, meaning the caller should degrade to the next store
// in the cascade.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
