package customer

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("customer not found")

	// ErrStoreUnavailable is returned when the backing store could not be
	// reached or answered with a malformed response. Callers must surface
	// this distinctly from ErrNotFound.
	ErrStoreUnavailable = errors.New("customer store unavailable")
)
