package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCollection signals an operation that needs at least one facility.
	ErrEmptyCollection = errors.New("empty collection")
	// ErrInvalidQuery signals malformed query parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCoordinates signals a longitude/latitude pair outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrStoreUnavailable signals a backing store that cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)
