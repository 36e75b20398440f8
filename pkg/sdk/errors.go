package sportdex

import "github.com/kailas-cloud/sportdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrEmptyCollection    = domain.ErrEmptyCollection
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrInvalidCoordinates = domain.ErrInvalidCoordinates
	ErrStoreUnavailable   = domain.ErrStoreUnavailable
)
