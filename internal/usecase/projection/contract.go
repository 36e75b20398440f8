package projection

import (
	"context"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/repository/projection"
)

// Source pages through facility records in natural order.
type Source interface {
	List(ctx context.Context, offset, limit int) ([]facility.Facility, error)
}

// Target is the search projection.
type Target interface {
	EnsureIndex(ctx context.Context) error
	Put(ctx context.Context, fs []facility.Facility) []error
	SaveState(ctx context.Context, st projection.SyncState) error
	State(ctx context.Context) (projection.SyncState, bool, error)
}
