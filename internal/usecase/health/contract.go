package health

import (
	"context"

	"github.com/kailas-cloud/sportdex/internal/repository/projection"
)

// Pinger checks a backing store's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncStater reports the last completed projection sync.
type SyncStater interface {
	State(ctx context.Context) (projection.SyncState, bool, error)
}
