package town

import (
	"context"

	"github.com/kailas-cloud/sportdex/internal/domain/town"
)

// Repository stores the town reference index.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	// Put writes all towns in one bulk round-trip; errors are aligned with towns.
	Put(ctx context.Context, towns []town.Town) []error
	Suggest(ctx context.Context, prefix string, limit int) ([]town.Town, error)
	FindByName(ctx context.Context, name string) (town.Town, bool, error)
}
