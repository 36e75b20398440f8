package installation

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
)

// Repository reads facility records from the document store.
type Repository interface {
	Get(ctx context.Context, id string) (facility.Facility, error)
	List(ctx context.Context, offset, limit int) ([]facility.Facility, error)
	Count(ctx context.Context) (int64, error)
	MaxEquipments(ctx context.Context) (facility.Facility, error)
	CountByActivity(ctx context.Context) ([]facility.ActivityCount, error)
	AverageEquipments(ctx context.Context) (float64, error)
	Near(ctx context.Context, origin orb.Point, maxDistance float64) ([]facility.Facility, error)
}

// TextSearcher runs ranked text search over the search projection.
type TextSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]facility.Scored, error)
}

// TownResolver turns a town name into a geo search origin.
type TownResolver interface {
	Resolve(ctx context.Context, name string) (town.Resolution, error)
}
