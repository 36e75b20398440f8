// Package installation is the query surface over facility records: lookup,
// paging, aggregations, text search and geo search.
package installation

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/kailas-cloud/sportdex/internal/domain"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/geo"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
)

// Defaults for paging and text search.
const (
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
	DefaultSearchLimit = 50
)

// Service answers facility queries.
type Service struct {
	repo        Repository
	text        TextSearcher
	towns       TownResolver
	maxPageSize int
	searchLimit int
	randN       func(n int64) int64
}

// New creates a query service. towns may be nil when geo search by town is not served.
func New(repo Repository, text TextSearcher, towns TownResolver) *Service {
	return &Service{
		repo:        repo,
		text:        text,
		towns:       towns,
		maxPageSize: DefaultMaxPageSize,
		searchLimit: DefaultSearchLimit,
		randN:       rand.Int64N,
	}
}

// WithMaxPageSize configures the largest accepted page size.
func (s *Service) WithMaxPageSize(n int) *Service {
	if n > 0 {
		s.maxPageSize = n
	}
	return s
}

// WithSearchLimit configures the maximum number of text search hits.
func (s *Service) WithSearchLimit(n int) *Service {
	if n > 0 {
		s.searchLimit = n
	}
	return s
}

// Get returns the record with the given id, or an error wrapping domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (facility.Facility, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return facility.Facility{}, fmt.Errorf("empty id: %w", domain.ErrInvalidQuery)
	}
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return facility.Facility{}, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// List returns page number page of pageSize records in natural order.
// A zero pageSize or a page past the end yields an empty slice.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]facility.Facility, error) {
	if page < 0 || pageSize < 0 {
		return nil, fmt.Errorf("page=%d pageSize=%d: %w", page, pageSize, domain.ErrInvalidQuery)
	}
	if pageSize > s.maxPageSize {
		return nil, fmt.Errorf("pageSize %d exceeds %d: %w", pageSize, s.maxPageSize, domain.ErrInvalidQuery)
	}
	if pageSize == 0 || page > math.MaxInt/pageSize {
		return []facility.Facility{}, nil
	}

	out, err := s.repo.List(ctx, page*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return out, nil
}

// Count returns the number of records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count facilities: %w", err)
	}
	return n, nil
}

// Random returns a uniformly drawn record. It counts the records and then
// pages to a random offset, so each call costs a skip over up to n records.
func (s *Service) Random(ctx context.Context) (facility.Facility, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return facility.Facility{}, err
	}
	if n == 0 {
		return facility.Facility{}, fmt.Errorf("random facility: %w", domain.ErrEmptyCollection)
	}

	out, err := s.repo.List(ctx, int(s.randN(n)), 1)
	if err != nil {
		return facility.Facility{}, fmt.Errorf("random facility: %w", err)
	}
	if len(out) == 0 {
		// The collection shrank between count and read.
		return facility.Facility{}, fmt.Errorf("random facility: %w", domain.ErrEmptyCollection)
	}
	return out[0], nil
}

// MaxEquipments returns a record with the most equipments. Ties are not ordered.
func (s *Service) MaxEquipments(ctx context.Context) (facility.Facility, error) {
	f, err := s.repo.MaxEquipments(ctx)
	if err != nil {
		return facility.Facility{}, fmt.Errorf("max equipments: %w", err)
	}
	return f, nil
}

// CountByActivity counts activity occurrences across all equipments.
func (s *Service) CountByActivity(ctx context.Context) ([]facility.ActivityCount, error) {
	out, err := s.repo.CountByActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by activity: %w", err)
	}
	return out, nil
}

// AverageEquipments returns the mean equipment count per record.
func (s *Service) AverageEquipments(ctx context.Context) (float64, error) {
	avg, err := s.repo.AverageEquipments(ctx)
	if err != nil {
		return 0, fmt.Errorf("average equipments: %w", err)
	}
	return avg, nil
}

// Search runs a ranked text search. A blank query yields an empty slice.
func (s *Service) Search(ctx context.Context, query string) ([]facility.Scored, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []facility.Scored{}, nil
	}

	hits, err := s.text.Search(ctx, query, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search facilities: %w", err)
	}
	slices.SortStableFunc(hits, func(a, b facility.Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits, nil
}

// GeoSearch returns records within maxDistance meters of (lat, lng), nearest first.
// A non-positive maxDistance yields an empty slice.
func (s *Service) GeoSearch(ctx context.Context, lat, lng, maxDistance float64) ([]facility.Nearby, error) {
	origin, err := geo.NewPoint(lng, lat)
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	if maxDistance <= 0 || math.IsNaN(maxDistance) {
		return []facility.Nearby{}, nil
	}

	found, err := s.repo.Near(ctx, origin, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}

	out := make([]facility.Nearby, 0, len(found))
	for _, f := range found {
		n := facility.Nearby{Facility: f}
		if p, ok := f.Location.Point(); ok {
			n.Distance = geo.Distance(origin, p)
		}
		out = append(out, n)
	}
	return out, nil
}

// GeoSearchByTown resolves townName to coordinates, falling back to the
// default origin when it is unknown, then runs GeoSearch from there.
func (s *Service) GeoSearchByTown(
	ctx context.Context, townName string, maxDistance float64,
) (town.Resolution, []facility.Nearby, error) {
	if s.towns == nil {
		return town.Resolution{}, nil, fmt.Errorf("town lookup not configured: %w", domain.ErrInvalidQuery)
	}
	res, err := s.towns.Resolve(ctx, townName)
	if err != nil {
		return town.Resolution{}, nil, fmt.Errorf("resolve town: %w", err)
	}
	out, err := s.GeoSearch(ctx, res.Location.Lat(), res.Location.Lon(), maxDistance)
	if err != nil {
		return town.Resolution{}, nil, err
	}
	return res, out, nil
}
