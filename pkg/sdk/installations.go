package sportdex

import (
	"context"
	"fmt"
	"time"
)

// InstallationService queries facility records.
type InstallationService struct {
	svc installationUseCase
	obs *observer
}

// Get returns the record with the given id. Unknown ids wrap ErrNotFound.
func (s *InstallationService) Get(ctx context.Context, id string) (_ Installation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.get", start, err) }()

	f, err := s.svc.Get(ctx, id)
	if err != nil {
		return Installation{}, fmt.Errorf("get installation: %w", err)
	}
	return f, nil
}

// List returns page number page (zero-based) of pageSize records.
func (s *InstallationService) List(ctx context.Context, page, pageSize int) (_ []Installation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.list", start, err) }()

	out, err := s.svc.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}
	return out, nil
}

// Count returns the number of records.
func (s *InstallationService) Count(ctx context.Context) (_ int64, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.count", start, err) }()

	n, err := s.svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count installations: %w", err)
	}
	return n, nil
}

// Random returns a uniformly drawn record, or ErrEmptyCollection.
func (s *InstallationService) Random(ctx context.Context) (_ Installation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.random", start, err) }()

	f, err := s.svc.Random(ctx)
	if err != nil {
		return Installation{}, fmt.Errorf("random installation: %w", err)
	}
	return f, nil
}

// MaxEquipments returns a record with the most equipments.
func (s *InstallationService) MaxEquipments(ctx context.Context) (_ Installation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.max_equipments", start, err) }()

	f, err := s.svc.MaxEquipments(ctx)
	if err != nil {
		return Installation{}, fmt.Errorf("max equipments: %w", err)
	}
	return f, nil
}

// CountByActivity counts activity occurrences across all equipments.
func (s *InstallationService) CountByActivity(ctx context.Context) (_ []ActivityCount, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.count_by_activity", start, err) }()

	out, err := s.svc.CountByActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by activity: %w", err)
	}
	return out, nil
}

// AverageEquipments returns the mean number of equipments per record.
func (s *InstallationService) AverageEquipments(ctx context.Context) (_ float64, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.average_equipments", start, err) }()

	avg, err := s.svc.AverageEquipments(ctx)
	if err != nil {
		return 0, fmt.Errorf("average equipments: %w", err)
	}
	return avg, nil
}

// Search runs a ranked text search over names and communes.
func (s *InstallationService) Search(ctx context.Context, query string) (_ []ScoredHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.search", start, err) }()

	out, err := s.svc.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search installations: %w", err)
	}
	return out, nil
}

// GeoSearch returns records within maxDistance meters of (lat, lng), nearest first.
func (s *InstallationService) GeoSearch(
	ctx context.Context, lat, lng, maxDistance float64,
) (_ []NearbyHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.geosearch", start, err) }()

	out, err := s.svc.GeoSearch(ctx, lat, lng, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	return out, nil
}

// GeoSearchByTown runs GeoSearch from the named town, or from the fallback
// origin when the name is unknown.
func (s *InstallationService) GeoSearchByTown(
	ctx context.Context, townName string, maxDistance float64,
) (_ TownLocation, _ []NearbyHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("installation.geosearch_town", start, err) }()

	origin, out, err := s.svc.GeoSearchByTown(ctx, townName, maxDistance)
	if err != nil {
		return TownLocation{}, nil, fmt.Errorf("geo search by town: %w", err)
	}
	return origin, out, nil
}
