package sportdex

import (
	"context"
	"fmt"
	"time"
)

// TownService answers town name completion and coordinate lookups.
type TownService struct {
	svc townUseCase
	obs *observer
}

// Suggest returns towns whose name starts with prefix.
func (s *TownService) Suggest(ctx context.Context, prefix string) (_ []Town, err error) {
	start := time.Now()
	defer func() { s.obs.observe("town.suggest", start, err) }()

	out, err := s.svc.Suggest(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest towns: %w", err)
	}
	return out, nil
}

// Locate returns the coordinates of the named town. Unknown names resolve
// to the fallback origin with Fallback set.
func (s *TownService) Locate(ctx context.Context, name string) (_ TownLocation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("town.locate", start, err) }()

	res, err := s.svc.Resolve(ctx, name)
	if err != nil {
		return TownLocation{}, fmt.Errorf("locate town: %w", err)
	}
	return res, nil
}
