// Package projection copies facility records from the document store into
// the search engine. The two stores are written separately; the copy lags
// the document store until the next sync completes.
package projection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sportdex/internal/domain/batch"
	"github.com/kailas-cloud/sportdex/internal/logger"
	"github.com/kailas-cloud/sportdex/internal/metrics"
	"github.com/kailas-cloud/sportdex/internal/repository/projection"
)

// DefaultBatchSize is the number of records read and written per round-trip.
const DefaultBatchSize = 500

const bulkTarget = "projection"

// SyncReport summarizes a sync.
type SyncReport struct {
	Read     int
	Written  int
	Failed   int
	Duration time.Duration
}

// Service runs projection syncs.
type Service struct {
	src       Source
	dst       Target
	batchSize int
	metrics   *metrics.Import
	now       func() time.Time
}

// New creates a projection sync service.
func New(src Source, dst Target) *Service {
	return &Service{src: src, dst: dst, batchSize: DefaultBatchSize, now: time.Now}
}

// WithBatchSize configures the page size of the copy.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithMetrics enables bulk failure metrics.
func (s *Service) WithMetrics(m *metrics.Import) *Service {
	s.metrics = m
	return s
}

// Sync copies every record into the projection. Store errors abort the sync.
// Records rejected by the projection are all reported in a
// *batch.FailedItemsError; the sync state is only saved when none failed.
func (s *Service) Sync(ctx context.Context, runID string) (SyncReport, error) {
	log := logger.FromContext(ctx)
	start := s.now()
	var rep SyncReport

	if err := s.dst.EnsureIndex(ctx); err != nil {
		return rep, fmt.Errorf("ensure projection index: %w", err)
	}

	var results []batch.Result
	for offset := 0; ; {
		page, err := s.src.List(ctx, offset, s.batchSize)
		if err != nil {
			return rep, fmt.Errorf("read records at %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		rep.Read += len(page)
		offset += len(page)

		errs := s.dst.Put(ctx, page)
		for i := range page {
			if i < len(errs) && errs[i] != nil {
				results = append(results, batch.NewError(page[i].ID, errs[i]))
				continue
			}
			results = append(results, batch.NewOK(page[i].ID))
		}

		if len(page) < s.batchSize {
			break
		}
	}

	rep.Failed = len(batch.Failures(results))
	rep.Written = len(results) - rep.Failed
	rep.Duration = s.now().Sub(start)
	s.metrics.BulkFailures(bulkTarget, rep.Failed)

	log.Info("projection synced",
		zap.Int("read", rep.Read),
		zap.Int("written", rep.Written),
		zap.Int("failed", rep.Failed),
		zap.Duration("duration", rep.Duration),
	)

	if err := batch.CheckResults(results); err != nil {
		return rep, fmt.Errorf("sync projection: %w", err)
	}

	st := projection.SyncState{RunID: runID, SyncedAt: s.now().UTC(), Written: rep.Written}
	if err := s.dst.SaveState(ctx, st); err != nil {
		return rep, err
	}
	return rep, nil
}

// Status returns the last completed sync. ok is false when none completed.
func (s *Service) Status(ctx context.Context) (projection.SyncState, bool, error) {
	st, ok, err := s.dst.State(ctx)
	if err != nil {
		return projection.SyncState{}, false, fmt.Errorf("projection status: %w", err)
	}
	return st, ok, nil
}
