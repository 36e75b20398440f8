// Package importer merges the installations, equipments and activities
// exports into one facility record per installation.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sportdex/internal/csvline"
	"github.com/kailas-cloud/sportdex/internal/domain/row"
	"github.com/kailas-cloud/sportdex/internal/logger"
	"github.com/kailas-cloud/sportdex/internal/metrics"
)

// Pass names.
const (
	PassInstallations = "installations"
	PassEquipments    = "equipments"
	PassActivities    = "activities"
)

const (
	// DefaultWorkers is the number of write workers per pass.
	DefaultWorkers = 4
	queueSize      = 64
)

// PassReport summarizes one import pass.
type PassReport struct {
	Pass string
	// Lines counts data lines, excluding the header and blank lines.
	Lines     int
	Written   int
	Skipped   int
	Unmatched int
	Duration  time.Duration
}

// RunReport summarizes the three passes of a run, in execution order.
type RunReport struct {
	Passes []PassReport
}

// Sources holds the three exports of a run.
type Sources struct {
	Installations io.Reader
	Equipments    io.Reader
	Activities    io.Reader
}

// Service runs import passes.
type Service struct {
	writer  FacilityWriter
	workers int
	metrics *metrics.Import
}

// New creates an import service.
func New(writer FacilityWriter) *Service {
	return &Service{writer: writer, workers: DefaultWorkers}
}

// WithWorkers configures the number of write workers per pass.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMetrics enables import metrics.
func (s *Service) WithMetrics(m *metrics.Import) *Service {
	s.metrics = m
	return s
}

// Run executes the installations, equipments and activities passes in that
// order. Activities attach to equipments, so they run last. The first fatal
// error stops the run; the reports of completed passes are still returned.
func (s *Service) Run(ctx context.Context, src Sources) (RunReport, error) {
	passes := []struct {
		run func(context.Context, io.Reader) (PassReport, error)
		r   io.Reader
	}{
		{s.ImportInstallations, src.Installations},
		{s.ImportEquipments, src.Equipments},
		{s.ImportActivities, src.Activities},
	}

	var rep RunReport
	for _, p := range passes {
		pr, err := p.run(ctx, p.r)
		rep.Passes = append(rep.Passes, pr)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// ImportInstallations upserts one record per valid line, replacing any
// record with the same id.
func (s *Service) ImportInstallations(ctx context.Context, r io.Reader) (PassReport, error) {
	return s.runPass(ctx, PassInstallations, r, func(ctx context.Context, line int, text string) (job, error) {
		f, dropped, err := parseInstallation(line, text)
		if err != nil {
			return job{}, err
		}
		if len(dropped) > 0 {
			logger.FromContext(ctx).Debug("field dropped",
				zap.Int("line", line), zap.String("id", f.ID), zap.Strings("fields", dropped))
		}
		return job{line: line, key: f.ID, apply: func(ctx context.Context) (bool, error) {
			return true, s.writer.Upsert(ctx, &f)
		}}, nil
	})
}

// ImportEquipments appends each equipment to the record it names.
// Lines naming an unknown record are counted as unmatched.
func (s *Service) ImportEquipments(ctx context.Context, r io.Reader) (PassReport, error) {
	return s.runPass(ctx, PassEquipments, r, func(_ context.Context, line int, text string) (job, error) {
		facilityID, e, err := parseEquipment(line, text)
		if err != nil {
			return job{}, err
		}
		return job{line: line, key: facilityID, apply: func(ctx context.Context) (bool, error) {
			return s.writer.AppendEquipment(ctx, facilityID, e)
		}}, nil
	})
}

// ImportActivities appends each activity to the equipment it names and to
// the activity list of the record owning that equipment. Owners are read
// once before the pass, so rows are sharded by record and each record
// receives its activities in file order. Equipments without an owner are
// counted as unmatched.
func (s *Service) ImportActivities(ctx context.Context, r io.Reader) (PassReport, error) {
	owners, err := s.writer.EquipmentOwners(ctx)
	if err != nil {
		return PassReport{Pass: PassActivities}, fmt.Errorf("%s: load equipment owners: %w", PassActivities, err)
	}
	return s.runPass(ctx, PassActivities, r, func(_ context.Context, line int, text string) (job, error) {
		equipmentID, activity, err := parseActivity(line, text)
		if err != nil {
			return job{}, err
		}
		facilityID, ok := owners[equipmentID]
		if !ok {
			return job{line: line, key: equipmentID, apply: func(context.Context) (bool, error) {
				return false, nil
			}}, nil
		}
		return job{line: line, key: facilityID, apply: func(ctx context.Context) (bool, error) {
			return s.writer.AppendActivity(ctx, facilityID, equipmentID, activity)
		}}, nil
	})
}

// job is one parsed line ready to be written. Jobs with the same key are
// applied by the same worker, in file order.
type job struct {
	line  int
	key   string
	apply func(ctx context.Context) (matched bool, err error)
}

type parseFunc func(ctx context.Context, line int, text string) (job, error)

// runPass reads r line by line, dispatches parsed lines to workers sharded
// by key, and stops at the first write or read error.
func (s *Service) runPass(ctx context.Context, pass string, r io.Reader, parse parseFunc) (PassReport, error) {
	ctx = logger.With(ctx, zap.String("pass", pass))
	log := logger.FromContext(ctx)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	results := make([]workerTally, s.workers)
	queues := make([]chan job, s.workers)
	for i := range queues {
		queues[i] = make(chan job, queueSize)
		q, tally := queues[i], &results[i]
		g.Go(func() error {
			for j := range q {
				matched, err := j.apply(gctx)
				if err != nil {
					return fmt.Errorf("%s line %d: %w", pass, j.line, err)
				}
				if matched {
					tally.written++
					s.metrics.Row(pass, metrics.OutcomeWritten)
				} else {
					tally.unmatched++
					s.metrics.Row(pass, metrics.OutcomeUnmatched)
					log.Debug("no matching record", zap.Int("line", j.line), zap.String("key", j.key))
				}
			}
			return nil
		})
	}

	var lines, skipped int
	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		rd := csvline.NewReader(r)
		for rd.Next() {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines++
			var j job
			var err error
			if rd.TooLong() {
				err = row.Skip(rd.Line(), row.ReasonLineTooLong, "over %d bytes", csvline.MaxLineSize)
			} else {
				j, err = parse(gctx, rd.Line(), rd.Text())
			}
			if err != nil {
				var skip *row.SkipError
				if !errors.As(err, &skip) {
					return err
				}
				skipped++
				s.metrics.Skip(pass, string(skip.Reason))
				log.Debug("row skipped", zap.Int("line", skip.Line),
					zap.String("reason", string(skip.Reason)), zap.String("detail", skip.Detail))
				continue
			}

			q := queues[xxhash.Sum64String(j.key)%uint64(len(queues))]
			select {
			case q <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		if err := rd.Err(); err != nil {
			return fmt.Errorf("read %s: %w", pass, err)
		}
		return nil
	})

	err := g.Wait()

	rep := PassReport{Pass: pass, Lines: lines, Skipped: skipped, Duration: time.Since(start)}
	for _, t := range results {
		rep.Written += t.written
		rep.Unmatched += t.unmatched
	}
	s.metrics.PassDone(pass, rep.Duration, err == nil)

	if err != nil {
		log.Error("pass failed", zap.Error(err), zap.Int("lines", rep.Lines), zap.Int("written", rep.Written))
		return rep, err
	}

	log.Info("pass done",
		zap.Int("lines", rep.Lines),
		zap.Int("written", rep.Written),
		zap.Int("skipped", rep.Skipped),
		zap.Int("unmatched", rep.Unmatched),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

type workerTally struct {
	written   int
	unmatched int
}
