// Package town loads the town reference index and serves name completion
// and coordinate lookup from it.
package town

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sportdex/internal/csvline"
	"github.com/kailas-cloud/sportdex/internal/domain/batch"
	"github.com/kailas-cloud/sportdex/internal/domain/geo"
	"github.com/kailas-cloud/sportdex/internal/domain/row"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
	"github.com/kailas-cloud/sportdex/internal/logger"
	"github.com/kailas-cloud/sportdex/internal/metrics"
)

// Towns export columns.
const (
	colName      = 1
	colLongitude = 6
	colLatitude  = 7

	minColumns = colLatitude + 1
)

// DefaultSuggestMax caps the number of completions returned by Suggest.
const DefaultSuggestMax = 10

// bulkTarget labels bulk failure metrics.
const bulkTarget = "towns"

// LoadReport summarizes a town load.
type LoadReport struct {
	Lines    int
	Skipped  int
	Written  int
	Failed   int
	Duration time.Duration
}

// Service loads and queries the town reference index.
type Service struct {
	repo       Repository
	fallback   town.Town
	suggestMax int
	metrics    *metrics.Import
}

// New creates a town service. fallback is the origin returned by Resolve for unknown names.
func New(repo Repository, fallback town.Town) *Service {
	return &Service{repo: repo, fallback: fallback, suggestMax: DefaultSuggestMax}
}

// WithSuggestMax configures the completion cap.
func (s *Service) WithSuggestMax(n int) *Service {
	if n > 0 {
		s.suggestMax = n
	}
	return s
}

// WithMetrics enables bulk failure metrics.
func (s *Service) WithMetrics(m *metrics.Import) *Service {
	s.metrics = m
	return s
}

type entry struct {
	line int
	town town.Town
}

// Load reads the towns export and writes every valid line in a single bulk
// write. Malformed lines are skipped. When any item of the bulk write fails,
// the returned error is a *batch.FailedItemsError listing each of them.
func (s *Service) Load(ctx context.Context, r io.Reader) (LoadReport, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var rep LoadReport

	var entries []entry
	rd := csvline.NewReader(r)
	for rd.Next() {
		rep.Lines++
		if rd.TooLong() {
			rep.Skipped++
			log.Debug("row skipped", zap.Int("line", rd.Line()), zap.String("reason", string(row.ReasonLineTooLong)))
			continue
		}
		t, err := parseTown(rd.Line(), rd.Text())
		if err != nil {
			rep.Skipped++
			log.Debug("row skipped", zap.Int("line", rd.Line()), zap.Error(err))
			continue
		}
		entries = append(entries, entry{line: rd.Line(), town: t})
	}
	if err := rd.Err(); err != nil {
		return rep, fmt.Errorf("read towns: %w", err)
	}

	if err := s.repo.EnsureIndex(ctx); err != nil {
		return rep, fmt.Errorf("ensure town index: %w", err)
	}

	towns := make([]town.Town, len(entries))
	for i, e := range entries {
		towns[i] = e.town
	}
	errs := s.repo.Put(ctx, towns)

	results := make([]batch.Result, len(entries))
	for i, e := range entries {
		id := fmt.Sprintf("line %d (%s)", e.line, e.town.Name)
		if i < len(errs) && errs[i] != nil {
			results[i] = batch.NewError(id, errs[i])
			continue
		}
		results[i] = batch.NewOK(id)
	}

	failed := batch.Failures(results)
	rep.Failed = len(failed)
	rep.Written = len(results) - rep.Failed
	rep.Duration = time.Since(start)
	s.metrics.BulkFailures(bulkTarget, rep.Failed)

	for _, f := range failed {
		log.Warn("town not indexed", zap.String("item", f.ID()), zap.Error(f.Err()))
	}
	log.Info("towns loaded",
		zap.Int("lines", rep.Lines),
		zap.Int("written", rep.Written),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
		zap.Duration("duration", rep.Duration),
	)

	if err := batch.CheckResults(results); err != nil {
		return rep, fmt.Errorf("load towns: %w", err)
	}
	return rep, nil
}

// Suggest returns towns whose name starts with prefix. No match is an empty slice.
func (s *Service) Suggest(ctx context.Context, prefix string) ([]town.Town, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []town.Town{}, nil
	}
	out, err := s.repo.Suggest(ctx, prefix, s.suggestMax)
	if err != nil {
		return nil, fmt.Errorf("suggest towns: %w", err)
	}
	if out == nil {
		out = []town.Town{}
	}
	return out, nil
}

// Resolve returns the coordinates of the town named name, ignoring case.
// An unknown or blank name resolves to the fallback origin.
func (s *Service) Resolve(ctx context.Context, name string) (town.Resolution, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		t, ok, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return town.Resolution{}, fmt.Errorf("resolve town: %w", err)
		}
		if ok {
			return town.Resolution{Name: t.Name, Location: t.Location}, nil
		}
	}
	logger.FromContext(ctx).Debug("unknown town, using fallback", zap.String("town", name))
	return town.Resolution{Name: s.fallback.Name, Location: s.fallback.Location, Fallback: true}, nil
}

// parseTown reads one towns line: name, longitude and latitude. Fields may
// be quoted or bare.
func parseTown(line int, text string) (town.Town, error) {
	cols := csvline.SplitMixed(text)
	if len(cols) < minColumns {
		return town.Town{}, row.Skip(line, row.ReasonTooFewColumns, "%d columns, need %d", len(cols), minColumns)
	}

	name := unquote(csvline.Field(cols, colName))
	if name == "" {
		return town.Town{}, row.Skip(line, row.ReasonMissingName, "")
	}

	lon, errLon := strconv.ParseFloat(unquote(csvline.Field(cols, colLongitude)), 64)
	lat, errLat := strconv.ParseFloat(unquote(csvline.Field(cols, colLatitude)), 64)
	if errLon != nil || errLat != nil {
		return town.Town{}, row.Skip(line, row.ReasonInvalidCoordinates, "lon=%q lat=%q",
			csvline.Field(cols, colLongitude), csvline.Field(cols, colLatitude))
	}
	p, err := geo.NewPoint(lon, lat)
	if err != nil {
		return town.Town{}, row.Skip(line, row.ReasonInvalidCoordinates, "%v", err)
	}

	return town.New(name, p)
}

func unquote(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
