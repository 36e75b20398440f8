package sportdex

import (
	"context"
	"fmt"
	"io"
	"time"

	importeruc "github.com/kailas-cloud/sportdex/internal/usecase/importer"
)

// ImportSources holds the three CSV exports of a facility import.
type ImportSources struct {
	Installations io.Reader
	Equipments    io.Reader
	Activities    io.Reader
}

// Import merges the three exports into the record store. Reports of the
// passes that ran are returned even when err is not nil.
func (c *Client) Import(ctx context.Context, src ImportSources) (_ []ImportPass, err error) {
	start := time.Now()
	defer func() { c.obs.observe("import.facilities", start, err) }()

	rep, err := c.importSvc.Run(ctx, importeruc.Sources{
		Installations: src.Installations,
		Equipments:    src.Equipments,
		Activities:    src.Activities,
	})
	out := make([]ImportPass, len(rep.Passes))
	for i, p := range rep.Passes {
		out[i] = ImportPass{
			Pass:      p.Pass,
			Lines:     p.Lines,
			Written:   p.Written,
			Skipped:   p.Skipped,
			Unmatched: p.Unmatched,
			Duration:  p.Duration,
		}
	}
	if err != nil {
		return out, fmt.Errorf("import: %w", err)
	}
	return out, nil
}

// SyncProjection copies every record into the text search projection.
func (c *Client) SyncProjection(ctx context.Context) (_ ProjectionSync, err error) {
	start := time.Now()
	defer func() { c.obs.observe("import.projection", start, err) }()

	runID := c.newRunID()
	rep, err := c.projSvc.Sync(ctx, runID)
	out := ProjectionSync{
		RunID:    runID,
		Read:     rep.Read,
		Written:  rep.Written,
		Failed:   rep.Failed,
		Duration: rep.Duration,
	}
	if err != nil {
		return out, fmt.Errorf("sync projection: %w", err)
	}
	return out, nil
}

// LoadTowns loads a towns CSV into the town index.
func (c *Client) LoadTowns(ctx context.Context, r io.Reader) (_ TownLoad, err error) {
	start := time.Now()
	defer func() { c.obs.observe("import.towns", start, err) }()

	rep, err := c.townSvc.Load(ctx, r)
	out := TownLoad{
		Lines:    rep.Lines,
		Skipped:  rep.Skipped,
		Written:  rep.Written,
		Failed:   rep.Failed,
		Duration: rep.Duration,
	}
	if err != nil {
		return out, fmt.Errorf("load towns: %w", err)
	}
	return out, nil
}
