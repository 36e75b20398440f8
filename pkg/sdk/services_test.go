package sportdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/sportdex/internal/domain"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
	healthuc "github.com/kailas-cloud/sportdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/sportdex/internal/usecase/importer"
	projectionuc "github.com/kailas-cloud/sportdex/internal/usecase/projection"
	townuc "github.com/kailas-cloud/sportdex/internal/usecase/town"
)

// --- InstallationService ---

func TestInstallationService_Get(t *testing.T) {
	mock := &mockInstallationUC{
		getFn: func(_ context.Context, id string) (facility.Facility, error) {
			return facility.Facility{ID: id, Name: "Piscine"}, nil
		},
	}

	svc := &InstallationService{svc: mock}
	got, err := svc.Get(context.Background(), "440010001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "440010001" || got.Name != "Piscine" {
		t.Errorf("got %+v", got)
	}
}

func TestInstallationService_Get_NotFound(t *testing.T) {
	mock := &mockInstallationUC{
		getFn: func(context.Context, string) (facility.Facility, error) {
			return facility.Facility{}, fmt.Errorf("get: %w", domain.ErrNotFound)
		},
	}

	svc := &InstallationService{svc: mock}
	_, err := svc.Get(context.Background(), "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInstallationService_List(t *testing.T) {
	mock := &mockInstallationUC{
		listFn: func(_ context.Context, page, pageSize int) ([]facility.Facility, error) {
			if page != 2 || pageSize != 10 {
				t.Errorf("List(%d, %d)", page, pageSize)
			}
			return []facility.Facility{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	svc := &InstallationService{svc: mock}
	out, err := svc.List(context.Background(), 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}

func TestInstallationService_Random_Empty(t *testing.T) {
	mock := &mockInstallationUC{
		randomFn: func(context.Context) (facility.Facility, error) {
			return facility.Facility{}, domain.ErrEmptyCollection
		},
	}

	svc := &InstallationService{svc: mock}
	_, err := svc.Random(context.Background())
	if !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("err = %v, want ErrEmptyCollection", err)
	}
}

func TestInstallationService_Stats(t *testing.T) {
	mock := &mockInstallationUC{
		countFn: func(context.Context) (int64, error) { return 3, nil },
		maxEquipmentsFn: func(context.Context) (facility.Facility, error) {
			return facility.Facility{ID: "big"}, nil
		},
		countByActivityFn: func(context.Context) ([]facility.ActivityCount, error) {
			return []facility.ActivityCount{{Activity: "Football", Total: 4}}, nil
		},
		averageFn: func(context.Context) (float64, error) { return 1.5, nil },
	}
	svc := &InstallationService{svc: mock}
	ctx := context.Background()

	if n, err := svc.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}
	if f, err := svc.MaxEquipments(ctx); err != nil || f.ID != "big" {
		t.Errorf("MaxEquipments = %+v, %v", f, err)
	}
	if c, err := svc.CountByActivity(ctx); err != nil || len(c) != 1 || c[0].Total != 4 {
		t.Errorf("CountByActivity = %+v, %v", c, err)
	}
	if avg, err := svc.AverageEquipments(ctx); err != nil || avg != 1.5 {
		t.Errorf("AverageEquipments = %v, %v", avg, err)
	}
}

func TestInstallationService_Search(t *testing.T) {
	mock := &mockInstallationUC{
		searchFn: func(_ context.Context, q string) ([]facility.Scored, error) {
			return []facility.Scored{{Facility: facility.Facility{ID: "a"}, Score: 2}}, nil
		},
	}

	svc := &InstallationService{svc: mock}
	hits, err := svc.Search(context.Background(), "nantes")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Score != 2 {
		t.Errorf("hits = %+v", hits)
	}
}

func TestInstallationService_GeoSearch_InvalidCoordinates(t *testing.T) {
	mock := &mockInstallationUC{
		geoSearchFn: func(context.Context, float64, float64, float64) ([]facility.Nearby, error) {
			return nil, fmt.Errorf("lat 91: %w", domain.ErrInvalidCoordinates)
		},
	}

	svc := &InstallationService{svc: mock}
	_, err := svc.GeoSearch(context.Background(), 91, 0, 10)
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestInstallationService_GeoSearchByTown(t *testing.T) {
	mock := &mockInstallationUC{
		geoSearchByTownFn: func(_ context.Context, name string, d float64) (town.Resolution, []facility.Nearby, error) {
			return town.Resolution{Name: "NANTES", Location: orb.Point{-1.55, 47.21}},
				[]facility.Nearby{{Facility: facility.Facility{ID: "a"}, Distance: 10}}, nil
		},
	}

	svc := &InstallationService{svc: mock}
	origin, hits, err := svc.GeoSearchByTown(context.Background(), "Nantes", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if origin.Name != "NANTES" || origin.Fallback {
		t.Errorf("origin = %+v", origin)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %+v", hits)
	}
}

// --- TownService ---

func TestTownService_Suggest(t *testing.T) {
	mock := &mockTownUC{
		suggestFn: func(_ context.Context, prefix string) ([]town.Town, error) {
			return []town.Town{{Name: prefix + "ES"}}, nil
		},
	}

	svc := &TownService{svc: mock}
	out, err := svc.Suggest(context.Background(), "NANT")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Name != "NANTES" {
		t.Errorf("out = %+v", out)
	}
}

func TestTownService_Locate_Error(t *testing.T) {
	mock := &mockTownUC{
		resolveFn: func(context.Context, string) (town.Resolution, error) {
			return town.Resolution{}, errors.New("search engine down")
		},
	}

	svc := &TownService{svc: mock}
	if _, err := svc.Locate(context.Background(), "Nantes"); err == nil {
		t.Fatal("expected error")
	}
}

// --- Client ingest ---

func TestClient_Import_ReturnsPartialReport(t *testing.T) {
	c := &Client{importSvc: &mockImportUC{
		runFn: func(_ context.Context, src importeruc.Sources) (importeruc.RunReport, error) {
			if src.Installations == nil || src.Equipments == nil || src.Activities == nil {
				t.Error("sources not forwarded")
			}
			return importeruc.RunReport{Passes: []importeruc.PassReport{
				{Pass: importeruc.PassInstallations, Lines: 3, Written: 3},
				{Pass: importeruc.PassEquipments, Lines: 1},
			}}, errors.New("store down")
		},
	}}

	passes, err := c.Import(context.Background(), ImportSources{
		Installations: strings.NewReader(""),
		Equipments:    strings.NewReader(""),
		Activities:    strings.NewReader(""),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(passes) != 2 || passes[0].Written != 3 || passes[1].Pass != importeruc.PassEquipments {
		t.Errorf("passes = %+v", passes)
	}
}

func TestClient_SyncProjection_UsesRunID(t *testing.T) {
	c := &Client{
		newRunID: func() string { return "run-1" },
		projSvc: &mockProjectionUC{
			syncFn: func(_ context.Context, runID string) (projectionuc.SyncReport, error) {
				if runID != "run-1" {
					t.Errorf("runID = %q", runID)
				}
				return projectionuc.SyncReport{Read: 5, Written: 5}, nil
			},
		},
	}

	rep, err := c.SyncProjection(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.RunID != "run-1" || rep.Written != 5 {
		t.Errorf("rep = %+v", rep)
	}
}

func TestClient_LoadTowns(t *testing.T) {
	c := &Client{townSvc: &mockTownUC{
		loadFn: func(_ context.Context, r io.Reader) (townuc.LoadReport, error) {
			data, _ := io.ReadAll(r)
			if string(data) != "csv" {
				t.Errorf("reader content = %q", data)
			}
			return townuc.LoadReport{Lines: 2, Written: 2}, nil
		},
	}}

	rep, err := c.LoadTowns(context.Background(), strings.NewReader("csv"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Written != 2 {
		t.Errorf("rep = %+v", rep)
	}
}

func TestClient_Health(t *testing.T) {
	synced := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.ComponentRecords: healthuc.CheckOK,
			healthuc.ComponentSearch:  healthuc.CheckError,
		},
		LastSync: &synced,
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("status = %q", h.Status)
	}
	if h.Checks["search"] != "error" || h.Checks["records"] != "ok" {
		t.Errorf("checks = %v", h.Checks)
	}
	if h.LastSync == nil || !h.LastSync.Equal(synced) {
		t.Errorf("lastSync = %v", h.LastSync)
	}
}
