package sportdex

import (
	"context"
	"io"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
	healthuc "github.com/kailas-cloud/sportdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/sportdex/internal/usecase/importer"
	projectionuc "github.com/kailas-cloud/sportdex/internal/usecase/projection"
	townuc "github.com/kailas-cloud/sportdex/internal/usecase/town"
)

// --- installationUseCase mock ---

type mockInstallationUC struct {
	getFn             func(ctx context.Context, id string) (facility.Facility, error)
	listFn            func(ctx context.Context, page, pageSize int) ([]facility.Facility, error)
	countFn           func(ctx context.Context) (int64, error)
	randomFn          func(ctx context.Context) (facility.Facility, error)
	maxEquipmentsFn   func(ctx context.Context) (facility.Facility, error)
	countByActivityFn func(ctx context.Context) ([]facility.ActivityCount, error)
	averageFn         func(ctx context.Context) (float64, error)
	searchFn          func(ctx context.Context, query string) ([]facility.Scored, error)
	geoSearchFn       func(ctx context.Context, lat, lng, d float64) ([]facility.Nearby, error)
	geoSearchByTownFn func(ctx context.Context, name string, d float64) (town.Resolution, []facility.Nearby, error)
}

func (m *mockInstallationUC) Get(ctx context.Context, id string) (facility.Facility, error) {
	return m.getFn(ctx, id)
}

func (m *mockInstallationUC) List(ctx context.Context, page, pageSize int) ([]facility.Facility, error) {
	return m.listFn(ctx, page, pageSize)
}

func (m *mockInstallationUC) Count(ctx context.Context) (int64, error) { return m.countFn(ctx) }

func (m *mockInstallationUC) Random(ctx context.Context) (facility.Facility, error) {
	return m.randomFn(ctx)
}

func (m *mockInstallationUC) MaxEquipments(ctx context.Context) (facility.Facility, error) {
	return m.maxEquipmentsFn(ctx)
}

func (m *mockInstallationUC) CountByActivity(ctx context.Context) ([]facility.ActivityCount, error) {
	return m.countByActivityFn(ctx)
}

func (m *mockInstallationUC) AverageEquipments(ctx context.Context) (float64, error) {
	return m.averageFn(ctx)
}

func (m *mockInstallationUC) Search(ctx context.Context, query string) ([]facility.Scored, error) {
	return m.searchFn(ctx, query)
}

func (m *mockInstallationUC) GeoSearch(ctx context.Context, lat, lng, d float64) ([]facility.Nearby, error) {
	return m.geoSearchFn(ctx, lat, lng, d)
}

func (m *mockInstallationUC) GeoSearchByTown(
	ctx context.Context, name string, d float64,
) (town.Resolution, []facility.Nearby, error) {
	return m.geoSearchByTownFn(ctx, name, d)
}

// --- townUseCase mock ---

type mockTownUC struct {
	loadFn    func(ctx context.Context, r io.Reader) (townuc.LoadReport, error)
	suggestFn func(ctx context.Context, prefix string) ([]town.Town, error)
	resolveFn func(ctx context.Context, name string) (town.Resolution, error)
}

func (m *mockTownUC) Load(ctx context.Context, r io.Reader) (townuc.LoadReport, error) {
	return m.loadFn(ctx, r)
}

func (m *mockTownUC) Suggest(ctx context.Context, prefix string) ([]town.Town, error) {
	return m.suggestFn(ctx, prefix)
}

func (m *mockTownUC) Resolve(ctx context.Context, name string) (town.Resolution, error) {
	return m.resolveFn(ctx, name)
}

// --- importUseCase mock ---

type mockImportUC struct {
	runFn func(ctx context.Context, src importeruc.Sources) (importeruc.RunReport, error)
}

func (m *mockImportUC) Run(ctx context.Context, src importeruc.Sources) (importeruc.RunReport, error) {
	return m.runFn(ctx, src)
}

// --- projectionUseCase mock ---

type mockProjectionUC struct {
	syncFn func(ctx context.Context, runID string) (projectionuc.SyncReport, error)
}

func (m *mockProjectionUC) Sync(ctx context.Context, runID string) (projectionuc.SyncReport, error) {
	return m.syncFn(ctx, runID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
