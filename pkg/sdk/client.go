package sportdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	dbMongo "github.com/kailas-cloud/sportdex/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/sportdex/internal/db/redis"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
	"github.com/kailas-cloud/sportdex/internal/metrics"
	installationrepo "github.com/kailas-cloud/sportdex/internal/repository/installation"
	projectionrepo "github.com/kailas-cloud/sportdex/internal/repository/projection"
	townrepo "github.com/kailas-cloud/sportdex/internal/repository/town"
	healthuc "github.com/kailas-cloud/sportdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/sportdex/internal/usecase/importer"
	installationuc "github.com/kailas-cloud/sportdex/internal/usecase/installation"
	projectionuc "github.com/kailas-cloud/sportdex/internal/usecase/projection"
	townuc "github.com/kailas-cloud/sportdex/internal/usecase/town"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type installationUseCase interface {
	Get(ctx context.Context, id string) (facility.Facility, error)
	List(ctx context.Context, page, pageSize int) ([]facility.Facility, error)
	Count(ctx context.Context) (int64, error)
	Random(ctx context.Context) (facility.Facility, error)
	MaxEquipments(ctx context.Context) (facility.Facility, error)
	CountByActivity(ctx context.Context) ([]facility.ActivityCount, error)
	AverageEquipments(ctx context.Context) (float64, error)
	Search(ctx context.Context, query string) ([]facility.Scored, error)
	GeoSearch(ctx context.Context, lat, lng, maxDistance float64) ([]facility.Nearby, error)
	GeoSearchByTown(ctx context.Context, townName string, maxDistance float64) (town.Resolution, []facility.Nearby, error)
}

type townUseCase interface {
	Load(ctx context.Context, r io.Reader) (townuc.LoadReport, error)
	Suggest(ctx context.Context, prefix string) ([]town.Town, error)
	Resolve(ctx context.Context, name string) (town.Resolution, error)
}

type importUseCase interface {
	Run(ctx context.Context, src importeruc.Sources) (importeruc.RunReport, error)
}

type projectionUseCase interface {
	Sync(ctx context.Context, runID string) (projectionuc.SyncReport, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the sportdex SDK entry point.
type Client struct {
	records *dbMongo.Store
	search  *dbRedis.Store

	installSvc installationUseCase
	townSvc    townUseCase
	importSvc  importUseCase
	projSvc    projectionUseCase
	healthSvc  healthUseCase
	obs        *observer
	newRunID   func() string
}

// New creates a Client and connects to both stores.
// The provided context is used for the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.mongoURI == "" {
		return nil, errors.New("sportdex: document store uri required (use WithMongo)")
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("sportdex: search engine address required (use WithRedis)")
	}
	fallback, err := town.New(cfg.fallbackName, orb.Point{cfg.fallbackLon, cfg.fallbackLat})
	if err != nil {
		return nil, fmt.Errorf("sportdex: fallback town: %w", err)
	}

	records, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.mongoURI,
		Database:   cfg.database,
		Collection: cfg.collection,
	})
	if err != nil {
		return nil, fmt.Errorf("sportdex: create document store: %w", err)
	}
	if err := records.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = records.Close(ctx)
		return nil, fmt.Errorf("sportdex: document store not ready: %w", err)
	}

	search, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		_ = records.Close(ctx)
		return nil, fmt.Errorf("sportdex: create search store: %w", err)
	}
	if err := search.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		search.Close()
		_ = records.Close(ctx)
		return nil, fmt.Errorf("sportdex: search engine not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		search.Close()
		_ = records.Close(ctx)
		return nil, err
	}

	installRepo := installationrepo.New(records.Collection())
	if err := installRepo.EnsureIndexes(ctx); err != nil {
		search.Close()
		_ = records.Close(ctx)
		return nil, fmt.Errorf("sportdex: %w", err)
	}

	c := wireClient(installRepo, search, cfg, fallback, obs)
	c.records, c.search = records, search
	return c, nil
}

func wireClient(
	installRepo *installationrepo.Repo, search *dbRedis.Store,
	cfg *clientConfig, fallback town.Town, obs *observer,
) *Client {
	projRepo := projectionrepo.New(search, cfg.keyPrefix, cfg.language)
	townSvc := townuc.New(townrepo.New(search, cfg.keyPrefix), fallback)

	installSvc := installationuc.New(installRepo, projRepo, townSvc)
	if cfg.maxPageSize > 0 {
		installSvc = installSvc.WithMaxPageSize(cfg.maxPageSize)
	}

	importSvc := importeruc.New(installRepo).WithWorkers(cfg.workers)
	projSvc := projectionuc.New(installRepo, projRepo)
	if cfg.metricsReg != nil {
		m := metrics.NewImport(cfg.metricsReg)
		importSvc = importSvc.WithMetrics(m)
		projSvc = projSvc.WithMetrics(m)
		townSvc = townSvc.WithMetrics(m)
	}

	return &Client{
		installSvc: installSvc,
		townSvc:    townSvc,
		importSvc:  importSvc,
		projSvc:    projSvc,
		healthSvc:  healthuc.New(installRepo, search, projRepo),
		obs:        obs,
		newRunID:   uuid.NewString,
	}
}

// Close releases all resources.
func (c *Client) Close(ctx context.Context) {
	if c.search != nil {
		c.search.Close()
	}
	if c.records != nil {
		_ = c.records.Close(ctx)
	}
}

// Installations returns the facility query service.
func (c *Client) Installations() *InstallationService {
	return &InstallationService{svc: c.installSvc, obs: c.obs}
}

// Towns returns the town lookup service.
func (c *Client) Towns() *TownService {
	return &TownService{svc: c.townSvc, obs: c.obs}
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:   string(report.Status),
		Checks:   checks,
		LastSync: report.LastSync,
	}
}
