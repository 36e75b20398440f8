// Command sportdex-import loads the CSV exports into the record store,
// syncs the search projection and loads the town reference index.
//
// Usage:
//
//	sportdex-import [flags] facilities|projection|towns|all
//
// The configuration file is selected by ENV, like the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sportdex/internal/config"
	dbMongo "github.com/kailas-cloud/sportdex/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/sportdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/sportdex/internal/logger"
	"github.com/kailas-cloud/sportdex/internal/metrics"
	installationrepo "github.com/kailas-cloud/sportdex/internal/repository/installation"
	projectionrepo "github.com/kailas-cloud/sportdex/internal/repository/projection"
	townrepo "github.com/kailas-cloud/sportdex/internal/repository/town"
	importeruc "github.com/kailas-cloud/sportdex/internal/usecase/importer"
	projectionuc "github.com/kailas-cloud/sportdex/internal/usecase/projection"
	townuc "github.com/kailas-cloud/sportdex/internal/usecase/town"
	"github.com/kailas-cloud/sportdex/internal/version"
)

// Commands.
const (
	cmdFacilities = "facilities"
	cmdProjection = "projection"
	cmdTowns      = "towns"
	cmdAll        = "all"
)

type flags struct {
	command     string
	workers     int
	metricsPort string
	version     bool
}

func parseFlags() (flags, error) {
	var f flags
	flag.IntVar(&f.workers, "workers", 0, "write workers per import pass (0 = from config)")
	flag.StringVar(&f.metricsPort, "metrics-port", "", "serve Prometheus metrics on this port while running")
	flag.BoolVar(&f.version, "version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"usage: %s [flags] facilities|projection|towns|all\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if f.version {
		return f, nil
	}
	if flag.NArg() != 1 {
		return f, errors.New("exactly one command is required")
	}
	f.command = flag.Arg(0)
	switch f.command {
	case cmdFacilities, cmdProjection, cmdTowns, cmdAll:
		return f, nil
	default:
		return f, fmt.Errorf("unknown command %q", f.command)
	}
}

func main() {
	f, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	if f.version {
		fmt.Println(version.String())
		return
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if f.workers > 0 {
		cfg.Import.Workers = f.workers
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:     env,
		Level:   cfg.Logging.Level,
		Service: "import",
		Version: version.Version,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runID := uuid.NewString()
	ctx = logpkg.ContextWithLogger(ctx, logger.With(
		zap.String("run_id", runID),
		zap.String("command", f.command),
	))

	logpkg.FromContext(ctx).Info("Starting sportdex import",
		zap.String("env", env),
		zap.Int("workers", cfg.Import.Workers),
	)

	err = run(ctx, cfg, f, runID)
	cancel()
	if err != nil {
		logpkg.FromContext(ctx).Error("Import failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logpkg.FromContext(ctx).Info("Import finished")
	_ = logger.Sync()
}

type app struct {
	cfg        config.Config
	runID      string
	importer   *importeruc.Service
	projection *projectionuc.Service
	towns      *townuc.Service
}

func run(ctx context.Context, cfg config.Config, f flags, runID string) error {
	reg := prometheus.NewRegistry()
	m := metrics.NewImport(reg)
	if f.metricsPort != "" {
		srv := serveMetrics(ctx, f.metricsPort, reg)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	records, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer func() { _ = records.Close(context.Background()) }()
	if err := records.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		return err
	}

	search, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:        cfg.Search.Addrs,
		Username:     cfg.Search.Username,
		Password:     cfg.Search.Password,
		WriteTimeout: time.Duration(cfg.Search.WriteTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("search store: %w", err)
	}
	defer search.Close()
	if err := search.WaitForReady(ctx, time.Duration(cfg.Search.ReadinessTimeout)*time.Second); err != nil {
		return err
	}

	installRepo := installationrepo.New(records.Collection())
	if err := installRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	projRepo := projectionrepo.New(search, cfg.Search.KeyPrefix, cfg.Search.Language)

	fallback, err := cfg.FallbackTown()
	if err != nil {
		return err
	}

	a := &app{
		cfg:   cfg,
		runID: runID,
		importer: importeruc.New(installRepo).
			WithWorkers(cfg.Import.Workers).
			WithMetrics(m),
		projection: projectionuc.New(installRepo, projRepo).
			WithBatchSize(cfg.Import.ProjectionBatch).
			WithMetrics(m),
		towns: townuc.New(townrepo.New(search, cfg.Search.KeyPrefix), fallback).
			WithMetrics(m),
	}

	switch f.command {
	case cmdFacilities:
		return a.facilities(ctx)
	case cmdProjection:
		return a.syncProjection(ctx)
	case cmdTowns:
		return a.loadTowns(ctx)
	default:
		return a.all(ctx)
	}
}

// all imports the facilities and then syncs the projection, while the
// towns load runs alongside.
func (a *app) all(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.facilities(gctx); err != nil {
			return err
		}
		return a.syncProjection(gctx)
	})
	g.Go(func() error {
		return a.loadTowns(gctx)
	})
	return g.Wait()
}

func (a *app) facilities(ctx context.Context) error {
	paths := []string{a.cfg.Import.InstallationsPath, a.cfg.Import.EquipmentsPath, a.cfg.Import.ActivitiesPath}
	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open export: %w", err)
		}
		files = append(files, f)
	}

	rep, err := a.importer.Run(ctx, importeruc.Sources{
		Installations: files[0],
		Equipments:    files[1],
		Activities:    files[2],
	})
	log := logpkg.FromContext(ctx)
	for _, p := range rep.Passes {
		log.Info("import pass",
			zap.String("pass", p.Pass),
			zap.Int("lines", p.Lines),
			zap.Int("written", p.Written),
			zap.Int("skipped", p.Skipped),
			zap.Int("unmatched", p.Unmatched),
			zap.Duration("duration", p.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("import facilities: %w", err)
	}
	return nil
}

func (a *app) syncProjection(ctx context.Context) error {
	rep, err := a.projection.Sync(ctx, a.runID)
	logpkg.FromContext(ctx).Info("projection sync",
		zap.Int("read", rep.Read),
		zap.Int("written", rep.Written),
		zap.Int("failed", rep.Failed),
		zap.Duration("duration", rep.Duration),
	)
	if err != nil {
		return fmt.Errorf("sync projection: %w", err)
	}
	return nil
}

func (a *app) loadTowns(ctx context.Context) error {
	f, err := os.Open(a.cfg.Towns.Path)
	if err != nil {
		return fmt.Errorf("open towns: %w", err)
	}
	defer func() { _ = f.Close() }()

	rep, err := a.towns.Load(ctx, f)
	logpkg.FromContext(ctx).Info("towns load",
		zap.Int("lines", rep.Lines),
		zap.Int("skipped", rep.Skipped),
		zap.Int("written", rep.Written),
		zap.Int("failed", rep.Failed),
		zap.Duration("duration", rep.Duration),
	)
	if err != nil {
		return fmt.Errorf("load towns: %w", err)
	}
	return nil
}

func serveMetrics(ctx context.Context, port string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log := logpkg.FromContext(ctx)
	go func() {
		log.Info("Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server error", zap.Error(err))
		}
	}()
	return srv
}
