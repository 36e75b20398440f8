package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sportdex/internal/config"
	dbMongo "github.com/kailas-cloud/sportdex/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/sportdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/sportdex/internal/logger"
	"github.com/kailas-cloud/sportdex/internal/metrics"
	installationrepo "github.com/kailas-cloud/sportdex/internal/repository/installation"
	projectionrepo "github.com/kailas-cloud/sportdex/internal/repository/projection"
	townrepo "github.com/kailas-cloud/sportdex/internal/repository/town"
	"github.com/kailas-cloud/sportdex/internal/transport/api"
	chiTransport "github.com/kailas-cloud/sportdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/sportdex/internal/usecase/health"
	installationuc "github.com/kailas-cloud/sportdex/internal/usecase/installation"
	townuc "github.com/kailas-cloud/sportdex/internal/usecase/town"
	"github.com/kailas-cloud/sportdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:     env,
		Level:   cfg.Logging.Level,
		Service: "api",
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sportdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Strings("search_addrs", cfg.Search.Addrs),
	)

	ctx := context.Background()

	records, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer func() { _ = records.Close(context.Background()) }()

	if err := records.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}

	search, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:        cfg.Search.Addrs,
		Username:     cfg.Search.Username,
		Password:     cfg.Search.Password,
		WriteTimeout: time.Duration(cfg.Search.WriteTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search store", zap.Error(err))
	}
	defer search.Close()

	// The API keeps serving records when the search engine is down.
	if err := search.WaitForReady(ctx, time.Duration(cfg.Search.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Search engine not ready, text search and towns degraded", zap.Error(err))
	}
	logger.Info("Connected to stores")

	installRepo := installationrepo.New(records.Collection())
	if err := installRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure record indexes", zap.Error(err))
	}
	projRepo := projectionrepo.New(search, cfg.Search.KeyPrefix, cfg.Search.Language)
	townRepo := townrepo.New(search, cfg.Search.KeyPrefix)

	fallback, err := cfg.FallbackTown()
	if err != nil {
		logger.Fatal("Invalid fallback town", zap.Error(err))
	}

	townSvc := townuc.New(townRepo, fallback).WithSuggestMax(cfg.Towns.SuggestMax)
	installSvc := installationuc.New(installRepo, projRepo, townSvc).
		WithMaxPageSize(cfg.Query.MaxPageSize).
		WithSearchLimit(cfg.Search.MaxResults)
	healthSvc := healthuc.New(installRepo, search, projRepo)

	server := chiTransport.NewServer(installSvc, townSvc, healthSvc, logger).
		WithDefaultPageSize(cfg.Query.DefaultPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{
				Code:    api.ErrorResponseCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(api.ErrorResponse{
						Code:    api.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
