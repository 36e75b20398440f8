package sportdex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoMongo(t *testing.T) {
	_, err := New(context.Background(), WithRedis("localhost:6379", ""))
	if err == nil {
		t.Fatal("expected error when no document store is configured")
	}
}

func TestNew_NoRedis(t *testing.T) {
	_, err := New(context.Background(), WithMongo("mongodb://localhost:27017", ""))
	if err == nil {
		t.Fatal("expected error when no search engine is configured")
	}
}

func TestNew_BlankFallbackTown(t *testing.T) {
	_, err := New(context.Background(),
		WithMongo("mongodb://localhost:27017", ""),
		WithRedis("localhost:6379", ""),
		WithFallbackTown("  ", 0, 0),
	)
	if err == nil {
		t.Fatal("expected error for blank fallback town")
	}
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, o := range []Option{
		WithMongo("mongodb://db", "catalog"),
		WithCollection("facilities"),
		WithRedis("redis:6379", "secret"),
		WithKeyPrefix("test:"),
		WithLanguage("english"),
		WithMaxPageSize(50),
		WithImportWorkers(8),
	} {
		o.apply(cfg)
	}

	if cfg.mongoURI != "mongodb://db" || cfg.database != "catalog" || cfg.collection != "facilities" {
		t.Errorf("mongo config = %q %q %q", cfg.mongoURI, cfg.database, cfg.collection)
	}
	if len(cfg.addrs) != 1 || cfg.addrs[0] != "redis:6379" || cfg.password != "secret" {
		t.Errorf("redis config = %v %q", cfg.addrs, cfg.password)
	}
	if cfg.keyPrefix != "test:" || cfg.language != "english" {
		t.Errorf("search config = %q %q", cfg.keyPrefix, cfg.language)
	}
	if cfg.maxPageSize != 50 || cfg.workers != 8 {
		t.Errorf("limits = %d %d", cfg.maxPageSize, cfg.workers)
	}
	if cfg.fallbackName != "CARQUEFOU" {
		t.Errorf("fallback = %q", cfg.fallbackName)
	}
}

func TestWithMongo_KeepsDefaultDatabase(t *testing.T) {
	cfg := defaultConfig()
	WithMongo("mongodb://db", "").apply(cfg)
	if cfg.database != "sportdex" {
		t.Errorf("database = %q, want sportdex", cfg.database)
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}

	obs.observe("town.suggest", time.Now(), nil)
	obs.observe("town.suggest", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("town.suggest", "ok")); got != 1 {
		t.Errorf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("town.suggest", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the existing counter to be reused")
	}
}

func TestObserver_NilIsNoop(t *testing.T) {
	var obs *observer
	obs.observe("installation.get", time.Now(), errors.New("ignored"))
}
