package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/sportdex/internal/db"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
)

// Text fields of the projection index and their relevance weights.
const (
	fieldName    = "name"
	fieldCommune = "commune"

	weightName    = 3
	weightCommune = 10
)

// store is the consumer interface for the search projection (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SyncState records the last completed projection sync.
type SyncState struct {
	RunID    string    `json:"runId"`
	SyncedAt time.Time `json:"syncedAt"`
	Written  int       `json:"written"`
}

// Repo keeps a JSON copy of facility records in the search engine for ranked text search.
type Repo struct {
	store    store
	prefix   string
	language string
}

// New creates a projection repository. keyPrefix namespaces all keys, e.g. "sportdex:".
func New(s store, keyPrefix, language string) *Repo {
	return &Repo{store: s, prefix: keyPrefix, language: language}
}

func (r *Repo) indexName() string { return r.prefix + "installations:idx" }
func (r *Repo) keyPrefix() string { return r.prefix + "installation:" }
func (r *Repo) stateKey() string  { return r.prefix + "projection:state" }

func (r *Repo) docKey(id string) string { return r.keyPrefix() + id }

// EnsureIndex creates the text index over projected records if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check projection index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName()).
		OnJSON().
		Prefix(r.keyPrefix()).
		Language(r.language).
		WeightedText("$.name", fieldName, weightName).
		WeightedText("$.address.commune", fieldCommune, weightCommune).
		Build()
	if err != nil {
		return fmt.Errorf("build projection index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create projection index: %w", err)
	}
	return nil
}

// Put writes the given records in one round-trip. The returned errors are
// aligned with fs; a nil entry means the record was projected.
func (r *Repo) Put(ctx context.Context, fs []facility.Facility) []error {
	errs := make([]error, len(fs))
	items := make([]db.JSONSetItem, 0, len(fs))
	idx := make([]int, 0, len(fs))

	for i := range fs {
		data, err := json.Marshal(&fs[i])
		if err != nil {
			errs[i] = fmt.Errorf("marshal facility %s: %w", fs[i].ID, err)
			continue
		}
		items = append(items, db.JSONSetItem{Key: r.docKey(fs[i].ID), Path: "$", Data: data})
		idx = append(idx, i)
	}

	for j, err := range r.store.JSONSetMulti(ctx, items) {
		if err != nil {
			errs[idx[j]] = err
		}
	}
	return errs
}

// Search returns records matching query, highest relevance first.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]facility.Scored, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []facility.Scored{}, nil
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.indexName(),
		Query:     query,
		Fields:    []string{fieldName, fieldCommune},
		TopK:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	out := make([]facility.Scored, 0, len(res.Entries))
	for _, e := range res.Entries {
		raw, ok := e.Fields["$"]
		if !ok {
			continue
		}
		var f facility.Facility
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		out = append(out, facility.Scored{Facility: f, Score: e.Score})
	}
	return out, nil
}

// SaveState records a completed sync.
func (r *Repo) SaveState(ctx context.Context, st SyncState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal sync state: %w", err)
	}
	if err := r.store.Set(ctx, r.stateKey(), data); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

// State returns the last completed sync. ok is false when no sync ever completed.
func (r *Repo) State(ctx context.Context) (st SyncState, ok bool, err error) {
	data, err := r.store.Get(ctx, r.stateKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return SyncState{}, false, nil
		}
		return SyncState{}, false, fmt.Errorf("load sync state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return SyncState{}, false, fmt.Errorf("decode sync state: %w", err)
	}
	return st, true, nil
}
