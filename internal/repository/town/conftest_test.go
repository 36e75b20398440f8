package town

import (
	"context"
	"testing"

	"github.com/kailas-cloud/sportdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) []error
	sugAddMultiFn func(ctx context.Context, key string, items []db.Suggestion) []error
	sugGetFn      func(ctx context.Context, key, prefix string, limit int) ([]db.Suggestion, error)
	searchListFn  func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) []error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return make([]error, len(items))
}

func (m *mockStore) SugAddMulti(ctx context.Context, key string, items []db.Suggestion) []error {
	if m.sugAddMultiFn != nil {
		return m.sugAddMultiFn(ctx, key, items)
	}
	return make([]error, len(items))
}

func (m *mockStore) SugGet(ctx context.Context, key, prefix string, limit int) ([]db.Suggestion, error) {
	if m.sugGetFn != nil {
		return m.sugGetFn(ctx, key, prefix, limit)
	}
	return nil, nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "sportdex:"), ms
}
