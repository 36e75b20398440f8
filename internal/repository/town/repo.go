// Package town stores the town reference index: one hash per town with a
// tag, text and geo index over it, plus a prefix completion dictionary.
package town

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"

	"github.com/kailas-cloud/sportdex/internal/db"
	domtown "github.com/kailas-cloud/sportdex/internal/domain/town"
)

const (
	fieldName     = "townName"
	fieldNameTag  = "townNameTag"
	fieldLocation = "location"
)

// store is the consumer interface for the town index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) []error
	SugAddMulti(ctx context.Context, key string, items []db.Suggestion) []error
	SugGet(ctx context.Context, key, prefix string, limit int) ([]db.Suggestion, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo provides town persistence in the search engine.
type Repo struct {
	store  store
	prefix string
}

// New creates a town repository. keyPrefix namespaces all keys, e.g. "sportdex:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) indexName() string  { return r.prefix + "towns:idx" }
func (r *Repo) keyPrefix() string  { return r.prefix + "town:" }
func (r *Repo) suggestKey() string { return r.prefix + "towns:suggest" }

// townKey is stable for a given name and location so reloading the same
// file overwrites instead of duplicating. Homonyms at different places get
// distinct keys.
func (r *Repo) townKey(t domtown.Town) string {
	sum := xxhash.Sum64String(t.Name + "|" + formatPoint(t.Location))
	return r.keyPrefix() + strconv.FormatUint(sum, 16)
}

// EnsureIndex creates the town index if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check town index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName()).
		OnHash().
		Prefix(r.keyPrefix()).
		TagAs(fieldName, fieldNameTag).
		Text(fieldName).
		Geo(fieldLocation).
		Build()
	if err != nil {
		return fmt.Errorf("build town index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create town index: %w", err)
	}
	return nil
}

// Put writes towns and their completion entries, one round-trip each.
// The returned errors are aligned with towns; an entry fails when either
// write failed.
func (r *Repo) Put(ctx context.Context, towns []domtown.Town) []error {
	errs := make([]error, len(towns))
	if len(towns) == 0 {
		return errs
	}

	hashes := make([]db.HashSetItem, len(towns))
	sugs := make([]db.Suggestion, len(towns))
	for i, t := range towns {
		loc := formatPoint(t.Location)
		hashes[i] = db.HashSetItem{
			Key:    r.townKey(t),
			Fields: map[string]string{fieldName: t.Name, fieldLocation: loc},
		}
		sugs[i] = db.Suggestion{Text: t.Name, Score: 1, Payload: loc}
	}

	hashErrs := r.store.HSetMulti(ctx, hashes)
	sugErrs := r.store.SugAddMulti(ctx, r.suggestKey(), sugs)
	for i := range towns {
		errs[i] = errors.Join(at(hashErrs, i), at(sugErrs, i))
	}
	return errs
}

// Suggest returns up to limit towns whose name starts with prefix.
func (r *Repo) Suggest(ctx context.Context, prefix string, limit int) ([]domtown.Town, error) {
	sugs, err := r.store.SugGet(ctx, r.suggestKey(), prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest towns: %w", err)
	}

	out := make([]domtown.Town, 0, len(sugs))
	for _, s := range sugs {
		t := domtown.Town{Name: s.Text}
		if p, ok := parsePoint(s.Payload); ok {
			t.Location = p
		}
		out = append(out, t)
	}
	return out, nil
}

// FindByName returns the first town whose name equals name, ignoring case.
func (r *Repo) FindByName(ctx context.Context, name string) (domtown.Town, bool, error) {
	res, err := r.store.SearchList(ctx, r.indexName(), db.TagMatch(fieldNameTag, name),
		0, 1, []string{fieldName, fieldLocation})
	if err != nil {
		return domtown.Town{}, false, fmt.Errorf("find town %q: %w", name, err)
	}
	for _, e := range res.Entries {
		p, ok := parsePoint(e.Fields[fieldLocation])
		if !ok {
			continue
		}
		return domtown.Town{Name: e.Fields[fieldName], Location: p}, true, nil
	}
	return domtown.Town{}, false, nil
}

func at(errs []error, i int) error {
	if i < len(errs) {
		return errs[i]
	}
	return nil
}

// formatPoint renders "lon,lat", the GEO field format.
func formatPoint(p orb.Point) string {
	return strconv.FormatFloat(p.Lon(), 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', -1, 64)
}

func parsePoint(s string) (orb.Point, bool) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return orb.Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}
