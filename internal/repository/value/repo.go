package value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// pageSize is the number of rows per cursor read when draining a result set.
const pageSize = 1000

// store is the consumer interface for value rows (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchAll(ctx context.Context, q *db.Query) ([]db.SearchEntry, error)
}

// Repo stores value rows as JSON documents under {prefix}val:{id}, indexed
// by reference, specification, attribute, text and numeric companion.
type Repo struct {
	store  store
	prefix string
}

// New creates a value repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the value index when missing.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(r.indexName()).
		OnJSON().
		Prefix(r.prefix+"val:").
		TagAs("$.reference_type", "reference_type").
		TagAs("$.reference_name", "reference_name").
		TagAs("$.specification", "specification").
		TagAs("$.attribute", "attribute").
		TagAs("$.value", "value").
		NumericAs("$.num", "num").
		Build()
	if err != nil {
		return fmt.Errorf("build value index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create value index: %w", err)
	}
	return nil
}

// Get returns one row by id.
func (r *Repo) Get(ctx context.Context, id string) (domval.Value, error) {
	raw, err := r.store.JSONGet(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domval.Value{}, domain.ErrValueNotFound
		}
		return domval.Value{}, fmt.Errorf("json.get value %s: %w", id, err)
	}
	return parseValue(string(raw))
}

// Save upserts a row by id.
func (r *Repo) Save(ctx context.Context, v domval.Value) error {
	data, err := json.Marshal(toDoc(v))
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.key(v.ID()), "$", data); err != nil {
		return fmt.Errorf("json.set value %s: %w", v.ID(), err)
	}
	return nil
}

// Delete removes rows by id; unknown ids are ignored.
func (r *Repo) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("del values: %w", err)
	}
	return nil
}

// Find returns every row matching f, ordered by attribute then value.
func (r *Repo) Find(ctx context.Context, f domval.Filter) ([]domval.Value, error) {
	var clauses []db.Clause
	add := func(field, v string) {
		if v != "" && !strings.Contains(v, "|") {
			clauses = append(clauses, db.TagClause(field, v))
		}
	}
	add("reference_type", f.ReferenceType)
	add("reference_name", f.ReferenceName)
	add("specification", f.Specification)
	add("attribute", f.Attribute)
	add("value", f.Text)

	rows, err := r.drain(ctx, clauses)
	if err != nil {
		return nil, err
	}

	out := make([]domval.Value, 0, len(rows))
	for _, v := range rows {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attribute() != out[j].Attribute() {
			return out[i].Attribute() < out[j].Attribute()
		}
		return out[i].Text() < out[j].Text()
	})
	return out, nil
}

// References returns the sorted distinct reference names matching l.
func (r *Repo) References(ctx context.Context, l domval.Lookup) ([]string, error) {
	clauses := []db.Clause{
		db.TagClause("reference_type", l.ReferenceType),
		db.TagClause("attribute", l.Attribute),
	}
	switch {
	case l.IsRange():
		clauses = append(clauses, db.RangeClause("num", l.Min, l.Max))
	case len(l.In) == 0:
		return []string{}, nil
	case !anyContains(l.In, "|"):
		clauses = append(clauses, db.TagClause("value", l.In...))
	}

	rows, err := r.drain(ctx, clauses)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(rows))
	for _, v := range rows {
		if l.Matches(v) && !seen[v.ReferenceName()] {
			seen[v.ReferenceName()] = true
			names = append(names, v.ReferenceName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Rename moves every row of spec's attribute from to the name to and
// returns the number of rewritten rows.
func (r *Repo) Rename(ctx context.Context, spec, from, to string) (int, error) {
	rows, err := r.Find(ctx, domval.Filter{Specification: spec, Attribute: from})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	items := make([]db.JSONSetItem, len(rows))
	for i, v := range rows {
		data, err := json.Marshal(toDoc(v.WithAttribute(to)))
		if err != nil {
			return 0, fmt.Errorf("marshal value: %w", err)
		}
		items[i] = db.JSONSetItem{Key: r.key(v.ID()), Path: "$", Data: data}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("rename %s/%s: %w", spec, from, err)
	}
	return len(rows), nil
}

// drain reads every hit of the clauses through a server-side cursor.
func (r *Repo) drain(ctx context.Context, clauses []db.Clause) ([]domval.Value, error) {
	entries, err := r.store.SearchAll(ctx, &db.Query{
		Index:        r.indexName(),
		Clauses:      clauses,
		Limit:        pageSize,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("search values: %w", err)
	}
	out := make([]domval.Value, 0, len(entries))
	for _, e := range entries {
		v, err := parseValue(e.Fields["$"])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(v, sub) {
			return true
		}
	}
	return false
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sval:%s", r.prefix, id)
}

func (r *Repo) indexName() string {
	return r.prefix + "val:idx"
}
