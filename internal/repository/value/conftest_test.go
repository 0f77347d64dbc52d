package value

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/kailas-cloud/specdex/internal/db"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// memStore is an in-memory JSON store that evaluates tag and range clauses
// against top-level document fields named like the index aliases.
type memStore struct {
	docs       map[string][]byte
	searches   int
	indexDefs  []*db.IndexDefinition
	createErr  error
	searchErr  error
	lastClause []db.Clause
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	m.docs[key] = data
	return nil
}

func (m *memStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	for _, it := range items {
		_ = m.JSONSet(ctx, it.Key, it.Path, it.Data)
	}
	return nil
}

func (m *memStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	data, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.docs, k)
	}
	return nil
}

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.indexDefs = append(m.indexDefs, def)
	return nil
}

// SearchAll counts one read per batch of q.Limit rows, like a cursor.
func (m *memStore) SearchAll(_ context.Context, q *db.Query) ([]db.SearchEntry, error) {
	m.searches++
	m.lastClause = q.Clauses
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var hits []db.SearchEntry
	for _, k := range keys {
		var doc map[string]any
		if err := json.Unmarshal(m.docs[k], &doc); err != nil {
			return nil, err
		}
		if matchesAll(doc, q.Clauses) {
			hits = append(hits, db.SearchEntry{Key: k, Fields: map[string]string{"$": string(m.docs[k])}})
		}
	}
	if q.Limit > 0 && len(hits) > q.Limit {
		m.searches += (len(hits) - 1) / q.Limit
	}
	return hits, nil
}

func matchesAll(doc map[string]any, clauses []db.Clause) bool {
	for _, c := range clauses {
		if !matches(doc, c) {
			return false
		}
	}
	return true
}

func matches(doc map[string]any, c db.Clause) bool {
	if c.IsTag() {
		s, _ := doc[c.Field].(string)
		for _, part := range strings.Split(s, "|") {
			for _, t := range c.Tags {
				if t == part {
					return true
				}
			}
		}
		return false
	}
	f, ok := doc[c.Field].(float64)
	if !ok {
		return false
	}
	return (c.Min == nil || f >= *c.Min) && (c.Max == nil || f <= *c.Max)
}

func newTestRepo(t *testing.T) (*Repo, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(ms, "specdex:"), ms
}

func seed(t *testing.T, repo *Repo, rows ...domval.Params) {
	t.Helper()
	for _, p := range rows {
		v, err := domval.New(p)
		if err != nil {
			t.Fatalf("domval.New: %v", err)
		}
		if err := repo.Save(context.Background(), v); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
}

func num(f float64) *float64 { return &f }
