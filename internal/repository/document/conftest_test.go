package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/specdex/internal/db"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, keys ...string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchFn      func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	searchAllFn   func(ctx context.Context, q *db.Query) ([]db.SearchEntry, error)
	countFn       func(ctx context.Context, q *db.Query) (int, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchAll(ctx context.Context, q *db.Query) ([]db.SearchEntry, error) {
	if m.searchAllFn != nil {
		return m.searchAllFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) Count(ctx context.Context, q *db.Query) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "specdex:"), ms
}

func testDoc(t *testing.T, name string) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("Item", name, map[string]any{
		"item_name":       name,
		"item_group":      "Baked Goods",
		"weight_per_unit": 12,
	}, 1700000000000)
	if err != nil {
		t.Fatalf("domdoc.New: %v", err)
	}
	return doc
}

func entry(name string) db.SearchEntry {
	return db.SearchEntry{
		Key: "specdex:doc:Item:" + name,
		Fields: map[string]string{
			"$": `[{"doctype":"Item","name":"` + name + `","modified_at":1,"fields":{"item_name":"` + name + `"}}]`,
		},
	}
}
