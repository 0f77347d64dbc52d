package specification

import (
	"context"
	"testing"

	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, keys ...string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
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

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "specdex:"), ms
}

func testSpec(t *testing.T) domspec.Specification {
	t.Helper()
	return domspec.Reconstruct(domspec.Params{
		Name:       "Pies",
		ScopeType:  "Item Group",
		ScopeField: "item_group",
		ApplyOn:    "Baked Goods",
		Enabled:    true,
		Attributes: []attribute.Attribute{
			attribute.Reconstruct(attribute.Params{
				ID: "a1", Name: "Weight", AppliedOn: "Item", Field: "weight_per_unit",
				Kind: attribute.Numeric, Component: attribute.ComponentNumericRange,
			}, 0),
			attribute.Reconstruct(attribute.Params{
				ID: "a2", Name: "Flavor", AppliedOn: "Item",
				Kind: attribute.Categorical, Component: attribute.ComponentCheckboxes, MultiValued: true,
			}, 1),
		},
	}, 1700000000000, 3)
}
