package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/usecase/materialize"
)

// --- Mocks ---

type mockDocRepo struct {
	upserted      domdoc.Document
	upsertCreated bool
	upsertErr     error
	getResult     domdoc.Document
	getErr        error
	listDocs      []domdoc.Document
	listCursor    string
	listLimit     int
	listErr       error
	deleteErr     error
	countResult   int
	countErr      error
}

func (m *mockDocRepo) Upsert(_ context.Context, doc domdoc.Document) (bool, error) {
	m.upserted = doc
	return m.upsertCreated, m.upsertErr
}
func (m *mockDocRepo) Get(_ context.Context, _, _ string) (domdoc.Document, error) {
	return m.getResult, m.getErr
}
func (m *mockDocRepo) List(_ context.Context, _, _ string, limit int) ([]domdoc.Document, string, error) {
	m.listLimit = limit
	return m.listDocs, m.listCursor, m.listErr
}
func (m *mockDocRepo) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockDocRepo) Count(_ context.Context, _ string) (int, error) {
	return m.countResult, m.countErr
}

type mockMaterializer struct {
	validateErr    error
	materializeErr error
	removeErr      error
	materialized   []string
	removed        []string
	overrides      map[string]materialize.Override
}

func (m *mockMaterializer) ValidateOverrides(_ context.Context, _ domdoc.Document, _ map[string]materialize.Override) error {
	return m.validateErr
}

func (m *mockMaterializer) MaterializeDocument(
	_ context.Context, doc domdoc.Document, overrides map[string]materialize.Override,
) error {
	m.materialized = append(m.materialized, doc.Name())
	m.overrides = overrides
	return m.materializeErr
}

func (m *mockMaterializer) RemoveDocument(_ context.Context, _, name string) error {
	m.removed = append(m.removed, name)
	return m.removeErr
}

// --- Tests ---

func TestUpsert_MaterializesOnSave(t *testing.T) {
	repo := &mockDocRepo{upsertCreated: true}
	mat := &mockMaterializer{}
	svc := New(repo, mat)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	overrides := map[string]materialize.Override{"Crust": materialize.Scalar("Lattice")}
	doc, created, err := svc.Upsert(context.Background(), "Item", "Apple Pie",
		map[string]any{"item_group": "Pies", "weight_per_unit": 8}, overrides)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if doc.ModifiedAt() != 1700000000000 || repo.upserted.Name() != "Apple Pie" {
		t.Errorf("unexpected stored document: %+v", repo.upserted)
	}
	if len(mat.materialized) != 1 || mat.overrides["Crust"].Values[0] != "Lattice" {
		t.Errorf("materializer not called with overrides: %v", mat.materialized)
	}
}

func TestUpsert_InvalidDocument(t *testing.T) {
	repo := &mockDocRepo{}
	svc := New(repo, &mockMaterializer{})

	_, _, err := svc.Upsert(context.Background(), "Item", " ", nil, nil)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	_, _, err = svc.Upsert(context.Background(), "Item", "x", map[string]any{"nested": map[string]any{}}, nil)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for nested value, got %v", err)
	}
}

func TestUpsert_BadOverridesStoreNothing(t *testing.T) {
	repo := &mockDocRepo{}
	mat := &mockMaterializer{validateErr: domain.ErrConfiguration}
	svc := New(repo, mat)

	_, _, err := svc.Upsert(context.Background(), "Item", "Apple Pie", nil, nil)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if repo.upserted.Name() != "" || len(mat.materialized) != 0 {
		t.Error("nothing should be stored when overrides are invalid")
	}
}

func TestUpsert_RepoError(t *testing.T) {
	mat := &mockMaterializer{}
	svc := New(&mockDocRepo{upsertErr: errors.New("db down")}, mat)

	if _, _, err := svc.Upsert(context.Background(), "Item", "Apple Pie", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if len(mat.materialized) != 0 {
		t.Error("materializer must not run when the document was not stored")
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := &mockDocRepo{listCursor: "20"}
	svc := New(repo, &mockMaterializer{}).WithPagination(10, 50)

	if _, _, err := svc.List(context.Background(), "Item", "", 0); err != nil {
		t.Fatal(err)
	}
	if repo.listLimit != 10 {
		t.Errorf("default limit = %d, want 10", repo.listLimit)
	}
	_, next, _ := svc.List(context.Background(), "Item", "", 500)
	if repo.listLimit != 50 || next != "20" {
		t.Errorf("limit = %d next = %q", repo.listLimit, next)
	}
}

func TestDelete_RemovesValues(t *testing.T) {
	mat := &mockMaterializer{}
	svc := New(&mockDocRepo{}, mat)

	if err := svc.Delete(context.Background(), "Item", "Apple Pie"); err != nil {
		t.Fatal(err)
	}
	if len(mat.removed) != 1 || mat.removed[0] != "Apple Pie" {
		t.Errorf("values not removed: %v", mat.removed)
	}
}

func TestDelete_NotFound(t *testing.T) {
	mat := &mockMaterializer{}
	svc := New(&mockDocRepo{deleteErr: domain.ErrDocumentNotFound}, mat)

	if err := svc.Delete(context.Background(), "Item", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(mat.removed) != 0 {
		t.Error("values must not be removed when the document is missing")
	}
}

func TestGetAndCount(t *testing.T) {
	doc, _ := domdoc.New("Item", "Apple Pie", nil, 1)
	svc := New(&mockDocRepo{getResult: doc, countResult: 3}, &mockMaterializer{})

	got, err := svc.Get(context.Background(), "Item", "Apple Pie")
	if err != nil || got.Name() != "Apple Pie" {
		t.Fatalf("Get = %v %v", got.Name(), err)
	}
	if n, err := svc.Count(context.Background(), "Item"); err != nil || n != 3 {
		t.Fatalf("Count = %d %v", n, err)
	}
}

func TestUpsertBatch_PerItemResults(t *testing.T) {
	mat := &mockMaterializer{}
	svc := New(&mockDocRepo{upsertCreated: true}, mat)

	results := svc.UpsertBatch(context.Background(), "Item", []Item{
		{Name: "Apple Pie", Fields: map[string]any{"weight_per_unit": 700}},
		{Name: "", Fields: nil},
		{Name: "Cherry Pie", Fields: map[string]any{"weight_per_unit": 450}},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status() != dombatch.StatusCreated || results[2].Status() != dombatch.StatusCreated {
		t.Errorf("unexpected statuses: %q %q", results[0].Status(), results[2].Status())
	}
	if !errors.Is(results[1].Err(), domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema for the nameless item, got %v", results[1].Err())
	}
	if len(mat.materialized) != 2 {
		t.Errorf("expected 2 materialized documents, got %v", mat.materialized)
	}
}

func TestUpsertBatch_TooLarge(t *testing.T) {
	mat := &mockMaterializer{}
	svc := New(&mockDocRepo{}, mat).WithMaxBatchSize(1)

	results := svc.UpsertBatch(context.Background(), "Item", []Item{{Name: "a"}, {Name: "b"}})
	for _, r := range results {
		if !errors.Is(r.Err(), domain.ErrInvalidSchema) {
			t.Errorf("expected ErrInvalidSchema, got %v", r.Err())
		}
	}
	if len(mat.materialized) != 0 {
		t.Error("nothing must be saved for an oversized batch")
	}
}

func TestPatch_MergesAndRematerializes(t *testing.T) {
	current := domdoc.Reconstruct("Item", "Apple Pie", map[string]any{
		"item_group": "Pies", "weight_per_unit": 700.0, "variant_of": "Pie",
	}, 1)
	repo := &mockDocRepo{getResult: current}
	mat := &mockMaterializer{}
	svc := New(repo, mat)
	svc.now = func() time.Time { return time.UnixMilli(5) }

	doc, err := svc.Patch(context.Background(), "Item", "Apple Pie",
		map[string]any{"weight_per_unit": 650, "variant_of": nil},
		map[string]materialize.Override{"Flavor": materialize.List("Tart")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Field("weight_per_unit") != "650" || doc.Has("variant_of") || doc.Field("item_group") != "Pies" {
		t.Errorf("unexpected fields: %v", doc.Fields())
	}
	if repo.upserted.ModifiedAt() != 5 {
		t.Errorf("modifiedAt = %d", repo.upserted.ModifiedAt())
	}
	if len(mat.materialized) != 1 || mat.overrides["Flavor"].Values[0] != "Tart" {
		t.Errorf("not rematerialized: %v %v", mat.materialized, mat.overrides)
	}
}

func TestPatch_Errors(t *testing.T) {
	svc := New(&mockDocRepo{}, &mockMaterializer{})
	_, err := svc.Patch(context.Background(), "Item", "Apple Pie", nil, nil)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for an empty patch, got %v", err)
	}

	svc = New(&mockDocRepo{getErr: domain.ErrDocumentNotFound}, &mockMaterializer{})
	_, err = svc.Patch(context.Background(), "Item", "Ghost", map[string]any{"a": "b"}, nil)
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
