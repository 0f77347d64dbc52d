package color

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/specdex/internal/domain"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
)

// --- Mocks ---

type mockRepo struct {
	upserted   []domcolor.Color
	upsertErr  error
	listResult []domcolor.Color
	listErr    error
}

func (m *mockRepo) Upsert(_ context.Context, c domcolor.Color) error {
	m.upserted = append(m.upserted, c)
	return m.upsertErr
}

func (m *mockRepo) List(_ context.Context) ([]domcolor.Color, error) {
	return m.listResult, m.listErr
}

// --- Tests ---

func TestUpsert_Success(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	c, err := svc.Upsert(context.Background(), " Plum ", "#8E4585", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "Plum" || len(repo.upserted) != 1 {
		t.Errorf("unexpected color %q, stored %d", c.Name(), len(repo.upserted))
	}
}

func TestUpsert_Invalid(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	if _, err := svc.Upsert(context.Background(), "Plum", "purple", ""); !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Error("invalid color must not be stored")
	}
}

func TestList_Error(t *testing.T) {
	svc := New(&mockRepo{listErr: errors.New("db down")})

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
