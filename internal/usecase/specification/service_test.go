package specification

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/jobs"
	"github.com/kailas-cloud/specdex/internal/repository/memory"
)

// --- Helpers ---

type fixture struct {
	svc    *Service
	specs  *memory.Specs
	values *memory.Values
	docs   *memory.Documents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		specs:  memory.NewSpecs(),
		values: memory.NewValues(),
		docs:   memory.NewDocuments(),
	}
	reg := jobs.NewRegistry()
	runner := jobs.NewRunner(jobs.Config{Sync: true}, reg, zap.NewNop())
	f.svc = New(f.specs, f.values, f.docs, runner)
	for _, h := range f.svc.Handlers() {
		if err := reg.Register(h); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return f
}

func makeAttr(t *testing.T, name string, kind attribute.Kind) attribute.Attribute {
	t.Helper()
	a, err := attribute.New(attribute.Params{Name: name, AppliedOn: "Item", Kind: kind})
	if err != nil {
		t.Fatalf("attribute.New: %v", err)
	}
	return a
}

func piesParams(t *testing.T) domspec.Params {
	return domspec.Params{
		Name:      "Pies",
		ScopeType: "Item Group",
		Enabled:   true,
		Attributes: []attribute.Attribute{
			makeAttr(t, "Flavor", attribute.Categorical),
			makeAttr(t, "Weight", attribute.Numeric),
		},
	}
}

func seedValue(t *testing.T, f *fixture, id, ref, attr, text string) {
	t.Helper()
	v, err := domval.New(domval.Params{
		ID: id, ReferenceType: "Item", ReferenceName: ref,
		Specification: "Pies", Attribute: attr, Text: text,
	})
	if err != nil {
		t.Fatalf("domval.New: %v", err)
	}
	if err := f.values.Save(context.Background(), v); err != nil {
		t.Fatal(err)
	}
}

// --- Tests ---

func TestCreate_AssignsAttributeIDs(t *testing.T) {
	f := newFixture(t)

	spec, err := f.svc.Create(context.Background(), piesParams(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range spec.Attributes() {
		if a.ID() == "" {
			t.Errorf("attribute %s has no id", a.Name())
		}
	}
	if spec.Revision() != 1 {
		t.Errorf("expected revision 1, got %d", spec.Revision())
	}
}

func TestCreate_DuplicateAttribute(t *testing.T) {
	f := newFixture(t)
	p := piesParams(t)
	p.Attributes = append(p.Attributes, makeAttr(t, "Flavor", attribute.Categorical))

	_, err := f.svc.Create(context.Background(), p)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, piesParams(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, piesParams(t)); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	f := newFixture(t)
	p := piesParams(t)
	p.Name = "bad/name"

	if _, err := f.svc.Create(context.Background(), p); !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDefineAttribute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, piesParams(t)); err != nil {
		t.Fatal(err)
	}

	spec, err := f.svc.DefineAttribute(ctx, "Pies", makeAttr(t, "Baked On", attribute.Date))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := spec.Attribute("Baked On")
	if !ok || a.Index() != 2 || a.ID() == "" {
		t.Errorf("attribute not appended: ok=%v index=%d", ok, a.Index())
	}
	if spec.Revision() != 2 {
		t.Errorf("expected revision 2, got %d", spec.Revision())
	}

	_, err = f.svc.DefineAttribute(ctx, "Pies", makeAttr(t, "Weight", attribute.Numeric))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestUpdate_RevisionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, piesParams(t)); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Update(ctx, "Pies", piesParams(t), 7)
	var conflict *domain.RevisionConflictError
	if !errors.As(err, &conflict) || conflict.CurrentRevision != 1 {
		t.Fatalf("expected revision conflict at 1, got %v", err)
	}
}

func TestUpdate_RenamePropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec, err := f.svc.Create(ctx, piesParams(t))
	if err != nil {
		t.Fatal(err)
	}
	seedValue(t, f, "v1", "Apple Pie", "Flavor", "Apple")
	seedValue(t, f, "v2", "Double Plum Pie", "Flavor", "Plum")

	p := spec.Params()
	flavor, _ := spec.Attribute("Flavor")
	p.Attributes[flavor.Index()] = flavor.WithName("Taste")

	next, err := f.svc.Update(ctx, "Pies", p, spec.Revision())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Revision() != 2 {
		t.Errorf("expected revision 2, got %d", next.Revision())
	}

	old, _ := f.values.Find(ctx, domval.Filter{Specification: "Pies", Attribute: "Flavor"})
	if len(old) != 0 {
		t.Errorf("expected zero rows under old name, got %d", len(old))
	}
	renamed, _ := f.values.Find(ctx, domval.Filter{Specification: "Pies", Attribute: "Taste"})
	if len(renamed) != 2 {
		t.Errorf("expected 2 rows under new name, got %d", len(renamed))
	}
}

func TestUpdate_RemovedAttributePurged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec, err := f.svc.Create(ctx, piesParams(t))
	if err != nil {
		t.Fatal(err)
	}
	seedValue(t, f, "v1", "Apple Pie", "Flavor", "Apple")
	seedValue(t, f, "v2", "Apple Pie", "Weight", "8")

	p := spec.Params()
	weight, _ := spec.Attribute("Weight")
	p.Attributes = []attribute.Attribute{weight}

	if _, err := f.svc.Update(ctx, "Pies", p, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.values.Len(); n != 1 {
		t.Errorf("expected 1 row left, got %d", n)
	}
}

func TestRenameAttribute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, piesParams(t)); err != nil {
		t.Fatal(err)
	}
	seedValue(t, f, "v1", "Apple Pie", "Weight", "8")

	spec, err := f.svc.RenameAttribute(ctx, "Pies", "Weight", "Mass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := spec.Attribute("Mass"); !ok {
		t.Error("definition not renamed")
	}
	v, _ := f.values.Get(ctx, "v1")
	if v.Attribute() != "Mass" {
		t.Errorf("value attribute = %q, want Mass", v.Attribute())
	}

	if _, err := f.svc.RenameAttribute(ctx, "Pies", "Nope", "X"); !errors.Is(err, domain.ErrAttributeNotFound) {
		t.Errorf("expected ErrAttributeNotFound, got %v", err)
	}
	if _, err := f.svc.RenameAttribute(ctx, "Pies", "Mass", "Flavor"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if _, err := f.svc.RenameAttribute(ctx, "Pies", "Mass", " "); !errors.Is(err, domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDelete_PurgesValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, piesParams(t)); err != nil {
		t.Fatal(err)
	}
	seedValue(t, f, "v1", "Apple Pie", "Flavor", "Apple")

	if err := f.svc.Delete(ctx, "Pies"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.values.Len() != 0 {
		t.Errorf("expected values purged, %d left", f.values.Len())
	}
	if _, err := f.svc.Get(ctx, "Pies"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPurge_StaleJobKeepsRedefinedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedValue(t, f, "v1", "Apple Pie", "Flavor", "Apple")
	seedValue(t, f, "v2", "Apple Pie", "Weight", "8")

	// the specification was deleted and recreated with Flavor only before
	// the purge job ran
	p := piesParams(t)
	p.Attributes = p.Attributes[:1]
	if _, err := f.svc.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	job, err := purgeJob("Pies", "").build()
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.runPurge(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.values.Get(ctx, "v1"); err != nil {
		t.Errorf("Flavor row of the recreated specification was purged: %v", err)
	}
	if _, err := f.values.Get(ctx, "v2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected Weight row purged, got %v", err)
	}

	// the attribute was removed and added back before its purge ran
	job, err = purgeJob("Pies", "Flavor").build()
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.runPurge(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.values.Len() != 1 {
		t.Errorf("expected the re-added attribute row kept, %d rows", f.values.Len())
	}
}

func TestApplyOnFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range []domspec.Params{
		{Name: "Pies", ScopeType: "Item Group", ScopeField: "item_group", ApplyOn: "Pies", Enabled: true,
			Attributes: []attribute.Attribute{makeAttr(t, "Flavor", attribute.Categorical)}},
		{Name: "Cakes", ScopeType: "Item Group", ScopeField: "item_group", ApplyOn: "Cakes", Enabled: true,
			Attributes: []attribute.Attribute{makeAttr(t, "Layers", attribute.Numeric)}},
		{Name: "Pies Again", ScopeType: "Item Group", ScopeField: "item_group", ApplyOn: "Pies", Enabled: true,
			Attributes: []attribute.Attribute{makeAttr(t, "Crust", attribute.Categorical)}},
		{Name: "Disabled", ScopeType: "Brand", Enabled: false,
			Attributes: []attribute.Attribute{makeAttr(t, "Origin", attribute.Categorical)}},
	} {
		if _, err := f.svc.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.svc.ApplyOnFields(ctx, "Item")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ApplyOn{{"Item Group", "Cakes"}, {"Item Group", "Pies"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	none, _ := f.svc.ApplyOnFields(ctx, "Customer")
	if len(none) != 0 {
		t.Errorf("expected no scopes for Customer, got %v", none)
	}
}

func TestDataFieldnames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for name, fields := range map[string]map[string]any{
		"Apple Pie":       {"item_name": "Apple Pie", "weight_per_unit": 8.0},
		"Double Plum Pie": {"item_name": "Double Plum Pie", "item_group": "Pies"},
	} {
		doc, err := domdoc.New("Item", name, fields, 1)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.docs.Upsert(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.svc.DataFieldnames(ctx, "Item")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"item_group", "item_name", "weight_per_unit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
