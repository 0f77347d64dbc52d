package specdex

import (
	"context"
	"errors"
	"testing"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
	specuc "github.com/kailas-cloud/specdex/internal/usecase/specification"
)

// --- Helpers ---

func testSpec(rev int) domspec.Specification {
	weight := attribute.Reconstruct(attribute.Params{
		ID: "a1", Name: "Weight", AppliedOn: "Item", Field: "weight_per_unit", Kind: attribute.Numeric,
	}, 0)
	return domspec.Reconstruct(domspec.Params{
		Name:       "Pies",
		ScopeType:  "Item Group",
		ScopeField: "item_group",
		ApplyOn:    "Pies",
		Enabled:    true,
		Attributes: []attribute.Attribute{weight},
	}, 1700000000000, rev)
}

func testClient() *Client {
	return &Client{
		specSvc:    &mockSpecUC{},
		valueSvc:   &mockValueUC{},
		docSvc:     &mockDocumentUC{},
		facetSvc:   &mockFacetUC{},
		listingSvc: &mockListingUC{},
		colorSvc:   &mockColorUC{},
		healthSvc:  &mockHealthUC{},
	}
}

// --- Specifications ---

func TestSpecifications_Create(t *testing.T) {
	c := testClient()
	var got domspec.Params
	c.specSvc.(*mockSpecUC).createFn = func(_ context.Context, p domspec.Params) (domspec.Specification, error) {
		got = p
		return testSpec(1), nil
	}

	spec, err := c.Specifications().Create(context.Background(), Specification{
		Name:       "Pies",
		ScopeType:  "Item Group",
		ScopeField: "item_group",
		ApplyOn:    "Pies",
		Attributes: []Attribute{{Name: "Weight", AppliedOn: "Item", Field: "weight_per_unit", Kind: KindNumeric}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Enabled {
		t.Error("expected a specification without Disabled to be enabled")
	}
	if len(got.Attributes) != 1 || got.Attributes[0].Kind() != attribute.Numeric {
		t.Errorf("unexpected attributes: %+v", got.Attributes)
	}
	if spec.Title != "Item Group - Pies" {
		t.Errorf("unexpected title %q", spec.Title)
	}
	if spec.Revision != 1 || spec.Attributes[0].Field != "weight_per_unit" {
		t.Errorf("unexpected specification: %+v", spec)
	}
}

func TestSpecifications_CreateInvalidAttribute(t *testing.T) {
	c := testClient()
	_, err := c.Specifications().Create(context.Background(), Specification{
		Name:       "Pies",
		ScopeType:  "Item Group",
		Attributes: []Attribute{{Name: "Weight"}},
	})
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSpecifications_EnsureExisting(t *testing.T) {
	c := testClient()
	m := c.specSvc.(*mockSpecUC)
	m.createFn = func(context.Context, domspec.Params) (domspec.Specification, error) {
		return domspec.Specification{}, ErrAlreadyExists
	}
	m.getFn = func(_ context.Context, name string) (domspec.Specification, error) {
		if name != "Pies" {
			t.Errorf("expected Pies, got %q", name)
		}
		return testSpec(4), nil
	}

	spec, err := c.Specifications().Ensure(context.Background(), Specification{Name: "Pies", ScopeType: "Item Group"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Revision != 4 {
		t.Errorf("expected existing revision 4, got %d", spec.Revision)
	}
}

func TestSpecifications_EnsurePropagatesOtherErrors(t *testing.T) {
	c := testClient()
	c.specSvc.(*mockSpecUC).createFn = func(context.Context, domspec.Params) (domspec.Specification, error) {
		return domspec.Specification{}, ErrConfiguration
	}
	_, err := c.Specifications().Ensure(context.Background(), Specification{Name: "Pies", ScopeType: "Item Group"})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSpecifications_UpdatePassesRevision(t *testing.T) {
	c := testClient()
	c.specSvc.(*mockSpecUC).updateFn = func(
		_ context.Context, _ string, _ domspec.Params, rev int,
	) (domspec.Specification, error) {
		if rev != 3 {
			t.Errorf("expected expected revision 3, got %d", rev)
		}
		return domspec.Specification{}, ErrRevisionConflict
	}
	_, err := c.Specifications().Update(context.Background(), Specification{
		Name: "Pies", ScopeType: "Item Group", Revision: 3,
	})
	if !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
}

func TestSpecifications_CreateValuesEmpty(t *testing.T) {
	c := testClient()
	_, err := c.Specifications().CreateValues(context.Background(), "Pies", nil)
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSpecifications_CreateValues(t *testing.T) {
	c := testClient()
	c.valueSvc.(*mockValueUC).createFn = func(_ context.Context, spec string, rows []materializeuc.Row) (int, error) {
		if spec != "Pies" || len(rows) != 1 || rows[0].Field != "weight_per_unit" {
			t.Errorf("unexpected call: %q %+v", spec, rows)
		}
		return len(rows), nil
	}
	n, err := c.Specifications().CreateValues(context.Background(), "Pies", []ValueRow{
		{ReferenceType: "Item", Attribute: "Weight", Field: "weight_per_unit"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 queued, got %d", n)
	}
}

// --- Documents ---

func TestDocuments_UpsertOverrides(t *testing.T) {
	c := testClient()
	c.docSvc.(*mockDocumentUC).upsertFn = func(
		_ context.Context, doctype, name string, _ map[string]any, ov map[string]materializeuc.Override,
	) (domdoc.Document, bool, error) {
		if doctype != "Item" || name != "Double Plum Pie" {
			t.Errorf("unexpected target %q/%q", doctype, name)
		}
		if len(ov) != 2 {
			t.Errorf("expected 2 overrides, got %d", len(ov))
		}
		return domdoc.Reconstruct(doctype, name, nil, 0), true, nil
	}

	created, err := c.Documents("Item").Upsert(context.Background(), "Double Plum Pie",
		map[string]any{"item_group": "Pies"},
		map[string]AttributeValue{"Flavor": Values("Plum", "Sweet"), "Shape": Value("Round")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created")
	}
}

func TestDocuments_UpsertBatch(t *testing.T) {
	c := testClient()
	c.docSvc.(*mockDocumentUC).batchFn = func(
		_ context.Context, _ string, items []documentuc.Item,
	) []dombatch.Result {
		if len(items) != 2 || items[1].Overrides["Flavor"].Values[0] != "Cherry" {
			t.Errorf("unexpected items: %+v", items)
		}
		return []dombatch.Result{
			dombatch.NewSaved(items[0].Name, true),
			dombatch.NewError(items[1].Name, ErrConfiguration),
		}
	}
	results, err := c.Documents("Item").UpsertBatch(context.Background(), []BatchItem{
		{Name: "Apple Pie", Fields: map[string]any{"item_group": "Pies"}},
		{Name: "Cherry Pie", Attributes: map[string]AttributeValue{"Flavor": Value("Cherry")}},
	})
	if err == nil {
		t.Fatal("expected an error when an item fails")
	}
	if results[0].Status != "created" || !errors.Is(results[1].Err, ErrConfiguration) {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestDocuments_Patch(t *testing.T) {
	c := testClient()
	c.docSvc.(*mockDocumentUC).patchFn = func(
		_ context.Context, doctype, name string, fields map[string]any, _ map[string]materializeuc.Override,
	) (domdoc.Document, error) {
		if v, ok := fields["variant_of"]; !ok || v != nil {
			t.Errorf("expected a removal of variant_of, got %v", fields)
		}
		return domdoc.Reconstruct(doctype, name, map[string]any{"item_group": "Pies"}, 0), nil
	}
	doc, err := c.Documents("Item").Patch(context.Background(), "Apple Pie", map[string]any{"variant_of": nil}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "Apple Pie" || doc.Fields["item_group"] != "Pies" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestDocuments_GetNotFound(t *testing.T) {
	c := testClient()
	c.docSvc.(*mockDocumentUC).getFn = func(context.Context, string, string) (domdoc.Document, error) {
		return domdoc.Document{}, ErrDocumentNotFound
	}
	_, err := c.Documents("Item").Get(context.Background(), "Ghost")
	if !errors.Is(err, ErrDocumentNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocuments_List(t *testing.T) {
	c := testClient()
	c.docSvc.(*mockDocumentUC).listFn = func(
		_ context.Context, _, cursor string, limit int,
	) ([]domdoc.Document, string, error) {
		if cursor != "" || limit != 2 {
			t.Errorf("unexpected page args %q %d", cursor, limit)
		}
		return []domdoc.Document{
			domdoc.Reconstruct("Item", "Apple Pie", map[string]any{"weight_per_unit": 700.0}, 1700000000000),
		}, "Apple Pie", nil
	}
	page, err := c.Documents("Item").List(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Documents) != 1 || page.NextCursor != "Apple Pie" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Documents[0].ModifiedAt.UnixMilli() != 1700000000000 {
		t.Errorf("unexpected modified time %v", page.Documents[0].ModifiedAt)
	}
}

func TestDocuments_Values(t *testing.T) {
	c := testClient()
	c.valueSvc.(*mockValueUC).getFn = func(
		_ context.Context, refType, refName, spec string,
	) ([]materializeuc.View, error) {
		if refType != "Item" || refName != "Apple Pie" || spec != "Pies" {
			t.Errorf("unexpected call %q %q %q", refType, refName, spec)
		}
		return []materializeuc.View{{ID: "v1", Specification: "Pies", Attribute: "Weight", Value: "700"}}, nil
	}
	values, err := c.Documents("Item").Values(context.Background(), "Apple Pie", "Pies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 || values[0].Value != "700" {
		t.Errorf("unexpected values: %+v", values)
	}
}

// --- Facets ---

func TestFacets_Select(t *testing.T) {
	c := testClient()
	c.facetSvc.(*mockFacetUC).selectFn = func(
		_ context.Context, _ string, sel domfacet.Selection,
	) (domfacet.Result, error) {
		active := sel.Active()
		if len(active) != 1 || active[0] != "Weight" {
			t.Errorf("unexpected active facets %v", active)
		}
		return domfacet.Result{Restricted: true, IDs: []string{"Cherry Pie"}}, nil
	}
	res, err := c.Facets("Item").Select(context.Background(), map[string][]string{
		"Weight": {"400", "600"},
		"Flavor": {""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Restricted || len(res.Names) != 1 || res.Names[0] != "Cherry Pie" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestFacets_List(t *testing.T) {
	c := testClient()
	c.listingSvc.(*mockListingUC).queryFn = func(
		_ context.Context, _ string, req listinguc.Request,
	) (listinguc.Response, error) {
		if req.SortOrder != SortTitleDesc || req.Start != 20 {
			t.Errorf("unexpected request: %+v", req)
		}
		return listinguc.Response{
			Items:      []domdoc.Document{domdoc.Reconstruct("Item", "Cherry Pie", nil, 0)},
			ItemsCount: 21,
		}, nil
	}
	page, err := c.Facets("Item").List(context.Background(), ListingQuery{Start: 20, SortOrder: SortTitleDesc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalCount != 21 || len(page.Documents) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestFacets_CatalogAndApplyOn(t *testing.T) {
	c := testClient()
	c.facetSvc.(*mockFacetUC).catalogFn = func(context.Context, string) ([]domfacet.Component, error) {
		return []domfacet.Component{{AttributeName: "Weight", Kind: "numeric", Visible: true}}, nil
	}
	c.specSvc.(*mockSpecUC).applyFn = func(context.Context, string) ([]specuc.ApplyOn, error) {
		return []specuc.ApplyOn{{ScopeType: "Item Group", ApplyOn: "Pies"}}, nil
	}

	catalog, err := c.Facets("Item").Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].AttributeName != "Weight" {
		t.Errorf("unexpected catalog: %+v", catalog)
	}

	scopes, err := c.Facets("Item").ApplyOn(context.Background())
	if err != nil {
		t.Fatalf("apply on: %v", err)
	}
	if len(scopes) != 1 || scopes[0].ApplyOn != "Pies" {
		t.Errorf("unexpected scopes: %+v", scopes)
	}
}

// --- Colors / Health ---

func TestColors_Upsert(t *testing.T) {
	c := testClient()
	c.colorSvc.(*mockColorUC).upsertFn = func(_ context.Context, name, hex, image string) (domcolor.Color, error) {
		if hex == "" && image == "" {
			return domcolor.Color{}, ErrInvalidSchema
		}
		return domcolor.Reconstruct(name, hex, image), nil
	}
	if err := c.Colors().Upsert(context.Background(), Color{Name: "Plum", Hex: "#8e4585"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Colors().Upsert(context.Background(), Color{Name: "Void"}); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	c := testClient()
	c.healthSvc = &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"jobs": "error", "store": "ok"},
	}}
	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["jobs"] != "error" {
		t.Errorf("unexpected health: %+v", h)
	}
}
