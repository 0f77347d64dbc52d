package specdex

import (
	"context"

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

// --- specificationUseCase mock ---

type mockSpecUC struct {
	createFn func(ctx context.Context, p domspec.Params) (domspec.Specification, error)
	getFn    func(ctx context.Context, name string) (domspec.Specification, error)
	listFn   func(ctx context.Context) ([]domspec.Specification, error)
	updateFn func(ctx context.Context, name string, p domspec.Params, rev int) (domspec.Specification, error)
	deleteFn func(ctx context.Context, name string) error
	defineFn func(ctx context.Context, name string, a attribute.Attribute) (domspec.Specification, error)
	renameFn func(ctx context.Context, name, from, to string) (domspec.Specification, error)
	applyFn  func(ctx context.Context, doctype string) ([]specuc.ApplyOn, error)
	fieldsFn func(ctx context.Context, doctype string) ([]string, error)
}

func (m *mockSpecUC) Create(ctx context.Context, p domspec.Params) (domspec.Specification, error) {
	return m.createFn(ctx, p)
}

func (m *mockSpecUC) Get(ctx context.Context, name string) (domspec.Specification, error) {
	return m.getFn(ctx, name)
}

func (m *mockSpecUC) List(ctx context.Context) ([]domspec.Specification, error) {
	return m.listFn(ctx)
}

func (m *mockSpecUC) Update(
	ctx context.Context, name string, p domspec.Params, rev int,
) (domspec.Specification, error) {
	return m.updateFn(ctx, name, p, rev)
}

func (m *mockSpecUC) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

func (m *mockSpecUC) DefineAttribute(
	ctx context.Context, name string, a attribute.Attribute,
) (domspec.Specification, error) {
	return m.defineFn(ctx, name, a)
}

func (m *mockSpecUC) RenameAttribute(ctx context.Context, name, from, to string) (domspec.Specification, error) {
	return m.renameFn(ctx, name, from, to)
}

func (m *mockSpecUC) ApplyOnFields(ctx context.Context, doctype string) ([]specuc.ApplyOn, error) {
	return m.applyFn(ctx, doctype)
}

func (m *mockSpecUC) DataFieldnames(ctx context.Context, doctype string) ([]string, error) {
	return m.fieldsFn(ctx, doctype)
}

// --- valueUseCase mock ---

type mockValueUC struct {
	createFn func(ctx context.Context, spec string, rows []materializeuc.Row) (int, error)
	getFn    func(ctx context.Context, refType, refName, spec string) ([]materializeuc.View, error)
	updateFn func(ctx context.Context, refType, refName, spec string, rows []materializeuc.Row) error
}

func (m *mockValueUC) CreateValues(ctx context.Context, spec string, rows []materializeuc.Row) (int, error) {
	return m.createFn(ctx, spec, rows)
}

func (m *mockValueUC) GetValues(ctx context.Context, refType, refName, spec string) ([]materializeuc.View, error) {
	return m.getFn(ctx, refType, refName, spec)
}

func (m *mockValueUC) UpdateValues(
	ctx context.Context, refType, refName, spec string, rows []materializeuc.Row,
) error {
	return m.updateFn(ctx, refType, refName, spec, rows)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(
		ctx context.Context, doctype, name string, fields map[string]any, ov map[string]materializeuc.Override,
	) (domdoc.Document, bool, error)
	patchFn  func(
		ctx context.Context, doctype, name string, fields map[string]any, ov map[string]materializeuc.Override,
	) (domdoc.Document, error)
	batchFn  func(ctx context.Context, doctype string, items []documentuc.Item) []dombatch.Result
	getFn    func(ctx context.Context, doctype, name string) (domdoc.Document, error)
	listFn   func(ctx context.Context, doctype, cursor string, limit int) ([]domdoc.Document, string, error)
	countFn  func(ctx context.Context, doctype string) (int, error)
	deleteFn func(ctx context.Context, doctype, name string) error
}

func (m *mockDocumentUC) Upsert(
	ctx context.Context, doctype, name string, fields map[string]any, ov map[string]materializeuc.Override,
) (domdoc.Document, bool, error) {
	return m.upsertFn(ctx, doctype, name, fields, ov)
}

func (m *mockDocumentUC) Patch(
	ctx context.Context, doctype, name string, fields map[string]any, ov map[string]materializeuc.Override,
) (domdoc.Document, error) {
	return m.patchFn(ctx, doctype, name, fields, ov)
}

func (m *mockDocumentUC) UpsertBatch(
	ctx context.Context, doctype string, items []documentuc.Item,
) []dombatch.Result {
	return m.batchFn(ctx, doctype, items)
}

func (m *mockDocumentUC) Get(ctx context.Context, doctype, name string) (domdoc.Document, error) {
	return m.getFn(ctx, doctype, name)
}

func (m *mockDocumentUC) List(
	ctx context.Context, doctype, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	return m.listFn(ctx, doctype, cursor, limit)
}

func (m *mockDocumentUC) Count(ctx context.Context, doctype string) (int, error) {
	return m.countFn(ctx, doctype)
}

func (m *mockDocumentUC) Delete(ctx context.Context, doctype, name string) error {
	return m.deleteFn(ctx, doctype, name)
}

// --- facetUseCase / listingUseCase mocks ---

type mockFacetUC struct {
	catalogFn func(ctx context.Context, doctype string) ([]domfacet.Component, error)
	selectFn  func(ctx context.Context, doctype string, sel domfacet.Selection) (domfacet.Result, error)
}

func (m *mockFacetUC) Catalog(ctx context.Context, doctype string) ([]domfacet.Component, error) {
	return m.catalogFn(ctx, doctype)
}

func (m *mockFacetUC) SelectDocuments(
	ctx context.Context, doctype string, sel domfacet.Selection,
) (domfacet.Result, error) {
	return m.selectFn(ctx, doctype, sel)
}

type mockListingUC struct {
	queryFn func(ctx context.Context, doctype string, req listinguc.Request) (listinguc.Response, error)
}

func (m *mockListingUC) Query(ctx context.Context, doctype string, req listinguc.Request) (listinguc.Response, error) {
	return m.queryFn(ctx, doctype, req)
}

// --- colorUseCase / healthUseCase mocks ---

type mockColorUC struct {
	upsertFn func(ctx context.Context, name, hex, image string) (domcolor.Color, error)
	listFn   func(ctx context.Context) ([]domcolor.Color, error)
}

func (m *mockColorUC) Upsert(ctx context.Context, name, hex, image string) (domcolor.Color, error) {
	return m.upsertFn(ctx, name, hex, image)
}

func (m *mockColorUC) List(ctx context.Context) ([]domcolor.Color, error) {
	return m.listFn(ctx)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
