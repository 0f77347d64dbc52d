package specdex

import (
	"context"
	"fmt"
	"time"

	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
)

// FacetService runs facet and listing queries over one document type.
type FacetService struct {
	doctype string
	specs   specificationUseCase
	svc     facetUseCase
	listing listingUseCase
	obs     *observer
}

// Catalog returns the filter components for the document type.
func (s *FacetService) Catalog(ctx context.Context) (_ []FacetComponent, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facet.catalog", start, err, "doctype", s.doctype) }()

	components, err := s.svc.Catalog(ctx, s.doctype)
	if err != nil {
		return nil, fmt.Errorf("facet catalog: %w", err)
	}
	out := make([]FacetComponent, len(components))
	for i, c := range components {
		out[i] = fromInternalComponent(c)
	}
	return out, nil
}

// Select returns the documents matching every active facet. Numeric and
// date facets take [low, high] bounds; categorical facets take the accepted
// values.
func (s *FacetService) Select(ctx context.Context, facets map[string][]string) (_ FacetResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facet.select", start, err, "doctype", s.doctype) }()

	sel, err := toInternalSelection(facets)
	if err != nil {
		return FacetResult{}, fmt.Errorf("facet select: %w", err)
	}
	res, err := s.svc.SelectDocuments(ctx, s.doctype, sel)
	if err != nil {
		return FacetResult{}, fmt.Errorf("facet select: %w", err)
	}
	return FacetResult{Restricted: res.Restricted, Names: res.IDs}, nil
}

// List runs a filtered, sorted and paginated listing.
func (s *FacetService) List(ctx context.Context, q ListingQuery) (_ ListingPage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facet.list", start, err, "doctype", s.doctype) }()

	sel, err := toInternalSelection(q.Facets)
	if err != nil {
		return ListingPage{}, fmt.Errorf("listing: %w", err)
	}
	resp, err := s.listing.Query(ctx, s.doctype, listinguc.Request{
		Attributes:   sel,
		FieldFilters: q.FieldFilters,
		Search:       q.Search,
		Scope:        q.Scope,
		Start:        q.Start,
		SortOrder:    q.SortOrder,
	})
	if err != nil {
		return ListingPage{}, fmt.Errorf("listing: %w", err)
	}
	return ListingPage{Documents: fromInternalDocuments(resp.Items), TotalCount: resp.ItemsCount}, nil
}

// ApplyOn returns the scopes of enabled specifications on the document type.
func (s *FacetService) ApplyOn(ctx context.Context) (_ []ApplyOn, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facet.apply_on", start, err, "doctype", s.doctype) }()

	scopes, err := s.specs.ApplyOnFields(ctx, s.doctype)
	if err != nil {
		return nil, fmt.Errorf("apply on: %w", err)
	}
	out := make([]ApplyOn, len(scopes))
	for i, sc := range scopes {
		out[i] = ApplyOn(sc)
	}
	return out, nil
}

// Fieldnames returns the field names seen on stored documents of the type.
func (s *FacetService) Fieldnames(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facet.fieldnames", start, err, "doctype", s.doctype) }()

	names, err := s.specs.DataFieldnames(ctx, s.doctype)
	if err != nil {
		return nil, fmt.Errorf("fieldnames: %w", err)
	}
	return names, nil
}
