package listing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	"github.com/kailas-cloud/specdex/internal/logger"
)

// Sort orders accepted by Query.
const (
	SortTitleAsc  = "Title A-Z"
	SortTitleDesc = "Title Z-A"
	SortCodeAsc   = "Item Code A-Z"
	SortCodeDesc  = "Item Code Z-A"
)

// Settings configures the listing of one catalogue.
type Settings struct {
	FacetsEnabled bool
	HideVariants  bool
	VariantField  string
	ScopeField    string
	TitleField    string
	CodeField     string
	RankingField  string
	SearchFields  []string
	PageLength    int
}

// Request is one listing query.
type Request struct {
	Attributes   domfacet.Selection
	FieldFilters map[string][]string // one value: equality, several: membership
	Search       string
	Scope        string
	Start        int
	SortOrder    string
}

// Response is one page of a listing.
type Response struct {
	Items      []domdoc.Document
	ItemsCount int
	Settings   Settings
}

// Service runs listing queries.
type Service struct {
	docs     DocumentReader
	facets   FacetEngine
	settings Settings
}

// New creates a listing service.
func New(docs DocumentReader, facets FacetEngine, settings Settings) *Service {
	if settings.PageLength <= 0 {
		settings.PageLength = 20
	}
	return &Service{docs: docs, facets: facets, settings: settings}
}

// Query filters, sorts and paginates the documents of doctype.
func (s *Service) Query(ctx context.Context, doctype string, req Request) (Response, error) {
	if req.Start < 0 {
		return Response{}, fmt.Errorf("%w: start must be >= 0", domain.ErrInvalidSchema)
	}
	less, err := s.order(req.SortOrder)
	if err != nil {
		return Response{}, err
	}

	allowed := domfacet.Unrestricted()
	if s.settings.FacetsEnabled {
		allowed, err = s.facets.SelectDocuments(ctx, doctype, req.Attributes)
		if err != nil {
			return Response{}, fmt.Errorf("facet selection: %w", err)
		}
	}
	if allowed.Restricted && len(allowed.IDs) == 0 {
		return Response{Items: []domdoc.Document{}, Settings: s.settings}, nil
	}

	docs, err := s.docs.All(ctx, doctype)
	if err != nil {
		return Response{}, fmt.Errorf("list documents: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))
	matched := make([]domdoc.Document, 0, len(docs))
	for _, d := range docs {
		if !allowed.Admits(d.Name()) {
			continue
		}
		if s.settings.HideVariants && d.Has(s.settings.VariantField) {
			continue
		}
		if req.Scope != "" && d.Field(s.settings.ScopeField) != req.Scope {
			continue
		}
		if !matchFields(d, req.FieldFilters) {
			continue
		}
		if search != "" && !s.matchSearch(d, search) {
			continue
		}
		matched = append(matched, d)
	}

	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	sort.SliceStable(matched, func(i, j int) bool { return s.rank(matched[i]) > s.rank(matched[j]) })

	total := len(matched)
	start := min(req.Start, total)
	end := min(start+s.settings.PageLength, total)

	logger.FromContext(ctx).Debug("listing query",
		zap.String("doctype", doctype),
		zap.Bool("restricted", allowed.Restricted),
		zap.Int("total", total),
	)
	return Response{Items: matched[start:end], ItemsCount: total, Settings: s.settings}, nil
}

func (s *Service) order(sortOrder string) (func(a, b domdoc.Document) bool, error) {
	by := func(field string, desc bool) func(a, b domdoc.Document) bool {
		return func(a, b domdoc.Document) bool {
			x, y := strings.ToLower(a.Field(field)), strings.ToLower(b.Field(field))
			if desc {
				return x > y
			}
			return x < y
		}
	}
	switch sortOrder {
	case "", SortTitleAsc:
		return by(s.settings.TitleField, false), nil
	case SortTitleDesc:
		return by(s.settings.TitleField, true), nil
	case SortCodeAsc:
		return by(s.settings.CodeField, false), nil
	case SortCodeDesc:
		return by(s.settings.CodeField, true), nil
	default:
		return nil, fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidSchema, sortOrder)
	}
}

func (s *Service) rank(d domdoc.Document) float64 {
	r, _ := d.Float(s.settings.RankingField)
	return r
}

func (s *Service) matchSearch(d domdoc.Document, needle string) bool {
	for _, f := range s.settings.SearchFields {
		if strings.Contains(strings.ToLower(d.Field(f)), needle) {
			return true
		}
	}
	return false
}

func matchFields(d domdoc.Document, filters map[string][]string) bool {
	for field, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}
		v := d.Field(field)
		ok := false
		for _, a := range accepted {
			if v == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
