package facet

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/specdex/internal/domain/epoch"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
)

// Service answers facet catalog and facet selection queries.
type Service struct {
	specs   SpecReader
	values  ValueReader
	palette Palette
	dates   epoch.Codec
}

// New creates a facet service.
func New(specs SpecReader, values ValueReader, palette Palette, dates epoch.Codec) *Service {
	return &Service{specs: specs, values: values, palette: palette, dates: dates}
}

// facetAttr is one attribute name applied on a doctype, merged across specifications.
type facetAttr struct {
	attr attribute.Attribute
	spec string
}

// attributesOn returns the attributes of enabled specifications applied on
// doctype, ordered by index then specification, one entry per name.
func (s *Service) attributesOn(ctx context.Context, doctype string) ([]facetAttr, error) {
	specs, err := s.specs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specifications: %w", err)
	}
	var all []facetAttr
	for _, spec := range specs {
		if !spec.Enabled() {
			continue
		}
		for _, a := range spec.AttributesOn(doctype) {
			all = append(all, facetAttr{attr: a, spec: spec.Name()})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].attr.Index() != all[j].attr.Index() {
			return all[i].attr.Index() < all[j].attr.Index()
		}
		return all[i].spec < all[j].spec
	})
	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, fa := range all {
		if seen[fa.attr.Name()] {
			continue
		}
		seen[fa.attr.Name()] = true
		out = append(out, fa)
	}
	return out, nil
}

func byName(attrs []facetAttr) map[string]attribute.Attribute {
	m := make(map[string]attribute.Attribute, len(attrs))
	for _, fa := range attrs {
		m[fa.attr.Name()] = fa.attr
	}
	return m
}

