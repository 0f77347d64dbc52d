package facet

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// Catalog lists the filters available for doctype: one component per
// attribute name, carrying the values a filter UI can offer.
func (s *Service) Catalog(ctx context.Context, doctype string) ([]domfacet.Component, error) {
	attrs, err := s.attributesOn(ctx, doctype)
	if err != nil {
		return nil, err
	}

	var palette []any
	out := make([]domfacet.Component, 0, len(attrs))
	for _, fa := range attrs {
		a := fa.attr
		c := domfacet.Component{
			AttributeID:   a.ID(),
			AttributeName: a.Name(),
			Specification: fa.spec,
			Component:     a.Component(),
			Kind:          string(a.Kind()),
			Values:        []any{},
		}

		if a.IsColorPicker() {
			if palette == nil {
				if palette, err = s.paletteTuples(ctx); err != nil {
					return nil, err
				}
			}
			c.Values = palette
			out = append(out, c)
			continue
		}

		rows, err := s.values.Find(ctx, domval.Filter{ReferenceType: doctype, Attribute: a.Name()})
		if err != nil {
			return nil, fmt.Errorf("find values of %q: %w", a.Name(), err)
		}
		switch a.Kind() {
		case attribute.Numeric:
			if lo, hi, ok := numericBounds(rows); ok {
				c.Values = []any{lo, hi}
			}
		case attribute.Date:
			if lo, hi, ok := numericBounds(rows); ok {
				c.Values = []any{
					a.Kind().Decode(formatEpoch(lo), s.dates),
					a.Kind().Decode(formatEpoch(hi), s.dates),
				}
			}
		default:
			c.Values = distinct(rows)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) paletteTuples(ctx context.Context) ([]any, error) {
	colors, err := s.palette.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i].Name() < colors[j].Name() })
	out := make([]any, len(colors))
	for i, c := range colors {
		out[i] = c.Tuple()
	}
	return out, nil
}

// numericBounds returns min and max over rows with a numeric companion.
func numericBounds(rows []domval.Value) (lo, hi float64, ok bool) {
	for _, v := range rows {
		n := v.Numeric()
		if n == nil {
			continue
		}
		if !ok {
			lo, hi, ok = *n, *n, true
			continue
		}
		lo = min(lo, *n)
		hi = max(hi, *n)
	}
	return lo, hi, ok
}

func distinct(rows []domval.Value) []any {
	seen := make(map[string]bool, len(rows))
	var texts []string
	for _, v := range rows {
		if !seen[v.Text()] {
			seen[v.Text()] = true
			texts = append(texts, v.Text())
		}
	}
	sort.Strings(texts)
	out := make([]any, len(texts))
	for i, t := range texts {
		out[i] = t
	}
	return out
}

func formatEpoch(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
