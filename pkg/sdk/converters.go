package specdex

import (
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
)

func toInternalAttribute(a Attribute) (attribute.Attribute, error) {
	attr, err := attribute.New(attribute.Params{
		ID:          a.ID,
		Name:        a.Name,
		AppliedOn:   a.AppliedOn,
		Field:       a.Field,
		Kind:        attribute.Kind(a.Kind),
		Component:   a.Component,
		MultiValued: a.MultiValued,
	})
	if err != nil {
		return attribute.Attribute{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return attr, nil
}

func toInternalParams(s Specification) (domspec.Params, error) {
	attrs := make([]attribute.Attribute, 0, len(s.Attributes))
	for _, a := range s.Attributes {
		attr, err := toInternalAttribute(a)
		if err != nil {
			return domspec.Params{}, err
		}
		attrs = append(attrs, attr)
	}
	return domspec.Params{
		Name:       s.Name,
		ScopeType:  s.ScopeType,
		ScopeField: s.ScopeField,
		ApplyOn:    s.ApplyOn,
		Enabled:    !s.Disabled,
		Attributes: attrs,
	}, nil
}

func fromInternalSpecification(s domspec.Specification) Specification {
	attrs := make([]Attribute, len(s.Attributes()))
	for i, a := range s.Attributes() {
		attrs[i] = Attribute{
			ID:          a.ID(),
			Name:        a.Name(),
			AppliedOn:   a.AppliedOn(),
			Field:       a.Field(),
			Kind:        AttributeKind(a.Kind()),
			Component:   a.Component(),
			MultiValued: a.MultiValued(),
			Index:       a.Index(),
		}
	}
	return Specification{
		Name:       s.Name(),
		Title:      s.Title(),
		ScopeType:  s.ScopeType(),
		ScopeField: s.ScopeField(),
		ApplyOn:    s.ApplyOn(),
		Disabled:   !s.Enabled(),
		Attributes: attrs,
		CreatedAt:  time.UnixMilli(s.CreatedAt()).UTC(),
		Revision:   s.Revision(),
	}
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		Doctype:    d.Doctype(),
		Name:       d.Name(),
		Fields:     d.Fields(),
		ModifiedAt: time.UnixMilli(d.ModifiedAt()).UTC(),
	}
}

func fromInternalDocuments(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return out
}

func toInternalOverrides(in map[string]AttributeValue) map[string]materializeuc.Override {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]materializeuc.Override, len(in))
	for name, v := range in {
		switch {
		case v.list:
			out[name] = materializeuc.List(v.values...)
		case len(v.values) == 0:
			out[name] = materializeuc.Scalar("")
		default:
			out[name] = materializeuc.Scalar(v.values[0])
		}
	}
	return out
}

func toInternalBatch(items []BatchItem) []documentuc.Item {
	out := make([]documentuc.Item, len(items))
	for i, it := range items {
		out[i] = documentuc.Item{Name: it.Name, Fields: it.Fields, Overrides: toInternalOverrides(it.Attributes)}
	}
	return out
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{Name: r.Name(), Status: string(r.Status()), Err: r.Err()}
	}
	return out
}

func toInternalRows(in []ValueRow) []materializeuc.Row {
	out := make([]materializeuc.Row, len(in))
	for i, r := range in {
		out[i] = materializeuc.Row(r)
	}
	return out
}

func fromInternalViews(in []materializeuc.View) []StoredValue {
	out := make([]StoredValue, len(in))
	for i, v := range in {
		out[i] = StoredValue(v)
	}
	return out
}

func toInternalSelection(facets map[string][]string) (domfacet.Selection, error) {
	criteria := make(map[string]domfacet.Criterion, len(facets))
	for name, values := range facets {
		criteria[name] = domfacet.Criterion{Values: values}
	}
	sel, err := domfacet.NewSelection(criteria)
	if err != nil {
		return domfacet.Selection{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return sel, nil
}

func fromInternalComponent(c domfacet.Component) FacetComponent {
	return FacetComponent(c)
}

func fromInternalColor(c domcolor.Color) Color {
	return Color{Name: c.Name(), Hex: c.Hex(), Image: c.Image()}
}
