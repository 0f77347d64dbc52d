package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
)

func attributeFromAPI(a Attribute) (attribute.Attribute, error) {
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
		return attribute.Attribute{}, fmt.Errorf("build attribute: %w", err)
	}
	return attr, nil
}

func specParamsFromAPI(req SpecificationRequest) (domspec.Params, error) {
	attrs := make([]attribute.Attribute, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		attr, err := attributeFromAPI(a)
		if err != nil {
			return domspec.Params{}, err
		}
		attrs = append(attrs, attr)
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return domspec.Params{
		Name:       req.Name,
		ScopeType:  req.ScopeType,
		ScopeField: req.ScopeField,
		ApplyOn:    req.ApplyOn,
		Enabled:    enabled,
		Attributes: attrs,
	}, nil
}

func attributeToAPI(a attribute.Attribute) Attribute {
	idx := a.Index()
	return Attribute{
		ID:          a.ID(),
		Name:        a.Name(),
		AppliedOn:   a.AppliedOn(),
		Field:       a.Field(),
		Kind:        string(a.Kind()),
		Component:   a.Component(),
		MultiValued: a.MultiValued(),
		Index:       &idx,
	}
}

func specToAPI(s domspec.Specification) Specification {
	attrs := make([]Attribute, len(s.Attributes()))
	for i, a := range s.Attributes() {
		attrs[i] = attributeToAPI(a)
	}
	return Specification{
		Name:       s.Name(),
		Title:      s.Title(),
		ScopeType:  s.ScopeType(),
		ScopeField: s.ScopeField(),
		ApplyOn:    s.ApplyOn(),
		Enabled:    s.Enabled(),
		Attributes: attrs,
		CreatedAt:  time.UnixMilli(s.CreatedAt()).UTC(),
		Revision:   s.Revision(),
	}
}

func rowsFromAPI(in []ValueRow) []materializeuc.Row {
	out := make([]materializeuc.Row, len(in))
	for i, r := range in {
		out[i] = materializeuc.Row{
			ID:            r.ID,
			ReferenceType: r.ReferenceType,
			ReferenceName: r.ReferenceName,
			Attribute:     r.Attribute,
			Field:         r.Field,
			Value:         r.Value,
		}
	}
	return out
}

func valueToAPI(v materializeuc.View) Value {
	return Value{
		ID:            v.ID,
		Specification: v.Specification,
		Attribute:     v.Attribute,
		Field:         v.Field,
		Value:         v.Value,
	}
}

func documentToAPI(d domdoc.Document) Document {
	return Document{
		Doctype:    d.Doctype(),
		Name:       d.Name(),
		Fields:     d.Fields(),
		ModifiedAt: time.UnixMilli(d.ModifiedAt()).UTC(),
	}
}

func colorToAPI(c domcolor.Color) Color {
	return Color{Name: c.Name(), Hex: c.Hex(), Image: c.Image()}
}

func componentToAPI(c domfacet.Component) FacetComponent {
	values := c.Values
	if values == nil {
		values = []any{}
	}
	return FacetComponent{
		AttributeID:   c.AttributeID,
		AttributeName: c.AttributeName,
		Specification: c.Specification,
		Component:     c.Component,
		Kind:          c.Kind,
		Values:        values,
		Visible:       c.Visible,
	}
}

func selectionFromAPI(in map[string]FacetCriterion) (domfacet.Selection, error) {
	criteria := make(map[string]domfacet.Criterion, len(in))
	for name, c := range in {
		criteria[name] = domfacet.Criterion{AttributeID: c.AttributeID, Values: c.Values}
	}
	sel, err := domfacet.NewSelection(criteria)
	if err != nil {
		return domfacet.Selection{}, fmt.Errorf("build selection: %w", err)
	}
	return sel, nil
}

// stringOrList decodes a JSON string or array of strings.
func stringOrList(raw json.RawMessage) (values []string, isList bool, err error) {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, false, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, false, errors.New("expected a string or an array of strings")
	}
	return many, true, nil
}

func overridesFromAPI(in map[string]json.RawMessage) (map[string]materializeuc.Override, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]materializeuc.Override, len(in))
	for name, raw := range in {
		values, isList, err := stringOrList(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if isList {
			out[name] = materializeuc.List(values...)
		} else {
			out[name] = materializeuc.Scalar(values[0])
		}
	}
	return out, nil
}

func listingRequestFromAPI(req ListingRequest) (listinguc.Request, error) {
	sel, err := selectionFromAPI(req.Attributes)
	if err != nil {
		return listinguc.Request{}, err
	}
	filters := make(map[string][]string, len(req.FieldFilters))
	for field, raw := range req.FieldFilters {
		values, _, err := stringOrList(raw)
		if err != nil {
			return listinguc.Request{}, fmt.Errorf("field filter %q: %w", field, err)
		}
		filters[field] = values
	}
	return listinguc.Request{
		Attributes:   sel,
		FieldFilters: filters,
		Search:       req.Search,
		Scope:        req.Scope,
		Start:        req.Start,
		SortOrder:    req.SortOrder,
	}, nil
}

func listingSettingsToAPI(s listinguc.Settings) ListingSettings {
	fields := s.SearchFields
	if fields == nil {
		fields = []string{}
	}
	return ListingSettings{
		FacetsEnabled: s.FacetsEnabled,
		HideVariants:  s.HideVariants,
		ScopeField:    s.ScopeField,
		TitleField:    s.TitleField,
		SearchFields:  fields,
		PageLength:    s.PageLength,
	}
}
