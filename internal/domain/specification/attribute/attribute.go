package attribute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/specdex/internal/domain/epoch"
)

// Kind is the value kind of an attribute.
type Kind string

// Attribute kinds.
const (
	Categorical Kind = "categorical"
	Numeric     Kind = "numeric"
	Date        Kind = "date"
)

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	switch k {
	case Categorical, Numeric, Date:
		return true
	}
	return false
}

// UI components used by the facet catalog.
const (
	ComponentCheckboxes   = "AttributeFilter"
	ComponentNumericRange = "FacetedSearchNumericRange"
	ComponentDateRange    = "FacetedSearchDateRange"
	ComponentColorPicker  = "FacetedSearchColorPicker"
)

// DefaultComponent returns the widget used when none is configured.
func (k Kind) DefaultComponent() string {
	switch k {
	case Numeric:
		return ComponentNumericRange
	case Date:
		return ComponentDateRange
	default:
		return ComponentCheckboxes
	}
}

// Encoded is the stored form of a raw attribute value.
type Encoded struct {
	Text    string
	Numeric *float64
}

// Encode converts a raw value into its stored form.
// ok=false means the value must not be stored (empty, or an undecodable date).
func (k Kind) Encode(raw string, dates epoch.Codec) (Encoded, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Encoded{}, false
	}
	switch k {
	case Numeric:
		enc := Encoded{Text: raw}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			enc.Numeric = &f
		}
		return enc, true
	case Date:
		v, ok := dates.EncodeString(raw)
		if !ok {
			return Encoded{}, false
		}
		f := float64(v)
		return Encoded{Text: strconv.FormatInt(v, 10), Numeric: &f}, true
	default:
		return Encoded{Text: raw}, true
	}
}

// Decode converts a stored value back into its display form.
func (k Kind) Decode(stored string, dates epoch.Codec) string {
	if k != Date {
		return stored
	}
	if s, ok := dates.DecodeString(stored); ok {
		return s
	}
	return stored
}

// Params describes an attribute definition.
type Params struct {
	ID          string
	Name        string
	AppliedOn   string
	Field       string
	Kind        Kind
	Component   string
	MultiValued bool
}

// Attribute is one named characteristic of a specification (immutable value object).
type Attribute struct {
	id          string
	name        string
	appliedOn   string
	field       string
	kind        Kind
	component   string
	multiValued bool
	index       int
}

// New validates and creates an Attribute. The index is assigned by the owning specification.
func New(p Params) (Attribute, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Attribute{}, fmt.Errorf("attribute name is required")
	}
	if len(name) > 140 {
		return Attribute{}, fmt.Errorf("attribute name %q too long (max 140)", name)
	}
	if strings.TrimSpace(p.AppliedOn) == "" {
		return Attribute{}, fmt.Errorf("attribute %q: applied_on is required", name)
	}
	kind := p.Kind
	if kind == "" {
		kind = Categorical
	}
	if !kind.IsValid() {
		return Attribute{}, fmt.Errorf("attribute %q: invalid kind %q", name, p.Kind)
	}
	if p.Field != "" && p.MultiValued {
		return Attribute{}, fmt.Errorf("attribute %q: a derived attribute cannot be multi-valued", name)
	}
	component := p.Component
	if component == "" {
		component = kind.DefaultComponent()
	}
	if component == ComponentColorPicker && kind != Categorical {
		return Attribute{}, fmt.Errorf("attribute %q: color picker requires a categorical attribute", name)
	}
	return Attribute{
		id:          p.ID,
		name:        name,
		appliedOn:   strings.TrimSpace(p.AppliedOn),
		field:       strings.TrimSpace(p.Field),
		kind:        kind,
		component:   component,
		multiValued: p.MultiValued,
	}, nil
}

// Reconstruct creates an Attribute without validation (storage hydration).
func Reconstruct(p Params, index int) Attribute {
	kind := p.Kind
	if kind == "" {
		kind = Categorical
	}
	return Attribute{
		id:          p.ID,
		name:        p.Name,
		appliedOn:   p.AppliedOn,
		field:       p.Field,
		kind:        kind,
		component:   p.Component,
		multiValued: p.MultiValued,
		index:       index,
	}
}

// ID returns the stable identifier that survives renames.
func (a Attribute) ID() string { return a.id }

// Name returns the attribute name.
func (a Attribute) Name() string { return a.name }

// AppliedOn returns the document type the attribute describes.
func (a Attribute) AppliedOn() string { return a.appliedOn }

// Field returns the source field, empty for manual attributes.
func (a Attribute) Field() string { return a.field }

// IsDerived reports whether values come from a document field.
func (a Attribute) IsDerived() bool { return a.field != "" }

// Kind returns the value kind.
func (a Attribute) Kind() Kind { return a.kind }

// Component returns the UI widget name.
func (a Attribute) Component() string { return a.component }

// IsColorPicker reports whether the catalog draws values from the color palette.
func (a Attribute) IsColorPicker() bool { return a.component == ComponentColorPicker }

// MultiValued reports whether a document may hold several values.
func (a Attribute) MultiValued() bool { return a.multiValued }

// Index returns the position within the specification.
func (a Attribute) Index() int { return a.index }

// Params returns the definition, e.g. for edits.
func (a Attribute) Params() Params {
	return Params{
		ID:          a.id,
		Name:        a.name,
		AppliedOn:   a.appliedOn,
		Field:       a.field,
		Kind:        a.kind,
		Component:   a.component,
		MultiValued: a.multiValued,
	}
}

// WithIndex returns a copy placed at index i.
func (a Attribute) WithIndex(i int) Attribute {
	a.index = i
	return a
}

// WithID returns a copy carrying id.
func (a Attribute) WithID(id string) Attribute {
	a.id = id
	return a
}

// WithName returns a renamed copy.
func (a Attribute) WithName(name string) Attribute {
	a.name = name
	return a
}
