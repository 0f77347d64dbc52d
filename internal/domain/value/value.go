package value

import (
	"fmt"
	"strings"
)

// Value is one materialized attribute fact:
// (reference type, reference name, specification, attribute) -> value.
type Value struct {
	id            string
	referenceType string
	referenceName string
	specification string
	attribute     string
	field         string
	text          string
	numeric       *float64
}

// Params describes a value row.
type Params struct {
	ID            string
	ReferenceType string
	ReferenceName string
	Specification string
	Attribute     string
	Field         string
	Text          string
	Numeric       *float64
}

// New validates and creates a Value. Empty values are never stored.
func New(p Params) (Value, error) {
	switch {
	case p.ID == "":
		return Value{}, fmt.Errorf("value id is required")
	case p.ReferenceType == "" || p.ReferenceName == "":
		return Value{}, fmt.Errorf("value reference is required")
	case p.Specification == "":
		return Value{}, fmt.Errorf("value specification is required")
	case p.Attribute == "":
		return Value{}, fmt.Errorf("value attribute is required")
	case strings.TrimSpace(p.Text) == "":
		return Value{}, fmt.Errorf("value for %q is empty", p.Attribute)
	}
	return Reconstruct(p), nil
}

// Reconstruct creates a Value without validation (storage hydration).
func Reconstruct(p Params) Value {
	return Value{
		id:            p.ID,
		referenceType: p.ReferenceType,
		referenceName: p.ReferenceName,
		specification: p.Specification,
		attribute:     p.Attribute,
		field:         p.Field,
		text:          p.Text,
		numeric:       p.Numeric,
	}
}

// ID returns the row id.
func (v Value) ID() string { return v.id }

// ReferenceType returns the document type the value describes.
func (v Value) ReferenceType() string { return v.referenceType }

// ReferenceName returns the document name the value describes.
func (v Value) ReferenceName() string { return v.referenceName }

// Specification returns the owning specification name.
func (v Value) Specification() string { return v.specification }

// Attribute returns the attribute name.
func (v Value) Attribute() string { return v.attribute }

// Field returns the source field for derived values.
func (v Value) Field() string { return v.field }

// Text returns the stored text (epoch seconds for dates).
func (v Value) Text() string { return v.text }

// Numeric returns the comparable number, nil for categorical or unparseable values.
func (v Value) Numeric() *float64 { return v.numeric }

// Params returns the row fields.
func (v Value) Params() Params {
	return Params{
		ID:            v.id,
		ReferenceType: v.referenceType,
		ReferenceName: v.referenceName,
		Specification: v.specification,
		Attribute:     v.attribute,
		Field:         v.field,
		Text:          v.text,
		Numeric:       v.numeric,
	}
}

// WithContent returns a copy holding a new stored value.
func (v Value) WithContent(text string, numeric *float64) Value {
	v.text = text
	v.numeric = numeric
	return v
}

// WithAttribute returns a copy under a new attribute name.
func (v Value) WithAttribute(name string) Value {
	v.attribute = name
	return v
}

// Filter selects value rows; empty fields match anything.
type Filter struct {
	ReferenceType string
	ReferenceName string
	Specification string
	Attribute     string
	Text          string
}

// IsEmpty reports whether the filter would match every row.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Matches reports whether v satisfies the filter.
func (f Filter) Matches(v Value) bool {
	return (f.ReferenceType == "" || f.ReferenceType == v.referenceType) &&
		(f.ReferenceName == "" || f.ReferenceName == v.referenceName) &&
		(f.Specification == "" || f.Specification == v.specification) &&
		(f.Attribute == "" || f.Attribute == v.attribute) &&
		(f.Text == "" || f.Text == v.text)
}

// Lookup selects references of one type whose attribute value is either in
// a set of texts or within a numeric range.
type Lookup struct {
	ReferenceType string
	Attribute     string
	In            []string
	Min           *float64
	Max           *float64
}

// IsRange reports whether the lookup compares numbers.
func (l Lookup) IsRange() bool { return l.Min != nil || l.Max != nil }

// Matches reports whether v satisfies the lookup.
func (l Lookup) Matches(v Value) bool {
	if v.referenceType != l.ReferenceType || v.attribute != l.Attribute {
		return false
	}
	if l.IsRange() {
		if v.numeric == nil {
			return false
		}
		if l.Min != nil && *v.numeric < *l.Min {
			return false
		}
		if l.Max != nil && *v.numeric > *l.Max {
			return false
		}
		return true
	}
	for _, s := range l.In {
		if s == v.text {
			return true
		}
	}
	return false
}
