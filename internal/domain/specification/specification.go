package specification

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
)

// MaxAttributes bounds the attributes of one specification.
const MaxAttributes = 128

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9 _.-]+$`)

var (
	// ErrDuplicateAttribute is returned when two attributes share a name.
	ErrDuplicateAttribute = errors.New("duplicate attribute name")
	// ErrUnknownAttribute is returned when an attribute is not part of the specification.
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// Params describes a specification definition.
type Params struct {
	Name       string
	ScopeType  string // document type whose value scopes the specification, e.g. "Item Group"
	ScopeField string // field on target documents holding the scope value, e.g. "item_group"
	ApplyOn    string // optional scope value
	Enabled    bool
	Attributes []attribute.Attribute
}

// Specification is a named, optionally scoped attribute group (immutable aggregate).
type Specification struct {
	name       string
	scopeType  string
	scopeField string
	applyOn    string
	enabled    bool
	attributes []attribute.Attribute
	createdAt  int64
	revision   int
}

// Rename is an attribute whose name changed between two revisions.
type Rename struct {
	AttributeID string
	From        string
	To          string
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("specification name is required")
	}
	if len(name) > 140 {
		return fmt.Errorf("specification name too long (max 140)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("specification name must contain letters, digits, spaces, '_', '.' or '-'")
	}
	return nil
}

func validateAttributes(attrs []attribute.Attribute) error {
	if len(attrs) > MaxAttributes {
		return fmt.Errorf("too many attributes (max %d)", MaxAttributes)
	}
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a.Name()] {
			return fmt.Errorf("%w: %s", ErrDuplicateAttribute, a.Name())
		}
		seen[a.Name()] = true
	}
	return nil
}

func indexed(attrs []attribute.Attribute) []attribute.Attribute {
	out := make([]attribute.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = a.WithIndex(i)
	}
	return out
}

// New validates and creates a Specification.
// Attribute names must be unique; apply_on requires a scope field.
func New(p Params) (Specification, error) {
	if err := validateName(p.Name); err != nil {
		return Specification{}, err
	}
	if p.ScopeType == "" {
		return Specification{}, fmt.Errorf("scope type (dt) is required")
	}
	if p.ApplyOn != "" && p.ScopeField == "" {
		return Specification{}, fmt.Errorf("scope field is required when apply_on is set")
	}
	if err := validateAttributes(p.Attributes); err != nil {
		return Specification{}, err
	}
	return Specification{
		name:       p.Name,
		scopeType:  p.ScopeType,
		scopeField: p.ScopeField,
		applyOn:    p.ApplyOn,
		enabled:    p.Enabled,
		attributes: indexed(p.Attributes),
		createdAt:  time.Now().UnixMilli(),
		revision:   1,
	}, nil
}

// Reconstruct creates a Specification without validation (storage hydration).
func Reconstruct(p Params, createdAt int64, revision int) Specification {
	return Specification{
		name:       p.Name,
		scopeType:  p.ScopeType,
		scopeField: p.ScopeField,
		applyOn:    p.ApplyOn,
		enabled:    p.Enabled,
		attributes: indexed(p.Attributes),
		createdAt:  createdAt,
		revision:   revision,
	}
}

// Name returns the specification name.
func (s Specification) Name() string { return s.name }

// ScopeType returns the scoping document type.
func (s Specification) ScopeType() string { return s.scopeType }

// ScopeField returns the target document field compared against ApplyOn.
func (s Specification) ScopeField() string { return s.scopeField }

// ApplyOn returns the scope value, empty when unscoped.
func (s Specification) ApplyOn() string { return s.applyOn }

// Enabled reports whether the specification is active.
func (s Specification) Enabled() bool { return s.enabled }

// Attributes returns the ordered attribute definitions.
func (s Specification) Attributes() []attribute.Attribute { return s.attributes }

// CreatedAt returns the creation timestamp (unix millis).
func (s Specification) CreatedAt() int64 { return s.createdAt }

// Revision returns the optimistic concurrency version.
func (s Specification) Revision() int { return s.revision }

// Title is "dt" or "dt - apply_on".
func (s Specification) Title() string {
	if s.applyOn == "" {
		return s.scopeType
	}
	return s.scopeType + " - " + s.applyOn
}

// Params returns the definition, e.g. for edits.
func (s Specification) Params() Params {
	attrs := make([]attribute.Attribute, len(s.attributes))
	copy(attrs, s.attributes)
	return Params{
		Name:       s.name,
		ScopeType:  s.scopeType,
		ScopeField: s.scopeField,
		ApplyOn:    s.applyOn,
		Enabled:    s.enabled,
		Attributes: attrs,
	}
}

// Attribute looks up an attribute by name.
func (s Specification) Attribute(name string) (attribute.Attribute, bool) {
	for _, a := range s.attributes {
		if a.Name() == name {
			return a, true
		}
	}
	return attribute.Attribute{}, false
}

// AttributesOn returns the attributes applied on doctype.
func (s Specification) AttributesOn(doctype string) []attribute.Attribute {
	var out []attribute.Attribute
	for _, a := range s.attributes {
		if a.AppliedOn() == doctype {
			out = append(out, a)
		}
	}
	return out
}

// AppliedOn returns the distinct document types the attributes describe.
func (s Specification) AppliedOn() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.attributes {
		if !seen[a.AppliedOn()] {
			seen[a.AppliedOn()] = true
			out = append(out, a.AppliedOn())
		}
	}
	return out
}

// AppliesTo reports whether doc is in scope: its type carries one of the
// attributes and, when the specification is scoped, its scope field matches.
func (s Specification) AppliesTo(doc document.Document) bool {
	if len(s.AttributesOn(doc.Doctype())) == 0 {
		return false
	}
	if s.applyOn == "" {
		return true
	}
	return doc.Field(s.scopeField) == s.applyOn
}

// WithAttribute returns a copy with a appended; duplicate names are rejected.
func (s Specification) WithAttribute(a attribute.Attribute) (Specification, error) {
	attrs := make([]attribute.Attribute, 0, len(s.attributes)+1)
	attrs = append(attrs, s.attributes...)
	attrs = append(attrs, a)
	if err := validateAttributes(attrs); err != nil {
		return Specification{}, err
	}
	s.attributes = indexed(attrs)
	return s, nil
}

// WithRenamedAttribute returns a copy where attribute from is called to.
func (s Specification) WithRenamedAttribute(from, to string) (Specification, error) {
	if from == to {
		return s, nil
	}
	attrs := make([]attribute.Attribute, len(s.attributes))
	found := false
	for i, a := range s.attributes {
		if a.Name() == from {
			a = a.WithName(to)
			found = true
		}
		attrs[i] = a
	}
	if !found {
		return Specification{}, fmt.Errorf("%w: %s", ErrUnknownAttribute, from)
	}
	if err := validateAttributes(attrs); err != nil {
		return Specification{}, err
	}
	s.attributes = attrs
	return s, nil
}

// Renames lists attributes whose id is shared with next but whose name differs.
func (s Specification) Renames(next Specification) []Rename {
	byID := make(map[string]string, len(s.attributes))
	for _, a := range s.attributes {
		if a.ID() != "" {
			byID[a.ID()] = a.Name()
		}
	}
	var out []Rename
	for _, a := range next.attributes {
		old, ok := byID[a.ID()]
		if ok && old != a.Name() {
			out = append(out, Rename{AttributeID: a.ID(), From: old, To: a.Name()})
		}
	}
	return out
}

// Removed lists attribute names present in s but absent (by id) from next.
func (s Specification) Removed(next Specification) []string {
	kept := make(map[string]bool, len(next.attributes))
	for _, a := range next.attributes {
		kept[a.ID()] = true
	}
	var out []string
	for _, a := range s.attributes {
		if !kept[a.ID()] {
			out = append(out, a.Name())
		}
	}
	return out
}

// Successor returns next stamped as the revision after s.
func (s Specification) Successor(next Specification) Specification {
	next.name = s.name
	next.createdAt = s.createdAt
	next.revision = s.revision + 1
	return next
}
