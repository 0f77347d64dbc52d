package specdex

import "time"

// AttributeKind is the value type of an attribute.
type AttributeKind string

// Attribute kinds.
const (
	KindCategorical AttributeKind = "categorical"
	KindNumeric     AttributeKind = "numeric"
	KindDate        AttributeKind = "date"
)

// Attribute is one characteristic of a specification. An attribute with a
// Field is derived from that document field; one without is set manually.
type Attribute struct {
	ID          string
	Name        string
	AppliedOn   string
	Field       string
	Kind        AttributeKind
	Component   string
	MultiValued bool
	Index       int
}

// Specification is a named, optionally scoped group of attributes.
type Specification struct {
	Name       string
	Title      string
	ScopeType  string
	ScopeField string
	ApplyOn    string
	Disabled   bool
	Attributes []Attribute
	CreatedAt  time.Time
	Revision   int
}

// Document is a stored document.
type Document struct {
	Doctype    string
	Name       string
	Fields     map[string]any
	ModifiedAt time.Time
}

// DocumentList is one cursor page of documents.
type DocumentList struct {
	Documents  []Document
	NextCursor string
}

// BatchItem is one document of a batch upsert.
type BatchItem struct {
	Name       string
	Fields     map[string]any
	Attributes map[string]AttributeValue
}

// BatchResult is the outcome of one batch item.
type BatchResult struct {
	Name   string
	Status string // "created", "updated", "error"
	Err    error
}

// AttributeValue is a manual value for a non-derived attribute.
type AttributeValue struct {
	values []string
	list   bool
}

// Value sets the single value of an attribute.
func Value(v string) AttributeValue { return AttributeValue{values: []string{v}} }

// Values adds values to a multi-valued attribute; existing values are kept.
func Values(vs ...string) AttributeValue { return AttributeValue{values: vs, list: true} }

// ValueRow is one attribute value row of an update or bulk creation.
type ValueRow struct {
	ID            string
	ReferenceType string
	ReferenceName string
	Attribute     string
	Field         string
	Value         string
}

// StoredValue is a stored attribute value in display form.
type StoredValue struct {
	ID            string
	Specification string
	Attribute     string
	Field         string
	Value         string
}

// ApplyOn is a scope some enabled specification applies to.
type ApplyOn struct {
	ScopeType string
	ApplyOn   string
}

// FacetComponent is one filter of the facet catalog.
type FacetComponent struct {
	AttributeID   string
	AttributeName string
	Specification string
	Component     string
	Kind          string
	Values        []any
	Visible       bool
}

// FacetResult is the outcome of a facet selection. An unrestricted result
// means no facet was active.
type FacetResult struct {
	Restricted bool
	Names      []string
}

// ListingSettings configures listing queries.
type ListingSettings struct {
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

// Sort orders of a listing.
const (
	SortTitleAsc  = "Title A-Z"
	SortTitleDesc = "Title Z-A"
	SortCodeAsc   = "Item Code A-Z"
	SortCodeDesc  = "Item Code Z-A"
)

// ListingQuery is one listing request.
type ListingQuery struct {
	Facets       map[string][]string
	FieldFilters map[string][]string
	Search       string
	Scope        string
	Start        int
	SortOrder    string
}

// ListingPage is one page of a listing.
type ListingPage struct {
	Documents  []Document
	TotalCount int
}

// Color is a palette entry used by colour-picker attributes.
type Color struct {
	Name  string
	Hex   string
	Image string
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
