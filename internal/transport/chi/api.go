package chi

import (
	"encoding/json"
	"time"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeForbidden             ErrorCode = "forbidden"
	ErrorCodeValidationFailed      ErrorCode = "validation_failed"
	ErrorCodeConfigurationError    ErrorCode = "configuration_error"
	ErrorCodeNotFound              ErrorCode = "not_found"
	ErrorCodeSpecificationNotFound ErrorCode = "specification_not_found"
	ErrorCodeAttributeNotFound     ErrorCode = "attribute_not_found"
	ErrorCodeDocumentNotFound      ErrorCode = "document_not_found"
	ErrorCodeValueNotFound         ErrorCode = "value_not_found"
	ErrorCodeAlreadyExists         ErrorCode = "already_exists"
	ErrorCodeRevisionConflict      ErrorCode = "revision_conflict"
	ErrorCodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Attribute is an attribute definition.
type Attribute struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	AppliedOn   string `json:"applied_on"`
	Field       string `json:"field,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Component   string `json:"component,omitempty"`
	MultiValued bool   `json:"multi_valued,omitempty"`
	Index       *int   `json:"index,omitempty"`
}

// SpecificationRequest is the body of create and update.
type SpecificationRequest struct {
	Name       string      `json:"name"`
	ScopeType  string      `json:"scope_type"`
	ScopeField string      `json:"scope_field,omitempty"`
	ApplyOn    string      `json:"apply_on,omitempty"`
	Enabled    *bool       `json:"enabled,omitempty"`
	Attributes []Attribute `json:"attributes"`
}

// Specification is a stored specification.
type Specification struct {
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	ScopeType  string      `json:"scope_type"`
	ScopeField string      `json:"scope_field,omitempty"`
	ApplyOn    string      `json:"apply_on,omitempty"`
	Enabled    bool        `json:"enabled"`
	Attributes []Attribute `json:"attributes"`
	CreatedAt  time.Time   `json:"created_at"`
	Revision   int         `json:"revision"`
}

// SpecificationListResponse lists specifications.
type SpecificationListResponse struct {
	Items []Specification `json:"items"`
}

// RenameAttributeRequest is the body of an attribute rename.
type RenameAttributeRequest struct {
	NewName string `json:"new_name"`
}

// ValueRow is one value row of an update or bulk create.
type ValueRow struct {
	ID            string `json:"id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceName string `json:"reference_name,omitempty"`
	Attribute     string `json:"attribute"`
	Field         string `json:"field,omitempty"`
	Value         string `json:"value,omitempty"`
}

// CreateValuesRequest is the body of a bulk value creation.
type CreateValuesRequest struct {
	Rows []ValueRow `json:"rows"`
}

// CreateValuesResponse reports the dispatched jobs.
type CreateValuesResponse struct {
	Queued int `json:"queued"`
}

// UpdateValuesRequest is the body of a document value update.
type UpdateValuesRequest struct {
	Specification string     `json:"specification"`
	Rows          []ValueRow `json:"rows"`
}

// Value is a stored value in display form.
type Value struct {
	ID            string `json:"id,omitempty"`
	Specification string `json:"specification"`
	Attribute     string `json:"attribute"`
	Field         string `json:"field,omitempty"`
	Value         string `json:"value"`
}

// ValueListResponse lists values.
type ValueListResponse struct {
	Items []Value `json:"items"`
}

// ApplyOn is one scope of enabled specifications.
type ApplyOn struct {
	DT      string `json:"dt"`
	ApplyOn string `json:"apply_on"`
}

// ApplyOnListResponse lists scopes.
type ApplyOnListResponse struct {
	Items []ApplyOn `json:"items"`
}

// FieldnameListResponse lists document field names.
type FieldnameListResponse struct {
	Items []string `json:"items"`
}

// FacetComponent is one filter of the facet catalog.
type FacetComponent struct {
	AttributeID   string `json:"attribute_id"`
	AttributeName string `json:"attribute_name"`
	Specification string `json:"specification"`
	Component     string `json:"component"`
	Kind          string `json:"kind"`
	Values        []any  `json:"values"`
	Visible       bool   `json:"visible"`
}

// FacetCatalogResponse lists the facet catalog.
type FacetCatalogResponse struct {
	Items []FacetComponent `json:"items"`
}

// FacetCriterion is the selection of one attribute.
type FacetCriterion struct {
	AttributeID string   `json:"attribute_id,omitempty"`
	Values      []string `json:"values"`
}

// FacetSelectRequest is the body of a facet selection query.
type FacetSelectRequest struct {
	Attributes map[string]FacetCriterion `json:"attributes"`
}

// FacetSelectResponse is the matched document set.
type FacetSelectResponse struct {
	Restricted bool     `json:"restricted"`
	Items      []string `json:"items"`
}

// ListingRequest is the body of a listing query. Field filter values are a
// string (equality) or an array of strings (membership).
type ListingRequest struct {
	Attributes   map[string]FacetCriterion  `json:"attributes,omitempty"`
	FieldFilters map[string]json.RawMessage `json:"field_filters,omitempty"`
	Search       string                     `json:"search,omitempty"`
	Scope        string                     `json:"scope,omitempty"`
	Start        int                        `json:"start,omitempty"`
	SortOrder    string                     `json:"sort_order,omitempty"`
}

// ListingSettings echoes the listing configuration.
type ListingSettings struct {
	FacetsEnabled bool     `json:"facets_enabled"`
	HideVariants  bool     `json:"hide_variants"`
	ScopeField    string   `json:"scope_field"`
	TitleField    string   `json:"title_field"`
	SearchFields  []string `json:"search_fields"`
	PageLength    int      `json:"page_length"`
}

// ListingResponse is one page of a listing.
type ListingResponse struct {
	Items      []Document      `json:"items"`
	ItemsCount int             `json:"items_count"`
	Settings   ListingSettings `json:"settings"`
}

// UpsertDocumentRequest is the body of a document upsert. Attribute values
// are a string (single value) or an array of strings (add-only list).
type UpsertDocumentRequest struct {
	Fields     map[string]any             `json:"fields"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

// Document is a stored document.
type Document struct {
	Doctype    string         `json:"doctype"`
	Name       string         `json:"name"`
	Fields     map[string]any `json:"fields"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// DocumentListResponse is one page of documents.
type DocumentListResponse struct {
	Items      []Document `json:"items"`
	Total      *int       `json:"total,omitempty"`
	NextCursor *string    `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// BatchDocument is one document of a batch upsert.
type BatchDocument struct {
	Name       string                     `json:"name"`
	Fields     map[string]any             `json:"fields"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

// BatchUpsertRequest is the body of a batch document upsert.
type BatchUpsertRequest struct {
	Items []BatchDocument `json:"items"`
}

// BatchItemResult is the outcome of one batch item.
type BatchItemResult struct {
	Name   string         `json:"name"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse reports per-item outcomes of a batch.
type BatchResponse struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// ColorRequest is the body of a colour upsert.
type ColorRequest struct {
	Hex   string `json:"hex,omitempty"`
	Image string `json:"image,omitempty"`
}

// Color is a palette entry.
type Color struct {
	Name  string `json:"name"`
	Hex   string `json:"hex,omitempty"`
	Image string `json:"image,omitempty"`
}

// ColorListResponse lists the palette.
type ColorListResponse struct {
	Items []Color `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
