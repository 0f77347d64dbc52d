package document

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxNameLength bounds document type and document names.
	MaxNameLength = 140
	// MaxFields bounds the number of fields on one document.
	MaxFields = 256
)

// Document is a record of the external document store (immutable value object).
// Field values are scalars: string, float64, bool or nil.
type Document struct {
	doctype    string
	name       string
	fields     map[string]any
	modifiedAt int64
}

// ValidateName checks a document type or document name.
func ValidateName(kind, s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", kind)
	}
	if len(s) > MaxNameLength {
		return fmt.Errorf("%s too long (max %d)", kind, MaxNameLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s contains control characters", kind)
		}
	}
	return nil
}

// New validates and creates a Document.
func New(doctype, name string, fields map[string]any, modifiedAt int64) (Document, error) {
	if err := ValidateName("doctype", doctype); err != nil {
		return Document{}, err
	}
	if err := ValidateName("document name", name); err != nil {
		return Document{}, err
	}
	if len(fields) > MaxFields {
		return Document{}, fmt.Errorf("too many fields (max %d)", MaxFields)
	}
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "" {
			return Document{}, fmt.Errorf("field name is required")
		}
		nv, err := normalize(v)
		if err != nil {
			return Document{}, fmt.Errorf("field %q: %w", k, err)
		}
		normalized[k] = nv
	}
	return Document{doctype: doctype, name: name, fields: normalized, modifiedAt: modifiedAt}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(doctype, name string, fields map[string]any, modifiedAt int64) Document {
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{doctype: doctype, name: name, fields: fields, modifiedAt: modifiedAt}
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Doctype returns the document type.
func (d Document) Doctype() string { return d.doctype }

// Name returns the document name (its id within the type).
func (d Document) Name() string { return d.name }

// ModifiedAt returns the last write timestamp (unix millis).
func (d Document) ModifiedAt() int64 { return d.modifiedAt }

// Fields returns a copy of the field map.
func (d Document) Fields() map[string]any {
	out := make(map[string]any, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}

// Has reports whether the field is set to a non-empty value.
func (d Document) Has(field string) bool {
	return d.Field(field) != ""
}

// Field returns the field value as text; missing and nil values are "".
func (d Document) Field(field string) string {
	switch v := d.fields[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the field parsed as a number.
func (d Document) Float(field string) (float64, bool) {
	switch v := d.fields[field].(type) {
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// WithFields returns a copy with the given fields replaced.
func (d Document) WithFields(fields map[string]any, modifiedAt int64) Document {
	return Document{doctype: d.doctype, name: d.name, fields: fields, modifiedAt: modifiedAt}
}
