package patch

import (
	"fmt"

	"github.com/kailas-cloud/specdex/internal/domain/document"
)

// Patch is a partial document update.
// A nil value removes the field; fields not named are unchanged.
type Patch struct {
	fields map[string]any
}

// New validates and creates a Patch. At least one field must be provided.
func New(fields map[string]any) (Patch, error) {
	if len(fields) == 0 {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	for k := range fields {
		if k == "" {
			return Patch{}, fmt.Errorf("field name is required")
		}
	}
	return Patch{fields: fields}, nil
}

// Fields returns the field updates (nil value = delete).
func (p Patch) Fields() map[string]any { return p.fields }

// Apply merges the patch into doc and validates the result.
func (p Patch) Apply(doc document.Document, modifiedAt int64) (document.Document, error) {
	merged := doc.Fields()
	for k, v := range p.fields {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	out, err := document.New(doc.Doctype(), doc.Name(), merged, modifiedAt)
	if err != nil {
		return document.Document{}, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}
