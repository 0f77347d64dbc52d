package document

import (
	"encoding/json"
	"fmt"

	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
)

// documentJSON is the stored JSON shape of a document.
type documentJSON struct {
	Doctype    string         `json:"doctype"`
	Name       string         `json:"name"`
	ModifiedAt int64          `json:"modified_at"`
	Fields     map[string]any `json:"fields"`
}

func toJSON(doc domdoc.Document) documentJSON {
	return documentJSON{
		Doctype:    doc.Doctype(),
		Name:       doc.Name(),
		ModifiedAt: doc.ModifiedAt(),
		Fields:     doc.Fields(),
	}
}

func (d documentJSON) toDomain() domdoc.Document {
	return domdoc.Reconstruct(d.Doctype, d.Name, d.Fields, d.ModifiedAt)
}

// parseDocument accepts a bare object (JSON.GET key) or the one-element
// array of the "$" path (FT.SEARCH RETURN $).
func parseDocument(raw string) (domdoc.Document, error) {
	if len(raw) > 0 && raw[0] == '[' {
		var docs []documentJSON
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return domdoc.Document{}, fmt.Errorf("unmarshal document: %w", err)
		}
		if len(docs) == 0 {
			return domdoc.Document{}, fmt.Errorf("empty document")
		}
		return docs[0].toDomain(), nil
	}
	var doc documentJSON
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc.toDomain(), nil
}
