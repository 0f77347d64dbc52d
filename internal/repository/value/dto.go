package value

import (
	"encoding/json"
	"fmt"

	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// valueDoc is the JSON document stored per value row.
type valueDoc struct {
	ID            string   `json:"id"`
	ReferenceType string   `json:"reference_type"`
	ReferenceName string   `json:"reference_name"`
	Specification string   `json:"specification"`
	Attribute     string   `json:"attribute"`
	Field         string   `json:"field,omitempty"`
	Value         string   `json:"value"`
	Num           *float64 `json:"num,omitempty"`
}

func toDoc(v domval.Value) valueDoc {
	return valueDoc{
		ID:            v.ID(),
		ReferenceType: v.ReferenceType(),
		ReferenceName: v.ReferenceName(),
		Specification: v.Specification(),
		Attribute:     v.Attribute(),
		Field:         v.Field(),
		Value:         v.Text(),
		Num:           v.Numeric(),
	}
}

func (d valueDoc) toDomain() domval.Value {
	return domval.Reconstruct(domval.Params{
		ID:            d.ID,
		ReferenceType: d.ReferenceType,
		ReferenceName: d.ReferenceName,
		Specification: d.Specification,
		Attribute:     d.Attribute,
		Field:         d.Field,
		Text:          d.Value,
		Numeric:       d.Num,
	})
}

// parseValue accepts both a bare object (JSON.GET key) and the one-element
// array returned for the "$" path (FT.SEARCH RETURN $).
func parseValue(raw string) (domval.Value, error) {
	if len(raw) > 0 && raw[0] == '[' {
		var docs []valueDoc
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return domval.Value{}, fmt.Errorf("unmarshal value: %w", err)
		}
		if len(docs) == 0 {
			return domval.Value{}, fmt.Errorf("empty value document")
		}
		return docs[0].toDomain(), nil
	}
	var doc valueDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domval.Value{}, fmt.Errorf("unmarshal value: %w", err)
	}
	return doc.toDomain(), nil
}
