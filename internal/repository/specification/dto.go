package specification

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
)

// AttributeRow is the JSON-serializable representation of an attribute.
// The SQL backend stores the same rows in a JSON column.
type AttributeRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AppliedOn   string `json:"applied_on"`
	Field       string `json:"field,omitempty"`
	Kind        string `json:"kind"`
	Component   string `json:"component"`
	MultiValued bool   `json:"multi_valued,omitempty"`
	Index       int    `json:"idx"`
}

// AttributeRows converts attributes to rows.
func AttributeRows(attrs []attribute.Attribute) []AttributeRow {
	rows := make([]AttributeRow, len(attrs))
	for i, a := range attrs {
		rows[i] = AttributeRow{
			ID:          a.ID(),
			Name:        a.Name(),
			AppliedOn:   a.AppliedOn(),
			Field:       a.Field(),
			Kind:        string(a.Kind()),
			Component:   a.Component(),
			MultiValued: a.MultiValued(),
			Index:       a.Index(),
		}
	}
	return rows
}

// Attributes hydrates rows back into attributes.
func Attributes(rows []AttributeRow) []attribute.Attribute {
	attrs := make([]attribute.Attribute, len(rows))
	for i, r := range rows {
		attrs[i] = attribute.Reconstruct(attribute.Params{
			ID:          r.ID,
			Name:        r.Name,
			AppliedOn:   r.AppliedOn,
			Field:       r.Field,
			Kind:        attribute.Kind(r.Kind),
			Component:   r.Component,
			MultiValued: r.MultiValued,
		}, r.Index)
	}
	return attrs
}

// specToHash converts a Specification to a map for HSET.
func specToHash(spec specification.Specification) (map[string]string, error) {
	attrsJSON, err := json.Marshal(AttributeRows(spec.Attributes()))
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	enabled := "0"
	if spec.Enabled() {
		enabled = "1"
	}
	return map[string]string{
		"name":            spec.Name(),
		"scope_type":      spec.ScopeType(),
		"scope_field":     spec.ScopeField(),
		"apply_on":        spec.ApplyOn(),
		"enabled":         enabled,
		"attributes_json": string(attrsJSON),
		"created_at":      strconv.FormatInt(spec.CreatedAt(), 10),
		"revision":        strconv.Itoa(spec.Revision()),
	}, nil
}

// specFromHash hydrates a Specification from an HGETALL result map.
func specFromHash(m map[string]string) (specification.Specification, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return specification.Specification{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var rows []AttributeRow
	if raw := m["attributes_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rows); err != nil {
			return specification.Specification{}, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}

	revision := 1
	if revStr := m["revision"]; revStr != "" {
		if parsed, err := strconv.Atoi(revStr); err == nil {
			revision = parsed
		}
	}

	return specification.Reconstruct(specification.Params{
		Name:       m["name"],
		ScopeType:  m["scope_type"],
		ScopeField: m["scope_field"],
		ApplyOn:    m["apply_on"],
		Enabled:    m["enabled"] == "1",
		Attributes: Attributes(rows),
	}, createdAt, revision), nil
}
