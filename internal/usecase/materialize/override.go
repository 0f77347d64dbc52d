package materialize

import "strings"

// Override is a manual value for a manual attribute, or for a derived one
// whose source field is blank: either a single scalar (upserts the canonical
// row) or a list (add-only).
type Override struct {
	Values []string
	IsList bool
}

// Scalar creates a single-value override.
func Scalar(v string) Override { return Override{Values: []string{v}} }

// List creates a multi-value override.
func List(vs ...string) Override { return Override{Values: vs, IsList: true} }

// scalar returns the single value of a scalar override.
func (o Override) scalar() string {
	if len(o.Values) == 0 {
		return ""
	}
	return o.Values[0]
}

// splitValues splits a comma-separated literal into trimmed non-empty values.
func splitValues(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
