package db

// Clause restricts one indexed field. A clause with Tags matches any of the
// tags; otherwise Min/Max bound a numeric field (nil means unbounded).
type Clause struct {
	Field string
	Tags  []string
	Min   *float64
	Max   *float64
}

// IsTag reports whether the clause is a tag membership test.
func (c Clause) IsTag() bool { return len(c.Tags) > 0 }

// TagClause matches documents whose field carries one of tags.
func TagClause(field string, tags ...string) Clause {
	return Clause{Field: field, Tags: tags}
}

// RangeClause matches documents whose numeric field lies in [lo, hi].
func RangeClause(field string, lo, hi *float64) Clause {
	return Clause{Field: field, Min: lo, Max: hi}
}

// Query is the input for a filtered FT.SEARCH. Clauses are ANDed; an empty
// clause list matches every document of the index.
type Query struct {
	Index        string
	Clauses      []Clause
	Offset       int
	Limit        int
	ReturnFields []string
	SortBy       string
	SortDesc     bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
