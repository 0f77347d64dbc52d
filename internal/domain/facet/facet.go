// Package facet models facet selections, their predicates and results.
package facet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/specdex/internal/domain/epoch"
)

// MaxAttributes bounds the attributes of one selection.
const MaxAttributes = 64

// Criterion is the selection for one attribute. For categorical attributes
// Values is the accepted set; for numeric and date attributes Values[0] is
// the low bound and Values[len-1] the high bound (either may be empty).
type Criterion struct {
	AttributeID string
	Values      []string
}

// Selection maps attribute name to criterion.
type Selection struct {
	criteria map[string]Criterion
}

// NewSelection validates a selection; blank values are dropped.
func NewSelection(criteria map[string]Criterion) (Selection, error) {
	if len(criteria) > MaxAttributes {
		return Selection{}, fmt.Errorf("too many facet attributes (max %d)", MaxAttributes)
	}
	out := make(map[string]Criterion, len(criteria))
	for name, c := range criteria {
		if strings.TrimSpace(name) == "" {
			return Selection{}, fmt.Errorf("facet attribute name is required")
		}
		out[name] = c
	}
	return Selection{criteria: out}, nil
}

// Active returns, sorted by name, the attributes carrying at least one non-blank value.
func (s Selection) Active() []string {
	var names []string
	for name, c := range s.criteria {
		if hasValue(c.Values) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no facet restricts the result.
func (s Selection) IsEmpty() bool { return len(s.Active()) == 0 }

// Criterion returns the selection for one attribute.
func (s Selection) Criterion(name string) Criterion { return s.criteria[name] }

// Accepted returns the trimmed, non-blank, de-duplicated categorical values.
func (c Criterion) Accepted() []string {
	seen := make(map[string]bool, len(c.Values))
	var out []string
	for _, v := range c.Values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func hasValue(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func bounds(values []string) (string, string) {
	if len(values) == 0 {
		return "", ""
	}
	return strings.TrimSpace(values[0]), strings.TrimSpace(values[len(values)-1])
}

// NumericRange parses the bounds values[0] and values[len-1]; reversed bounds
// are swapped. A single value selects exactly that number.
func (c Criterion) NumericRange() (lo, hi *float64, err error) {
	loS, hiS := bounds(c.Values)
	parse := func(s string) (*float64, error) {
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric bound %q", s)
		}
		return &f, nil
	}
	if lo, err = parse(loS); err != nil {
		return nil, nil, err
	}
	if hi, err = parse(hiS); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// DateRange encodes the bounds, substituting far-past and far-future sentinels
// for missing ones. ok=false when the codec cannot encode (soft failure).
func (c Criterion) DateRange(dates epoch.Codec) (lo, hi float64, ok bool, err error) {
	loS, hiS := bounds(c.Values)
	enc := func(s string, fallback int64) (float64, bool, error) {
		if s == "" {
			return float64(fallback), true, nil
		}
		t, parsed := epoch.ParseDate(s)
		if !parsed {
			return 0, false, fmt.Errorf("invalid date bound %q", s)
		}
		v, encoded := dates.Encode(t)
		return float64(v), encoded, nil
	}
	minV, okMin := dates.Encode(epoch.MinDate)
	maxV, okMax := dates.Encode(epoch.MaxDate)
	if !okMin || !okMax {
		return 0, 0, false, nil
	}
	lo, okLo, err := enc(loS, minV)
	if err != nil {
		return 0, 0, false, err
	}
	hi, okHi, err := enc(hiS, maxV)
	if err != nil {
		return 0, 0, false, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, okLo && okHi, nil
}

// Result is the outcome of a facet query. An unrestricted result applies no
// id filter; a restricted one admits exactly IDs.
type Result struct {
	Restricted bool
	IDs        []string
}

// Unrestricted is the result of a selection without active facets.
func Unrestricted() Result { return Result{} }

// Admits reports whether name passes the facet filter.
func (r Result) Admits(name string) bool {
	if !r.Restricted {
		return true
	}
	i := sort.SearchStrings(r.IDs, name)
	return i < len(r.IDs) && r.IDs[i] == name
}

// Intersect returns the sorted intersection of all sets.
// Any empty set empties the result.
func Intersect(sets []map[string]struct{}) []string {
	if len(sets) == 0 {
		return nil
	}
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })
	out := make([]string, 0, len(sets[0]))
	for id := range sets[0] {
		inAll := true
		for _, s := range sets[1:] {
			if _, ok := s[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Component is one facet of the catalog shown to a filter UI.
type Component struct {
	AttributeID   string
	AttributeName string
	Specification string
	Component     string
	Kind          string
	Values        []any
	Visible       bool
}
