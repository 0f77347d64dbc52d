// Package memory holds in-process repositories with the same contracts as the
// Redis and SQL backends. Usecase tests run against them.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/kailas-cloud/specdex/internal/domain"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// Specs stores specifications by name.
type Specs struct {
	mu    sync.RWMutex
	specs map[string]domspec.Specification
}

// NewSpecs creates an empty specification store.
func NewSpecs() *Specs {
	return &Specs{specs: make(map[string]domspec.Specification)}
}

// Create stores a new specification.
func (s *Specs) Create(_ context.Context, spec domspec.Specification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.specs[spec.Name()]; ok {
		return domain.ErrAlreadyExists
	}
	s.specs[spec.Name()] = spec
	return nil
}

// Save overwrites a specification.
func (s *Specs) Save(_ context.Context, spec domspec.Specification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[spec.Name()] = spec
	return nil
}

// Get returns a specification by name.
func (s *Specs) Get(_ context.Context, name string) (domspec.Specification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.specs[name]
	if !ok {
		return domspec.Specification{}, domain.ErrSpecificationNotFound
	}
	return spec, nil
}

// List returns all specifications sorted by name.
func (s *Specs) List(_ context.Context) ([]domspec.Specification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domspec.Specification, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Delete removes a specification.
func (s *Specs) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.specs[name]; !ok {
		return domain.ErrSpecificationNotFound
	}
	delete(s.specs, name)
	return nil
}

// Values stores attribute value rows by id.
type Values struct {
	mu   sync.RWMutex
	rows map[string]domval.Value
}

// NewValues creates an empty value store.
func NewValues() *Values {
	return &Values{rows: make(map[string]domval.Value)}
}

// Get returns a row by id.
func (s *Values) Get(_ context.Context, id string) (domval.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.rows[id]
	if !ok {
		return domval.Value{}, domain.ErrValueNotFound
	}
	return v, nil
}

// Save upserts a row by id.
func (s *Values) Save(_ context.Context, v domval.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[v.ID()] = v
	return nil
}

// Delete removes rows; missing ids are ignored.
func (s *Values) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.rows, id)
	}
	return nil
}

// Find returns matching rows sorted by attribute, then value.
func (s *Values) Find(_ context.Context, f domval.Filter) ([]domval.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domval.Value
	for _, v := range s.rows {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attribute() != out[j].Attribute() {
			return out[i].Attribute() < out[j].Attribute()
		}
		if out[i].Text() != out[j].Text() {
			return out[i].Text() < out[j].Text()
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// References returns the sorted distinct reference names matching l.
func (s *Values) References(_ context.Context, l domval.Lookup) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	names := []string{}
	for _, v := range s.rows {
		if l.Matches(v) && !seen[v.ReferenceName()] {
			seen[v.ReferenceName()] = true
			names = append(names, v.ReferenceName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Rename moves rows of spec from attribute from to attribute to.
func (s *Values) Rename(_ context.Context, spec, from, to string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, v := range s.rows {
		if v.Specification() == spec && v.Attribute() == from {
			s.rows[id] = v.WithAttribute(to)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored rows.
func (s *Values) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Documents stores documents by type and name.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]map[string]domdoc.Document
}

// NewDocuments creates an empty document store.
func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]map[string]domdoc.Document)}
}

// Upsert stores a document and reports whether it was new.
func (s *Documents) Upsert(_ context.Context, doc domdoc.Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.docs[doc.Doctype()]
	if !ok {
		byName = make(map[string]domdoc.Document)
		s.docs[doc.Doctype()] = byName
	}
	_, exists := byName[doc.Name()]
	byName[doc.Name()] = doc
	return !exists, nil
}

// Get returns a document.
func (s *Documents) Get(_ context.Context, doctype, name string) (domdoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[doctype][name]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns one page of documents sorted by name. The cursor is an offset.
func (s *Documents) List(ctx context.Context, doctype, cursor string, limit int) ([]domdoc.Document, string, error) {
	all, _ := s.All(ctx, doctype)
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidSchema)
		}
		offset = n
	}
	if offset >= len(all) {
		return []domdoc.Document{}, "", nil
	}
	end := min(offset+limit, len(all))
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[offset:end], next, nil
}

// All returns every document of a type sorted by name.
func (s *Documents) All(_ context.Context, doctype string) ([]domdoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domdoc.Document, 0, len(s.docs[doctype]))
	for _, doc := range s.docs[doctype] {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Count returns the number of documents of a type.
func (s *Documents) Count(_ context.Context, doctype string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[doctype]), nil
}

// Delete removes a document.
func (s *Documents) Delete(_ context.Context, doctype, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doctype][name]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs[doctype], name)
	return nil
}

// Colors stores the palette by name.
type Colors struct {
	mu     sync.RWMutex
	colors map[string]domcolor.Color
}

// NewColors creates an empty palette.
func NewColors() *Colors {
	return &Colors{colors: make(map[string]domcolor.Color)}
}

// Upsert stores a colour.
func (s *Colors) Upsert(_ context.Context, c domcolor.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[c.Name()] = c
	return nil
}

// List returns the palette sorted by name.
func (s *Colors) List(_ context.Context) ([]domcolor.Color, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domcolor.Color, 0, len(s.colors))
	for _, c := range s.colors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
