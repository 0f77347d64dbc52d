package specdex

import (
	"context"
	"fmt"
)

// Page is one typed listing page.
type Page[T any] struct {
	Items      []T
	TotalCount int
}

// ListingBuilder is a fluent builder for typed listing queries.
type ListingBuilder[T any] struct {
	tc *TypedCollection[T]
	q  ListingQuery
}

// Facet accepts documents whose attribute has one of values.
func (b *ListingBuilder[T]) Facet(attribute string, values ...string) *ListingBuilder[T] {
	if b.q.Facets == nil {
		b.q.Facets = make(map[string][]string)
	}
	b.q.Facets[attribute] = values
	return b
}

// Between bounds a numeric or date attribute. An empty bound is open.
func (b *ListingBuilder[T]) Between(attribute, low, high string) *ListingBuilder[T] {
	return b.Facet(attribute, low, high)
}

// Where filters on a document field: one value is equality, several are membership.
func (b *ListingBuilder[T]) Where(field string, values ...string) *ListingBuilder[T] {
	if b.q.FieldFilters == nil {
		b.q.FieldFilters = make(map[string][]string)
	}
	b.q.FieldFilters[field] = values
	return b
}

// Search sets the free-text term matched against the search fields.
func (b *ListingBuilder[T]) Search(term string) *ListingBuilder[T] {
	b.q.Search = term
	return b
}

// Scope restricts the listing to one scope value, e.g. an item group.
func (b *ListingBuilder[T]) Scope(scope string) *ListingBuilder[T] {
	b.q.Scope = scope
	return b
}

// Sort sets the sort order, one of the Sort constants.
func (b *ListingBuilder[T]) Sort(order string) *ListingBuilder[T] {
	b.q.SortOrder = order
	return b
}

// Start sets the page offset.
func (b *ListingBuilder[T]) Start(n int) *ListingBuilder[T] {
	b.q.Start = n
	return b
}

// Do executes the listing and returns typed items. Attribute fields are
// left empty; use Get to load them.
func (b *ListingBuilder[T]) Do(ctx context.Context) (Page[T], error) {
	page, err := b.tc.client.Facets(b.tc.doctype).List(ctx, b.q)
	if err != nil {
		return Page[T]{}, fmt.Errorf("typed listing: %w", err)
	}
	items := make([]T, 0, len(page.Documents))
	for _, doc := range page.Documents {
		item, ok := b.tc.meta.fromDocument(doc, nil).(T)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return Page[T]{Items: items, TotalCount: page.TotalCount}, nil
}
