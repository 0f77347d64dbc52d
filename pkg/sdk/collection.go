package specdex

import (
	"context"
	"fmt"
)

// TypedCollection is a schema-first view of one document type.
// The mapping is inferred from T's struct tags at construction time.
type TypedCollection[T any] struct {
	doctype string
	client  *Client
	meta    *schemaMeta
}

// NewCollection creates a typed handle for a document type.
// T must be a struct with specdex tags. Schema is parsed once and cached.
func NewCollection[T any](client *Client, doctype string) (*TypedCollection[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new collection %q: %w", doctype, err)
	}
	return &TypedCollection[T]{doctype: doctype, client: client, meta: meta}, nil
}

// Upsert stores an item and its manual attribute values. Returns true if created.
func (tc *TypedCollection[T]) Upsert(ctx context.Context, item T) (bool, error) {
	name, fields, attrs := tc.meta.toDocument(item)
	return tc.client.Documents(tc.doctype).Upsert(ctx, name, fields, attrs)
}

// UpsertBatch stores items in one batch, reporting a result per item.
func (tc *TypedCollection[T]) UpsertBatch(ctx context.Context, items []T) ([]BatchResult, error) {
	batch := make([]BatchItem, len(items))
	for i, item := range items {
		name, fields, attrs := tc.meta.toDocument(item)
		batch[i] = BatchItem{Name: name, Fields: fields, Attributes: attrs}
	}
	return tc.client.Documents(tc.doctype).UpsertBatch(ctx, batch)
}

// Get retrieves an item by document name, attribute fields included.
func (tc *TypedCollection[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	docs := tc.client.Documents(tc.doctype)
	doc, err := docs.Get(ctx, name)
	if err != nil {
		return zero, fmt.Errorf("get: %w", err)
	}
	var values []StoredValue
	if len(tc.meta.attributes) > 0 {
		if values, err = docs.Values(ctx, name, ""); err != nil {
			return zero, fmt.Errorf("get: %w", err)
		}
	}
	item, ok := tc.meta.fromDocument(doc, values).(T)
	if !ok {
		return zero, fmt.Errorf("get: type assertion failed")
	}
	return item, nil
}

// Delete removes an item by document name.
func (tc *TypedCollection[T]) Delete(ctx context.Context, name string) error {
	return tc.client.Documents(tc.doctype).Delete(ctx, name)
}

// Count returns the number of stored items.
func (tc *TypedCollection[T]) Count(ctx context.Context) (int, error) {
	return tc.client.Documents(tc.doctype).Count(ctx)
}

// Listing returns a fluent listing builder for this collection.
func (tc *TypedCollection[T]) Listing() *ListingBuilder[T] {
	return &ListingBuilder[T]{tc: tc}
}
