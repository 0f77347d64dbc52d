package specdex

import (
	"context"
	"fmt"
	"time"
)

// DocumentService stores documents of one type and their attribute values.
type DocumentService struct {
	doctype string
	svc     documentUseCase
	values  valueUseCase
	obs     *observer
}

// Upsert stores a document and materializes its attribute values.
// Returns true if the document was created, false if updated.
func (s *DocumentService) Upsert(
	ctx context.Context, name string, fields map[string]any, attrs map[string]AttributeValue,
) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert", start, err, "doctype", s.doctype) }()

	_, created, err := s.svc.Upsert(ctx, s.doctype, name, fields, toInternalOverrides(attrs))
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	return created, nil
}

// Patch merges fields into a stored document; a nil value removes the field.
func (s *DocumentService) Patch(
	ctx context.Context, name string, fields map[string]any, attrs map[string]AttributeValue,
) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.patch", start, err, "doctype", s.doctype) }()

	doc, err := s.svc.Patch(ctx, s.doctype, name, fields, toInternalOverrides(attrs))
	if err != nil {
		return Document{}, fmt.Errorf("patch document: %w", err)
	}
	return fromInternalDocument(doc), nil
}

// UpsertBatch saves documents one by one. It returns a result per item and
// an error only when at least one item failed.
func (s *DocumentService) UpsertBatch(ctx context.Context, items []BatchItem) (_ []BatchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert_batch", start, err, "doctype", s.doctype) }()

	results := fromBatchResults(s.svc.UpsertBatch(ctx, s.doctype, toInternalBatch(items)))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		err = fmt.Errorf("upsert batch: %d of %d items failed", failed, len(items))
	}
	return results, err
}

// Get retrieves a document by name.
func (s *DocumentService) Get(ctx context.Context, name string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err, "doctype", s.doctype) }()

	doc, err := s.svc.Get(ctx, s.doctype, name)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(doc), nil
}

// List returns one cursor page of documents.
func (s *DocumentService) List(ctx context.Context, cursor string, limit int) (_ DocumentList, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err, "doctype", s.doctype) }()

	docs, next, err := s.svc.List(ctx, s.doctype, cursor, limit)
	if err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}
	return DocumentList{Documents: fromInternalDocuments(docs), NextCursor: next}, nil
}

// Count returns the number of documents of this type.
func (s *DocumentService) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.count", start, err, "doctype", s.doctype) }()

	n, err := s.svc.Count(ctx, s.doctype)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Delete removes a document and its attribute values.
func (s *DocumentService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err, "doctype", s.doctype) }()

	if err = s.svc.Delete(ctx, s.doctype, name); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Values returns the attribute values of a document. With a specification
// name it returns that specification's values, one per attribute.
func (s *DocumentService) Values(ctx context.Context, name, specification string) (_ []StoredValue, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.values", start, err, "doctype", s.doctype) }()

	views, err := s.values.GetValues(ctx, s.doctype, name, specification)
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}
	return fromInternalViews(views), nil
}

// UpdateValues rewrites rows by ID (an empty Value deletes the row) and
// adds rows without one.
func (s *DocumentService) UpdateValues(ctx context.Context, name, specification string, rows []ValueRow) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.update_values", start, err, "doctype", s.doctype) }()

	if err = s.values.UpdateValues(ctx, s.doctype, name, specification, toInternalRows(rows)); err != nil {
		return fmt.Errorf("update values: %w", err)
	}
	return nil
}
