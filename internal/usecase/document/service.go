package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/domain/document/patch"
	"github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/usecase/materialize"
)

// MaxBatchSize is the maximum number of documents per batch request.
const MaxBatchSize = 100

// Item is one document of a batch upsert.
type Item struct {
	Name      string
	Fields    map[string]any
	Overrides map[string]materialize.Override
}

// Service handles document CRUD; every save materializes attribute values.
type Service struct {
	repo            Repository
	values          Materializer
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
	maxBatchSize    int
}

// New creates a document service.
func New(repo Repository, values Materializer) *Service {
	return &Service{
		repo:            repo,
		values:          values,
		now:             time.Now,
		defaultPageSize: 20,
		maxPageSize:     100,
		maxBatchSize:    MaxBatchSize,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert stores a document and materializes its attribute values.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(
	ctx context.Context, doctype, name string, fields map[string]any, overrides map[string]materialize.Override,
) (domdoc.Document, bool, error) {
	doc, err := domdoc.New(doctype, name, fields, s.now().UnixMilli())
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("validate document: %w: %w", domain.ErrInvalidSchema, err)
	}

	if err := s.values.ValidateOverrides(ctx, doc, overrides); err != nil {
		return domdoc.Document{}, false, fmt.Errorf("validate attribute values: %w", err)
	}

	created, err := s.repo.Upsert(ctx, doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}

	if err := s.values.MaterializeDocument(ctx, doc, overrides); err != nil {
		return doc, created, fmt.Errorf("materialize values: %w", err)
	}

	logger.FromContext(ctx).Debug("document saved",
		zap.String("doctype", doctype),
		zap.String("name", name),
		zap.Bool("created", created),
	)
	return doc, created, nil
}

// Patch merges fields into a stored document and rematerializes its values.
// A nil field value removes the field.
func (s *Service) Patch(
	ctx context.Context, doctype, name string, fields map[string]any, overrides map[string]materialize.Override,
) (domdoc.Document, error) {
	var p patch.Patch
	if len(fields) > 0 || len(overrides) == 0 {
		var err error
		if p, err = patch.New(fields); err != nil {
			return domdoc.Document{}, fmt.Errorf("validate patch: %w: %w", domain.ErrInvalidSchema, err)
		}
	}

	current, err := s.repo.Get(ctx, doctype, name)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	doc, err := p.Apply(current, s.now().UnixMilli())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	if err := s.values.ValidateOverrides(ctx, doc, overrides); err != nil {
		return domdoc.Document{}, fmt.Errorf("validate attribute values: %w", err)
	}
	if _, err := s.repo.Upsert(ctx, doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("patch document: %w", err)
	}
	if err := s.values.MaterializeDocument(ctx, doc, overrides); err != nil {
		return doc, fmt.Errorf("materialize values: %w", err)
	}
	return doc, nil
}

// UpsertBatch saves documents one by one and reports a result per item.
// A failing item does not stop the batch.
func (s *Service) UpsertBatch(ctx context.Context, doctype string, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(
				item.Name,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidSchema),
			)
		}
		return results
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i] = dombatch.NewError(item.Name, err)
			continue
		}
		_, created, err := s.Upsert(ctx, doctype, item.Name, item.Fields, item.Overrides)
		if err != nil {
			results[i] = dombatch.NewError(item.Name, err)
			continue
		}
		results[i] = dombatch.NewSaved(item.Name, created)
	}

	if failed := dombatch.Failed(results); failed > 0 {
		logger.FromContext(ctx).Warn("batch upsert finished with errors",
			zap.String("doctype", doctype),
			zap.Int("items", len(items)),
			zap.Int("failed", failed),
		)
	}
	return results
}

// Get retrieves a document.
func (s *Service) Get(ctx context.Context, doctype, name string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, doctype, name)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a paginated list of documents of one type.
func (s *Service) List(
	ctx context.Context, doctype, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, nextCursor, err := s.repo.List(ctx, doctype, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, nextCursor, nil
}

// Count returns the number of documents of one type.
func (s *Service) Count(ctx context.Context, doctype string) (int, error) {
	n, err := s.repo.Count(ctx, doctype)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Delete removes a document and its attribute values.
func (s *Service) Delete(ctx context.Context, doctype, name string) error {
	if err := s.repo.Delete(ctx, doctype, name); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.values.RemoveDocument(ctx, doctype, name); err != nil {
		return fmt.Errorf("remove attribute values: %w", err)
	}
	return nil
}
