package document

import (
	"context"

	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/usecase/materialize"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc domdoc.Document) (created bool, err error)
	Get(ctx context.Context, doctype, name string) (domdoc.Document, error)
	List(ctx context.Context, doctype, cursor string, limit int) (
		docs []domdoc.Document, nextCursor string, err error,
	)
	Count(ctx context.Context, doctype string) (int, error)
	Delete(ctx context.Context, doctype, name string) error
}

// Materializer keeps attribute values in step with saved documents.
type Materializer interface {
	ValidateOverrides(ctx context.Context, doc domdoc.Document, overrides map[string]materialize.Override) error
	MaterializeDocument(ctx context.Context, doc domdoc.Document, overrides map[string]materialize.Override) error
	RemoveDocument(ctx context.Context, doctype, name string) error
}
