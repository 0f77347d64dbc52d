package materialize

import (
	"context"

	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/jobs"
)

// SpecReader reads specification definitions.
type SpecReader interface {
	Get(ctx context.Context, name string) (domspec.Specification, error)
	List(ctx context.Context) ([]domspec.Specification, error)
}

// ValueRepository persists attribute value rows.
type ValueRepository interface {
	Get(ctx context.Context, id string) (domval.Value, error)
	Save(ctx context.Context, v domval.Value) error
	Delete(ctx context.Context, ids ...string) error
	Find(ctx context.Context, f domval.Filter) ([]domval.Value, error)
}

// DocumentReader reads stored documents.
type DocumentReader interface {
	Get(ctx context.Context, doctype, name string) (domdoc.Document, error)
	All(ctx context.Context, doctype string) ([]domdoc.Document, error)
}

// Queue dispatches background jobs.
type Queue interface {
	Enqueue(ctx context.Context, job jobs.Job) (bool, error)
}
