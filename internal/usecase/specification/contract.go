package specification

import (
	"context"

	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/jobs"
)

// Repository defines the storage contract for specifications.
type Repository interface {
	Create(ctx context.Context, spec domspec.Specification) error
	Save(ctx context.Context, spec domspec.Specification) error
	Get(ctx context.Context, name string) (domspec.Specification, error)
	List(ctx context.Context) ([]domspec.Specification, error)
	Delete(ctx context.Context, name string) error
}

// ValueStore rewrites and purges materialized values.
type ValueStore interface {
	Find(ctx context.Context, f domval.Filter) ([]domval.Value, error)
	Delete(ctx context.Context, ids ...string) error
	Rename(ctx context.Context, spec, from, to string) (int, error)
}

// DocumentReader reads stored documents of one type.
type DocumentReader interface {
	All(ctx context.Context, doctype string) ([]domdoc.Document, error)
}

// Queue dispatches background jobs.
type Queue interface {
	Enqueue(ctx context.Context, job jobs.Job) (bool, error)
}
