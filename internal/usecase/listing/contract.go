package listing

import (
	"context"

	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
)

// DocumentReader reads every document of one type.
type DocumentReader interface {
	All(ctx context.Context, doctype string) ([]domdoc.Document, error)
}

// FacetEngine resolves facet selections into a document id set.
type FacetEngine interface {
	SelectDocuments(ctx context.Context, doctype string, sel domfacet.Selection) (domfacet.Result, error)
}
