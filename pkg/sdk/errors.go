package specdex

import "github.com/kailas-cloud/specdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound              = domain.ErrNotFound
	ErrAlreadyExists         = domain.ErrAlreadyExists
	ErrInvalidSchema         = domain.ErrInvalidSchema
	ErrConfiguration         = domain.ErrConfiguration
	ErrSpecificationNotFound = domain.ErrSpecificationNotFound
	ErrAttributeNotFound     = domain.ErrAttributeNotFound
	ErrDocumentNotFound      = domain.ErrDocumentNotFound
	ErrRevisionConflict      = domain.ErrRevisionConflict
)
