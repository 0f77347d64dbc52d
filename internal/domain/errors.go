package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid request or definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrConfiguration signals a specification that cannot be applied as defined.
	ErrConfiguration = errors.New("configuration error")

	// ErrSpecificationNotFound signals a missing specification.
	ErrSpecificationNotFound = fmt.Errorf("specification %w", ErrNotFound)
	// ErrAttributeNotFound signals an attribute missing from a specification.
	ErrAttributeNotFound = fmt.Errorf("attribute %w", ErrNotFound)
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	// ErrValueNotFound signals a missing attribute value row.
	ErrValueNotFound = fmt.Errorf("attribute value %w", ErrNotFound)

	// ErrRevisionConflict signals an optimistic locking conflict.
	ErrRevisionConflict = errors.New("revision conflict")
)

// RevisionConflictError wraps ErrRevisionConflict with the current resource revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }

// NewRevisionConflict creates a revision conflict error.
func NewRevisionConflict(currentRevision int) error {
	return &RevisionConflictError{CurrentRevision: currentRevision}
}
