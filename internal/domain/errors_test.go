package domain

import (
	"errors"
	"testing"
)

func TestNotFoundFamily(t *testing.T) {
	for _, err := range []error{
		ErrSpecificationNotFound, ErrAttributeNotFound, ErrDocumentNotFound, ErrValueNotFound,
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v does not wrap ErrNotFound", err)
		}
	}
	if errors.Is(ErrDocumentNotFound, ErrSpecificationNotFound) {
		t.Error("document not found must not match specification not found")
	}
}

func TestRevisionConflictError(t *testing.T) {
	err := NewRevisionConflict(7)
	if !errors.Is(err, ErrRevisionConflict) {
		t.Fatal("expected ErrRevisionConflict")
	}
	var rce *RevisionConflictError
	if !errors.As(err, &rce) || rce.CurrentRevision != 7 {
		t.Fatalf("unexpected error: %v", err)
	}
	if err.Error() != "revision conflict: current revision is 7" {
		t.Errorf("message = %q", err.Error())
	}
}
