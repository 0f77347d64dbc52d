package specdex

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SpecificationService manages specifications and their attribute values.
type SpecificationService struct {
	svc    specificationUseCase
	values valueUseCase
	obs    *observer
}

// Create stores a new specification. Attributes without an ID get one.
func (s *SpecificationService) Create(ctx context.Context, spec Specification) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.create", start, err, "specification", spec.Name) }()

	p, err := toInternalParams(spec)
	if err != nil {
		return Specification{}, fmt.Errorf("create specification: %w", err)
	}
	created, err := s.svc.Create(ctx, p)
	if err != nil {
		return Specification{}, fmt.Errorf("create specification: %w", err)
	}
	return fromInternalSpecification(created), nil
}

// Ensure creates a specification if it does not exist.
// If it already exists, returns it unchanged.
func (s *SpecificationService) Ensure(ctx context.Context, spec Specification) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.ensure", start, err, "specification", spec.Name) }()

	p, err := toInternalParams(spec)
	if err != nil {
		return Specification{}, fmt.Errorf("ensure specification: %w", err)
	}
	created, err := s.svc.Create(ctx, p)
	if err == nil {
		return fromInternalSpecification(created), nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return Specification{}, fmt.Errorf("ensure specification: %w", err)
	}
	existing, err := s.svc.Get(ctx, spec.Name)
	if err != nil {
		return Specification{}, fmt.Errorf("ensure specification: %w", err)
	}
	return fromInternalSpecification(existing), nil
}

// Get retrieves a specification by name.
func (s *SpecificationService) Get(ctx context.Context, name string) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.get", start, err, "specification", name) }()

	spec, err := s.svc.Get(ctx, name)
	if err != nil {
		return Specification{}, fmt.Errorf("get specification: %w", err)
	}
	return fromInternalSpecification(spec), nil
}

// List returns every specification.
func (s *SpecificationService) List(ctx context.Context) (_ []Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.list", start, err) }()

	specs, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specifications: %w", err)
	}
	out := make([]Specification, len(specs))
	for i, sp := range specs {
		out[i] = fromInternalSpecification(sp)
	}
	return out, nil
}

// Update replaces a definition. A non-zero spec.Revision must match the
// stored revision, else ErrRevisionConflict. Renamed and removed attributes
// have their stored values rewritten or purged by background jobs.
func (s *SpecificationService) Update(ctx context.Context, spec Specification) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.update", start, err, "specification", spec.Name) }()

	p, err := toInternalParams(spec)
	if err != nil {
		return Specification{}, fmt.Errorf("update specification: %w", err)
	}
	updated, err := s.svc.Update(ctx, spec.Name, p, spec.Revision)
	if err != nil {
		return Specification{}, fmt.Errorf("update specification: %w", err)
	}
	return fromInternalSpecification(updated), nil
}

// Delete removes a specification; its values are purged in the background.
func (s *SpecificationService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.delete", start, err, "specification", name) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete specification: %w", err)
	}
	return nil
}

// DefineAttribute appends an attribute to a specification.
func (s *SpecificationService) DefineAttribute(
	ctx context.Context, name string, attr Attribute,
) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.define_attribute", start, err, "specification", name) }()

	a, err := toInternalAttribute(attr)
	if err != nil {
		return Specification{}, fmt.Errorf("define attribute: %w", err)
	}
	spec, err := s.svc.DefineAttribute(ctx, name, a)
	if err != nil {
		return Specification{}, fmt.Errorf("define attribute: %w", err)
	}
	return fromInternalSpecification(spec), nil
}

// RenameAttribute renames an attribute; stored values follow asynchronously.
func (s *SpecificationService) RenameAttribute(
	ctx context.Context, name, from, to string,
) (_ Specification, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.rename_attribute", start, err, "specification", name) }()

	spec, err := s.svc.RenameAttribute(ctx, name, from, to)
	if err != nil {
		return Specification{}, fmt.Errorf("rename attribute: %w", err)
	}
	return fromInternalSpecification(spec), nil
}

// CreateValues dispatches one background job per row and reports how many
// were queued. A row naming a Field regenerates that attribute for every
// document in scope; a row with a literal Value adds each comma-separated
// value to ReferenceName.
func (s *SpecificationService) CreateValues(ctx context.Context, name string, rows []ValueRow) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("specification.create_values", start, err, "specification", name) }()

	if len(rows) == 0 {
		return 0, fmt.Errorf("create values: %w: rows must not be empty", ErrInvalidSchema)
	}
	n, err := s.values.CreateValues(ctx, name, toInternalRows(rows))
	if err != nil {
		return n, fmt.Errorf("create values: %w", err)
	}
	return n, nil
}
