package specification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	"github.com/kailas-cloud/specdex/internal/logger"
)

// ApplyOn is one distinct (dt, apply_on) scope of enabled specifications.
type ApplyOn struct {
	ScopeType string
	ApplyOn   string
}

// Service manages specification definitions.
type Service struct {
	repo   Repository
	values ValueStore
	docs   DocumentReader
	queue  Queue
}

// New creates a specification service.
func New(repo Repository, values ValueStore, docs DocumentReader, queue Queue) *Service {
	return &Service{repo: repo, values: values, docs: docs, queue: queue}
}

// Create validates and stores a new specification. Attributes without an id get one.
func (s *Service) Create(ctx context.Context, p domspec.Params) (domspec.Specification, error) {
	p.Attributes = withIDs(p.Attributes)
	spec, err := domspec.New(p)
	if err != nil {
		return domspec.Specification{}, classify("validate specification", err)
	}

	if err := s.repo.Create(ctx, spec); err != nil {
		return domspec.Specification{}, fmt.Errorf("create specification: %w", err)
	}

	logger.FromContext(ctx).Info("specification created",
		zap.String("specification", spec.Name()),
		zap.Int("attributes", len(spec.Attributes())),
	)
	return spec, nil
}

// Get retrieves a specification by name.
func (s *Service) Get(ctx context.Context, name string) (domspec.Specification, error) {
	spec, err := s.repo.Get(ctx, name)
	if err != nil {
		return domspec.Specification{}, fmt.Errorf("get specification: %w", err)
	}
	return spec, nil
}

// List returns all specifications.
func (s *Service) List(ctx context.Context) ([]domspec.Specification, error) {
	specs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specifications: %w", err)
	}
	return specs, nil
}

// Delete removes a specification and schedules the purge of its values.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete specification: %w", err)
	}
	if err := s.enqueue(ctx, purgeJob(name, "")); err != nil {
		return fmt.Errorf("schedule value purge: %w", err)
	}
	return nil
}

// DefineAttribute appends one attribute to a specification.
func (s *Service) DefineAttribute(ctx context.Context, name string, a attribute.Attribute) (domspec.Specification, error) {
	cur, err := s.repo.Get(ctx, name)
	if err != nil {
		return domspec.Specification{}, fmt.Errorf("get specification: %w", err)
	}
	if a.ID() == "" {
		a = a.WithID(uuid.NewString())
	}
	next, err := cur.WithAttribute(a)
	if err != nil {
		return domspec.Specification{}, classify("define attribute", err)
	}
	next = cur.Successor(next)
	if err := s.repo.Save(ctx, next); err != nil {
		return domspec.Specification{}, fmt.Errorf("save specification: %w", err)
	}
	return next, nil
}

// Update replaces a definition. expectedRevision 0 skips the revision check.
// Renamed attributes (same id, new name) are rewritten by background jobs;
// removed attributes have their values purged.
func (s *Service) Update(
	ctx context.Context, name string, p domspec.Params, expectedRevision int,
) (domspec.Specification, error) {
	cur, err := s.repo.Get(ctx, name)
	if err != nil {
		return domspec.Specification{}, fmt.Errorf("get specification: %w", err)
	}
	if expectedRevision > 0 && expectedRevision != cur.Revision() {
		return domspec.Specification{}, domain.NewRevisionConflict(cur.Revision())
	}

	p.Name = name
	p.Attributes = withIDs(p.Attributes)
	next, err := domspec.New(p)
	if err != nil {
		return domspec.Specification{}, classify("validate specification", err)
	}

	renames := cur.Renames(next)
	removed := cur.Removed(next)
	next = cur.Successor(next)
	if err := s.repo.Save(ctx, next); err != nil {
		return domspec.Specification{}, fmt.Errorf("save specification: %w", err)
	}

	for _, r := range renames {
		if err := s.enqueue(ctx, renameJob(name, r.From, r.To)); err != nil {
			return next, fmt.Errorf("schedule rename %s -> %s: %w", r.From, r.To, err)
		}
	}
	for _, attr := range removed {
		if err := s.enqueue(ctx, purgeJob(name, attr)); err != nil {
			return next, fmt.Errorf("schedule purge of %s: %w", attr, err)
		}
	}

	logger.FromContext(ctx).Info("specification updated",
		zap.String("specification", name),
		zap.Int("revision", next.Revision()),
		zap.Int("renames", len(renames)),
		zap.Int("removed", len(removed)),
	)
	return next, nil
}

// RenameAttribute renames an attribute and schedules the value rewrite.
func (s *Service) RenameAttribute(ctx context.Context, name, from, to string) (domspec.Specification, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return domspec.Specification{}, fmt.Errorf("rename attribute: %w: new name is required", domain.ErrInvalidSchema)
	}
	cur, err := s.repo.Get(ctx, name)
	if err != nil {
		return domspec.Specification{}, fmt.Errorf("get specification: %w", err)
	}
	next, err := cur.WithRenamedAttribute(from, to)
	if err != nil {
		return domspec.Specification{}, classify("rename attribute", err)
	}
	if from == to {
		return cur, nil
	}
	next = cur.Successor(next)
	if err := s.repo.Save(ctx, next); err != nil {
		return domspec.Specification{}, fmt.Errorf("save specification: %w", err)
	}
	if err := s.enqueue(ctx, renameJob(name, from, to)); err != nil {
		return next, fmt.Errorf("schedule rename: %w", err)
	}
	return next, nil
}

// ApplyOnFields returns the sorted distinct scopes of enabled specifications
// that define an attribute on doctype.
func (s *Service) ApplyOnFields(ctx context.Context, doctype string) ([]ApplyOn, error) {
	specs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specifications: %w", err)
	}
	seen := make(map[ApplyOn]bool)
	out := []ApplyOn{}
	for _, spec := range specs {
		if !spec.Enabled() || len(spec.AttributesOn(doctype)) == 0 {
			continue
		}
		k := ApplyOn{ScopeType: spec.ScopeType(), ApplyOn: spec.ApplyOn()}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScopeType != out[j].ScopeType {
			return out[i].ScopeType < out[j].ScopeType
		}
		return out[i].ApplyOn < out[j].ApplyOn
	})
	return out, nil
}

// DataFieldnames returns the sorted distinct field names of stored documents of doctype.
func (s *Service) DataFieldnames(ctx context.Context, doctype string) ([]string, error) {
	docs, err := s.docs.All(ctx, doctype)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, d := range docs {
		for f := range d.Fields() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) enqueue(ctx context.Context, job jobsJob) error {
	j, err := job.build()
	if err != nil {
		return err
	}
	queued, err := s.queue.Enqueue(ctx, j)
	if err != nil {
		return err
	}
	if !queued {
		logger.FromContext(ctx).Debug("job already pending", zap.String("type", j.Type), zap.String("key", j.Key))
	}
	return nil
}

func withIDs(attrs []attribute.Attribute) []attribute.Attribute {
	out := make([]attribute.Attribute, len(attrs))
	for i, a := range attrs {
		if a.ID() == "" {
			a = a.WithID(uuid.NewString())
		}
		out[i] = a
	}
	return out
}

// classify maps domain validation failures onto transport-facing sentinels.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domspec.ErrDuplicateAttribute):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConfiguration, err)
	case errors.Is(err, domspec.ErrUnknownAttribute):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrAttributeNotFound, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidSchema, err)
	}
}
