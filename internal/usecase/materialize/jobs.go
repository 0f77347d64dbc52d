package materialize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/jobs"
	"github.com/kailas-cloud/specdex/internal/logger"
)

// JobCreateValues regenerates or adds the values of one bulk-create row.
const JobCreateValues = "values.create"

type createPayload struct {
	Specification string `json:"specification"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceName string `json:"reference_name,omitempty"`
	Attribute     string `json:"attribute"`
	Field         string `json:"field,omitempty"`
	Value         string `json:"value,omitempty"`
}

// CreateValues validates the rows and dispatches one job per row. A row
// naming a field regenerates the attribute for every document in scope; a
// row with a literal comma-separated value adds each value to its reference.
func (s *Service) CreateValues(ctx context.Context, specName string, rows []Row) (int, error) {
	spec, err := s.specs.Get(ctx, specName)
	if err != nil {
		return 0, fmt.Errorf("get specification: %w", err)
	}
	payloads := make([]createPayload, 0, len(rows))
	for _, r := range rows {
		if _, ok := spec.Attribute(r.Attribute); !ok {
			return 0, fmt.Errorf("%w: unknown attribute %q in %q", domain.ErrConfiguration, r.Attribute, specName)
		}
		if r.Field == "" && (strings.TrimSpace(r.Value) == "" || r.ReferenceName == "") {
			return 0, fmt.Errorf("%w: row for %q needs a field, or a value and a reference", domain.ErrInvalidSchema, r.Attribute)
		}
		payloads = append(payloads, createPayload{
			Specification: specName,
			ReferenceType: r.ReferenceType,
			ReferenceName: r.ReferenceName,
			Attribute:     r.Attribute,
			Field:         r.Field,
			Value:         r.Value,
		})
	}

	queued := 0
	for _, p := range payloads {
		key := ""
		if p.Field != "" {
			key = p.Specification + "/" + p.Attribute + "/" + p.Field
		}
		job, err := jobs.NewJob(JobCreateValues, key, p)
		if err != nil {
			return queued, err
		}
		ok, err := s.queue.Enqueue(ctx, job)
		if err != nil {
			return queued, fmt.Errorf("enqueue %s: %w", p.Attribute, err)
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}

// Handlers returns the job handlers of the materializer.
func (s *Service) Handlers() []jobs.Handler {
	return []jobs.Handler{
		jobs.HandlerFunc{JobType: JobCreateValues, Fn: s.runCreate},
	}
}

func (s *Service) runCreate(ctx context.Context, job jobs.Job) error {
	var p createPayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	spec, err := s.specs.Get(ctx, p.Specification)
	if err != nil {
		return fmt.Errorf("get specification: %w", err)
	}
	a, ok := spec.Attribute(p.Attribute)
	if !ok {
		return fmt.Errorf("%w: unknown attribute %q in %q", domain.ErrConfiguration, p.Attribute, p.Specification)
	}

	if p.Field == "" {
		refType := p.ReferenceType
		if refType == "" {
			refType = a.AppliedOn()
		}
		t := target{refType: refType, refName: p.ReferenceName, spec: spec.Name()}
		return s.addOnly(ctx, t, a, "", splitValues(p.Value))
	}

	docs, err := s.docs.All(ctx, a.AppliedOn())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	n := 0
	for _, doc := range docs {
		if !spec.AppliesTo(doc) {
			continue
		}
		t := target{refType: doc.Doctype(), refName: doc.Name(), spec: spec.Name()}
		raw := doc.Field(p.Field)
		if a.MultiValued() {
			err = s.addOnly(ctx, t, a, p.Field, []string{raw})
		} else {
			err = s.upsertCanonical(ctx, t, a, p.Field, raw)
		}
		if err != nil {
			return fmt.Errorf("materialize %s %q: %w", doc.Doctype(), doc.Name(), err)
		}
		n++
	}
	logger.FromContext(ctx).Info("attribute values regenerated",
		zap.String("specification", spec.Name()),
		zap.String("attribute", a.Name()),
		zap.String("field", p.Field),
		zap.Int("documents", n),
	)
	return nil
}
