package materialize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/domain/epoch"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

// Row is one value row of an update or bulk create request.
type Row struct {
	ID            string
	ReferenceType string
	ReferenceName string
	Attribute     string
	Field         string
	Value         string
}

// View is a value row in display form (dates as YYYY-MM-DD).
type View struct {
	ID            string
	Specification string
	Attribute     string
	Field         string
	Value         string
}

// Service derives and stores attribute values for documents.
type Service struct {
	specs  SpecReader
	values ValueRepository
	docs   DocumentReader
	queue  Queue
	dates  epoch.Codec
	newID  func() string
}

// New creates a materializer.
func New(specs SpecReader, values ValueRepository, docs DocumentReader, queue Queue, dates epoch.Codec) *Service {
	return &Service{
		specs:  specs,
		values: values,
		docs:   docs,
		queue:  queue,
		dates:  dates,
		newID:  uuid.NewString,
	}
}

// target identifies the value rows of one document under one specification.
type target struct {
	refType string
	refName string
	spec    string
}

func (t target) filter(attr string) domval.Filter {
	return domval.Filter{
		ReferenceType: t.refType,
		ReferenceName: t.refName,
		Specification: t.spec,
		Attribute:     attr,
	}
}

// Materialize writes the values of every attribute of spec applied on the
// document's type. Derived attributes come from the document while the
// source field is set and fall back to an override when it is blank; manual
// attributes only change when an override names them.
func (s *Service) Materialize(ctx context.Context, doc domdoc.Document, spec domspec.Specification, overrides map[string]Override) error {
	t := target{refType: doc.Doctype(), refName: doc.Name(), spec: spec.Name()}
	for _, a := range spec.AttributesOn(doc.Doctype()) {
		ov, hasOverride := overrides[a.Name()]
		if a.IsDerived() {
			raw := doc.Field(a.Field())
			if strings.TrimSpace(raw) != "" || !hasOverride {
				if err := s.upsertCanonical(ctx, t, a, a.Field(), raw); err != nil {
					return err
				}
				continue
			}
		}
		if !hasOverride {
			continue
		}
		if err := s.applyOverride(ctx, t, a, ov); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOverrides checks that every override names a manual attribute of a
// specification applying to doc and that lists only target multi-valued ones.
func (s *Service) ValidateOverrides(ctx context.Context, doc domdoc.Document, overrides map[string]Override) error {
	if len(overrides) == 0 {
		return nil
	}
	specs, err := s.applicable(ctx, doc)
	if err != nil {
		return err
	}
	for name, ov := range overrides {
		found := false
		for _, spec := range specs {
			a, ok := spec.Attribute(name)
			if !ok || a.AppliedOn() != doc.Doctype() {
				continue
			}
			found = true
			if ov.IsList && !a.MultiValued() {
				return fmt.Errorf("%w: attribute %q of %q is not multi-valued", domain.ErrConfiguration, name, spec.Name())
			}
		}
		if !found {
			return fmt.Errorf("%w: attribute %q does not apply to %s %q", domain.ErrConfiguration, name, doc.Doctype(), doc.Name())
		}
	}
	return nil
}

// MaterializeDocument is the document save hook: every enabled specification
// that applies to doc is materialized.
func (s *Service) MaterializeDocument(ctx context.Context, doc domdoc.Document, overrides map[string]Override) error {
	if err := s.ValidateOverrides(ctx, doc, overrides); err != nil {
		return err
	}
	specs, err := s.applicable(ctx, doc)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := s.Materialize(ctx, doc, spec, overrides); err != nil {
			return fmt.Errorf("materialize %s: %w", spec.Name(), err)
		}
	}
	return nil
}

// RemoveDocument deletes every value row of a document.
func (s *Service) RemoveDocument(ctx context.Context, doctype, name string) error {
	rows, err := s.values.Find(ctx, domval.Filter{ReferenceType: doctype, ReferenceName: name})
	if err != nil {
		return fmt.Errorf("find values: %w", err)
	}
	return s.deleteRows(ctx, rows)
}

// UpdateValues applies edited value rows of one document. A row with an id
// is rewritten (or deleted when its value is empty); a row without an id is
// created from its value or from the document field it names.
func (s *Service) UpdateValues(ctx context.Context, refType, refName, specName string, rows []Row) error {
	spec, err := s.specs.Get(ctx, specName)
	if err != nil {
		return fmt.Errorf("get specification: %w", err)
	}
	attrs := make([]attribute.Attribute, len(rows))
	for i, r := range rows {
		a, ok := spec.Attribute(r.Attribute)
		if !ok {
			return fmt.Errorf("%w: unknown attribute %q in %q", domain.ErrConfiguration, r.Attribute, specName)
		}
		attrs[i] = a
	}

	t := target{refType: refType, refName: refName, spec: specName}
	var doc *domdoc.Document
	for i, r := range rows {
		a := attrs[i]
		if r.ID != "" {
			if err := s.rewrite(ctx, spec, t, r); err != nil {
				return err
			}
			continue
		}
		if strings.TrimSpace(r.Value) == "" && r.Field == "" {
			continue
		}
		raw, field := r.Value, ""
		if r.Field != "" {
			if doc == nil {
				d, err := s.docs.Get(ctx, refType, refName)
				if err != nil {
					return fmt.Errorf("get document: %w", err)
				}
				doc = &d
			}
			raw, field = doc.Field(r.Field), r.Field
		}
		if a.MultiValued() {
			err = s.addOnly(ctx, t, a, field, []string{raw})
		} else {
			err = s.upsertCanonical(ctx, t, a, field, raw)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetValues returns the stored values of a document, or with specName the
// per-attribute aggregate of the documents scoped to refName.
func (s *Service) GetValues(ctx context.Context, refType, refName, specName string) ([]View, error) {
	if specName != "" {
		return s.scopedValues(ctx, refName, specName)
	}

	rows, err := s.values.Find(ctx, domval.Filter{ReferenceType: refType, ReferenceName: refName})
	if err != nil {
		return nil, fmt.Errorf("find values: %w", err)
	}
	specs := make(map[string]*domspec.Specification)
	out := make([]View, 0, len(rows))
	for _, v := range rows {
		spec, ok := specs[v.Specification()]
		if !ok {
			if sp, err := s.specs.Get(ctx, v.Specification()); err == nil {
				spec = &sp
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("get specification: %w", err)
			}
			specs[v.Specification()] = spec
		}
		text := v.Text()
		if spec != nil {
			if a, ok := spec.Attribute(v.Attribute()); ok {
				text = a.Kind().Decode(text, s.dates)
			}
		}
		out = append(out, View{
			ID:            v.ID(),
			Specification: v.Specification(),
			Attribute:     v.Attribute(),
			Field:         v.Field(),
			Value:         text,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attribute != out[j].Attribute {
			return out[i].Attribute < out[j].Attribute
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (s *Service) scopedValues(ctx context.Context, scope, specName string) ([]View, error) {
	spec, err := s.specs.Get(ctx, specName)
	if err != nil {
		return nil, fmt.Errorf("get specification: %w", err)
	}
	out := make([]View, 0, len(spec.Attributes()))
	for _, a := range spec.Attributes() {
		docs, err := s.docs.All(ctx, a.AppliedOn())
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		inScope := make(map[string]bool)
		set := make(map[string]bool)
		for _, d := range docs {
			if spec.ScopeField() != "" && d.Field(spec.ScopeField()) != scope {
				continue
			}
			inScope[d.Name()] = true
			if a.IsDerived() {
				if v := strings.TrimSpace(d.Field(a.Field())); v != "" {
					set[v] = true
				}
			}
		}
		if !a.IsDerived() && len(inScope) > 0 {
			rows, err := s.values.Find(ctx, domval.Filter{
				ReferenceType: a.AppliedOn(),
				Specification: spec.Name(),
				Attribute:     a.Name(),
			})
			if err != nil {
				return nil, fmt.Errorf("find values: %w", err)
			}
			for _, v := range rows {
				if inScope[v.ReferenceName()] {
					set[a.Kind().Decode(v.Text(), s.dates)] = true
				}
			}
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out = append(out, View{
			Specification: spec.Name(),
			Attribute:     a.Name(),
			Field:         a.Field(),
			Value:         strings.Join(values, ", "),
		})
	}
	return out, nil
}

func (s *Service) applicable(ctx context.Context, doc domdoc.Document) ([]domspec.Specification, error) {
	specs, err := s.specs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specifications: %w", err)
	}
	var out []domspec.Specification
	for _, spec := range specs {
		if spec.Enabled() && spec.AppliesTo(doc) {
			out = append(out, spec)
		}
	}
	return out, nil
}

func (s *Service) applyOverride(ctx context.Context, t target, a attribute.Attribute, ov Override) error {
	if ov.IsList {
		if !a.MultiValued() {
			return fmt.Errorf("%w: attribute %q is not multi-valued", domain.ErrConfiguration, a.Name())
		}
		return s.addOnly(ctx, t, a, "", ov.Values)
	}
	if a.MultiValued() {
		return s.addOnly(ctx, t, a, "", []string{ov.scalar()})
	}
	return s.upsertCanonical(ctx, t, a, "", ov.scalar())
}

// upsertCanonical keeps exactly one row for (document, attribute, spec).
// An empty value removes it; an undecodable date leaves it untouched.
func (s *Service) upsertCanonical(ctx context.Context, t target, a attribute.Attribute, field, raw string) error {
	existing, err := s.values.Find(ctx, t.filter(a.Name()))
	if err != nil {
		return fmt.Errorf("find values: %w", err)
	}

	enc, ok := a.Kind().Encode(raw, s.dates)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			s.skip(ctx, t, a, raw)
			return nil
		}
		return s.deleteRows(ctx, existing)
	}

	if len(existing) == 0 {
		return s.create(ctx, t, a, field, enc)
	}

	keep := existing[0]
	if keep.Text() != enc.Text || !sameNumber(keep.Numeric(), enc.Numeric) {
		if err := s.values.Save(ctx, keep.WithContent(enc.Text, enc.Numeric)); err != nil {
			return fmt.Errorf("update value: %w", err)
		}
		metrics.ValuesMaterializedTotal.WithLabelValues("update").Inc()
	}
	return s.deleteRows(ctx, existing[1:])
}

// addOnly creates a row for every value not stored yet; nothing is removed.
func (s *Service) addOnly(ctx context.Context, t target, a attribute.Attribute, field string, raws []string) error {
	existing, err := s.values.Find(ctx, t.filter(a.Name()))
	if err != nil {
		return fmt.Errorf("find values: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v.Text()] = true
	}
	for _, raw := range raws {
		enc, ok := a.Kind().Encode(raw, s.dates)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				s.skip(ctx, t, a, raw)
			}
			continue
		}
		if seen[enc.Text] {
			continue
		}
		seen[enc.Text] = true
		if err := s.create(ctx, t, a, field, enc); err != nil {
			return err
		}
	}
	return nil
}

// rewrite edits a stored row of t. Ids that are unknown or belong to another
// document or specification are ignored; the stored attribute decides how
// the value is encoded.
func (s *Service) rewrite(ctx context.Context, spec domspec.Specification, t target, r Row) error {
	existing, err := s.values.Get(ctx, r.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s.ignore(ctx, t, r, "unknown row")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get value %s: %w", r.ID, err)
	}
	if existing.ReferenceType() != t.refType || existing.ReferenceName() != t.refName ||
		existing.Specification() != t.spec {
		s.ignore(ctx, t, r, "row belongs to another reference")
		return nil
	}
	if strings.TrimSpace(r.Value) == "" {
		return s.deleteRows(ctx, []domval.Value{existing})
	}
	a, ok := spec.Attribute(existing.Attribute())
	if !ok {
		s.ignore(ctx, t, r, "attribute no longer defined")
		return nil
	}
	enc, ok := a.Kind().Encode(r.Value, s.dates)
	if !ok {
		s.skip(ctx, t, a, r.Value)
		return nil
	}
	if enc.Text == existing.Text() {
		return nil
	}
	if err := s.values.Save(ctx, existing.WithContent(enc.Text, enc.Numeric)); err != nil {
		return fmt.Errorf("update value: %w", err)
	}
	metrics.ValuesMaterializedTotal.WithLabelValues("update").Inc()
	return nil
}

func (s *Service) ignore(ctx context.Context, t target, r Row, reason string) {
	logger.FromContext(ctx).Warn("value row ignored",
		zap.String("reference_type", t.refType),
		zap.String("reference_name", t.refName),
		zap.String("specification", t.spec),
		zap.String("row_id", r.ID),
		zap.String("reason", reason),
	)
}

func (s *Service) create(ctx context.Context, t target, a attribute.Attribute, field string, enc attribute.Encoded) error {
	v, err := domval.New(domval.Params{
		ID:            s.newID(),
		ReferenceType: t.refType,
		ReferenceName: t.refName,
		Specification: t.spec,
		Attribute:     a.Name(),
		Field:         field,
		Text:          enc.Text,
		Numeric:       enc.Numeric,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	if err := s.values.Save(ctx, v); err != nil {
		return fmt.Errorf("create value: %w", err)
	}
	metrics.ValuesMaterializedTotal.WithLabelValues("create").Inc()
	return nil
}

func (s *Service) deleteRows(ctx context.Context, rows []domval.Value) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	for i, v := range rows {
		ids[i] = v.ID()
	}
	if err := s.values.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete values: %w", err)
	}
	metrics.ValuesMaterializedTotal.WithLabelValues("delete").Add(float64(len(ids)))
	return nil
}

func (s *Service) skip(ctx context.Context, t target, a attribute.Attribute, raw string) {
	metrics.ValuesMaterializedTotal.WithLabelValues("skip").Inc()
	logger.FromContext(ctx).Warn("attribute value not encodable, skipped",
		zap.String("reference_type", t.refType),
		zap.String("reference_name", t.refName),
		zap.String("specification", t.spec),
		zap.String("attribute", a.Name()),
		zap.String("kind", string(a.Kind())),
		zap.String("timezone", s.dates.Zone()),
		zap.String("value", raw),
	)
}

func sameNumber(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
