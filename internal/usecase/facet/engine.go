package facet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/specdex/internal/domain"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

// maxParallelLookups bounds concurrent per-attribute lookups of one query.
const maxParallelLookups = 8

// SelectDocuments returns the names of doctype documents matching every
// active facet. Without active facets the result is unrestricted.
func (s *Service) SelectDocuments(ctx context.Context, doctype string, sel domfacet.Selection) (res domfacet.Result, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.FacetQueryDuration.WithLabelValues(doctype, status).Observe(time.Since(start).Seconds())
		if err == nil && res.Restricted {
			metrics.FacetQueryResultSize.WithLabelValues(doctype).Observe(float64(len(res.IDs)))
		}
	}()

	active := sel.Active()
	if len(active) == 0 {
		return domfacet.Unrestricted(), nil
	}

	attrs, err := s.attributesOn(ctx, doctype)
	if err != nil {
		return domfacet.Result{}, err
	}
	defs := byName(attrs)

	lookups := make([]domval.Lookup, len(active))
	for i, name := range active {
		a, ok := defs[name]
		if !ok {
			return domfacet.Result{}, fmt.Errorf("%w: attribute %q is not defined for %s", domain.ErrInvalidSchema, name, doctype)
		}
		l, err := s.lookup(doctype, a, sel.Criterion(name))
		if err != nil {
			return domfacet.Result{}, err
		}
		lookups[i] = l
	}

	sets := make([]map[string]struct{}, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, l := range lookups {
		g.Go(func() error {
			names, err := s.values.References(gctx, l)
			if err != nil {
				return fmt.Errorf("lookup %q: %w", l.Attribute, err)
			}
			set := make(map[string]struct{}, len(names))
			for _, n := range names {
				set[n] = struct{}{}
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domfacet.Result{}, err
	}

	ids := domfacet.Intersect(sets)
	logger.FromContext(ctx).Debug("facet selection",
		zap.String("doctype", doctype),
		zap.Strings("attributes", active),
		zap.Int("matches", len(ids)),
	)
	return domfacet.Result{Restricted: true, IDs: ids}, nil
}

// lookup builds the per-attribute predicate: a range over the numeric
// companion for numeric and date attributes, membership otherwise.
func (s *Service) lookup(doctype string, a attribute.Attribute, c domfacet.Criterion) (domval.Lookup, error) {
	l := domval.Lookup{ReferenceType: doctype, Attribute: a.Name()}
	switch a.Kind() {
	case attribute.Numeric:
		lo, hi, err := c.NumericRange()
		if err != nil {
			return domval.Lookup{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidSchema, a.Name(), err)
		}
		if lo == nil && hi == nil {
			return domval.Lookup{}, fmt.Errorf("%w: %s: a range bound is required", domain.ErrInvalidSchema, a.Name())
		}
		l.Min, l.Max = lo, hi
	case attribute.Date:
		lo, hi, ok, err := c.DateRange(s.dates)
		if err != nil {
			return domval.Lookup{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidSchema, a.Name(), err)
		}
		if !ok {
			return domval.Lookup{}, fmt.Errorf("%w: timezone %q cannot encode dates", domain.ErrConfiguration, s.dates.Zone())
		}
		l.Min, l.Max = &lo, &hi
	default:
		l.In = c.Accepted()
	}
	return l, nil
}
