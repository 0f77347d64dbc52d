package specdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	"github.com/kailas-cloud/specdex/internal/domain/epoch"
	domfacet "github.com/kailas-cloud/specdex/internal/domain/facet"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	"github.com/kailas-cloud/specdex/internal/domain/specification/attribute"
	"github.com/kailas-cloud/specdex/internal/jobs"
	"github.com/kailas-cloud/specdex/internal/storage"
	coloruc "github.com/kailas-cloud/specdex/internal/usecase/color"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	facetuc "github.com/kailas-cloud/specdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
	specuc "github.com/kailas-cloud/specdex/internal/usecase/specification"
)

// Internal interfaces, replaced by mocks in tests.
type specificationUseCase interface {
	Create(ctx context.Context, p domspec.Params) (domspec.Specification, error)
	Get(ctx context.Context, name string) (domspec.Specification, error)
	List(ctx context.Context) ([]domspec.Specification, error)
	Update(ctx context.Context, name string, p domspec.Params, expectedRevision int) (domspec.Specification, error)
	Delete(ctx context.Context, name string) error
	DefineAttribute(ctx context.Context, name string, a attribute.Attribute) (domspec.Specification, error)
	RenameAttribute(ctx context.Context, name, from, to string) (domspec.Specification, error)
	ApplyOnFields(ctx context.Context, doctype string) ([]specuc.ApplyOn, error)
	DataFieldnames(ctx context.Context, doctype string) ([]string, error)
}

type valueUseCase interface {
	CreateValues(ctx context.Context, specName string, rows []materializeuc.Row) (int, error)
	GetValues(ctx context.Context, refType, refName, specName string) ([]materializeuc.View, error)
	UpdateValues(ctx context.Context, refType, refName, specName string, rows []materializeuc.Row) error
}

type documentUseCase interface {
	Upsert(
		ctx context.Context, doctype, name string, fields map[string]any, overrides map[string]materializeuc.Override,
	) (domdoc.Document, bool, error)
	Patch(
		ctx context.Context, doctype, name string, fields map[string]any, overrides map[string]materializeuc.Override,
	) (domdoc.Document, error)
	UpsertBatch(ctx context.Context, doctype string, items []documentuc.Item) []dombatch.Result
	Get(ctx context.Context, doctype, name string) (domdoc.Document, error)
	List(ctx context.Context, doctype, cursor string, limit int) ([]domdoc.Document, string, error)
	Count(ctx context.Context, doctype string) (int, error)
	Delete(ctx context.Context, doctype, name string) error
}

type facetUseCase interface {
	Catalog(ctx context.Context, doctype string) ([]domfacet.Component, error)
	SelectDocuments(ctx context.Context, doctype string, sel domfacet.Selection) (domfacet.Result, error)
}

type listingUseCase interface {
	Query(ctx context.Context, doctype string, req listinguc.Request) (listinguc.Response, error)
}

type colorUseCase interface {
	Upsert(ctx context.Context, name, hex, image string) (domcolor.Color, error)
	List(ctx context.Context) ([]domcolor.Color, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the specdex SDK entry point.
type Client struct {
	backend  *storage.Backend
	runner   *jobs.Runner
	stopJobs context.CancelFunc

	specSvc    specificationUseCase
	valueSvc   valueUseCase
	docSvc     documentUseCase
	facetSvc   facetUseCase
	listingSvc listingUseCase
	colorSvc   colorUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a specdex Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.storage.Driver == "" {
		return nil, errors.New("specdex: storage required (use WithRedis, WithSQLite or WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg.storage)
	if err != nil {
		return nil, fmt.Errorf("specdex: %w", err)
	}

	c, err := wireClient(backend, cfg, obs)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(backend *storage.Backend, cfg *clientConfig, obs *observer) (*Client, error) {
	dates := epoch.New(cfg.timezone)
	if !dates.Valid() {
		return nil, fmt.Errorf("specdex: unknown timezone %q", cfg.timezone)
	}

	registry := jobs.NewRegistry()
	runner := jobs.NewRunner(jobs.Config{
		Workers:     cfg.workers,
		QueueSize:   cfg.queueSize,
		MaxAttempts: cfg.maxAttempts,
		RetryDelay:  cfg.retryDelay,
		Sync:        cfg.syncJobs,
	}, registry, zap.NewNop())

	specSvc := specuc.New(backend.Specs, backend.Values, backend.Docs, runner)
	valueSvc := materializeuc.New(backend.Specs, backend.Values, backend.Docs, runner, dates)
	for _, h := range append(specSvc.Handlers(), valueSvc.Handlers()...) {
		if err := registry.Register(h); err != nil {
			return nil, fmt.Errorf("specdex: register job handler: %w", err)
		}
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	runner.Start(jobsCtx)

	facetSvc := facetuc.New(backend.Specs, backend.Values, backend.Colors, dates)
	l := cfg.listing

	return &Client{
		backend:  backend,
		runner:   runner,
		stopJobs: stopJobs,
		specSvc:  specSvc,
		valueSvc: valueSvc,
		docSvc:   documentuc.New(backend.Docs, valueSvc),
		facetSvc: facetSvc,
		listingSvc: listinguc.New(backend.Docs, facetSvc, listinguc.Settings{
			FacetsEnabled: l.FacetsEnabled,
			HideVariants:  l.HideVariants,
			VariantField:  l.VariantField,
			ScopeField:    l.ScopeField,
			TitleField:    l.TitleField,
			CodeField:     l.CodeField,
			RankingField:  l.RankingField,
			SearchFields:  l.SearchFields,
			PageLength:    l.PageLength,
		}),
		colorSvc:  coloruc.New(backend.Colors),
		healthSvc: healthuc.New(backend, runner),
		obs:       obs,
	}, nil
}

// Close drains background jobs and releases the store.
func (c *Client) Close() {
	if c.runner != nil {
		c.runner.Stop()
	}
	if c.stopJobs != nil {
		c.stopJobs()
	}
	if c.backend != nil {
		c.backend.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Specifications returns the specification service.
func (c *Client) Specifications() *SpecificationService {
	return &SpecificationService{svc: c.specSvc, values: c.valueSvc, obs: c.obs}
}

// Documents returns the document service for one document type.
func (c *Client) Documents(doctype string) *DocumentService {
	return &DocumentService{doctype: doctype, svc: c.docSvc, values: c.valueSvc, obs: c.obs}
}

// Facets returns the facet and listing service for one document type.
func (c *Client) Facets(doctype string) *FacetService {
	return &FacetService{
		doctype: doctype,
		specs:   c.specSvc,
		svc:     c.facetSvc,
		listing: c.listingSvc,
		obs:     c.obs,
	}
}

// Colors returns the palette service.
func (c *Client) Colors() *ColorService {
	return &ColorService{svc: c.colorSvc, obs: c.obs}
}
