package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/config"
	"github.com/kailas-cloud/specdex/internal/domain/epoch"
	"github.com/kailas-cloud/specdex/internal/jobs"
	logpkg "github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/metrics"
	"github.com/kailas-cloud/specdex/internal/storage"
	chiTransport "github.com/kailas-cloud/specdex/internal/transport/chi"
	"github.com/kailas-cloud/specdex/internal/version"
	coloruc "github.com/kailas-cloud/specdex/internal/usecase/color"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	facetuc "github.com/kailas-cloud/specdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
	specuc "github.com/kailas-cloud/specdex/internal/usecase/specification"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting specdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("timezone", cfg.Dates.Timezone),
	)

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{
		Driver:           cfg.Database.Driver,
		Addrs:            cfg.Database.Addrs,
		Password:         cfg.Database.Password,
		DSN:              cfg.Database.DSN,
		KeyPrefix:        cfg.Storage.KeyPrefix,
		ReadinessTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	metrics.RegisterDomainMetrics()

	dates := epoch.New(cfg.Dates.Timezone)
	if !dates.Valid() {
		logger.Warn("Unknown timezone, date attributes will not be stored", zap.String("timezone", cfg.Dates.Timezone))
	}

	registry := jobs.NewRegistry()
	runner := jobs.NewRunner(jobs.Config{
		Workers:     cfg.Jobs.Workers,
		QueueSize:   cfg.Jobs.QueueSize,
		MaxAttempts: cfg.Jobs.MaxAttempts,
		RetryDelay:  cfg.Jobs.RetryDelay(),
		Sync:        cfg.Jobs.Sync,
	}, registry, logger)

	specSvc := specuc.New(store.Specs, store.Values, store.Docs, runner)
	valueSvc := materializeuc.New(store.Specs, store.Values, store.Docs, runner, dates)
	for _, h := range append(specSvc.Handlers(), valueSvc.Handlers()...) {
		if err := registry.Register(h); err != nil {
			logger.Fatal("Failed to register job handler", zap.Error(err))
		}
	}

	jobsCtx, stopJobs := context.WithCancel(logpkg.ContextWithLogger(ctx, logger))
	defer stopJobs()
	runner.Start(jobsCtx)

	facetSvc := facetuc.New(store.Specs, store.Values, store.Colors, dates)
	listingSvc := listinguc.New(store.Docs, facetSvc, listinguc.Settings{
		FacetsEnabled: cfg.Listing.FacetsEnabled,
		HideVariants:  cfg.Listing.HideVariants,
		VariantField:  cfg.Listing.VariantField,
		ScopeField:    cfg.Listing.ScopeField,
		TitleField:    cfg.Listing.TitleField,
		CodeField:     cfg.Listing.CodeField,
		RankingField:  cfg.Listing.RankingField,
		SearchFields:  cfg.Listing.SearchFields,
		PageLength:    cfg.Listing.PageLength,
	})
	docSvc := documentuc.New(store.Docs, valueSvc).
		WithPagination(cfg.Listing.PageLength, cfg.Listing.MaxPageLength)

	server := chiTransport.NewServer(chiTransport.Services{
		Specifications: specSvc,
		Values:         valueSvc,
		Facets:         facetSvc,
		Listing:        listingSvc,
		Documents:      docSvc,
		Colors:         coloruc.New(store.Colors),
		Health:         healthuc.New(store, runner),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.APIKeys{
		Full:     cfg.Auth.APIKeys,
		ReadOnly: cfg.Auth.ReadOnlyKeys,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	runner.Stop()

	logger.Info("Server stopped gracefully")
}
