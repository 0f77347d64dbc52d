// Package storage opens the repositories of the configured backend: Redis
// with the query engine, or SQLite/Postgres through gorm.
package storage

import (
	"context"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/specdex/internal/db/redis"
	"github.com/kailas-cloud/specdex/internal/db/sqldb"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	colorrepo "github.com/kailas-cloud/specdex/internal/repository/color"
	documentrepo "github.com/kailas-cloud/specdex/internal/repository/document"
	"github.com/kailas-cloud/specdex/internal/repository/gormrepo"
	specrepo "github.com/kailas-cloud/specdex/internal/repository/specification"
	valuerepo "github.com/kailas-cloud/specdex/internal/repository/value"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	specuc "github.com/kailas-cloud/specdex/internal/usecase/specification"
)

// Drivers.
const (
	DriverRedis    = "redis"
	DriverSQLite   = sqldb.DriverSQLite
	DriverPostgres = sqldb.DriverPostgres
)

const defaultReadinessTimeout = 10 * time.Second

// Config selects and parameterizes a backend.
type Config struct {
	Driver           string
	Addrs            []string
	Password         string
	DSN              string
	KeyPrefix        string
	ReadinessTimeout time.Duration
}

// ValueStore is the full value repository contract.
type ValueStore interface {
	Get(ctx context.Context, id string) (domval.Value, error)
	Save(ctx context.Context, v domval.Value) error
	Delete(ctx context.Context, ids ...string) error
	Find(ctx context.Context, f domval.Filter) ([]domval.Value, error)
	References(ctx context.Context, l domval.Lookup) ([]string, error)
	Rename(ctx context.Context, spec, from, to string) (int, error)
}

// DocumentStore is the full document repository contract.
type DocumentStore interface {
	documentuc.Repository
	All(ctx context.Context, doctype string) ([]domdoc.Document, error)
}

// ColorStore is the palette repository contract.
type ColorStore interface {
	Upsert(ctx context.Context, c domcolor.Color) error
	List(ctx context.Context) ([]domcolor.Color, error)
}

// Backend holds the repositories of one opened store.
type Backend struct {
	Specs  specuc.Repository
	Values ValueStore
	Docs   DocumentStore
	Colors ColorStore

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks store connectivity.
func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

// Close releases the store.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the configured store, waits for it, and prepares its
// indexes or tables.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.ReadinessTimeout <= 0 {
		cfg.ReadinessTimeout = defaultReadinessTimeout
	}
	switch cfg.Driver {
	case "", DriverRedis:
		return openRedis(ctx, cfg)
	case DriverSQLite, DriverPostgres:
		return openSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

func openRedis(ctx context.Context, cfg Config) (*Backend, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.ReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}

	values := valuerepo.New(store, cfg.KeyPrefix)
	docs := documentrepo.New(store, cfg.KeyPrefix)
	if err := values.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure value index: %w", err)
	}
	if err := docs.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure document index: %w", err)
	}

	return &Backend{
		Specs:  specrepo.New(store, cfg.KeyPrefix),
		Values: values,
		Docs:   docs,
		Colors: colorrepo.New(store, cfg.KeyPrefix),
		ping:   store.Ping,
		close:  store.Close,
	}, nil
}

func openSQL(ctx context.Context, cfg Config) (*Backend, error) {
	store, err := sqldb.Open(sqldb.Config{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		return nil, fmt.Errorf("open sql store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.ReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("sql store not ready: %w", err)
	}
	if err := store.Migrate(ctx, gormrepo.Models()...); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	gdb := store.DB()
	return &Backend{
		Specs:  gormrepo.NewSpecRepo(gdb),
		Values: gormrepo.NewValueRepo(gdb),
		Docs:   gormrepo.NewDocumentRepo(gdb),
		Colors: gormrepo.NewColorRepo(gdb),
		ping:   store.Ping,
		close:  store.Close,
	}, nil
}
