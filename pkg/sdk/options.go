package specdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/specdex/internal/storage"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	storage storage.Config

	timezone    string
	workers     int
	queueSize   int
	maxAttempts int
	retryDelay  time.Duration
	syncJobs    bool
	listing     ListingSettings

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		storage:     storage.Config{KeyPrefix: "specdex:"},
		timezone:    "UTC",
		workers:     2,
		queueSize:   256,
		maxAttempts: 3,
		retryDelay:  200 * time.Millisecond,
		listing: ListingSettings{
			FacetsEnabled: true,
			VariantField:  "variant_of",
			ScopeField:    "item_group",
			TitleField:    "item_name",
			CodeField:     "item_code",
			RankingField:  "ranking",
			PageLength:    20,
		},
	}
}

// WithRedis stores data in a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.storage.Driver = storage.DriverRedis
		c.storage.Addrs = []string{addr}
		c.storage.Password = password
	})
}

// WithSQLite stores data in a SQLite file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.storage.Driver = storage.DriverSQLite
		c.storage.DSN = path
	})
}

// WithPostgres stores data in Postgres.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.storage.Driver = storage.DriverPostgres
		c.storage.DSN = dsn
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "specdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.storage.KeyPrefix = prefix
	})
}

// WithTimezone sets the IANA zone used to encode date attribute values.
// Default: UTC.
func WithTimezone(zone string) Option {
	return optionFunc(func(c *clientConfig) {
		c.timezone = zone
	})
}

// WithJobWorkers sizes the background job pool.
func WithJobWorkers(workers, queueSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = workers
		c.queueSize = queueSize
	})
}

// WithSyncJobs runs rename, purge and bulk value jobs inline, so their
// effects are visible when the call returns.
func WithSyncJobs() Option {
	return optionFunc(func(c *clientConfig) {
		c.syncJobs = true
	})
}

// WithListing replaces the listing settings.
func WithListing(s ListingSettings) Option {
	return optionFunc(func(c *clientConfig) {
		c.listing = s
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
