package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the specdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Dates    DatesConfig    `yaml:"dates"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Listing  ListingConfig  `yaml:"listing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"`       // full access
	ReadOnlyKeys []string `yaml:"read_only_keys"` // reads and queries only
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, sqlite, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IsSQL reports whether the driver is served by the gorm backend.
func (d DatabaseConfig) IsSQL() bool {
	return d.Driver == DriverSQLite || d.Driver == DriverPostgres
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// DatesConfig holds the reference timezone used to encode date attribute values.
type DatesConfig struct {
	Timezone string `yaml:"timezone"`
}

// JobsConfig holds background job runner settings.
type JobsConfig struct {
	Workers      int  `yaml:"workers"`
	QueueSize    int  `yaml:"queue_size"`
	MaxAttempts  int  `yaml:"max_attempts"`
	RetryDelayMS int  `yaml:"retry_delay_ms"`
	Sync         bool `yaml:"sync"` // run jobs inline (tests, deterministic mode)
}

// RetryDelay returns the delay between attempts of a failed job.
func (j JobsConfig) RetryDelay() time.Duration {
	return time.Duration(j.RetryDelayMS) * time.Millisecond
}

// ListingConfig holds the listing query settings for a document type.
type ListingConfig struct {
	FacetsEnabled bool     `yaml:"facets_enabled"`
	HideVariants  bool     `yaml:"hide_variants"`
	VariantField  string   `yaml:"variant_field"`
	ScopeField    string   `yaml:"scope_field"`
	TitleField    string   `yaml:"title_field"`
	CodeField     string   `yaml:"code_field"`
	RankingField  string   `yaml:"ranking_field"`
	SearchFields  []string `yaml:"search_fields"`
	PageLength    int      `yaml:"page_length"`
	MaxPageLength int      `yaml:"max_page_length"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "specdex:"
	}
	if c.Dates.Timezone == "" {
		c.Dates.Timezone = "UTC"
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 4
	}
	if c.Jobs.QueueSize <= 0 {
		c.Jobs.QueueSize = 1024
	}
	if c.Jobs.MaxAttempts <= 0 {
		c.Jobs.MaxAttempts = 3
	}
	if c.Jobs.RetryDelayMS <= 0 {
		c.Jobs.RetryDelayMS = 500
	}
	c.Listing.applyDefaults()
}

func (l *ListingConfig) applyDefaults() {
	if l.VariantField == "" {
		l.VariantField = "variant_of"
	}
	if l.ScopeField == "" {
		l.ScopeField = "item_group"
	}
	if l.TitleField == "" {
		l.TitleField = "item_name"
	}
	if l.CodeField == "" {
		l.CodeField = "item_code"
	}
	if l.RankingField == "" {
		l.RankingField = "ranking"
	}
	if len(l.SearchFields) == 0 {
		l.SearchFields = []string{l.TitleField, l.CodeField}
	}
	if l.PageLength <= 0 {
		l.PageLength = 20
	}
	if l.MaxPageLength <= 0 {
		l.MaxPageLength = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of redis, sqlite, postgres, got %q", c.Database.Driver)
	}
	if _, err := time.LoadLocation(c.Dates.Timezone); err != nil {
		return fmt.Errorf("dates.timezone %q: %w", c.Dates.Timezone, err)
	}
	if c.Listing.PageLength > c.Listing.MaxPageLength {
		return fmt.Errorf("listing.page_length %d exceeds listing.max_page_length %d",
			c.Listing.PageLength, c.Listing.MaxPageLength)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
