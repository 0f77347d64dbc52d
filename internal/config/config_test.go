package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverRedis)
	}
	if cfg.Storage.KeyPrefix != "specdex:" {
		t.Errorf("key prefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Dates.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Dates.Timezone)
	}
	if cfg.Listing.PageLength != 20 || cfg.Listing.TitleField != "item_name" {
		t.Errorf("unexpected listing defaults: %+v", cfg.Listing)
	}
	if got := strings.Join(cfg.Listing.SearchFields, ","); got != "item_name,item_code" {
		t.Errorf("search fields = %q", got)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing addrs")
	}
}

func TestValidate_SQLDriverNeedsDSN(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = driver
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error for missing dsn")
			}
			cfg.Database.DSN = "file.db"
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cfg.Database.IsSQL() {
				t.Error("expected IsSQL")
			}
		})
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mongo"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_UnknownTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Dates.Timezone = "Mars/Olympus_Mons"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestValidate_PageLengthAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Listing.PageLength = 500

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for page length above max")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SPECDEX_TEST_PORT", "9090")

	tests := []struct {
		in, want string
	}{
		{"port: ${SPECDEX_TEST_PORT}", "port: 9090"},
		{"port: ${SPECDEX_TEST_MISSING:-7070}", "port: 7070"},
		{"port: ${SPECDEX_TEST_PORT:-7070}", "port: 9090"},
		{"port: ${SPECDEX_TEST_MISSING}", "port: "},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("SPECDEX_TEST_TZ", "Europe/Berlin")

	data := []byte(`
http:
  port: 8080
database:
  driver: sqlite
  dsn: specdex.db
dates:
  timezone: ${SPECDEX_TEST_TZ}
jobs:
  sync: true
auth:
  api_keys: [admin]
  read_only_keys: [shop]
listing:
  facets_enabled: true
  page_length: 5
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dates.Timezone != "Europe/Berlin" {
		t.Errorf("timezone = %q", cfg.Dates.Timezone)
	}
	if !cfg.Jobs.Sync || cfg.Jobs.Workers != 4 {
		t.Errorf("unexpected jobs config: %+v", cfg.Jobs)
	}
	if len(cfg.Auth.APIKeys) != 1 || len(cfg.Auth.ReadOnlyKeys) != 1 || cfg.Auth.ReadOnlyKeys[0] != "shop" {
		t.Errorf("unexpected auth config: %+v", cfg.Auth)
	}
	if !cfg.Listing.FacetsEnabled || cfg.Listing.PageLength != 5 {
		t.Errorf("unexpected listing config: %+v", cfg.Listing)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
