package gormrepo

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/kailas-cloud/specdex/internal/db/sqldb"
)

// openTestDB opens a migrated SQLite database in a temp dir.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	s, err := sqldb.Open(sqldb.Config{Driver: sqldb.DriverSQLite, DSN: filepath.Join(t.TempDir(), "specdex.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Migrate(context.Background(), Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s.DB()
}

func num(f float64) *float64 { return &f }
