package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

type sample struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "specdex.db")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.WaitForReady(ctx, time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	if err := s.Migrate(ctx, &sample{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := s.DB().Create(&sample{Name: "x"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
