package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	dsn := Config{Host: "db", Port: "5432", User: "sp", Password: "p@ss/word", Name: "skillpath"}.PostgresDSN()
	if !strings.HasPrefix(dsn, "postgres://sp:p%40ss%2Fword@db:5432/skillpath") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.HasSuffix(dsn, "sslmode=disable") {
		t.Fatalf("missing sslmode: %q", dsn)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	log := logger.Nop()
	db, err := Open(Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := Migrate(db, log); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{"user_profile", "activity", "resource", "user_api_key", "ai_call_log"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table %s not created", table)
		}
	}
	// Running twice is harmless.
	if err := Migrate(db, log); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}
