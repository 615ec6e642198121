package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lca.db")

	database, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	_, pending, err := database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("expected pending migrations on a fresh file")
	}
	if err := database.RequiresMigrationError(); err == nil {
		t.Fatal("expected a requires-migration error before migrating")
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := database.RequiresMigrationError(); err != nil {
		t.Fatalf("expected no pending migrations, got %v", err)
	}

	// Migrating twice is a no-op.
	if err := database.Migrate(); err != nil {
		t.Fatalf("repeat Migrate failed: %v", err)
	}

	// Core tables exist.
	for _, table := range []string{"databases", "activities", "exchanges", "event_log"} {
		var count int
		err := database.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		if err != nil || count != 1 {
			t.Fatalf("expected table %s to exist (count=%d, err=%v)", table, count, err)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lca.db")
	database, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	// Activity referencing an unregistered database must be rejected.
	_, err = database.Exec(`
		INSERT INTO activities (database, code, name) VALUES ('ghost', 'a', 'x')
	`)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}
