package project

import (
	"errors"
	"testing"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
)

func TestCreateAndOpen(t *testing.T) {
	dataDir := t.TempDir()

	database, err := Create(dataDir, "v1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	database.Close()

	if !Exists(dataDir, "v1") {
		t.Fatal("expected project to exist")
	}

	reopened, err := Open(dataDir, "v1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reopened.Close()

	// Schema must be fully applied on open.
	_, pending, err := reopened.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending migrations, got %v", pending)
	}
}

func TestCreateExistingFails(t *testing.T) {
	dataDir := t.TempDir()
	database, err := Create(dataDir, "v1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	database.Close()

	if _, err := Create(dataDir, "v1"); err == nil {
		t.Fatal("expected error creating existing project")
	}
}

func TestOpenMissingIsConfigError(t *testing.T) {
	_, err := Open(t.TempDir(), "nope")
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Kind != "project" || cfgErr.Name != "nope" {
		t.Fatalf("unexpected error detail: %v", cfgErr)
	}

	if _, err := Open(t.TempDir(), ""); err == nil {
		t.Fatal("expected error for empty project name")
	}
}

func TestList(t *testing.T) {
	dataDir := t.TempDir()

	names, err := List(dataDir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no projects, got %v", names)
	}

	for _, name := range []string{"v1", "v2"} {
		database, err := Create(dataDir, name)
		if err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
		database.Close()
	}

	names, err = List(dataDir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 projects, got %v", names)
	}
}
