package testutil

import (
	"testing"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

// TempProject creates a migrated project file in a temp data dir and
// returns its store. The data dir is shared per test via t.TempDir, so
// multiple projects created in one test land under the same root.
func TempProject(t *testing.T, dataDir, name string) *store.Store {
	t.Helper()

	database, err := project.Create(dataDir, name)
	if err != nil {
		t.Fatalf("Failed to create test project %s: %v", name, err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return store.New(database)
}

// SeedActivity inserts an activity, registering its database first.
func SeedActivity(t *testing.T, s *store.Store, act *domain.Activity) {
	t.Helper()
	if err := s.Activities.EnsureDatabase(act.Database); err != nil {
		t.Fatalf("Failed to register database %s: %v", act.Database, err)
	}
	if err := s.Activities.Create(act); err != nil {
		t.Fatalf("Failed to seed activity %s: %v", act.Key(), err)
	}
}

// SeedExchange inserts an exchange.
func SeedExchange(t *testing.T, s *store.Store, exc *domain.Exchange) {
	t.Helper()
	if err := s.Activities.CreateExchange(exc); err != nil {
		t.Fatalf("Failed to seed exchange on %s: %v", exc.Activity, err)
	}
}

// CountRows returns the row count of a table.
func CountRows(t *testing.T, s *store.Store, table string) int {
	t.Helper()
	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
