package inventory

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haitham-ghaida/lcamigrate/internal/db"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

const sampleDoc = `database: ei38
activities:
  - code: A001
    name: steel production
    location: GLO
    unit: kg
    reference_product: steel
    exchanges:
      - input: bio3:F1
        amount: 1.85
        unit: kg
        type: biosphere
  - code: F1
    name: Carbon dioxide
    kind: biosphere
    unit: kg
    categories: [air]
`

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "lca.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return store.New(database)
}

func TestReadAndImport(t *testing.T) {
	s := setupTestStore(t)

	doc, err := Read(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	result, err := Import(s.Activities, doc)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Activities != 2 || result.Exchanges != 1 {
		t.Fatalf("unexpected import counts: %+v", result)
	}

	act, err := s.Activities.GetByCode("ei38", "A001")
	if err != nil {
		t.Fatalf("imported activity not readable: %v", err)
	}
	if act.Name != "steel production" || *act.Unit != "kg" {
		t.Fatalf("unexpected activity: %+v", act)
	}

	excs, err := s.Activities.Exchanges("ei38", "A001")
	if err != nil || len(excs) != 1 {
		t.Fatalf("expected 1 exchange, got %d (%v)", len(excs), err)
	}
	if excs[0].Input.Database != "bio3" || excs[0].Amount != 1.85 {
		t.Fatalf("unexpected exchange: %+v", excs[0])
	}
}

func TestRead_Invalid(t *testing.T) {
	if _, err := Read(strings.NewReader("activities: []\n")); err == nil {
		t.Fatal("expected error for missing database name")
	}
	if _, err := Read(strings.NewReader("database: x\nbogus_field: 1\n")); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestImport_BadEntries(t *testing.T) {
	s := setupTestStore(t)

	bad := []string{
		"database: x\nactivities:\n  - code: a\n    name: ok\n    kind: wrong\n",
		"database: x\nactivities:\n  - code: 'a b'\n    name: ok\n",
		"database: x\nactivities:\n  - code: a\n    name: ''\n",
		"database: x\nactivities:\n  - code: a\n    name: ok\n    exchanges:\n      - input: nocolon\n        amount: 1\n",
	}
	for i, docText := range bad {
		doc, err := Read(strings.NewReader(docText))
		if err != nil {
			t.Fatalf("doc %d failed to parse: %v", i, err)
		}
		if _, err := Import(s.Activities, doc); err == nil {
			t.Errorf("doc %d: expected import error", i)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	doc, err := Read(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, err := Import(s.Activities, doc); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	exported, err := Export(s.Activities, "ei38")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if exported.Database != "ei38" || len(exported.Activities) != 2 {
		t.Fatalf("unexpected export: %+v", exported)
	}

	var buf bytes.Buffer
	if err := Write(&buf, exported); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reparsed, err := Read(&buf)
	if err != nil {
		t.Fatalf("re-Read failed: %v", err)
	}
	if len(reparsed.Activities) != 2 {
		t.Fatalf("round trip lost activities: %+v", reparsed)
	}

	// One exchange on A001 must survive the trip.
	for _, entry := range reparsed.Activities {
		if entry.Code == "A001" {
			if len(entry.Exchanges) != 1 || entry.Exchanges[0].Amount != 1.85 {
				t.Fatalf("exchanges not round-tripped: %+v", entry.Exchanges)
			}
		}
	}
}

func TestExport_UnknownDatabase(t *testing.T) {
	s := setupTestStore(t)
	if _, err := Export(s.Activities, "nope"); err == nil {
		t.Fatal("expected error for unknown database")
	}
}
