package domain

import "testing"

func strptr(s string) *string { return &s }

func TestParseKey(t *testing.T) {
	key, err := ParseKey("ei39:A001")
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if key.Database != "ei39" || key.Code != "A001" {
		t.Fatalf("unexpected key: %v", key)
	}
	if key.String() != "ei39:A001" {
		t.Fatalf("unexpected rendering: %s", key)
	}

	for _, bad := range []string{"", "no-colon", ":code", "db:"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestActivity_Compartment(t *testing.T) {
	act := &Activity{Categories: []string{"air", "urban air close to ground"}}
	if got := act.Compartment(); got != "air" {
		t.Fatalf("expected air, got %q", got)
	}
	if got := (&Activity{}).Compartment(); got != "" {
		t.Fatalf("expected empty compartment, got %q", got)
	}
}

func TestActivity_SearchText(t *testing.T) {
	act := &Activity{Name: "Carbon dioxide", Categories: []string{"air", "urban"}}
	if got := act.SearchText(); got != "Carbon dioxide air urban" {
		t.Fatalf("unexpected search text: %q", got)
	}
	plain := &Activity{Name: "steel production"}
	if got := plain.SearchText(); got != "steel production" {
		t.Fatalf("unexpected search text: %q", got)
	}
}

func TestIdentity_Matches(t *testing.T) {
	base := Identity{
		Name: "steel production", Kind: ActivityKindProcess,
		Location: strptr("GLO"), Unit: strptr("kg"), ReferenceProduct: strptr("steel"),
	}

	tests := []struct {
		name  string
		other Identity
		want  bool
	}{
		{"equal", Identity{Name: "steel production", Kind: ActivityKindProcess, Location: strptr("GLO"), Unit: strptr("kg"), ReferenceProduct: strptr("steel")}, true},
		{"different name", Identity{Name: "iron production", Kind: ActivityKindProcess, Location: strptr("GLO"), Unit: strptr("kg"), ReferenceProduct: strptr("steel")}, false},
		{"different location", Identity{Name: "steel production", Kind: ActivityKindProcess, Location: strptr("DE"), Unit: strptr("kg"), ReferenceProduct: strptr("steel")}, false},
		{"nil location", Identity{Name: "steel production", Kind: ActivityKindProcess, Unit: strptr("kg"), ReferenceProduct: strptr("steel")}, false},
		{"different kind", Identity{Name: "steel production", Kind: ActivityKindBiosphere, Location: strptr("GLO"), Unit: strptr("kg"), ReferenceProduct: strptr("steel")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Matches(tt.other); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentity_MatchesBiosphereComparesCategories(t *testing.T) {
	flow := &Activity{
		Name: "Carbon dioxide", Kind: ActivityKindBiosphere,
		Unit: strptr("kg"), Categories: []string{"air", "urban"},
	}
	same := &Activity{
		Name: "Carbon dioxide", Kind: ActivityKindBiosphere,
		Unit: strptr("kg"), Categories: []string{"air", "urban"},
		// Biosphere identity ignores location.
		Location: strptr("GLO"),
	}
	other := &Activity{
		Name: "Carbon dioxide", Kind: ActivityKindBiosphere,
		Unit: strptr("kg"), Categories: []string{"water"},
	}

	if !flow.Identity().Matches(same.Identity()) {
		t.Fatal("expected identities to match")
	}
	if flow.Identity().Matches(other.Identity()) {
		t.Fatal("expected different compartments not to match")
	}
}

func TestResolution_Resolved(t *testing.T) {
	newKey := Key{Database: "ei39", Code: "x"}
	if !(&Resolution{Outcome: OutcomeMatched, New: &newKey}).Resolved() {
		t.Fatal("matched must be resolved")
	}
	if !(&Resolution{Outcome: OutcomeCreated, New: &newKey}).Resolved() {
		t.Fatal("created must be resolved")
	}
	if (&Resolution{Outcome: OutcomeUnresolved}).Resolved() {
		t.Fatal("unresolved must not be resolved")
	}
}
