package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActivityKind distinguishes process activities from elementary flows.
type ActivityKind string

const (
	ActivityKindProcess   ActivityKind = "process"
	ActivityKindBiosphere ActivityKind = "biosphere"
)

// ExchangeType represents the type of an exchange.
type ExchangeType string

const (
	ExchangeTypeTechnosphere ExchangeType = "technosphere"
	ExchangeTypeBiosphere    ExchangeType = "biosphere"
	ExchangeTypeProduction   ExchangeType = "production"
)

// Outcome is the result class of a migration attempt.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeCreated    Outcome = "created"
	OutcomeUnresolved Outcome = "unresolved"
)

// Key identifies a single activity within a project: the database it
// lives in plus its code.
type Key struct {
	Database string `json:"database" yaml:"database"`
	Code     string `json:"code" yaml:"code"`
}

// String renders the key in "database:code" form.
func (k Key) String() string {
	return k.Database + ":" + k.Code
}

// ParseKey parses a "database:code" string into a Key.
func ParseKey(s string) (Key, error) {
	db, code, ok := strings.Cut(s, ":")
	if !ok || db == "" || code == "" {
		return Key{}, fmt.Errorf("invalid activity key %q: expected database:code", s)
	}
	return Key{Database: db, Code: code}, nil
}

// Activity represents a process or biosphere record in an LCA database.
type Activity struct {
	Database         string       `json:"database" db:"database"`
	Code             string       `json:"code" db:"code"`
	Name             string       `json:"name" db:"name"`
	Kind             ActivityKind `json:"kind" db:"kind"`
	Location         *string      `json:"location,omitempty" db:"location"`
	Unit             *string      `json:"unit,omitempty" db:"unit"`
	ReferenceProduct *string      `json:"reference_product,omitempty" db:"reference_product"`
	Categories       []string     `json:"categories,omitempty" db:"categories"`
	AutoGenerated    bool         `json:"auto_generated" db:"auto_generated"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// Key returns the activity's (database, code) key.
func (a *Activity) Key() Key {
	return Key{Database: a.Database, Code: a.Code}
}

// Compartment returns the top-level category of a biosphere flow, or ""
// for uncategorized records.
func (a *Activity) Compartment() string {
	if len(a.Categories) == 0 {
		return ""
	}
	return a.Categories[0]
}

// Identity is the composite natural identity used for exact-key matching
// between database versions. Codes change across versions; these fields
// mostly don't.
type Identity struct {
	Name             string
	Location         *string
	Unit             *string
	ReferenceProduct *string
	Categories       []string
	Kind             ActivityKind
}

// Identity extracts the comparison fields from an activity. Biosphere
// flows carry no location or reference product, so categories carry the
// weight for them instead.
func (a *Activity) Identity() Identity {
	id := Identity{
		Name: a.Name,
		Unit: a.Unit,
		Kind: a.Kind,
	}
	if a.Kind == ActivityKindBiosphere {
		id.Categories = a.Categories
	} else {
		id.Location = a.Location
		id.ReferenceProduct = a.ReferenceProduct
	}
	return id
}

// Matches reports whether two identities denote the same record. Nil
// optional fields only match nil.
func (id Identity) Matches(other Identity) bool {
	if id.Kind != other.Kind || id.Name != other.Name {
		return false
	}
	if !eqStrPtr(id.Unit, other.Unit) {
		return false
	}
	if id.Kind == ActivityKindBiosphere {
		return eqStrSlice(id.Categories, other.Categories)
	}
	return eqStrPtr(id.Location, other.Location) &&
		eqStrPtr(id.ReferenceProduct, other.ReferenceProduct)
}

func eqStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqStrSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SearchText is the string fuzzy matching scores against: the name plus
// the category path.
func (a *Activity) SearchText() string {
	if len(a.Categories) == 0 {
		return a.Name
	}
	return a.Name + " " + strings.Join(a.Categories, " ")
}

// Exchange represents a quantified link from an activity to another
// activity or to a biosphere flow.
type Exchange struct {
	Activity        Key          `json:"activity"`
	Input           Key          `json:"input"`
	Amount          float64      `json:"amount" db:"amount"`
	Unit            *string      `json:"unit,omitempty" db:"unit"`
	Type            ExchangeType `json:"type" db:"type"`
	UncertaintyType *int         `json:"uncertainty_type,omitempty" db:"uncertainty_type"`
	Loc             *float64     `json:"loc,omitempty" db:"loc"`
	Scale           *float64     `json:"scale,omitempty" db:"scale"`
	Minimum         *float64     `json:"minimum,omitempty" db:"minimum"`
	Maximum         *float64     `json:"maximum,omitempty" db:"maximum"`
	Negative        *bool        `json:"negative,omitempty" db:"negative"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}

// Event represents an entry in the migration audit log.
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceKey  *string   `json:"resource_key,omitempty" db:"resource_key"`
	EventType    string    `json:"event_type" db:"event_type"`
	Payload      *string   `json:"payload,omitempty" db:"payload"` // JSON
}

// Resolution is the outcome of migrating one activity. Unresolved
// resolutions carry the old key so callers can report what was missed.
type Resolution struct {
	Outcome Outcome `json:"outcome"`
	Old     Key     `json:"old"`
	New     *Key    `json:"new,omitempty"`
}

// Resolved reports whether the resolution points at a record in the new
// database (matched or created).
func (r *Resolution) Resolved() bool {
	return r.Outcome == OutcomeMatched || r.Outcome == OutcomeCreated
}
