// Package inventory reads and writes YAML inventory documents: the
// import/export format for getting activity data into and out of
// project files.
package inventory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

// Document is one LCA database's worth of activities and exchanges.
type Document struct {
	Database   string          `yaml:"database"`
	Activities []ActivityEntry `yaml:"activities"`
}

// ActivityEntry represents one activity in the document.
type ActivityEntry struct {
	Code             string          `yaml:"code"`
	Name             string          `yaml:"name"`
	Kind             string          `yaml:"kind,omitempty"` // defaults to process
	Location         *string         `yaml:"location,omitempty"`
	Unit             *string         `yaml:"unit,omitempty"`
	ReferenceProduct *string         `yaml:"reference_product,omitempty"`
	Categories       []string        `yaml:"categories,omitempty"`
	AutoGenerated    bool            `yaml:"auto_generated,omitempty"`
	Exchanges        []ExchangeEntry `yaml:"exchanges,omitempty"`
}

// ExchangeEntry represents one exchange in the document.
type ExchangeEntry struct {
	Input           string   `yaml:"input"` // database:code
	Amount          float64  `yaml:"amount"`
	Unit            *string  `yaml:"unit,omitempty"`
	Type            string   `yaml:"type,omitempty"` // defaults to technosphere
	UncertaintyType *int     `yaml:"uncertainty_type,omitempty"`
	Loc             *float64 `yaml:"loc,omitempty"`
	Scale           *float64 `yaml:"scale,omitempty"`
	Minimum         *float64 `yaml:"minimum,omitempty"`
	Maximum         *float64 `yaml:"maximum,omitempty"`
	Negative        *bool    `yaml:"negative,omitempty"`
}

// Read parses a YAML inventory document.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}
	if doc.Database == "" {
		return nil, fmt.Errorf("inventory is missing a database name")
	}
	return &doc, nil
}

// ReadFile parses a YAML inventory document from a file.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// ImportResult reports what an import inserted.
type ImportResult struct {
	Activities int
	Exchanges  int
}

// Import loads a document into a project: the database is registered,
// activities are inserted first, exchanges second so endpoints within
// the document resolve regardless of declaration order. A duplicate
// code fails the import.
func Import(as *store.ActivityStore, doc *Document) (*ImportResult, error) {
	if err := as.EnsureDatabase(doc.Database); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, entry := range doc.Activities {
		act, err := entry.toActivity(doc.Database)
		if err != nil {
			return nil, err
		}
		if err := as.Create(act); err != nil {
			return nil, err
		}
		result.Activities++
	}

	for _, entry := range doc.Activities {
		for _, excEntry := range entry.Exchanges {
			exc, err := excEntry.toExchange(domain.Key{Database: doc.Database, Code: entry.Code})
			if err != nil {
				return nil, err
			}
			if err := as.CreateExchange(exc); err != nil {
				return nil, err
			}
			result.Exchanges++
		}
	}

	return result, nil
}

// Export builds a document from one database in a project.
func Export(as *store.ActivityStore, database string) (*Document, error) {
	ok, err := as.HasDatabase(database)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ConfigError{Kind: "database", Name: database}
	}

	acts, err := as.ListAll(database)
	if err != nil {
		return nil, err
	}

	doc := &Document{Database: database}
	for _, act := range acts {
		entry := ActivityEntry{
			Code:             act.Code,
			Name:             act.Name,
			Kind:             string(act.Kind),
			Location:         act.Location,
			Unit:             act.Unit,
			ReferenceProduct: act.ReferenceProduct,
			Categories:       act.Categories,
			AutoGenerated:    act.AutoGenerated,
		}

		excs, err := as.Exchanges(database, act.Code)
		if err != nil {
			return nil, err
		}
		for _, exc := range excs {
			entry.Exchanges = append(entry.Exchanges, ExchangeEntry{
				Input:           exc.Input.String(),
				Amount:          exc.Amount,
				Unit:            exc.Unit,
				Type:            string(exc.Type),
				UncertaintyType: exc.UncertaintyType,
				Loc:             exc.Loc,
				Scale:           exc.Scale,
				Minimum:         exc.Minimum,
				Maximum:         exc.Maximum,
				Negative:        exc.Negative,
			})
		}
		doc.Activities = append(doc.Activities, entry)
	}
	return doc, nil
}

// Write serializes a document as YAML.
func Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}
	return enc.Close()
}

func (e ActivityEntry) toActivity(database string) (*domain.Activity, error) {
	kind := e.Kind
	if kind == "" {
		kind = string(domain.ActivityKindProcess)
	}
	if err := domain.ValidateActivityKind(kind); err != nil {
		return nil, fmt.Errorf("activity %q: %w", e.Code, err)
	}
	if err := domain.ValidateCode(e.Code); err != nil {
		return nil, err
	}
	if e.Name == "" {
		return nil, fmt.Errorf("activity %q: name must not be empty", e.Code)
	}

	return &domain.Activity{
		Database:         database,
		Code:             e.Code,
		Name:             e.Name,
		Kind:             domain.ActivityKind(kind),
		Location:         e.Location,
		Unit:             e.Unit,
		ReferenceProduct: e.ReferenceProduct,
		Categories:       e.Categories,
		AutoGenerated:    e.AutoGenerated,
	}, nil
}

func (e ExchangeEntry) toExchange(activity domain.Key) (*domain.Exchange, error) {
	typ := e.Type
	if typ == "" {
		typ = string(domain.ExchangeTypeTechnosphere)
	}
	if err := domain.ValidateExchangeType(typ); err != nil {
		return nil, fmt.Errorf("exchange on %s: %w", activity, err)
	}
	input, err := domain.ParseKey(e.Input)
	if err != nil {
		return nil, fmt.Errorf("exchange on %s: %w", activity, err)
	}

	return &domain.Exchange{
		Activity:        activity,
		Input:           input,
		Amount:          e.Amount,
		Unit:            e.Unit,
		Type:            domain.ExchangeType(typ),
		UncertaintyType: e.UncertaintyType,
		Loc:             e.Loc,
		Scale:           e.Scale,
		Minimum:         e.Minimum,
		Maximum:         e.Maximum,
		Negative:        e.Negative,
	}, nil
}
