// Package migrate implements the activity matcher/migrator: it resolves
// activities from an old database version to their equivalents in a new
// one, creating missing records and their exchanges on request, and
// caches every resolution so repeat migrations cost nothing.
package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/haitham-ghaida/lcamigrate/internal/db"
	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/match"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

// Source is the read capability the migrator needs from the old project.
type Source interface {
	GetByCode(database, code string) (*domain.Activity, error)
	Exchanges(database, code string) ([]*domain.Exchange, error)
	HasDatabase(name string) (bool, error)
}

// Target is the read-write capability the migrator needs from the new
// project.
type Target interface {
	GetByCode(database, code string) (*domain.Activity, error)
	FindByIdentity(database string, id domain.Identity) (*domain.Activity, error)
	ListCandidates(database string, kind domain.ActivityKind, compartment string) ([]*domain.Activity, error)
	Create(act *domain.Activity) error
	CreateExchange(exc *domain.Exchange) error
	LogMatched(old, matched domain.Key, strategy string) error
	HasDatabase(name string) (bool, error)
}

// Options configure a Migrator.
type Options struct {
	DataDir    string
	OldProject string
	NewProject string

	OldDatabase string
	NewDatabase string

	// BiosphereDatabase is the name of the elementary-flow database in
	// the new project. Defaults to "biosphere3".
	BiosphereDatabase string

	// SimilarityCutoff for fuzzy biosphere matching. Defaults to
	// match.DefaultCutoff.
	SimilarityCutoff float64

	// Scorer overrides the similarity implementation. Defaults to
	// match.TokenSort.
	Scorer match.Scorer
}

// MigrateOptions control a single migration call.
type MigrateOptions struct {
	// CreateIfNotFound creates the record (and its exchanges) in the new
	// database when no match is found.
	CreateIfNotFound bool

	// ByKey treats the identifier as a "database:code" key instead of a
	// code in the configured old database.
	ByKey bool
}

// Migrator matches and migrates activities between two project files.
//
// A Migrator is not safe for concurrent use: the cache and the target
// database are mutated without locking. Concurrent migration of the same
// project is unsupported.
type Migrator struct {
	source Source
	target Target

	oldDatabase string
	newDatabase string
	biosphere   string
	scorer      match.Scorer
	cutoff      float64

	cache    map[domain.Key]*domain.Resolution
	inFlight map[domain.Key]bool

	// owned project handles, closed by Close; nil when the migrator was
	// built on caller-provided backends
	oldDB *db.DB
	newDB *db.DB
}

// New opens the old and new projects under opts.DataDir and builds a
// migrator on them. It fails with a configuration error if either
// project or database does not exist.
func New(opts Options) (*Migrator, error) {
	oldDB, err := project.Open(opts.DataDir, opts.OldProject)
	if err != nil {
		return nil, err
	}
	newDB, err := project.Open(opts.DataDir, opts.NewProject)
	if err != nil {
		oldDB.Close()
		return nil, err
	}

	m, err := NewWithBackends(store.New(oldDB).Activities, store.New(newDB).Activities, opts)
	if err != nil {
		oldDB.Close()
		newDB.Close()
		return nil, err
	}
	m.oldDB = oldDB
	m.newDB = newDB
	return m, nil
}

// NewWithBackends builds a migrator on caller-provided backends. Only
// the database names in opts are consulted; the project fields are
// ignored.
func NewWithBackends(source Source, target Target, opts Options) (*Migrator, error) {
	if opts.OldDatabase == "" || opts.NewDatabase == "" {
		return nil, fmt.Errorf("old and new database names must not be empty")
	}

	biosphere := opts.BiosphereDatabase
	if biosphere == "" {
		biosphere = "biosphere3"
	}
	cutoff := opts.SimilarityCutoff
	if cutoff == 0 {
		cutoff = match.DefaultCutoff
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = match.TokenSort{}
	}

	ok, err := source.HasDatabase(opts.OldDatabase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ConfigError{Kind: "database", Name: opts.OldDatabase}
	}
	ok, err = target.HasDatabase(opts.NewDatabase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ConfigError{Kind: "database", Name: opts.NewDatabase}
	}
	// Created biosphere flows are written here, so the registration
	// must exist up front.
	ok, err = target.HasDatabase(biosphere)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ConfigError{Kind: "database", Name: biosphere}
	}

	return &Migrator{
		source:      source,
		target:      target,
		oldDatabase: opts.OldDatabase,
		newDatabase: opts.NewDatabase,
		biosphere:   biosphere,
		scorer:      scorer,
		cutoff:      cutoff,
		cache:       make(map[domain.Key]*domain.Resolution),
		inFlight:    make(map[domain.Key]bool),
	}, nil
}

// Close releases the project handles New opened. It is a no-op for
// migrators built with NewWithBackends.
func (m *Migrator) Close() error {
	var firstErr error
	if m.oldDB != nil {
		firstErr = m.oldDB.Close()
		m.oldDB = nil
	}
	if m.newDB != nil {
		if err := m.newDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.newDB = nil
	}
	return firstErr
}

// MigrateActivity resolves one old-database identifier to a record in
// the new database. The identifier is a code in the configured old
// database, or a "database:code" key when opts.ByKey is set.
//
// A missing record on the old side is an error. A missing match on the
// new side with CreateIfNotFound unset is not: it returns an unresolved
// resolution. Repeat calls for the same identifier hit the cache and
// touch neither database.
func (m *Migrator) MigrateActivity(identifier string, opts MigrateOptions) (*domain.Resolution, error) {
	var key domain.Key
	if opts.ByKey {
		parsed, err := domain.ParseKey(identifier)
		if err != nil {
			return nil, err
		}
		key = parsed
	} else {
		key = domain.Key{Database: m.oldDatabase, Code: identifier}
	}
	return m.resolve(key, opts.CreateIfNotFound)
}

func (m *Migrator) resolve(key domain.Key, create bool) (*domain.Resolution, error) {
	if res, ok := m.cache[key]; ok {
		return res, nil
	}
	if m.inFlight[key] {
		return nil, &domain.CycleError{Key: key}
	}

	old, err := m.source.GetByCode(key.Database, key.Code)
	if err != nil {
		return nil, err
	}

	matched, strategy, err := m.findMatch(old)
	if err != nil {
		return nil, err
	}
	if matched != nil {
		if err := m.target.LogMatched(key, matched.Key(), strategy); err != nil {
			return nil, err
		}
		return m.remember(&domain.Resolution{
			Outcome: domain.OutcomeMatched,
			Old:     key,
			New:     keyPtr(matched.Key()),
		}), nil
	}

	if !create {
		return m.remember(&domain.Resolution{
			Outcome: domain.OutcomeUnresolved,
			Old:     key,
		}), nil
	}

	return m.create(key, old)
}

// findMatch tries the matching strategies in order: exact code, exact
// composite identity, then (biosphere records only) fuzzy name matching
// restricted to the record's compartment.
func (m *Migrator) findMatch(old *domain.Activity) (*domain.Activity, string, error) {
	database := m.targetDatabase(old.Kind)

	byCode, err := m.target.GetByCode(database, old.Code)
	if err == nil {
		return byCode, "code", nil
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, "", err
	}

	byIdentity, err := m.target.FindByIdentity(database, old.Identity())
	if err != nil {
		return nil, "", err
	}
	if byIdentity != nil {
		return byIdentity, "identity", nil
	}

	if old.Kind != domain.ActivityKindBiosphere {
		return nil, "", nil
	}

	candidates, err := m.target.ListCandidates(database, domain.ActivityKindBiosphere, old.Compartment())
	if err != nil {
		return nil, "", err
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.SearchText()
	}
	// Ambiguity is resolved to the highest scorer, ties to the first
	// encountered; never an error.
	if i, _, ok := match.Best(m.scorer, old.SearchText(), texts, m.cutoff); ok {
		return candidates[i], "fuzzy", nil
	}
	return nil, "", nil
}

// create copies the old record into the new database with a fresh code
// and the auto-generated marker, then re-creates its exchanges with
// endpoints resolved through the same migration procedure.
func (m *Migrator) create(key domain.Key, old *domain.Activity) (*domain.Resolution, error) {
	m.inFlight[key] = true
	defer delete(m.inFlight, key)

	newAct := &domain.Activity{
		Database:         m.targetDatabase(old.Kind),
		Code:             newCode(),
		Name:             old.Name,
		Kind:             old.Kind,
		Location:         old.Location,
		Unit:             old.Unit,
		ReferenceProduct: old.ReferenceProduct,
		Categories:       old.Categories,
		AutoGenerated:    true,
	}
	if err := m.target.Create(newAct); err != nil {
		return nil, err
	}

	exchanges, err := m.source.Exchanges(key.Database, key.Code)
	if err != nil {
		return nil, err
	}
	for _, exc := range exchanges {
		if exc.Type == domain.ExchangeTypeProduction {
			continue
		}

		input, err := m.resolveEndpoint(exc.Input)
		if err != nil {
			return nil, err
		}

		copied := *exc
		copied.Activity = newAct.Key()
		copied.Input = input
		if err := m.target.CreateExchange(&copied); err != nil {
			return nil, err
		}
	}

	return m.remember(&domain.Resolution{
		Outcome: domain.OutcomeCreated,
		Old:     key,
		New:     keyPtr(newAct.Key()),
	}), nil
}

// resolveEndpoint migrates an exchange endpoint. Endpoints outside the
// old project's databases are external references and pass through
// unmodified.
func (m *Migrator) resolveEndpoint(input domain.Key) (domain.Key, error) {
	known, err := m.source.HasDatabase(input.Database)
	if err != nil {
		return domain.Key{}, err
	}
	if !known {
		return input, nil
	}

	res, err := m.resolve(input, true)
	if err != nil {
		return domain.Key{}, err
	}
	if res.New == nil {
		return domain.Key{}, fmt.Errorf("exchange endpoint %s did not resolve", input)
	}
	return *res.New, nil
}

// targetDatabase maps a record kind to the database it lives in on the
// new side: elementary flows go to the biosphere database, everything
// else to the configured new database.
func (m *Migrator) targetDatabase(kind domain.ActivityKind) string {
	if kind == domain.ActivityKindBiosphere {
		return m.biosphere
	}
	return m.newDatabase
}

func (m *Migrator) remember(res *domain.Resolution) *domain.Resolution {
	m.cache[res.Old] = res
	return res
}

// newCode generates a code for a created record: a uuid4 in hex form.
func newCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func keyPtr(k domain.Key) *domain.Key {
	return &k
}
