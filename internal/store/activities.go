package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/events"
)

// ActivityStore handles activity and exchange persistence for one
// project file. It is the concrete backend behind the migrator's
// source/target capability interfaces.
type ActivityStore struct {
	store *Store
}

const activityColumns = `database, code, name, kind, location, unit, reference_product, categories, auto_generated, created_at, updated_at`

// EnsureDatabase registers an LCA database name in the project if it is
// not registered yet.
func (as *ActivityStore) EnsureDatabase(name string) error {
	if _, err := as.store.db.Exec("INSERT OR IGNORE INTO databases (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("failed to register database %q: %w", name, err)
	}
	return nil
}

// HasDatabase reports whether the named LCA database is registered in
// the project.
func (as *ActivityStore) HasDatabase(name string) (bool, error) {
	var count int
	if err := as.store.db.QueryRow("SELECT COUNT(*) FROM databases WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check database %q: %w", name, err)
	}
	return count > 0, nil
}

// ListDatabases returns the names of all registered LCA databases.
func (as *ActivityStore) ListDatabases() ([]string, error) {
	rows, err := as.store.db.Query("SELECT name FROM databases ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetByCode fetches an activity by its (database, code) key. Returns
// *domain.NotFoundError if no such record exists.
func (as *ActivityStore) GetByCode(database, code string) (*domain.Activity, error) {
	row := as.store.db.QueryRow(`
		SELECT `+activityColumns+`
		FROM activities WHERE database = ? AND code = ?
	`, database, code)

	act, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Database: database, Code: code}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %s:%s: %w", database, code, err)
	}
	return act, nil
}

// FindByIdentity looks for a record in the given database whose composite
// identity fields equal id. Returns nil (no error) when nothing matches.
func (as *ActivityStore) FindByIdentity(database string, id domain.Identity) (*domain.Activity, error) {
	// Name and kind narrow the scan; the remaining fields are compared
	// in Go because categories are stored as JSON.
	rows, err := as.store.db.Query(`
		SELECT `+activityColumns+`
		FROM activities WHERE database = ? AND name = ? AND kind = ?
		ORDER BY code
	`, database, id.Name, string(id.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query activities by identity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if act.Identity().Matches(id) {
			return act, nil
		}
	}
	return nil, rows.Err()
}

// ListCandidates returns activities of the given kind in the database,
// optionally restricted to a compartment (top-level category). Iteration
// order is stable (by code) so fuzzy tie-breaking is deterministic.
func (as *ActivityStore) ListCandidates(database string, kind domain.ActivityKind, compartment string) ([]*domain.Activity, error) {
	rows, err := as.store.db.Query(`
		SELECT `+activityColumns+`
		FROM activities WHERE database = ? AND kind = ?
		ORDER BY code
	`, database, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if compartment != "" && act.Compartment() != compartment {
			continue
		}
		candidates = append(candidates, act)
	}
	return candidates, rows.Err()
}

// ListAll returns every activity in the given database, ordered by code.
func (as *ActivityStore) ListAll(database string) ([]*domain.Activity, error) {
	rows, err := as.store.db.Query(`
		SELECT `+activityColumns+`
		FROM activities WHERE database = ?
		ORDER BY code
	`, database)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var acts []*domain.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		acts = append(acts, act)
	}
	return acts, rows.Err()
}

// Exchanges returns the exchanges of one activity in insertion order.
func (as *ActivityStore) Exchanges(database, code string) ([]*domain.Exchange, error) {
	rows, err := as.store.db.Query(`
		SELECT database, code, input_database, input_code, amount, unit, type,
		       uncertainty_type, loc, scale, minimum, maximum, negative
		FROM exchanges WHERE database = ? AND code = ?
		ORDER BY id
	`, database, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges for %s:%s: %w", database, code, err)
	}
	defer rows.Close()

	var excs []*domain.Exchange
	for rows.Next() {
		exc := &domain.Exchange{}
		var negative sql.NullBool
		err := rows.Scan(
			&exc.Activity.Database, &exc.Activity.Code,
			&exc.Input.Database, &exc.Input.Code,
			&exc.Amount, &exc.Unit, &exc.Type,
			&exc.UncertaintyType, &exc.Loc, &exc.Scale,
			&exc.Minimum, &exc.Maximum, &negative,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if negative.Valid {
			v := negative.Bool
			exc.Negative = &v
		}
		excs = append(excs, exc)
	}
	return excs, rows.Err()
}

// Create inserts a new activity and logs an activity.created event.
// A duplicate (database, code) pair fails the insert; the error is
// propagated to the caller.
func (as *ActivityStore) Create(act *domain.Activity) error {
	categories, err := marshalCategories(act.Categories)
	if err != nil {
		return err
	}

	return as.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		_, err := tx.Exec(`
			INSERT INTO activities (database, code, name, kind, location, unit, reference_product, categories, auto_generated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, act.Database, act.Code, act.Name, string(act.Kind),
			act.Location, act.Unit, act.ReferenceProduct, categories, act.AutoGenerated)
		if err != nil {
			return fmt.Errorf("failed to create activity %s: %w", act.Key(), err)
		}

		if err := ew.LogActivityCreated(tx, act); err != nil {
			return fmt.Errorf("failed to log event: %w", err)
		}
		return nil
	})
}

// CreateExchange inserts a new exchange and logs an exchange.created event.
func (as *ActivityStore) CreateExchange(exc *domain.Exchange) error {
	return as.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		_, err := tx.Exec(`
			INSERT INTO exchanges (database, code, input_database, input_code, amount, unit, type,
			                       uncertainty_type, loc, scale, minimum, maximum, negative)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, exc.Activity.Database, exc.Activity.Code,
			exc.Input.Database, exc.Input.Code,
			exc.Amount, exc.Unit, string(exc.Type),
			exc.UncertaintyType, exc.Loc, exc.Scale,
			exc.Minimum, exc.Maximum, exc.Negative)
		if err != nil {
			return fmt.Errorf("failed to create exchange on %s: %w", exc.Activity, err)
		}

		if err := ew.LogExchangeCreated(tx, exc); err != nil {
			return fmt.Errorf("failed to log event: %w", err)
		}
		return nil
	})
}

// LogMatched records an activity.matched audit event outside any
// transaction; matching mutates nothing else.
func (as *ActivityStore) LogMatched(old, matched domain.Key, strategy string) error {
	ew := events.NewWriter(as.store.db.DB)
	return ew.LogActivityMatched(nil, old, matched, strategy)
}

// DeleteAutoGenerated removes every record in the database that carries
// the auto-generated marker, along with its exchanges, and returns how
// many activities were deleted.
func (as *ActivityStore) DeleteAutoGenerated(database string) (int64, error) {
	var deleted int64
	err := as.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`
			DELETE FROM activities WHERE database = ? AND auto_generated = 1
		`, database)
		if err != nil {
			return fmt.Errorf("failed to delete auto-generated activities: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted activities: %w", err)
		}

		payload := fmt.Sprintf(`{"database":%q,"deleted":%d}`, database, deleted)
		return ew.LogEvent(tx, &domain.Event{
			ResourceType: "database",
			ResourceKey:  &database,
			EventType:    "database.cleanup",
			Payload:      &payload,
		})
	})
	return deleted, err
}

// CountAutoGenerated returns how many records in the database carry the
// auto-generated marker.
func (as *ActivityStore) CountAutoGenerated(database string) (int64, error) {
	var count int64
	err := as.store.db.QueryRow(`
		SELECT COUNT(*) FROM activities WHERE database = ? AND auto_generated = 1
	`, database).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count auto-generated activities: %w", err)
	}
	return count, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row scanner) (*domain.Activity, error) {
	act := &domain.Activity{}
	var kind string
	var categories sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&act.Database, &act.Code, &act.Name, &kind,
		&act.Location, &act.Unit, &act.ReferenceProduct,
		&categories, &act.AutoGenerated, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	act.Kind = domain.ActivityKind(kind)

	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &act.Categories); err != nil {
			return nil, fmt.Errorf("failed to parse categories for %s: %w", act.Key(), err)
		}
	}
	if act.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", act.Key(), err)
	}
	if act.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for %s: %w", act.Key(), err)
	}
	return act, nil
}

func marshalCategories(categories []string) (*string, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}
	s := string(data)
	return &s, nil
}
