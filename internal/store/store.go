// Package store provides a persistence layer over a project's SQLite
// file, handling timestamps and audit event logging for every mutation.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/haitham-ghaida/lcamigrate/internal/db"
	"github.com/haitham-ghaida/lcamigrate/internal/events"
)

// Store is the root store for one project file.
type Store struct {
	db *db.DB

	Activities *ActivityStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Activities = &ActivityStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the
// transaction is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	return tx.Commit()
}

// parseTimestamp parses the ISO8601 timestamps SQLite defaults write.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
