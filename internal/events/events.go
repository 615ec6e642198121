package events

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
)

// Writer handles writing events to the migration audit log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// executor is satisfied by both *sql.DB and *sql.Tx
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (w *Writer) getExecutor(tx *sql.Tx) executor {
	if tx != nil {
		return tx
	}
	return w.db
}

// LogEvent writes an event to the audit log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (resource_type, resource_key, event_type, payload)
		VALUES (?, ?, ?, ?)
	`

	_, err := w.getExecutor(tx).Exec(query, event.ResourceType, event.ResourceKey, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogActivityCreated logs the creation of an activity record
func (w *Writer) LogActivityCreated(tx *sql.Tx, act *domain.Activity) error {
	payload, err := json.Marshal(map[string]interface{}{
		"name":           act.Name,
		"kind":           act.Kind,
		"auto_generated": act.AutoGenerated,
	})
	if err != nil {
		return err
	}

	key := act.Key().String()
	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		ResourceType: "activity",
		ResourceKey:  &key,
		EventType:    "activity.created",
		Payload:      &payloadStr,
	})
}

// LogExchangeCreated logs the creation of an exchange
func (w *Writer) LogExchangeCreated(tx *sql.Tx, exc *domain.Exchange) error {
	payload, err := json.Marshal(map[string]interface{}{
		"input":  exc.Input.String(),
		"amount": exc.Amount,
		"type":   exc.Type,
	})
	if err != nil {
		return err
	}

	key := exc.Activity.String()
	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		ResourceType: "exchange",
		ResourceKey:  &key,
		EventType:    "exchange.created",
		Payload:      &payloadStr,
	})
}

// LogActivityMatched logs the resolution of an old record to an existing
// new-database record
func (w *Writer) LogActivityMatched(tx *sql.Tx, old, matched domain.Key, strategy string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"old":      old.String(),
		"strategy": strategy,
	})
	if err != nil {
		return err
	}

	key := matched.String()
	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		ResourceType: "activity",
		ResourceKey:  &key,
		EventType:    "activity.matched",
		Payload:      &payloadStr,
	})
}
