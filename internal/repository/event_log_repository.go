package repository

import (
	"context"
	"database/sql"

	"github.com/lwittmann/schulungen/internal/model"
)

// EventLogRepo appends audit records to the `event_log` table.  It is
// the persistence side of the service.EventLogger collaborator; the
// ledger only sees the interface.
type EventLogRepo struct{ DB *sql.DB }

func NewEventLogRepo(db *sql.DB) *EventLogRepo { return &EventLogRepo{DB: db} }

// LogEvent appends one audit record.
func (r *EventLogRepo) LogEvent(ctx context.Context, category, action, message, entityRef string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO event_log (category, action, message, entity_ref) VALUES (?,?,?,?)`,
		category, action, message, entityRef)
	return err
}

// ListRecent returns the newest entries for the admin activity view.
func (r *EventLogRepo) ListRecent(ctx context.Context, limit int) ([]model.EventLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, category, action, message, entity_ref, created_at
		 FROM event_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EventLogEntry, 0, limit)
	for rows.Next() {
		var e model.EventLogEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.Action, &e.Message, &e.EntityRef, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
