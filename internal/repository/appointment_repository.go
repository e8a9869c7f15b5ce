package repository

import (
	"context"
	"database/sql"

	"github.com/lwittmann/schulungen/internal/model"
)

// AppointmentRepo stores the appointments generated for an execution.
// Appointments are written in bulk when an execution is scheduled and
// only ever replaced wholesale, never edited row by row.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// ReplaceForExecutionTx deletes any previously generated appointments
// for the execution and inserts the given sequence.  Runs inside the
// caller's transaction so the execution row and its appointments
// commit together.  Passing an empty slice leaves the execution with
// zero sessions, which is valid.
func (r *AppointmentRepo) ReplaceForExecutionTx(ctx context.Context, tx *sql.Tx, executionID uint64, appts []model.Appointment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE execution_id=?`, executionID); err != nil {
		return err
	}
	if len(appts) == 0 {
		return nil
	}
	query := `INSERT INTO appointments (execution_id, topic_id, sequence, date, starts_at, ends_at) VALUES `
	args := make([]any, 0, len(appts)*6)
	for i, a := range appts {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?)"
		args = append(args, executionID, a.TopicID, a.Sequence, a.Date, a.StartsAt, a.EndsAt)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByExecution returns an execution's appointments in sequence
// order.
func (r *AppointmentRepo) ListByExecution(ctx context.Context, executionID uint64) ([]model.Appointment, error) {
	const q = `SELECT id, execution_id, topic_id, sequence, date, starts_at, ends_at, created_at
	           FROM appointments WHERE execution_id=? ORDER BY sequence`
	rows, err := r.DB.QueryContext(ctx, q, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Appointment, 0)
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.ExecutionID, &a.TopicID, &a.Sequence, &a.Date, &a.StartsAt, &a.EndsAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
