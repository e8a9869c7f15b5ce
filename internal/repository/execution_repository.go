package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lwittmann/schulungen/internal/model"
)

// ExecutionRepo provides CRUD operations for executions.  The weekday
// pattern is stored as a comma-separated day list (see
// model.FormatWeekdays); status transitions are validated by the
// caller against model.ExecutionStatus before UpdateStatus is called,
// and re-checked here inside the UPDATE's WHERE clause so a stale read
// cannot slip an illegal transition through.
type ExecutionRepo struct{ DB *sql.DB }

func NewExecutionRepo(db *sql.DB) *ExecutionRepo { return &ExecutionRepo{DB: db} }

// Create inserts an execution row within the given transaction and
// populates the generated ID.  Scheduling an execution also persists
// its generated appointments, so creation always happens inside a
// transaction owned by the caller.
func (r *ExecutionRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Execution) error {
	const q = `INSERT INTO executions
		(template_id, start_date, weekdays, start_time, duration_override_minutes, meeting_link, status)
		VALUES (?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		e.TemplateID, e.StartDate, model.FormatWeekdays(e.Weekdays), e.StartTime,
		e.DurationOverrideMinutes, e.MeetingLink, string(e.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID loads a single execution.  Returns ErrExecutionNotFound when
// no row exists.
func (r *ExecutionRepo) GetByID(ctx context.Context, id uint64) (*model.Execution, error) {
	return getExecution(ctx, r.DB, id, false)
}

// getExecution is shared with the ledger store; forUpdate appends a
// row lock for use inside a transaction.
func getExecution(ctx context.Context, q queryer, id uint64, forUpdate bool) (*model.Execution, error) {
	sel := `SELECT id, template_id, start_date, weekdays, start_time, duration_override_minutes,
	               meeting_link, status, created_at, updated_at
	        FROM executions WHERE id=?`
	if forUpdate {
		sel += ` FOR UPDATE`
	}
	var e model.Execution
	var weekdays string
	var override sql.NullInt64
	var status string
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&e.ID, &e.TemplateID, &e.StartDate, &weekdays, &e.StartTime, &override,
		&e.MeetingLink, &status, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExecutionNotFound
	}
	if err != nil {
		return nil, err
	}
	days, err := model.ParseWeekdays(weekdays)
	if err != nil {
		return nil, err
	}
	e.Weekdays = days
	if override.Valid {
		n := int(override.Int64)
		e.DurationOverrideMinutes = &n
	}
	e.Status = model.ExecutionStatus(status)
	return &e, nil
}

// List returns executions, optionally filtered by template and/or
// status, ordered by start date ascending.
func (r *ExecutionRepo) List(ctx context.Context, templateID uint64, status model.ExecutionStatus) ([]model.Execution, error) {
	q := `SELECT id, template_id, start_date, weekdays, start_time, duration_override_minutes,
	             meeting_link, status, created_at, updated_at
	      FROM executions WHERE 1=1`
	args := make([]any, 0, 2)
	if templateID != 0 {
		q += ` AND template_id=?`
		args = append(args, templateID)
	}
	if status != "" {
		q += ` AND status=?`
		args = append(args, string(status))
	}
	q += ` ORDER BY start_date`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Execution, 0)
	for rows.Next() {
		var e model.Execution
		var weekdays, st string
		var override sql.NullInt64
		if err := rows.Scan(
			&e.ID, &e.TemplateID, &e.StartDate, &weekdays, &e.StartTime, &override,
			&e.MeetingLink, &st, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		days, err := model.ParseWeekdays(weekdays)
		if err != nil {
			return nil, err
		}
		e.Weekdays = days
		if override.Valid {
			n := int(override.Int64)
			e.DurationOverrideMinutes = &n
		}
		e.Status = model.ExecutionStatus(st)
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus moves an execution from one status to another.  The
// WHERE clause repeats the expected current status so the transition
// only commits when the row has not moved on in the meantime; zero
// rows affected therefore means either "not found" or "stale", which
// is disambiguated with a follow-up read.
func (r *ExecutionRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ExecutionStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE executions SET status=? WHERE id=? AND status=?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var cur string
		err := r.DB.QueryRowContext(ctx, `SELECT status FROM executions WHERE id=?`, id).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrExecutionNotFound
		}
		if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// CountByStatus returns the number of executions in a status (for
// statistics).
func (r *ExecutionRepo) CountByStatus(ctx context.Context, status model.ExecutionStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM executions WHERE status=?`, string(status)).Scan(&n)
	return n, err
}
