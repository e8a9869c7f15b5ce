package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lwittmann/schulungen/internal/model"
)

// TemplateRepo provides CRUD operations for course templates and their
// ordered topic lists.  A template row and its topics are always
// written together inside one transaction so the topic order stays
// consistent with what the caller submitted.
type TemplateRepo struct{ DB *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{DB: db} }

// Create inserts a template together with its topics.  Topic positions
// are assigned from slice order.  The generated IDs are populated on
// the passed template.
func (r *TemplateRepo) Create(ctx context.Context, t *model.CourseTemplate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO course_templates
		(title, description, price_cents, promo_price_cents, promo_from, promo_until,
		 max_seats, cancellation_window_days, is_active)
		VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		t.Title, t.Description, t.PriceCents, t.PromoPriceCents, t.PromoFrom, t.PromoUntil,
		t.MaxSeats, t.CancellationWindowDays, t.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if err := insertTopicsTx(ctx, tx, t.ID, t.Topics); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertTopicsTx bulk-inserts topics for a template and stamps their
// positions and IDs.
func insertTopicsTx(ctx context.Context, tx *sql.Tx, templateID uint64, topics []model.Topic) error {
	const q = `INSERT INTO topics (template_id, position, title, duration_minutes) VALUES (?,?,?,?)`
	for i := range topics {
		topics[i].TemplateID = templateID
		topics[i].Position = i
		res, err := tx.ExecContext(ctx, q, templateID, i, topics[i].Title, topics[i].DurationMinutes)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		topics[i].ID = uint64(id)
	}
	return nil
}

// GetByID loads a template with its topics in position order.
// Returns ErrTemplateNotFound when no row exists.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.CourseTemplate, error) {
	return getTemplate(ctx, r.DB, id)
}

// getTemplate is shared between the pool-backed repo and the ledger
// store's transactional reads.
func getTemplate(ctx context.Context, q queryer, id uint64) (*model.CourseTemplate, error) {
	const sel = `SELECT id, title, description, price_cents, promo_price_cents, promo_from, promo_until,
	                    max_seats, cancellation_window_days, is_active, created_at, updated_at
	             FROM course_templates WHERE id=?`
	var t model.CourseTemplate
	var promoPrice sql.NullInt64
	var promoFrom, promoUntil sql.NullTime
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.PriceCents, &promoPrice, &promoFrom, &promoUntil,
		&t.MaxSeats, &t.CancellationWindowDays, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	if promoPrice.Valid {
		p := uint32(promoPrice.Int64)
		t.PromoPriceCents = &p
	}
	if promoFrom.Valid {
		from := promoFrom.Time
		t.PromoFrom = &from
	}
	if promoUntil.Valid {
		until := promoUntil.Time
		t.PromoUntil = &until
	}
	const topicQ = `SELECT id, template_id, position, title, duration_minutes
	                FROM topics WHERE template_id=? ORDER BY position`
	rows, err := q.QueryContext(ctx, topicQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var topic model.Topic
		if err := rows.Scan(&topic.ID, &topic.TemplateID, &topic.Position, &topic.Title, &topic.DurationMinutes); err != nil {
			return nil, err
		}
		t.Topics = append(t.Topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns templates ordered by title.  When activeOnly is true,
// deactivated templates are excluded.  Topics are not loaded here;
// listings only need the header fields.
func (r *TemplateRepo) List(ctx context.Context, activeOnly bool) ([]model.CourseTemplate, error) {
	q := `SELECT id, title, description, price_cents, promo_price_cents, promo_from, promo_until,
	             max_seats, cancellation_window_days, is_active, created_at, updated_at
	      FROM course_templates`
	if activeOnly {
		q += ` WHERE is_active=1`
	}
	q += ` ORDER BY title`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CourseTemplate, 0)
	for rows.Next() {
		var t model.CourseTemplate
		var promoPrice sql.NullInt64
		var promoFrom, promoUntil sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.PriceCents, &promoPrice, &promoFrom, &promoUntil,
			&t.MaxSeats, &t.CancellationWindowDays, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if promoPrice.Valid {
			p := uint32(promoPrice.Int64)
			t.PromoPriceCents = &p
		}
		if promoFrom.Valid {
			from := promoFrom.Time
			t.PromoFrom = &from
		}
		if promoUntil.Valid {
			until := promoUntil.Time
			t.PromoUntil = &until
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites a template's header fields and replaces its topic
// list.  Replacing topics is only safe before executions are
// generated from them; the handler enforces that.
func (r *TemplateRepo) Update(ctx context.Context, t *model.CourseTemplate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE course_templates SET
		title=?, description=?, price_cents=?, promo_price_cents=?, promo_from=?, promo_until=?,
		max_seats=?, cancellation_window_days=?, is_active=?
		WHERE id=?`
	res, err := tx.ExecContext(ctx, q,
		t.Title, t.Description, t.PriceCents, t.PromoPriceCents, t.PromoFrom, t.PromoUntil,
		t.MaxSeats, t.CancellationWindowDays, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and an unchanged
		// one; distinguish with an existence check.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM course_templates WHERE id=?`, t.ID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrTemplateNotFound
		} else if err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE template_id=?`, t.ID); err != nil {
		return err
	}
	if err := insertTopicsTx(ctx, tx, t.ID, t.Topics); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetActive flips the is_active flag.
func (r *TemplateRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE course_templates SET is_active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM course_templates WHERE id=?`, id).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrTemplateNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a template.  Topics, executions, appointments and
// bookings cascade via foreign keys.
func (r *TemplateRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM course_templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// CountActive returns the number of active templates (for statistics).
func (r *TemplateRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM course_templates WHERE is_active=1`).Scan(&n)
	return n, err
}

// queryer abstracts *sql.DB and *sql.Tx for shared read helpers.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
