package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
)

// BookingRepo provides read access to bookings for listings and
// statistics.  All state-changing writes go through the ledger store,
// never through this repo, so the capacity and uniqueness invariants
// are only ever enforced in one place.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// GetByID loads a single booking.  Returns ErrBookingNotFound when no
// row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, r.DB, id, false)
}

func getBooking(ctx context.Context, q queryer, id uint64, forUpdate bool) (*model.Booking, error) {
	sel := `SELECT id, customer_id, execution_id, status, price_cents, notes, cancelled_at, created_at, updated_at
	        FROM bookings WHERE id=?`
	if forUpdate {
		sel += ` FOR UPDATE`
	}
	var b model.Booking
	var status string
	var cancelledAt sql.NullTime
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&b.ID, &b.CustomerID, &b.ExecutionID, &status, &b.PriceCents, &b.Notes,
		&cancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return &b, nil
}

// BookingDetail is a booking joined with the course and execution a
// customer would want to see in a listing.
type BookingDetail struct {
	ID          uint64  `json:"id"`
	ExecutionID uint64  `json:"execution_id"`
	CustomerID  uint64  `json:"customer_id"`
	Status      string  `json:"status"`
	PriceCents  uint32  `json:"price_cents"`
	Notes       string  `json:"notes,omitempty"`
	CourseTitle string  `json:"course_title"`
	StartDate   string  `json:"start_date"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ListByCustomer returns all bookings of a customer, newest first,
// joined with course title and execution start date.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.execution_id, b.customer_id, b.status, b.price_cents, b.notes,
	                  b.cancelled_at, b.created_at, t.title, e.start_date
	           FROM bookings b
	           JOIN executions e ON e.id = b.execution_id
	           JOIN course_templates t ON t.id = e.template_id
	           WHERE b.customer_id=?
	           ORDER BY b.created_at DESC, b.id DESC`
	return r.listDetails(ctx, q, customerID)
}

// ListByExecution returns all bookings against an execution in
// creation order, which for waitlisted rows is the promotion order.
func (r *BookingRepo) ListByExecution(ctx context.Context, executionID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.execution_id, b.customer_id, b.status, b.price_cents, b.notes,
	                  b.cancelled_at, b.created_at, t.title, e.start_date
	           FROM bookings b
	           JOIN executions e ON e.id = b.execution_id
	           JOIN course_templates t ON t.id = e.template_id
	           WHERE b.execution_id=?
	           ORDER BY b.created_at, b.id`
	return r.listDetails(ctx, q, executionID)
}

func (r *BookingRepo) listDetails(ctx context.Context, query string, arg uint64) ([]BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var cancelledAt, createdAt, startDate sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.ExecutionID, &d.CustomerID, &d.Status, &d.PriceCents, &d.Notes,
			&cancelledAt, &createdAt, &d.CourseTitle, &startDate,
		); err != nil {
			return nil, err
		}
		if cancelledAt.Valid {
			iso := cancelledAt.Time.UTC().Format(time.RFC3339)
			d.CancelledAt = &iso
		}
		if createdAt.Valid {
			d.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		if startDate.Valid {
			d.StartDate = startDate.Time.Format("2006-01-02")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountByStatus returns the total number of bookings in a status
// across all executions (for statistics).
func (r *BookingRepo) CountByStatus(ctx context.Context, status model.BookingStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status=?`, string(status)).Scan(&n)
	return n, err
}

// CountBookedForExecution returns the number of GEBUCHT bookings an
// execution currently holds.  Read outside the booking transaction,
// so the value is a snapshot, good enough for display.
func (r *BookingRepo) CountBookedForExecution(ctx context.Context, executionID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE execution_id=? AND status=?`,
		executionID, string(model.BookingGebucht)).Scan(&n)
	return n, err
}
