package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lwittmann/schulungen/internal/model"
)

// LedgerStore is the transactional unit of work the booking ledger
// runs its state transitions in.  Capacity decisions for one execution
// are serialized by taking a row lock on the execution
// (SELECT ... FOR UPDATE) before the live GEBUCHT count and the
// duplicate check are read, so two concurrent bookings against the
// last free seat cannot both see it free.  Everything inside one InTx
// call commits or rolls back as a whole.
type LedgerStore struct{ DB *sql.DB }

func NewLedgerStore(db *sql.DB) *LedgerStore { return &LedgerStore{DB: db} }

// InTx runs fn within a transaction.  The transaction is rolled back
// when fn returns an error and committed otherwise.
func (s *LedgerStore) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LedgerTx is the view of the data the ledger gets inside one
// transaction.  All reads observe the same consistent snapshot and the
// row locks taken by the ...ForUpdate methods hold until commit.
type LedgerTx interface {
	CustomerByID(ctx context.Context, id uint64) (*model.Customer, error)
	ExecutionForUpdate(ctx context.Context, id uint64) (*model.Execution, error)
	TemplateByID(ctx context.Context, id uint64) (*model.CourseTemplate, error)
	BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error)
	HasLiveBooking(ctx context.Context, customerID, executionID uint64) (bool, error)
	CountBooked(ctx context.Context, executionID uint64) (int, error)
	OldestWaitlisted(ctx context.Context, executionID uint64) (*model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
}

type ledgerTx struct{ tx *sql.Tx }

func (t *ledgerTx) CustomerByID(ctx context.Context, id uint64) (*model.Customer, error) {
	var c model.Customer
	err := t.tx.QueryRowContext(ctx,
		`SELECT id,email,name,password_hash,role,is_active,created_at,updated_at FROM customers WHERE id=?`,
		id).Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExecutionForUpdate locks the execution row for the remainder of the
// transaction.  This is the per-execution serialization point.
func (t *ledgerTx) ExecutionForUpdate(ctx context.Context, id uint64) (*model.Execution, error) {
	return getExecution(ctx, t.tx, id, true)
}

func (t *ledgerTx) TemplateByID(ctx context.Context, id uint64) (*model.CourseTemplate, error) {
	return getTemplate(ctx, t.tx, id)
}

func (t *ledgerTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, t.tx, id, true)
}

// HasLiveBooking reports whether the customer already holds a
// non-cancelled booking for the execution.
func (t *ledgerTx) HasLiveBooking(ctx context.Context, customerID, executionID uint64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM bookings WHERE customer_id=? AND execution_id=? AND status IN (?,?) LIMIT 1`,
		customerID, executionID, string(model.BookingGebucht), string(model.BookingWarteliste)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountBooked returns the live GEBUCHT count for the execution.
func (t *ledgerTx) CountBooked(ctx context.Context, executionID uint64) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE execution_id=? AND status=?`,
		executionID, string(model.BookingGebucht)).Scan(&n)
	return n, err
}

// OldestWaitlisted returns the waitlisted booking with the oldest
// (created_at, id) for the execution, locked, or nil when the waitlist
// is empty.  The id tiebreak makes the FIFO order total even when
// creation timestamps collide at column precision.
func (t *ledgerTx) OldestWaitlisted(ctx context.Context, executionID uint64) (*model.Booking, error) {
	const q = `SELECT id, customer_id, execution_id, status, price_cents, notes, cancelled_at, created_at, updated_at
	           FROM bookings WHERE execution_id=? AND status=?
	           ORDER BY created_at, id LIMIT 1 FOR UPDATE`
	var b model.Booking
	var status string
	var cancelledAt sql.NullTime
	err := t.tx.QueryRowContext(ctx, q, executionID, string(model.BookingWarteliste)).Scan(
		&b.ID, &b.CustomerID, &b.ExecutionID, &status, &b.PriceCents, &b.Notes,
		&cancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if cancelledAt.Valid {
		ts := cancelledAt.Time
		b.CancelledAt = &ts
	}
	return &b, nil
}

// InsertBooking inserts a booking and reads the row back so the
// caller sees the database-assigned timestamps.
func (t *ledgerTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, execution_id, status, price_cents, notes) VALUES (?,?,?,?,?)`,
		b.CustomerID, b.ExecutionID, string(b.Status), b.PriceCents, b.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return t.tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bookings WHERE id=?`, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// UpdateBooking persists a status change (and cancellation stamp) of
// an existing booking.  Status and cancelled_at are the only columns
// the ledger ever mutates.
func (t *ledgerTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET status=?, cancelled_at=? WHERE id=?`,
		string(b.Status), b.CancelledAt, b.ID)
	return err
}
