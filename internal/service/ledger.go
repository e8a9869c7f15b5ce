// Package service contains the booking ledger: the state machine that
// creates, cancels and promotes bookings against an execution.  The
// ledger receives its collaborators (transactional store, event log,
// notifier) as constructor arguments and contains no HTTP or SQL
// concerns of its own.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
)

// Notification template keys, one per booking transition.
const (
	TemplateBookingConfirmed  = "booking-confirmed"
	TemplateBookingWaitlisted = "booking-waitlisted"
	TemplateBookingCancelled  = "booking-cancelled"
	TemplateBookingPromoted   = "booking-promoted"
)

// EventCategory is the audit log category for all booking events.
const EventCategory = "schulungen"

// Store is the transactional unit of work the ledger runs in.
// repository.LedgerStore is the MySQL implementation; tests substitute
// an in-memory one.
type Store interface {
	InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error
}

// EventLogger receives one audit record per successful transition.
type EventLogger interface {
	LogEvent(ctx context.Context, category, action, message, entityRef string) error
}

// Notifier requests a notification send for a booking.  Sends are
// dispatched after the transition has committed and are best-effort: a
// failing notifier never fails or rolls back the transition.
type Notifier interface {
	Send(ctx context.Context, templateKey string, b model.Booking) error
}

// Ledger is the booking state machine.
type Ledger struct {
	store    Store
	events   EventLogger
	notifier Notifier
	now      func() time.Time
}

// NewLedger wires the ledger with its collaborators.  now may be nil,
// in which case time.Now is used.
func NewLedger(store Store, events EventLogger, notifier Notifier, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, events: events, notifier: notifier, now: now}
}

// BookingOutcome is the result of Book and Promote.
type BookingOutcome struct {
	Booking    model.Booking `json:"booking"`
	Waitlisted bool          `json:"waitlisted"`
}

// CancelOutcome is the result of Cancel.  WithinDeadline is purely
// informational (fee-liability classification); it never blocks the
// cancellation.  Promoted carries the waitlist booking that took over
// the freed seat, if any.
type CancelOutcome struct {
	Booking        model.Booking  `json:"booking"`
	WithinDeadline bool           `json:"within_deadline"`
	Promoted       *model.Booking `json:"promoted,omitempty"`
}

// Book creates a booking for a customer against an execution.  The
// seat decision (GEBUCHT vs WARTELISTE) and the duplicate check happen
// inside one transaction holding the execution's row lock, so at most
// max_seats bookings can ever be concurrently GEBUCHT.  The booking's
// price is snapshotted from the template's effective price at call
// time and never re-read afterwards.
func (l *Ledger) Book(ctx context.Context, customerID, executionID uint64, notes string) (*BookingOutcome, error) {
	var out BookingOutcome
	err := l.store.InTx(ctx, func(tx repository.LedgerTx) error {
		exec, err := tx.ExecutionForUpdate(ctx, executionID)
		if err != nil {
			return err
		}
		if !exec.Status.Bookable() {
			return repository.ErrInvalidState
		}
		if _, err := tx.CustomerByID(ctx, customerID); err != nil {
			return err
		}
		dup, err := tx.HasLiveBooking(ctx, customerID, executionID)
		if err != nil {
			return err
		}
		if dup {
			return repository.ErrDuplicateBooking
		}
		tmpl, err := tx.TemplateByID(ctx, exec.TemplateID)
		if err != nil {
			return err
		}
		booked, err := tx.CountBooked(ctx, executionID)
		if err != nil {
			return err
		}
		status := model.BookingGebucht
		if model.FreeSeats(tmpl.MaxSeats, booked) == 0 {
			status = model.BookingWarteliste
		}
		b := model.Booking{
			CustomerID:  customerID,
			ExecutionID: executionID,
			Status:      status,
			PriceCents:  tmpl.EffectivePriceCents(l.now()),
			Notes:       notes,
		}
		if err := tx.InsertBooking(ctx, &b); err != nil {
			return err
		}
		out.Booking = b
		out.Waitlisted = status == model.BookingWarteliste
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Waitlisted {
		l.logEvent(ctx, "booking.waitlisted",
			fmt.Sprintf("customer %d waitlisted for execution %d", customerID, executionID), out.Booking)
		l.notify(TemplateBookingWaitlisted, out.Booking)
	} else {
		l.logEvent(ctx, "booking.created",
			fmt.Sprintf("customer %d booked a seat on execution %d", customerID, executionID), out.Booking)
		l.notify(TemplateBookingConfirmed, out.Booking)
	}
	return &out, nil
}

// Cancel marks a booking STORNIERT and, when the booking held a seat,
// promotes the oldest waitlisted booking of the same execution in the
// same transaction.  Cancellation is always permitted; WithinDeadline
// only classifies it against the template's cancellation window.
func (l *Ledger) Cancel(ctx context.Context, bookingID uint64) (*CancelOutcome, error) {
	var out CancelOutcome
	err := l.store.InTx(ctx, func(tx repository.LedgerTx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == model.BookingStorniert {
			return repository.ErrAlreadyCancelled
		}
		// Lock the execution before touching seat accounting so the
		// cancel+promote pair is serialized against concurrent books.
		exec, err := tx.ExecutionForUpdate(ctx, b.ExecutionID)
		if err != nil {
			return err
		}
		tmpl, err := tx.TemplateByID(ctx, exec.TemplateID)
		if err != nil {
			return err
		}

		heldSeat := b.Status == model.BookingGebucht
		now := l.now()
		b.Status = model.BookingStorniert
		b.CancelledAt = &now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out.Booking = *b
		out.WithinDeadline = withinCancellationDeadline(now, exec.StartDate, tmpl.CancellationWindowDays)

		if heldSeat {
			// The seat just vacated goes to the head of the waitlist;
			// no free-seat re-check is needed inside this transaction.
			next, err := tx.OldestWaitlisted(ctx, b.ExecutionID)
			if err != nil {
				return err
			}
			if next != nil {
				next.Status = model.BookingGebucht
				if err := tx.UpdateBooking(ctx, next); err != nil {
					return err
				}
				out.Promoted = next
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logEvent(ctx, "booking.cancelled",
		fmt.Sprintf("booking %d cancelled (within deadline: %t)", out.Booking.ID, out.WithinDeadline), out.Booking)
	l.notify(TemplateBookingCancelled, out.Booking)
	if out.Promoted != nil {
		l.logEvent(ctx, "booking.promoted",
			fmt.Sprintf("booking %d promoted from the waitlist for execution %d", out.Promoted.ID, out.Promoted.ExecutionID), *out.Promoted)
		l.notify(TemplateBookingPromoted, *out.Promoted)
	}
	return &out, nil
}

// Promote moves a waitlisted booking to GEBUCHT.  Unlike the
// automatic promotion on cancel, this operator-invoked variant must
// re-check free capacity: no seat was just vacated on its behalf.
func (l *Ledger) Promote(ctx context.Context, bookingID uint64) (*BookingOutcome, error) {
	var out BookingOutcome
	err := l.store.InTx(ctx, func(tx repository.LedgerTx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingWarteliste {
			return repository.ErrNotWaitlisted
		}
		exec, err := tx.ExecutionForUpdate(ctx, b.ExecutionID)
		if err != nil {
			return err
		}
		tmpl, err := tx.TemplateByID(ctx, exec.TemplateID)
		if err != nil {
			return err
		}
		booked, err := tx.CountBooked(ctx, b.ExecutionID)
		if err != nil {
			return err
		}
		if model.FreeSeats(tmpl.MaxSeats, booked) == 0 {
			return repository.ErrNoSeatsAvailable
		}
		b.Status = model.BookingGebucht
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out.Booking = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logEvent(ctx, "booking.promoted",
		fmt.Sprintf("booking %d promoted from the waitlist for execution %d", out.Booking.ID, out.Booking.ExecutionID), out.Booking)
	l.notify(TemplateBookingPromoted, out.Booking)
	return &out, nil
}

// withinCancellationDeadline reports whether a cancellation on `now`
// still falls inside the fee-free window: today must not be later than
// startDate minus the window.  Comparison is by calendar date, so a
// cancellation on the cutoff day itself is still within the deadline.
func withinCancellationDeadline(now, startDate time.Time, windowDays int) bool {
	cutoff := dateOf(startDate).AddDate(0, 0, -windowDays)
	return !dateOf(now).After(cutoff)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// logEvent appends an audit record after the transition has committed.
// The transition is already durable, so a failing sink is logged and
// otherwise ignored.
func (l *Ledger) logEvent(ctx context.Context, action, message string, b model.Booking) {
	if l.events == nil {
		return
	}
	ref := fmt.Sprintf("booking:%d", b.ID)
	if err := l.events.LogEvent(ctx, EventCategory, action, message, ref); err != nil {
		log.Printf("ledger: event log append failed for %s (%s): %v", action, ref, err)
	}
}

// notify dispatches a notification asynchronously after commit.
// Failures are logged, never propagated (fire-and-forget).
func (l *Ledger) notify(templateKey string, b model.Booking) {
	if l.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.notifier.Send(ctx, templateKey, b); err != nil {
			log.Printf("ledger: notification %s for booking %d failed: %v", templateKey, b.ID, err)
		}
	}()
}
