package model

import "time"

// BookingStatus enumerates the states of a booking.  STORNIERT is
// terminal: a cancelled booking never changes status again.
type BookingStatus string

const (
	BookingGebucht    BookingStatus = "GEBUCHT"    // holds a seat
	BookingWarteliste BookingStatus = "WARTELISTE" // waiting for a seat
	BookingStorniert  BookingStatus = "STORNIERT"  // cancelled (terminal)
)

// Live reports whether the booking still counts against the
// (customer, execution) uniqueness rule.
func (s BookingStatus) Live() bool {
	return s == BookingGebucht || s == BookingWarteliste
}

// Booking links a customer to an execution as stored in the `bookings`
// table.  PriceCents is a snapshot of the template's effective price at
// booking time; it is never re-read from the catalog afterwards, so a
// later template price change does not alter what the customer owes.
// Rows are never deleted by the booking core; cancellation is a status
// change.
//
// Fields:
//  ID          – primary key identifier.
//  CustomerID  – customer who booked.
//  ExecutionID – execution being booked.
//  Status      – see BookingStatus.
//  PriceCents  – price snapshot captured at creation.
//  Notes       – free-text notes supplied at booking time.
//  CancelledAt – when the booking was cancelled (nil while live).
type Booking struct {
	ID          uint64        // bookings.id
	CustomerID  uint64        // bookings.customer_id
	ExecutionID uint64        // bookings.execution_id
	Status      BookingStatus // bookings.status
	PriceCents  uint32        // bookings.price_cents
	Notes       string        // bookings.notes
	CancelledAt *time.Time    // bookings.cancelled_at (nullable)
	CreatedAt   time.Time     // bookings.created_at
	UpdatedAt   time.Time     // bookings.updated_at
}
