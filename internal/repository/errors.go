// Package repository defines error types that are reused across
// multiple repositories and by the booking ledger. These sentinel
// values allow higher layers such as handlers to distinguish between
// different failure scenarios without inspecting error strings, and
// they represent recoverable outcomes: a handler translates them into
// a response, it does not unwind.
package repository

import "errors"

// ErrTemplateNotFound is returned when a course template id does not
// resolve to a row.
var ErrTemplateNotFound = errors.New("course template not found")

// ErrExecutionNotFound is returned when an execution id does not
// resolve to a row.
var ErrExecutionNotFound = errors.New("execution not found")

// ErrBookingNotFound is returned when a booking id does not resolve
// to a row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCustomerNotFound is returned when a customer id does not resolve
// to a row.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrDuplicateBooking is returned when the customer already has a live
// (non-cancelled) booking for the execution.
var ErrDuplicateBooking = errors.New("customer already has a live booking for this execution")

// ErrInvalidState is returned when an operation is not legal for the
// execution's current status, e.g. booking an ABGESAGT execution.
var ErrInvalidState = errors.New("execution is not in a bookable state")

// ErrInvalidTransition is returned when a requested execution status
// change is not one of the legal transitions.
var ErrInvalidTransition = errors.New("illegal execution status transition")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already STORNIERT.
var ErrAlreadyCancelled = errors.New("booking is already cancelled")

// ErrNotWaitlisted is returned when promoting a booking that is not on
// the waitlist.
var ErrNotWaitlisted = errors.New("booking is not waitlisted")

// ErrNoSeatsAvailable is returned by a manual promotion when the
// execution has no free seat.
var ErrNoSeatsAvailable = errors.New("no seats available")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
