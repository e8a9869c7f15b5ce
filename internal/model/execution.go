package model

import "time"

// ExecutionStatus enumerates the lifecycle states of an execution.
// The legal transitions are linear with a single branch:
// GEPLANT → AKTIV → ABGESCHLOSSEN, and GEPLANT/AKTIV → ABGESAGT.
// ABGESCHLOSSEN and ABGESAGT are terminal.
type ExecutionStatus string

const (
	ExecutionGeplant       ExecutionStatus = "GEPLANT"       // scheduled, not yet running
	ExecutionAktiv         ExecutionStatus = "AKTIV"         // currently running
	ExecutionAbgeschlossen ExecutionStatus = "ABGESCHLOSSEN" // finished normally
	ExecutionAbgesagt      ExecutionStatus = "ABGESAGT"      // cancelled entirely
)

// CanTransitionTo reports whether moving from s to next is legal.
func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	switch s {
	case ExecutionGeplant:
		return next == ExecutionAktiv || next == ExecutionAbgesagt
	case ExecutionAktiv:
		return next == ExecutionAbgeschlossen || next == ExecutionAbgesagt
	default:
		return false
	}
}

// Bookable reports whether new bookings may be created against an
// execution in this status.
func (s ExecutionStatus) Bookable() bool {
	return s == ExecutionGeplant || s == ExecutionAktiv
}

// Valid reports whether s is one of the known statuses.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionGeplant, ExecutionAktiv, ExecutionAbgeschlossen, ExecutionAbgesagt:
		return true
	}
	return false
}

// Execution is one scheduled run of a course template as stored in the
// `executions` table.  The weekday pattern and start time drive the
// appointment generator; appointments and bookings are owned by the
// execution (cascade delete).
//
// Fields:
//  ID                      – primary key identifier.
//  TemplateID              – course template being executed.
//  StartDate               – first candidate calendar day for appointments.
//  Weekdays                – weekly recurrence pattern (executions.weekdays,
//                            stored as a comma-separated day list).
//  StartTime               – time of day each appointment begins ("HH:MM").
//  DurationOverrideMinutes – optional fixed appointment length overriding
//                            the per-topic durations.
//  MeetingLink             – optional video call URL.
//  Status                  – lifecycle status, see ExecutionStatus.
type Execution struct {
	ID                      uint64          // executions.id
	TemplateID              uint64          // executions.template_id
	StartDate               time.Time       // executions.start_date
	Weekdays                []time.Weekday  // executions.weekdays
	StartTime               string          // executions.start_time
	DurationOverrideMinutes *int            // executions.duration_override_minutes (nullable)
	MeetingLink             string          // executions.meeting_link
	Status                  ExecutionStatus // executions.status
	CreatedAt               time.Time       // executions.created_at
	UpdatedAt               time.Time       // executions.updated_at
}

// FreeSeats computes the remaining capacity given the template's seat
// limit and the current number of GEBUCHT bookings.  Never negative.
func FreeSeats(maxSeats, booked int) int {
	if free := maxSeats - booked; free > 0 {
		return free
	}
	return 0
}
