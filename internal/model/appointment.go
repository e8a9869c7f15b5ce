package model

import "time"

// Appointment is one generated calendar session of an execution as
// stored in the `appointments` table.  Appointments are produced in a
// single generator run when the execution is scheduled and are not
// mutated individually afterwards.
//
// Fields:
//  ID          – primary key identifier (zero until persisted).
//  ExecutionID – owning execution.
//  TopicID     – the template topic this session covers.
//  Sequence    – position within the execution (0-based, template order).
//  Date        – calendar day of the session.
//  StartsAt    – session start (Date + start time).
//  EndsAt      – session end (start + topic duration or override).
type Appointment struct {
	ID          uint64    // appointments.id
	ExecutionID uint64    // appointments.execution_id
	TopicID     uint64    // appointments.topic_id
	Sequence    int       // appointments.sequence
	Date        time.Time // appointments.date
	StartsAt    time.Time // appointments.starts_at
	EndsAt      time.Time // appointments.ends_at
	CreatedAt   time.Time // appointments.created_at
}
