package model

import "time"

// EventLogEntry is one audit record in the `event_log` table.  Every
// successful booking transition appends one entry.
//
// Fields:
//  Category  – event category, e.g. "schulungen".
//  Action    – machine-readable action name, e.g. "booking.created".
//  Message   – human-readable description.
//  EntityRef – reference to the affected entity, e.g. "booking:42".
type EventLogEntry struct {
	ID        uint64    // event_log.id
	Category  string    // event_log.category
	Action    string    // event_log.action
	Message   string    // event_log.message
	EntityRef string    // event_log.entity_ref
	CreatedAt time.Time // event_log.created_at
}
