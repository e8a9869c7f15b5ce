package model

import "time"

// CourseTemplate is the reusable course definition stored in the
// `course_templates` table.  An execution is always scheduled from a
// template; the template carries pricing, capacity and the ordered
// topic list from which appointments are generated.
//
// Fields:
//  ID                     – primary key identifier.
//  Title                  – course title.
//  Description            – free-text description.
//  PriceCents             – base price in cents.
//  PromoPriceCents        – optional promotional price in cents.
//  PromoFrom              – inclusive start of the promo window (nil = unbounded).
//  PromoUntil             – inclusive end of the promo window (nil = unbounded).
//  MaxSeats               – seat capacity for each execution of this template.
//  CancellationWindowDays – days before an execution's start after which a
//                           cancellation is no longer fee-free.
//  IsActive               – whether the template can still be scheduled.
//  Topics                 – ordered topic list (by Position).
type CourseTemplate struct {
	ID                     uint64     // course_templates.id
	Title                  string     // course_templates.title
	Description            string     // course_templates.description
	PriceCents             uint32     // course_templates.price_cents
	PromoPriceCents        *uint32    // course_templates.promo_price_cents (nullable)
	PromoFrom              *time.Time // course_templates.promo_from (nullable)
	PromoUntil             *time.Time // course_templates.promo_until (nullable)
	MaxSeats               int        // course_templates.max_seats
	CancellationWindowDays int        // course_templates.cancellation_window_days
	IsActive               bool       // course_templates.is_active
	CreatedAt              time.Time  // course_templates.created_at
	UpdatedAt              time.Time  // course_templates.updated_at
	Topics                 []Topic    // ordered by topics.position
}

// Topic is one unit of a course template.  Topics are ordered by
// Position and each generated appointment covers exactly one topic.
type Topic struct {
	ID              uint64 // topics.id
	TemplateID      uint64 // topics.template_id
	Position        int    // topics.position (0-based template order)
	Title           string // topics.title
	DurationMinutes int    // topics.duration_minutes
}

// EffectivePriceCents returns the promo price when a promo price is set
// and asOf falls inside the inclusive [PromoFrom, PromoUntil] window.
// A nil bound is treated as unbounded on that side.  Otherwise the base
// price applies.  Comparison is by calendar date, not time of day.
func (t *CourseTemplate) EffectivePriceCents(asOf time.Time) uint32 {
	if t.PromoPriceCents == nil {
		return t.PriceCents
	}
	day := truncateToDay(asOf)
	if t.PromoFrom != nil && day.Before(truncateToDay(*t.PromoFrom)) {
		return t.PriceCents
	}
	if t.PromoUntil != nil && day.After(truncateToDay(*t.PromoUntil)) {
		return t.PriceCents
	}
	return *t.PromoPriceCents
}

// TotalDurationMinutes sums the durations of all topics.
func (t *CourseTemplate) TotalDurationMinutes() int {
	total := 0
	for _, topic := range t.Topics {
		total += topic.DurationMinutes
	}
	return total
}

// truncateToDay strips the time-of-day portion, keeping the location.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
