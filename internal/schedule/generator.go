// Package schedule implements the appointment generator: a pure
// function mapping an execution's start date, weekly recurrence
// pattern and ordered topic list onto concrete calendar appointments.
// It performs no I/O; the caller persists the result.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
)

// Defaults applied when the pattern is incomplete.  An empty weekday
// set falls back to Monday; an unparseable start time falls back to
// 14:00.
const (
	DefaultStartHour   = 14
	DefaultStartMinute = 0
)

// Pattern is the weekly recurrence of an execution.
type Pattern struct {
	Weekdays                []time.Weekday // days appointments may fall on
	StartTime               string         // time of day, "HH:MM"
	DurationOverrideMinutes *int           // overrides per-topic durations when set
}

// Generate produces one appointment per topic, in topic order.  A
// cursor starts at startDate and, for each topic, advances (inclusive
// of its current value) to the next date whose weekday is in the
// pattern; after emitting an appointment the cursor moves forward by
// exactly one calendar day.  That single-day step is the generator's
// defining policy: at most one appointment is placed per calendar day,
// even when the pattern lists several weekdays in the same week.
//
// Generate is deterministic: identical inputs yield an identical
// appointment sequence, so a caller may safely re-run it to replace a
// previously generated set.  An empty topic list yields an empty,
// non-nil slice.
func Generate(executionID uint64, startDate time.Time, p Pattern, topics []model.Topic) []model.Appointment {
	hour, minute := parseStartTime(p.StartTime)
	days := weekdaySet(p.Weekdays)

	appts := make([]model.Appointment, 0, len(topics))
	cursor := dateOnly(startDate)
	for i, topic := range topics {
		for !days[cursor.Weekday()] {
			cursor = cursor.AddDate(0, 0, 1)
		}
		startsAt := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), hour, minute, 0, 0, cursor.Location())
		duration := topic.DurationMinutes
		if p.DurationOverrideMinutes != nil {
			duration = *p.DurationOverrideMinutes
		}
		appts = append(appts, model.Appointment{
			ExecutionID: executionID,
			TopicID:     topic.ID,
			Sequence:    i,
			Date:        cursor,
			StartsAt:    startsAt,
			EndsAt:      startsAt.Add(time.Duration(duration) * time.Minute),
		})
		cursor = cursor.AddDate(0, 0, 1)
	}
	return appts
}

// parseStartTime parses "HH:MM".  Invalid input yields the 14:00
// default rather than an error; a missing or malformed time is not a
// reason to refuse scheduling.
func parseStartTime(s string) (hour, minute int) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return DefaultStartHour, DefaultStartMinute
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return DefaultStartHour, DefaultStartMinute
	}
	return h, m
}

// weekdaySet builds a membership set, defaulting to Monday when the
// pattern names no weekdays.
func weekdaySet(weekdays []time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		set[d] = true
	}
	if len(set) == 0 {
		set[time.Monday] = true
	}
	return set
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
