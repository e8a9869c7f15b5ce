package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestGenerateTueThuPattern(t *testing.T) {
	topics := []model.Topic{
		{ID: 1, Title: "Grundlagen", DurationMinutes: 120},
		{ID: 2, Title: "Vertiefung", DurationMinutes: 90},
	}
	p := Pattern{
		Weekdays:  []time.Weekday{time.Tuesday, time.Thursday},
		StartTime: "14:00",
	}
	// 2024-01-01 is a Monday.
	appts := Generate(7, date(2024, time.January, 1), p, topics)
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appts))
	}

	first := appts[0]
	if !first.Date.Equal(date(2024, time.January, 2)) {
		t.Errorf("first appointment on %v, want 2024-01-02", first.Date)
	}
	if first.StartsAt.Hour() != 14 || first.StartsAt.Minute() != 0 {
		t.Errorf("first start %v, want 14:00", first.StartsAt)
	}
	if got := first.EndsAt.Sub(first.StartsAt); got != 120*time.Minute {
		t.Errorf("first duration %v, want 2h", got)
	}

	second := appts[1]
	if !second.Date.Equal(date(2024, time.January, 4)) {
		t.Errorf("second appointment on %v, want 2024-01-04", second.Date)
	}
	if got := second.EndsAt.Sub(second.StartsAt); got != 90*time.Minute {
		t.Errorf("second duration %v, want 90m", got)
	}

	for i, a := range appts {
		if a.Sequence != i {
			t.Errorf("appointment %d has sequence %d", i, a.Sequence)
		}
		if a.ExecutionID != 7 {
			t.Errorf("appointment %d has execution id %d", i, a.ExecutionID)
		}
	}
	if appts[0].TopicID != 1 || appts[1].TopicID != 2 {
		t.Errorf("topics out of template order: %d, %d", appts[0].TopicID, appts[1].TopicID)
	}
}

func TestGenerateStartDateCounts(t *testing.T) {
	// The cursor is inclusive: when the start date already matches the
	// pattern, the first appointment lands on it.
	topics := []model.Topic{{ID: 1, DurationMinutes: 60}}
	p := Pattern{Weekdays: []time.Weekday{time.Monday}, StartTime: "09:30"}
	appts := Generate(1, date(2024, time.January, 1), p, topics)
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if !appts[0].Date.Equal(date(2024, time.January, 1)) {
		t.Errorf("appointment on %v, want the start date itself", appts[0].Date)
	}
	if appts[0].StartsAt.Hour() != 9 || appts[0].StartsAt.Minute() != 30 {
		t.Errorf("start %v, want 09:30", appts[0].StartsAt)
	}
}

func TestGenerateOneAppointmentPerDay(t *testing.T) {
	// Every weekday matches, so the cursor's one-day step alone spaces
	// the appointments: consecutive days, never two on one day.
	topics := []model.Topic{
		{ID: 1, DurationMinutes: 60},
		{ID: 2, DurationMinutes: 60},
		{ID: 3, DurationMinutes: 60},
	}
	p := Pattern{
		Weekdays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		StartTime: "10:00",
	}
	appts := Generate(1, date(2024, time.March, 4), p, topics)
	if len(appts) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(appts))
	}
	for i := 1; i < len(appts); i++ {
		if !appts[i].Date.Equal(appts[i-1].Date.AddDate(0, 0, 1)) {
			t.Errorf("appointment %d on %v, want the day after %v", i, appts[i].Date, appts[i-1].Date)
		}
	}
}

func TestGenerateEmptyWeekdaysDefaultsToMonday(t *testing.T) {
	topics := []model.Topic{{ID: 1, DurationMinutes: 45}}
	appts := Generate(1, date(2024, time.January, 3), Pattern{StartTime: "14:00"}, topics)
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if appts[0].Date.Weekday() != time.Monday {
		t.Errorf("appointment on %v, want a Monday", appts[0].Date.Weekday())
	}
	if !appts[0].Date.Equal(date(2024, time.January, 8)) {
		t.Errorf("appointment on %v, want 2024-01-08", appts[0].Date)
	}
}

func TestGenerateBadStartTimeDefaults(t *testing.T) {
	topics := []model.Topic{{ID: 1, DurationMinutes: 60}}
	for _, bad := range []string{"", "nonsense", "25:00", "12:60", "12"} {
		appts := Generate(1, date(2024, time.January, 1), Pattern{
			Weekdays:  []time.Weekday{time.Monday},
			StartTime: bad,
		}, topics)
		if appts[0].StartsAt.Hour() != 14 || appts[0].StartsAt.Minute() != 0 {
			t.Errorf("start time %q: got %02d:%02d, want default 14:00",
				bad, appts[0].StartsAt.Hour(), appts[0].StartsAt.Minute())
		}
	}
}

func TestGenerateDurationOverride(t *testing.T) {
	override := 240
	topics := []model.Topic{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 600},
	}
	p := Pattern{
		Weekdays:                []time.Weekday{time.Friday},
		StartTime:               "08:00",
		DurationOverrideMinutes: &override,
	}
	for _, a := range Generate(1, date(2024, time.February, 1), p, topics) {
		if got := a.EndsAt.Sub(a.StartsAt); got != 240*time.Minute {
			t.Errorf("appointment %d lasts %v, want the 4h override", a.Sequence, got)
		}
	}
}

func TestGenerateEmptyTopics(t *testing.T) {
	appts := Generate(1, date(2024, time.January, 1), Pattern{
		Weekdays:  []time.Weekday{time.Monday},
		StartTime: "14:00",
	}, nil)
	if appts == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(appts) != 0 {
		t.Fatalf("expected no appointments, got %d", len(appts))
	}
}

func TestGenerateIdempotent(t *testing.T) {
	topics := []model.Topic{
		{ID: 1, DurationMinutes: 90},
		{ID: 2, DurationMinutes: 45},
		{ID: 3, DurationMinutes: 120},
	}
	p := Pattern{
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		StartTime: "16:15",
	}
	a := Generate(9, date(2024, time.May, 2), p, topics)
	b := Generate(9, date(2024, time.May, 2), p, topics)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two runs over identical inputs differ:\n%v\n%v", a, b)
	}
}
