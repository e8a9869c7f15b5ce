package model

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExecutionStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ExecutionStatus
		ok       bool
	}{
		{ExecutionGeplant, ExecutionAktiv, true},
		{ExecutionGeplant, ExecutionAbgesagt, true},
		{ExecutionGeplant, ExecutionAbgeschlossen, false},
		{ExecutionAktiv, ExecutionAbgeschlossen, true},
		{ExecutionAktiv, ExecutionAbgesagt, true},
		{ExecutionAktiv, ExecutionGeplant, false},
		{ExecutionAbgeschlossen, ExecutionAktiv, false},
		{ExecutionAbgeschlossen, ExecutionAbgesagt, false},
		{ExecutionAbgesagt, ExecutionGeplant, false},
		{ExecutionAbgesagt, ExecutionAktiv, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s → %s = %t, want %t", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestExecutionStatusBookable(t *testing.T) {
	if !ExecutionGeplant.Bookable() || !ExecutionAktiv.Bookable() {
		t.Error("GEPLANT and AKTIV must be bookable")
	}
	if ExecutionAbgeschlossen.Bookable() || ExecutionAbgesagt.Bookable() {
		t.Error("terminal statuses must not be bookable")
	}
}

func TestEffectivePriceCents(t *testing.T) {
	promo := uint32(3990)
	from := day(2024, time.February, 1)
	until := day(2024, time.February, 29)
	tmpl := CourseTemplate{
		PriceCents:      4990,
		PromoPriceCents: &promo,
		PromoFrom:       &from,
		PromoUntil:      &until,
	}
	cases := []struct {
		asOf time.Time
		want uint32
	}{
		{day(2024, time.January, 31), 4990},
		{day(2024, time.February, 1), 3990},  // inclusive lower bound
		{day(2024, time.February, 15), 3990},
		{day(2024, time.February, 29), 3990}, // inclusive upper bound
		{day(2024, time.March, 1), 4990},
	}
	for _, tc := range cases {
		if got := tmpl.EffectivePriceCents(tc.asOf); got != tc.want {
			t.Errorf("effective price on %s = %d, want %d", tc.asOf.Format("2006-01-02"), got, tc.want)
		}
	}

	// The upper bound is compared by date: late on the last promo day
	// still counts.
	lateLastDay := time.Date(2024, time.February, 29, 23, 30, 0, 0, time.UTC)
	if got := tmpl.EffectivePriceCents(lateLastDay); got != 3990 {
		t.Errorf("late on last promo day = %d, want 3990", got)
	}
}

func TestEffectivePriceOpenBounds(t *testing.T) {
	promo := uint32(1000)

	unboundedStart := CourseTemplate{PriceCents: 2000, PromoPriceCents: &promo}
	until := day(2024, time.June, 1)
	unboundedStart.PromoUntil = &until
	if got := unboundedStart.EffectivePriceCents(day(2000, time.January, 1)); got != 1000 {
		t.Errorf("nil lower bound should be unbounded, got %d", got)
	}
	if got := unboundedStart.EffectivePriceCents(day(2024, time.June, 2)); got != 2000 {
		t.Errorf("after window, got %d", got)
	}

	noWindow := CourseTemplate{PriceCents: 2000, PromoPriceCents: &promo}
	if got := noWindow.EffectivePriceCents(day(2024, time.June, 2)); got != 1000 {
		t.Errorf("both bounds nil means always on promo, got %d", got)
	}

	noPromo := CourseTemplate{PriceCents: 2000}
	if got := noPromo.EffectivePriceCents(day(2024, time.June, 2)); got != 2000 {
		t.Errorf("no promo price set, got %d", got)
	}
}

func TestTotalDurationMinutes(t *testing.T) {
	tmpl := CourseTemplate{Topics: []Topic{
		{DurationMinutes: 120},
		{DurationMinutes: 90},
		{DurationMinutes: 45},
	}}
	if got := tmpl.TotalDurationMinutes(); got != 255 {
		t.Errorf("total duration %d, want 255", got)
	}
	var empty CourseTemplate
	if got := empty.TotalDurationMinutes(); got != 0 {
		t.Errorf("empty template duration %d, want 0", got)
	}
}

func TestWeekdaysRoundTrip(t *testing.T) {
	days, err := ParseWeekdays("TUE,THU")
	if err != nil {
		t.Fatalf("ParseWeekdays: %v", err)
	}
	if len(days) != 2 || days[0] != time.Tuesday || days[1] != time.Thursday {
		t.Errorf("parsed %v", days)
	}
	if got := FormatWeekdays(days); got != "TUE,THU" {
		t.Errorf("formatted %q", got)
	}

	// Case-insensitive, whitespace-tolerant.
	days, err = ParseWeekdays(" mon , fri ")
	if err != nil {
		t.Fatalf("ParseWeekdays: %v", err)
	}
	if len(days) != 2 || days[0] != time.Monday || days[1] != time.Friday {
		t.Errorf("parsed %v", days)
	}

	if _, err := ParseWeekdays("TUE,FUNDAY"); err == nil {
		t.Error("expected error for unknown weekday")
	}

	days, err = ParseWeekdays("")
	if err != nil || len(days) != 0 {
		t.Errorf("empty input: days=%v err=%v", days, err)
	}
}

func TestBookingStatusLive(t *testing.T) {
	if !BookingGebucht.Live() || !BookingWarteliste.Live() {
		t.Error("GEBUCHT and WARTELISTE are live")
	}
	if BookingStorniert.Live() {
		t.Error("STORNIERT is not live")
	}
}

func TestFreeSeats(t *testing.T) {
	if got := FreeSeats(10, 4); got != 6 {
		t.Errorf("FreeSeats(10,4) = %d", got)
	}
	if got := FreeSeats(2, 2); got != 0 {
		t.Errorf("FreeSeats(2,2) = %d", got)
	}
	// Over-booked (e.g. capacity lowered after bookings) clamps to zero.
	if got := FreeSeats(2, 5); got != 0 {
		t.Errorf("FreeSeats(2,5) = %d", got)
	}
}
