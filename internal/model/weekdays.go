package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names as accepted in requests and stored in
// executions.weekdays (comma-separated, e.g. "TUE,THU").
var weekdayNames = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

var weekdayLabels = map[time.Weekday]string{
	time.Sunday:    "SUN",
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
}

// ParseWeekdays converts a comma-separated day list ("TUE,THU") into
// weekdays.  Names are case-insensitive; empty segments are skipped.
// An empty input yields an empty slice, which the generator treats as
// "Monday only".
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// FormatWeekdays renders weekdays as the comma-separated storage form.
func FormatWeekdays(days []time.Weekday) string {
	labels := make([]string, 0, len(days))
	for _, d := range days {
		labels = append(labels, weekdayLabels[d])
	}
	return strings.Join(labels, ",")
}
