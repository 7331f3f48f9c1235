package engine

import "time"

// All streak rules work on calendar days, never timestamps. Days are
// normalized to midnight UTC so equality survives a database round-trip.

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ISOWeekNumber returns the ISO 8601 week number of t.
func ISOWeekNumber(t time.Time) int {
	_, week := t.UTC().ISOWeek()
	return week
}

// Clock supplies "today" to the engines so handlers and tests share one
// source of time.
type Clock interface {
	Today() time.Time
}

type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return Day(time.Now())
}
