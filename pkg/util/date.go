package util

import (
	"time"
)

const DateLayout = "2006-01-02"

// DayUTC truncates t to its UTC calendar day (midnight UTC).
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDayUTC reports whether a and b fall on the same UTC calendar day.
func SameDayUTC(a, b time.Time) bool {
	return DayUTC(a).Equal(DayUTC(b))
}

// DaysBetween returns the whole calendar days from a to b (b - a), both
// truncated to UTC days. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DayUTC(b).Sub(DayUTC(a)).Hours() / 24)
}

// NextBusinessDay returns the first Monday-to-Friday day strictly after d.
func NextBusinessDay(d time.Time) time.Time {
	next := DayUTC(d).AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ParseDate parses a YYYY-MM-DD string as a UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
