// Package recurrence decides when recurring tasks are due and sorts their
// occurrences into today's active, done and overdue buckets.
//
// Every function here is pure: "today" is always passed in, never read from
// the clock, and calendar dates are represented as time.Time values at UTC
// midnight (see Day).
package recurrence

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Day drops the time of day from t, keeping t's own calendar fields.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today resolves the calendar date of now as seen from loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return Day(now)
}

// DateKey renders the YYYY-MM-DD key used by completion records.
func DateKey(t time.Time) string {
	return Day(t).Format(dateLayout)
}

// ParseDateKey reads a YYYY-MM-DD key back into a calendar date.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
