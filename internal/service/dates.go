package service

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoDate is the layout clients are expected to send; anything else goes
// through the lenient parser.
const isoDate = "2006-01-02"

// parseDate parses a submitted calendar date. Blank or unparsable input
// yields nil rather than an error: callers treat it as "missing".
// Ambiguous numeric dates are read day first (02/01/2026 is 2 January).
func parseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		t, err = dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
		if err != nil {
			return nil
		}
	}
	d := dateOf(t)
	return &d
}

// dateOf returns midnight UTC on t's calendar date (in t's own location).
// All date arithmetic in this package runs on such values.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole days from a to b; negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)) / (24 * time.Hour))
}

// addMonths adds n calendar months to d, clamping the day to the last day of
// the target month (31 August + 6 months is 28 or 29 February, not 3 March).
func addMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(day, last), 0, 0, 0, 0, time.UTC)
}
