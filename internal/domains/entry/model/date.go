package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates (HTML <input type="date">).
const DateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// NormalizeDate drops the clock and location, keeping only the calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDate compares calendar dates, ignoring time of day and zone.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
