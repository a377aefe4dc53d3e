package utils

import (
	"strconv"
	"strings"
	"time"
)

// DayLayout is the calendar-day layout used in exports and API payloads.
const DayLayout = "2006-01-02"

// DayUTC truncates t to midnight UTC of its UTC calendar day.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange returns every UTC calendar day from `from` to `to`, inclusive.
// Returns nil when to is before from.
func DayRange(from, to time.Time) []time.Time {
	start, end := DayUTC(from), DayUTC(to)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FormatDay formats t as YYYY-MM-DD in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseUnixSeconds parses a unix timestamp in seconds given as a decimal
// string, e.g. "1704205800".
func ParseUnixSeconds(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
