package timeutil

import (
	"fmt"
	"time"
)

const (
	// DefaultTimezone is the fixed operating time zone for all booking arithmetic.
	DefaultTimezone = "Asia/Kolkata"

	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// istFallback is used when the host has no tzdata for Asia/Kolkata.
var istFallback = time.FixedZone("IST", 5*60*60+30*60)

// ResolveLocation returns the named location with an India Standard Time fallback.
// The second return value reports whether the fallback was used.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return istFallback, true
	}
	return loc, false
}

// ParseDateTime parses a datetime in either RFC3339 (with explicit offset) or local layouts in the provided location.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	// If timezone/offset exists, preserve it.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	if loc == nil {
		loc = istFallback
	}

	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", value)
}

// CombineDateAndClock builds a wall-clock time from canonical YYYY-MM-DD and HH:MM strings.
func CombineDateAndClock(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q and time %q", date, clock)
	}
	return t, nil
}

// DayBounds returns [start of day, start of next day) for a canonical date in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unable to parse date: %s", date)
	}
	return d, d.AddDate(0, 0, 1), nil
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
