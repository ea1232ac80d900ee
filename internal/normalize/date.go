// Package normalize turns free-form date and time phrases into the canonical
// YYYY-MM-DD and HH:MM strings used for every calendar comparison.
package normalize

import (
	"strings"
	"time"

	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// DateOrder selects which of two ambiguous numeric layouts is tried first.
type DateOrder string

const (
	MonthFirst DateOrder = "mdy"
	DayFirst   DateOrder = "dmy"
)

// ParseDateOrder maps a config value to a DateOrder, defaulting to MonthFirst.
func ParseDateOrder(s string) DateOrder {
	if DateOrder(strings.ToLower(strings.TrimSpace(s))) == DayFirst {
		return DayFirst
	}
	return MonthFirst
}

var relDateOffsets = map[string]int{
	"today":              0,
	"tomorrow":           1,
	"day after tomorrow": 2,
	"day after":          2,
	"overmorrow":         2,
	"next week":          7,
}

// Scanned in order; the first weekday name found in the input wins.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// Month and day names are matched case-insensitively by time.Parse.
var (
	monthFirstLayouts = []string{
		"2006-1-2",
		"1-2-2006",
		"2-1-2006",
		"January 2",
		"Jan 2",
		"2 January",
		"2 Jan",
		"1/2/2006",
		"2/1/2006",
		"1/2",
		"2/1",
	}
	dayFirstLayouts = []string{
		"2006-1-2",
		"2-1-2006",
		"1-2-2006",
		"January 2",
		"Jan 2",
		"2 January",
		"2 Jan",
		"2/1/2006",
		"1/2/2006",
		"2/1",
		"1/2",
	}
)

// Normalizer resolves relative phrases against the current day in a fixed location.
type Normalizer struct {
	loc   *time.Location
	order DateOrder
	now   func() time.Time
}

// New creates a Normalizer. A nil location falls back to the operating zone.
func New(loc *time.Location, order DateOrder) *Normalizer {
	if loc == nil {
		loc, _ = timeutil.ResolveLocation(timeutil.DefaultTimezone)
	}
	if order == "" {
		order = MonthFirst
	}
	return &Normalizer{loc: loc, order: order, now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Location returns the operating location.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current time in the operating location.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

// Date normalizes input against today in the operating location.
func (n *Normalizer) Date(input string) string {
	return n.DateAt(input, n.Now())
}

// Time normalizes a time of day.
func (n *Normalizer) Time(input string) string {
	return Time(input)
}

// DateAt normalizes input relative to ref.
//
// Unrecognized input is returned trimmed but otherwise unchanged. Numeric
// layouts such as 03-04-2025 are inherently ambiguous; whichever layout the
// configured DateOrder tries first wins.
func (n *Normalizer) DateAt(input string, ref time.Time) string {
	trimmed := strings.TrimSpace(input)
	s := strings.ToLower(trimmed)
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	if offset, ok := relDateOffsets[s]; ok {
		return today.AddDate(0, 0, offset).Format(timeutil.DateLayout)
	}

	for _, wd := range weekdays {
		if strings.Contains(s, wd.name) {
			ahead := int(wd.day) - int(today.Weekday())
			if ahead <= 0 {
				ahead += 7
			}
			return today.AddDate(0, 0, ahead).Format(timeutil.DateLayout)
		}
	}

	layouts := monthFirstLayouts
	if n.order == DayFirst {
		layouts = dayFirstLayouts
	}

	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, s, ref.Location())
		if err != nil {
			continue
		}

		if parsed.Year() == 0 {
			withYear := time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, ref.Location())
			// Feb 29 without a year only exists in leap years.
			if withYear.Month() != parsed.Month() {
				continue
			}
			parsed = withYear
		}

		if parsed.Before(today) {
			rolled := time.Date(today.Year()+1, parsed.Month(), parsed.Day(), 0, 0, 0, 0, ref.Location())
			if rolled.Month() != parsed.Month() {
				continue
			}
			parsed = rolled
		}

		return parsed.Format(timeutil.DateLayout)
	}

	return trimmed
}
