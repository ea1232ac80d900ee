package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

func testLocation() *time.Location {
	loc, _ := timeutil.ResolveLocation(timeutil.DefaultTimezone)
	return loc
}

// 2025-12-01 is a Monday.
func mondayRef() time.Time {
	return time.Date(2025, 12, 1, 10, 30, 0, 0, testLocation())
}

func TestDateAt_RelativeKeywords(t *testing.T) {
	n := New(testLocation(), MonthFirst)
	ref := mondayRef()

	tests := []struct {
		input string
		want  string
	}{
		{"today", "2025-12-01"},
		{"  Today ", "2025-12-01"},
		{"tomorrow", "2025-12-02"},
		{"day after tomorrow", "2025-12-03"},
		{"day after", "2025-12-03"},
		{"overmorrow", "2025-12-03"},
		{"next week", "2025-12-08"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DateAt(tt.input, ref))
		})
	}
}

func TestDateAt_Weekdays(t *testing.T) {
	n := New(testLocation(), MonthFirst)
	ref := mondayRef()

	tests := []struct {
		input string
		want  string
	}{
		{"next Monday", "2025-12-08"},
		{"monday", "2025-12-08"},
		{"Tuesday", "2025-12-02"},
		{"this friday", "2025-12-05"},
		{"Sunday afternoon", "2025-12-07"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DateAt(tt.input, ref))
		})
	}
}

func TestDateAt_ExplicitFormats(t *testing.T) {
	n := New(testLocation(), MonthFirst)
	ref := mondayRef()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso", "2026-03-04", "2026-03-04"},
		{"iso single digits", "2026-3-4", "2026-03-04"},
		{"month first dashes", "03-04-2026", "2026-03-04"},
		{"day first dashes when month invalid", "15-08-2026", "2026-08-15"},
		{"long month", "August 15", "2026-08-15"},
		{"short month rolls to next year", "Aug 15", "2026-08-15"},
		{"short month later this year", "Dec 20", "2025-12-20"},
		{"day then month", "15 Aug", "2026-08-15"},
		{"day then long month", "25 December", "2025-12-25"},
		{"slashes", "12/24/2025", "2025-12-24"},
		{"slashes without year", "12/24", "2025-12-24"},
		{"day first slashes without year", "24/12", "2025-12-24"},
		{"explicit past year rolls forward", "2024-06-01", "2026-06-01"},
		{"today as iso", "2025-12-01", "2025-12-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DateAt(tt.input, ref))
		})
	}
}

func TestDateAt_DayFirstOrder(t *testing.T) {
	ref := mondayRef()

	assert.Equal(t, "2026-03-04", New(testLocation(), MonthFirst).DateAt("03-04-2026", ref))
	assert.Equal(t, "2026-04-03", New(testLocation(), DayFirst).DateAt("03-04-2026", ref))
}

func TestDateAt_LeapDayWithoutYear(t *testing.T) {
	n := New(testLocation(), MonthFirst)

	// 2027 is not a leap year, so "Feb 29" cannot be placed and passes through.
	ref := time.Date(2026, 3, 1, 9, 0, 0, 0, testLocation())
	assert.Equal(t, "Feb 29", n.DateAt("Feb 29", ref))

	ref = time.Date(2028, 1, 10, 9, 0, 0, 0, testLocation())
	assert.Equal(t, "2028-02-29", n.DateAt("Feb 29", ref))
}

func TestDateAt_Passthrough(t *testing.T) {
	n := New(testLocation(), MonthFirst)
	ref := mondayRef()

	for _, input := range []string{"someday", "  the 15th  ", "13/13/2025", ""} {
		assert.Equal(t, strings.TrimSpace(input), n.DateAt(input, ref), input)
	}
}

func TestDate_UsesClockInLocation(t *testing.T) {
	// 20:00 UTC on Nov 30 is already Dec 1 in India.
	clock := func() time.Time { return time.Date(2025, 11, 30, 20, 0, 0, 0, time.UTC) }
	n := New(testLocation(), MonthFirst).WithClock(clock)

	assert.Equal(t, "2025-12-01", n.Date("today"))
	assert.Equal(t, "2025-12-02", n.Date("tomorrow"))
}

func TestDate_Idempotent(t *testing.T) {
	n := New(testLocation(), MonthFirst)
	ref := mondayRef()

	for _, input := range []string{"today", "next Monday", "Aug 15", "12/24", "2026-01-31", "gibberish"} {
		once := n.DateAt(input, ref)
		assert.Equal(t, once, n.DateAt(once, ref), input)
	}
}

func TestTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3 PM", "15:00"},
		{"3:00 PM", "15:00"},
		{"15:00", "15:00"},
		{"3pm", "15:00"},
		{"3:30 pm", "15:30"},
		{"12 AM", "00:00"},
		{"12 PM", "12:00"},
		{"12:30 AM", "00:30"},
		{"9 am", "09:00"},
		{"9", "09:00"},
		{"9:5", "09:05"},
		{" 14:30 ", "14:30"},
		{"00:00", "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Time(tt.input))
		})
	}
}

func TestTime_Passthrough(t *testing.T) {
	for _, input := range []string{"noon", "25:00", "13 PM", "10:75", "half past", "3:00:00"} {
		assert.Equal(t, input, Time(input), input)
	}
}

func TestTime_Idempotent(t *testing.T) {
	for _, input := range []string{"3 PM", "12 AM", "9", "15:45", "later"} {
		once := Time(input)
		assert.Equal(t, once, Time(once), input)
	}
}

func TestParseDateOrder(t *testing.T) {
	assert.Equal(t, DayFirst, ParseDateOrder("DMY"))
	assert.Equal(t, MonthFirst, ParseDateOrder("mdy"))
	assert.Equal(t, MonthFirst, ParseDateOrder("whatever"))
}
