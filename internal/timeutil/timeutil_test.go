package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	loc, fallback := ResolveLocation("not/a-zone")
	assert.True(t, fallback)
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+1800, offset)

	loc, _ = ResolveLocation("")
	_, offset = time.Date(2025, 6, 1, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+1800, offset)
}

func TestParseDateTime(t *testing.T) {
	loc, _ := ResolveLocation(DefaultTimezone)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"utc marker", "2025-08-15T09:30:00Z", time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)},
		{"explicit offset", "2025-08-15T15:00:00+05:30", time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)},
		{"naive uses location", "2025-08-15T15:00:00", time.Date(2025, 8, 15, 15, 0, 0, 0, loc)},
		{"naive without seconds", "2025-08-15 15:00", time.Date(2025, 8, 15, 15, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.value, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err := ParseDateTime("", loc)
	assert.Error(t, err)
	_, err = ParseDateTime("tomorrow", loc)
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	loc, _ := ResolveLocation(DefaultTimezone)

	start, end, err := DayBounds("2025-08-15", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-14T18:30:00Z", start.UTC().Format(time.RFC3339))
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = DayBounds("tomorrow", loc)
	assert.Error(t, err)
}

func TestCombineDateAndClock(t *testing.T) {
	loc, _ := ResolveLocation(DefaultTimezone)

	got, err := CombineDateAndClock("2025-08-15", "15:30", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-15T15:30:00+05:30", got.Format(time.RFC3339))

	_, err = CombineDateAndClock("2025-08-15", "3 PMish", loc)
	assert.Error(t, err)
}
