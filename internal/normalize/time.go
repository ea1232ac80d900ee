package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// Time converts "3 PM", "3:30pm" or "15:00" into 24-hour HH:MM.
// Input that cannot be parsed is returned trimmed but otherwise unchanged.
func Time(input string) string {
	trimmed := strings.TrimSpace(input)
	s := strings.ToUpper(trimmed)

	if strings.Contains(s, "AM") || strings.Contains(s, "PM") {
		if hm, ok := parseTwelveHour(s); ok {
			return hm
		}
		return trimmed
	}

	hour, minute, ok := splitClock(s)
	if !ok || hour > 23 {
		return trimmed
	}
	return formatClock(hour, minute)
}

func parseTwelveHour(s string) (string, bool) {
	pm := strings.Contains(s, "PM")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "AM", "")
	s = strings.ReplaceAll(s, "PM", "")

	hour, minute, ok := splitClock(s)
	if !ok || hour > 12 {
		return "", false
	}

	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return formatClock(hour, minute), true
}

// splitClock parses "H" or "H:MM".
func splitClock(s string) (int, int, bool) {
	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	if !hasMinutes {
		minutePart = "0"
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
