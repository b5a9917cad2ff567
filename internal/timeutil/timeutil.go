package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

// ParseDay parses a YYYY-MM-DD value as midnight in loc. Empty input yields
// the zero time.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(DayLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", raw)
	}
	return StartOfDay(parsed), nil
}

// NotBefore reports whether value is at or after since. A zero since matches
// everything.
func NotBefore(value, since time.Time) bool {
	return since.IsZero() || !value.Before(since)
}
