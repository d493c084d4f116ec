// Package dates parses human-friendly due date expressions.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports an unrecognized date expression.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized date %q", e.Input)
}

var offsetPattern = regexp.MustCompile(`^\+(\d+)(days?|weeks?)$`)

// absolute layouts tried in order.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
}

// yearless layouts resolve against now's year, rolling to next year if
// the date has already passed.
var yearlessLayouts = []string{
	"01-02",
	"01/02",
}

// Parse resolves a date expression relative to now. Supported forms:
// absolute dates (2006-01-02, optionally with HH:MM, slashes allowed),
// month-day shorthand (05-25), the literals "today", "tomorrow" and
// "day after tomorrow" (end of day), and offsets like +3days, +2weeks.
func Parse(s string, now time.Time) (time.Time, error) {
	expr := strings.ToLower(strings.TrimSpace(s))
	if expr == "" {
		return time.Time{}, &ParseError{Input: s}
	}

	switch expr {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	case "day after tomorrow":
		return endOfDay(now.AddDate(0, 0, 2)), nil
	}

	if m := offsetPattern.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, &ParseError{Input: s}
		}
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return now.AddDate(0, 0, n), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, expr, now.Location()); err == nil {
			return t, nil
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, expr, now.Location())
		if err != nil {
			continue
		}
		t = t.AddDate(now.Year(), 0, 0)
		if t.Before(now) {
			t = t.AddDate(1, 0, 0)
		}
		return t, nil
	}

	return time.Time{}, &ParseError{Input: s}
}

// ParseInterval resolves a recurrence interval expression (+3days,
// +2weeks) to a whole number of days.
func ParseInterval(s string) (int, error) {
	expr := strings.ToLower(strings.TrimSpace(s))
	m := offsetPattern.FindStringSubmatch(expr)
	if m == nil {
		return 0, &ParseError{Input: s}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, &ParseError{Input: s}
	}
	if strings.HasPrefix(m[2], "week") {
		n *= 7
	}
	return n, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
