package dates

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2024, 5, 20, 14, 30, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso date", "2024-05-25", time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)},
		{"iso date with time", "2024-05-25 14:30", time.Date(2024, 5, 25, 14, 30, 0, 0, time.UTC)},
		{"slash date", "2024/05/25", time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)},
		{"slash date with time", "2024/05/25 09:15", time.Date(2024, 5, 25, 9, 15, 0, 0, time.UTC)},
		{"today", "today", time.Date(2024, 5, 20, 23, 59, 59, 0, time.UTC)},
		{"tomorrow", "Tomorrow", time.Date(2024, 5, 21, 23, 59, 59, 0, time.UTC)},
		{"day after tomorrow", "day after tomorrow", time.Date(2024, 5, 22, 23, 59, 59, 0, time.UTC)},
		{"plus days", "+3days", now.AddDate(0, 0, 3)},
		{"plus one day", "+1day", now.AddDate(0, 0, 1)},
		{"plus weeks", "+2weeks", now.AddDate(0, 0, 14)},
		{"month-day upcoming", "06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"month-day passed rolls over", "01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"month/day shorthand", "06/15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2024-05-25  ", time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{"", "someday", "2024-13-40", "+days", "+3months", "yesterday"}
	for _, input := range inputs {
		_, err := Parse(input, now)
		if err == nil {
			t.Errorf("Parse(%q) should fail", input)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) error is %T, want *ParseError", input, err)
		}
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"+3days", 3},
		{"+1day", 1},
		{"+2weeks", 14},
		{"+1week", 7},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.input)
		if err != nil {
			t.Fatalf("ParseInterval(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseInterval(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseIntervalErrors(t *testing.T) {
	for _, input := range []string{"", "3days", "+0days", "+weeks", "weekly"} {
		if _, err := ParseInterval(input); err == nil {
			t.Errorf("ParseInterval(%q) should fail", input)
		}
	}
}
