package timecalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// OvernightCutoff is the latest end time (in hours) that is still counted as
// belonging to the previous day's shift.
const OvernightCutoff = 6.0

// ParseClock parses "HH:MM" into fractional hours since midnight. The hour
// may have one or two digits; the minute must have two.
func ParseClock(s string) (float64, error) {
	hour, minute, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	return float64(hour) + float64(minute)/60, nil
}

// NormalizeClock validates s and returns it zero-padded, e.g. "9:05" -> "09:05".
func NormalizeClock(s string) (string, error) {
	hour, minute, err := parseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseClock(s string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	if len(h) < 1 || len(h) > 2 || !digits(h) {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if len(m) != 2 || !digits(m) {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	if hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidClock reports whether s is a well-formed "HH:MM" time.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// ComputeHours returns the hours worked between start and end ("HH:MM").
// An end at or before 06:00, or earlier than start, is taken to be on the
// next day. Missing or malformed times count as zero.
func ComputeHours(start, end string) float64 {
	if start == "" || end == "" {
		return 0
	}
	s, err := ParseClock(start)
	if err != nil {
		return 0
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0
	}
	if e <= OvernightCutoff || e < s {
		e += 24
	}
	return math.Max(0, e-s)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last day of month (both inclusive, at
// midnight UTC).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

// SameMonth reports whether t falls within month of year.
func SameMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}

// FormatHours renders hours with two decimals, e.g. "8.00".
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 2, 64)
}

// FormatDuration formats hours as a human-readable string like "8h 30m" or "45m".
func FormatDuration(hours float64) string {
	total := int64(math.Round(hours * 60))
	h := total / 60
	m := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// RoundCents rounds an amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
