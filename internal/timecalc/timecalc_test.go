package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/timesheet/internal/timecalc"
)

func TestComputeHours(t *testing.T) {
	tests := []struct {
		start, end string
		want       float64
	}{
		{"09:00", "17:00", 8},
		{"22:00", "06:00", 8},
		{"20:00", "02:00", 6},
		{"10:00", "05:00", 19},
		{"08:30", "12:15", 3.75},
		{"00:00", "06:00", 30},
		{"05:00", "06:30", 1.5},
		{"12:00", "12:00", 0},
		{"", "17:00", 0},
		{"09:00", "", 0},
		{"nine", "17:00", 0},
	}
	for _, tt := range tests {
		got := timecalc.ComputeHours(tt.start, tt.end)
		if got != tt.want {
			t.Errorf("ComputeHours(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:30", 6.5, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:5", 0, true},
		{"1200", 0, true},
		{"", 0, true},
		{"9:15", 9.25, false},
		{"009:00", 0, true},
		{"0009:30", 0, true},
		{"+9:00", 0, true},
		{"-0:30", 0, true},
		{"09:+5", 0, true},
		{" 9:00", 9, false},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9:05", "09:05", false},
		{"18:00", "18:00", false},
		{" 7:30 ", "07:30", false},
		{"0009:30", "", true},
		{"+9:00", "", true},
	}
	for _, tt := range tests {
		got, err := timecalc.NormalizeClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeClock(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if h := timecalc.ComputeHours("+9:00", "17:00"); h != 0 {
		t.Errorf("ComputeHours with signed start = %v, want 0", h)
	}
}

func TestDaysInMonth(t *testing.T) {
	common := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for year := 1999; year <= 2030; year++ {
		leap := year%4 == 0 && (year%100 != 0 || year%400 == 0)
		for m := time.January; m <= time.December; m++ {
			want := common[m-1]
			if m == time.February && leap {
				want = 29
			}
			if got := timecalc.DaysInMonth(year, m); got != want {
				t.Errorf("DaysInMonth(%d, %s) = %d, want %d", year, m, got, want)
			}
		}
	}
	if got := timecalc.DaysInMonth(2024, time.February); got != 29 {
		t.Errorf("DaysInMonth(2024, February) = %d, want 29", got)
	}
	if got := timecalc.DaysInMonth(2023, time.February); got != 28 {
		t.Errorf("DaysInMonth(2023, February) = %d, want 28", got)
	}
}

func TestMonthRange(t *testing.T) {
	first, last := timecalc.MonthRange(2024, time.December)
	if !first.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthRange first = %v", first)
	}
	if !last.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthRange last = %v", last)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0.00"},
		{8, "8.00"},
		{3.75, "3.75"},
		{1.0 / 3, "0.33"},
	}
	for _, tt := range tests {
		if got := timecalc.FormatHours(tt.hours); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0m"},
		{0.75, "45m"},
		{1, "1h 0m"},
		{8.5, "8h 30m"},
	}
	for _, tt := range tests {
		if got := timecalc.FormatDuration(tt.hours); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
