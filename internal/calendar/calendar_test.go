package calendar_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/model"
)

func entry(date, start, end string) model.TimeEntry {
	return model.TimeEntry{
		Date:      model.Day(date),
		StartTime: start,
		EndTime:   end,
		Status:    model.EntryApproved,
		CreatedBy: model.RoleAdmin,
	}
}

func TestFirstWeekdayIndex(t *testing.T) {
	// 2025-02-01 is a Saturday, 2025-09-01 a Monday, 2025-06-01 a Sunday.
	tests := []struct {
		year  int
		month time.Month
		ws    calendar.WeekStart
		want  int
	}{
		{2025, time.February, calendar.Monday, 5},
		{2025, time.February, calendar.Sunday, 6},
		{2025, time.September, calendar.Monday, 0},
		{2025, time.September, calendar.Sunday, 1},
		{2025, time.June, calendar.Monday, 6},
		{2025, time.June, calendar.Sunday, 0},
	}
	for _, tt := range tests {
		got := calendar.FirstWeekdayIndex(tt.year, tt.month, tt.ws)
		if got != tt.want {
			t.Errorf("FirstWeekdayIndex(%d, %s, %s) = %d, want %d", tt.year, tt.month, tt.ws, got, tt.want)
		}
	}
}

func TestBuildMonthGrid(t *testing.T) {
	entries := calendar.Index([]model.TimeEntry{
		entry("2025-02-03", "09:00", "17:00"),
	})
	m := calendar.BuildMonth(2025, time.February, calendar.Monday, entries)

	if len(m.Cells) != calendar.GridCells {
		t.Fatalf("cells = %d, want %d", len(m.Cells), calendar.GridCells)
	}
	if m.DaysInMonth != 28 {
		t.Errorf("DaysInMonth = %d, want 28", m.DaysInMonth)
	}
	for i := 0; i < 5; i++ {
		if !m.Cells[i].Blank() {
			t.Errorf("cell %d should be a leading blank", i)
		}
	}
	if m.Cells[5].Day != 1 || m.Cells[5].Date != "2025-02-01" {
		t.Errorf("cell 5 = %+v, want day 1", m.Cells[5])
	}
	if c := m.Cells[7]; c.Day != 3 || c.Entry == nil || c.Hours != 8 {
		t.Errorf("cell 7 = %+v, want day 3 with 8h entry", c)
	}
	blanks := 0
	for _, c := range m.Cells[5+28:] {
		if !c.Blank() {
			t.Errorf("trailing cell not blank: %+v", c)
		}
		blanks++
	}
	if blanks != calendar.GridCells-5-28 {
		t.Errorf("trailing blanks = %d", blanks)
	}
	if rows := m.Rows(); len(rows) != 6 || len(rows[0]) != 7 {
		t.Errorf("Rows() shape = %d x %d, want 6 x 7", len(rows), len(rows[0]))
	}
}

func TestMonthTotalExcludesAdjacentMonths(t *testing.T) {
	entries := calendar.Index([]model.TimeEntry{
		entry("2025-01-31", "09:00", "17:00"),
		entry("2025-02-01", "22:00", "06:00"),
		entry("2025-03-01", "10:00", "12:00"),
	})

	if got := calendar.MonthTotal(2025, time.February, entries); got != 8 {
		t.Errorf("February total = %v, want 8", got)
	}
	m := calendar.BuildMonth(2025, time.February, calendar.Sunday, entries)
	if m.Total != 8 {
		t.Errorf("BuildMonth total = %v, want 8", m.Total)
	}
	if got := calendar.MonthTotal(2024, time.February, entries); got != 0 {
		t.Errorf("February 2024 total = %v, want 0", got)
	}
}

func TestLeapFebruaryGrid(t *testing.T) {
	m := calendar.BuildMonth(2024, time.February, calendar.Monday, nil)
	if m.DaysInMonth != 29 {
		t.Fatalf("DaysInMonth = %d, want 29", m.DaysInMonth)
	}
	// 2024-02-01 is a Thursday.
	if m.FirstWeekday != 3 {
		t.Errorf("FirstWeekday = %d, want 3", m.FirstWeekday)
	}
	if last := m.Cells[3+28]; last.Day != 29 {
		t.Errorf("last day cell = %+v, want 29", last)
	}
}

func TestParseWeekStart(t *testing.T) {
	for in, want := range map[string]calendar.WeekStart{
		"":       calendar.Monday,
		"Monday": calendar.Monday,
		"sun":    calendar.Sunday,
	} {
		got, err := calendar.ParseWeekStart(in)
		if err != nil || got != want {
			t.Errorf("ParseWeekStart(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := calendar.ParseWeekStart("friday"); err == nil {
		t.Error("expected error for friday")
	}
}

func TestUIKey(t *testing.T) {
	if got := calendar.UIKey("2025-03-05"); got != "2025-2-5" {
		t.Errorf("UIKey = %q, want %q", got, "2025-2-5")
	}
	day, err := calendar.ParseUIKey("2025-0-31")
	if err != nil {
		t.Fatalf("ParseUIKey: %v", err)
	}
	if day != "2025-01-31" {
		t.Errorf("ParseUIKey = %q, want 2025-01-31", day)
	}
	for _, bad := range []string{"2025-12-1", "2025-1-30", "2025-01", "x-1-1"} {
		if _, err := calendar.ParseUIKey(bad); err == nil {
			t.Errorf("ParseUIKey(%q) expected error", bad)
		}
	}
}
