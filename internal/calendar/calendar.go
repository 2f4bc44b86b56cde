// Package calendar builds the month view shown to admins and clients: a fixed
// six-week grid of days with their entries, and the month's hour total.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

// GridCells is the size of the month grid (6 rows of 7 days).
const GridCells = 42

// WeekStart selects the weekday shown in the first column.
type WeekStart int

const (
	Monday WeekStart = iota
	Sunday
)

// ParseWeekStart accepts "monday" or "sunday" (case-insensitive). Empty
// selects Monday.
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon":
		return Monday, nil
	case "sunday", "sun":
		return Sunday, nil
	}
	return Monday, fmt.Errorf("invalid week start %q (want monday or sunday)", s)
}

func (ws WeekStart) String() string {
	if ws == Sunday {
		return "sunday"
	}
	return "monday"
}

// Headers returns the short weekday names in column order.
func (ws WeekStart) Headers() []string {
	if ws == Sunday {
		return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}
	return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
}

// FirstWeekdayIndex returns the column (0-6) of the first day of month.
func FirstWeekdayIndex(year int, month time.Month, ws WeekStart) int {
	wd := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	if ws == Sunday {
		return wd
	}
	return (wd + 6) % 7
}

// Cell is one square of the grid. Blank cells have Day == 0.
type Cell struct {
	Day   int              `json:"day"`
	Date  model.Day        `json:"date,omitempty"`
	Entry *model.TimeEntry `json:"entry,omitempty"`
	Hours float64          `json:"hours"`
}

// Blank reports whether c is padding outside the month.
func (c Cell) Blank() bool { return c.Day == 0 }

// Month is the computed view of one calendar month.
type Month struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	WeekStart    string     `json:"week_start"`
	DaysInMonth  int        `json:"days_in_month"`
	FirstWeekday int        `json:"first_weekday"`
	Cells        []Cell     `json:"cells"`
	Total        float64    `json:"total_hours"`
}

// Rows splits the grid into weeks.
func (m Month) Rows() [][]Cell {
	rows := make([][]Cell, 0, GridCells/7)
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		rows = append(rows, m.Cells[i:i+7])
	}
	return rows
}

// BuildMonth lays out month of year with the given entries attached to their
// days. Entries outside the month are ignored, both in the grid and the total.
func BuildMonth(year int, month time.Month, ws WeekStart, entries map[model.Day]model.TimeEntry) Month {
	days := timecalc.DaysInMonth(year, month)
	first := FirstWeekdayIndex(year, month, ws)

	m := Month{
		Year:         year,
		Month:        month,
		WeekStart:    ws.String(),
		DaysInMonth:  days,
		FirstWeekday: first,
		Cells:        make([]Cell, GridCells),
	}
	for d := 1; d <= days; d++ {
		date := model.NewDay(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		cell := Cell{Day: d, Date: date}
		if e, ok := entries[date]; ok {
			cell.Entry = &e
			cell.Hours = timecalc.ComputeHours(e.StartTime, e.EndTime)
		}
		m.Cells[first+d-1] = cell
	}
	m.Total = MonthTotal(year, month, entries)
	return m
}

// MonthTotal sums the hours of the entries dated within month of year.
func MonthTotal(year int, month time.Month, entries map[model.Day]model.TimeEntry) float64 {
	var total float64
	for day, e := range entries {
		if !timecalc.SameMonth(day.Time(), year, month) {
			continue
		}
		total += timecalc.ComputeHours(e.StartTime, e.EndTime)
	}
	return total
}

// Index maps entries by date. A later entry for the same date wins.
func Index(entries []model.TimeEntry) map[model.Day]model.TimeEntry {
	out := make(map[model.Day]model.TimeEntry, len(entries))
	for _, e := range entries {
		out[e.Date] = e
	}
	return out
}
