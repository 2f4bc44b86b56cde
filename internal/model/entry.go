package model

import (
	"fmt"
	"time"
)

// DayLayout is the persisted and canonical in-process format of a Day.
const DayLayout = "2006-01-02"

// Day is a calendar day in ISO form (YYYY-MM-DD). It is the only day key used
// inside the application; other formats are converted at the boundary.
type Day string

// NewDay returns the Day containing t.
func NewDay(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// ParseDay validates s and returns it as a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return NewDay(t), nil
}

// Time returns midnight UTC of the day. The zero time is returned for an
// invalid Day.
func (d Day) Time() time.Time {
	t, _ := time.Parse(DayLayout, string(d))
	return t
}

func (d Day) String() string { return string(d) }

// EntryStatus is the lifecycle state of a TimeEntry. Only approved entries
// are ever persisted.
type EntryStatus string

const EntryApproved EntryStatus = "approved"

// Role identifies who acts on the timesheet.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// TimeEntry is the approved record of hours worked on a single day.
type TimeEntry struct {
	Date      Day         `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Status    EntryStatus `json:"status"`
	CreatedBy Role        `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DayFile is the top-level structure stored in each daily JSON file of the
// file backend.
type DayFile struct {
	Date  Day        `json:"date"`
	Entry *TimeEntry `json:"entry"`
}
