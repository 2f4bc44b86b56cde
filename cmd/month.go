package cmd

import (
	"fmt"
	"time"

	"github.com/Tiliavir/timesheet/internal/apperr"
)

// parseMonth reads a "YYYY-MM" flag value. Empty selects the month of now.
func parseMonth(s string, now time.Time) (int, int, error) {
	if s == "" {
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, apperr.Validation("invalid month %q (want YYYY-MM)", s)
	}
	return t.Year(), int(t.Month()), nil
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
