package invoice

import (
	"fmt"
	"time"
)

// IssueDateLayout formats the issue date the way the invoice template
// expects (dd/mm/yyyy).
const IssueDateLayout = "02/01/2006"

var monthNames = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthName returns the French month label of an invoice: "mars 2025".
func MonthName(year int, month time.Month) string {
	if month < time.January || month > time.December {
		return fmt.Sprintf("%d-%02d", year, int(month))
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}
