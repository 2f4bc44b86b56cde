package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
)

// UIKey converts d to the "{year}-{zeroBasedMonth}-{day}" key used by the
// browser calendar.
func UIKey(d model.Day) string {
	t := d.Time()
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month())-1, t.Day())
}

// ParseUIKey converts a browser calendar key back to a Day.
func ParseUIKey(key string) (model.Day, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid calendar key %q", key)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid calendar key %q: %w", key, err)
		}
		n[i] = v
	}
	year, month, day := n[0], time.Month(n[1]+1), n[2]
	if month < time.January || month > time.December || day < 1 {
		return "", fmt.Errorf("invalid calendar key %q", key)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return "", fmt.Errorf("invalid calendar key %q: day out of range", key)
	}
	return model.NewDay(t), nil
}
