package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the month grid with worked hours",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default current)")
}

const cellWidth = 7

var (
	calTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	calHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(cellWidth).
			Align(lipgloss.Center)

	calDayStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center)

	calWorkedStyle = calDayStyle.
			Foreground(lipgloss.Color("42")).
			Bold(true)

	calTotalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			MarginTop(1)
)

func runCalendar(cmd *cobra.Command, args []string) error {
	year, month, err := parseMonth(calendarMonth, time.Now())
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), func(a *app) error {
		m, err := a.entries.Calendar(cmd.Context(), year, month)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderCalendar(m))
		return nil
	})
}

// renderCalendar draws two text lines per week: day numbers, then the
// hours worked on each day.
func renderCalendar(m calendar.Month) string {
	ws, _ := calendar.ParseWeekStart(m.WeekStart)

	headers := make([]string, 0, 7)
	for _, h := range ws.Headers() {
		headers = append(headers, calHeaderStyle.Render(h))
	}

	lines := []string{
		calTitleStyle.Render(invoice.MonthName(m.Year, m.Month)),
		lipgloss.JoinHorizontal(lipgloss.Top, headers...),
	}
	for _, week := range m.Rows() {
		days := make([]string, 0, 7)
		hours := make([]string, 0, 7)
		for _, c := range week {
			if c.Blank() {
				days = append(days, calDayStyle.Render(""))
				hours = append(hours, calDayStyle.Render(""))
				continue
			}
			if c.Entry == nil {
				days = append(days, calDayStyle.Render(fmt.Sprint(c.Day)))
				hours = append(hours, calDayStyle.Render("·"))
				continue
			}
			days = append(days, calWorkedStyle.Render(fmt.Sprint(c.Day)))
			hours = append(hours, calWorkedStyle.Render(timecalc.FormatHours(c.Hours)))
		}
		lines = append(lines,
			lipgloss.JoinHorizontal(lipgloss.Top, days...),
			lipgloss.JoinHorizontal(lipgloss.Top, hours...))
	}

	worked := 0
	for _, c := range m.Cells {
		if c.Entry != nil {
			worked++
		}
	}
	lines = append(lines, calTotalStyle.Render(fmt.Sprintf("Total: %s h (%s) over %d day(s)",
		timecalc.FormatHours(m.Total), timecalc.FormatDuration(m.Total), worked)))
	return strings.Join(lines, "\n")
}
