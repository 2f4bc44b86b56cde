package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var (
	reportYear   int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours and amounts per month of a year",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "Year to report (default current)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

// monthTotal is one row of the yearly report.
type monthTotal struct {
	Month  int     `json:"month"`
	Name   string  `json:"name"`
	Days   int     `json:"days"`
	Hours  float64 `json:"hours"`
	Amount float64 `json:"amount"`
}

type yearReport struct {
	Year        int          `json:"year"`
	HourlyRate  float64      `json:"hourly_rate"`
	Months      []monthTotal `json:"months"`
	TotalHours  float64      `json:"total_hours"`
	TotalAmount float64      `json:"total_amount"`
}

func runReport(cmd *cobra.Command, args []string) error {
	year := reportYear
	if year == 0 {
		year = time.Now().Year()
	}
	if year < 1970 {
		return apperr.Validation("invalid year %d", year)
	}

	return withApp(cmd.Context(), func(a *app) error {
		first := model.Day(fmt.Sprintf("%04d-01-01", year))
		last := model.Day(fmt.Sprintf("%04d-12-31", year))
		list, err := a.entries.Range(cmd.Context(), first, last)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), buildReport(year, cfg.Invoice.HourlyRate, list), reportFormat)
	})
}

// buildReport aggregates entries by month. Months without entries are
// omitted.
func buildReport(year int, rate float64, entries []model.TimeEntry) yearReport {
	rep := yearReport{Year: year, HourlyRate: rate, Months: []monthTotal{}}
	var byMonth [12]monthTotal
	for _, e := range entries {
		t := e.Date.Time()
		if t.Year() != year {
			continue
		}
		mt := &byMonth[t.Month()-1]
		mt.Days++
		mt.Hours += timecalc.ComputeHours(e.StartTime, e.EndTime)
	}
	for i, mt := range byMonth {
		if mt.Days == 0 {
			continue
		}
		mt.Month = i + 1
		mt.Name = invoice.MonthName(year, time.Month(i+1))
		mt.Amount = timecalc.RoundCents(mt.Hours * rate)
		rep.Months = append(rep.Months, mt)
		rep.TotalHours += mt.Hours
	}
	rep.TotalAmount = timecalc.RoundCents(rep.TotalHours * rate)
	return rep
}

func writeReport(w io.Writer, rep yearReport, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "month,days,hours,amount")
		for _, m := range rep.Months {
			fmt.Fprintf(w, "%s,%d,%s,%s\n", monthLabel(rep.Year, m.Month), m.Days,
				timecalc.FormatHours(m.Hours), timecalc.FormatHours(m.Amount))
		}
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md", "":
		fmt.Fprintf(w, "Year %d (rate %s/h)\n", rep.Year, timecalc.FormatHours(rep.HourlyRate))
		fmt.Fprintln(w, "------------------------------------------------")
		for _, m := range rep.Months {
			fmt.Fprintf(w, "%-20s%3d days  %10s  %10s\n", m.Name, m.Days,
				timecalc.FormatDuration(m.Hours), timecalc.FormatHours(m.Amount))
		}
		fmt.Fprintln(w, "------------------------------------------------")
		fmt.Fprintf(w, "%-30s%10s  %10s\n", "Total",
			timecalc.FormatDuration(rep.TotalHours), timecalc.FormatHours(rep.TotalAmount))
	default:
		return apperr.Validation("unknown format %q (want md, csv or json)", format)
	}
	return nil
}
