package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var (
	exportFormat string
	exportMonth  string
	exportFrom   string
	exportTo     string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approved entries",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month to export (YYYY-MM, default current)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (YYYY-MM-DD, default today)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every entry")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		list, err := selectEntries(cmd, a, exportMonth, exportFrom, exportTo, exportAll)
		if err != nil {
			return err
		}
		return writeEntries(cmd.OutOrStdout(), list, exportFormat)
	})
}

func writeEntries(w io.Writer, entries []model.TimeEntry, format string) error {
	switch format {
	case "json":
		if entries == nil {
			entries = []model.TimeEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		printMarkdown(w, entries)
	case "csv", "":
		printCSV(w, entries)
	default:
		return apperr.Validation("unknown format %q (want csv, json or md)", format)
	}
	return nil
}

func printCSV(w io.Writer, entries []model.TimeEntry) {
	fmt.Fprintln(w, "date,start_time,end_time,hours,created_by,updated_at")
	for _, e := range entries {
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s\n",
			csvEscape(e.Date.String()),
			csvEscape(e.StartTime),
			csvEscape(e.EndTime),
			timecalc.FormatHours(timecalc.ComputeHours(e.StartTime, e.EndTime)),
			csvEscape(string(e.CreatedBy)),
			csvEscape(e.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")),
		)
	}
}

func printMarkdown(w io.Writer, entries []model.TimeEntry) {
	fmt.Fprintln(w, "| Date | Start | End | Hours |")
	fmt.Fprintln(w, "|---|---|---|---:|")
	var total float64
	for _, e := range entries {
		hours := timecalc.ComputeHours(e.StartTime, e.EndTime)
		total += hours
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", e.Date, e.StartTime, e.EndTime, timecalc.FormatHours(hours))
	}
	fmt.Fprintf(w, "| **Total** | | | **%s** |\n", timecalc.FormatHours(total))
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
