package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var hoursCmd = &cobra.Command{
	Use:   "hours <start> <end>",
	Short: "Compute the hours between two clock times",
	Long: `Compute worked hours the way entries and invoices do: an end time at or
before 06:00, or earlier than the start, belongs to the next day.`,
	Example: `  timesheet hours 18:00 02:30   # 8.50 (8h 30m)`,
	Args:    cobra.ExactArgs(2),
	RunE:    runHours,
}

func runHours(cmd *cobra.Command, args []string) error {
	for _, a := range args {
		if !timecalc.ValidClock(a) {
			return apperr.Validation("invalid time %q (want HH:MM)", a)
		}
	}
	h := timecalc.ComputeHours(args[0], args[1])
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", timecalc.FormatHours(h), timecalc.FormatDuration(h))
	return nil
}
