package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var (
	listMonth string
	listFrom  string
	listTo    string
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved time entries",
	Long: `List approved entries of one month (the current one by default), of a
--from/--to range, or everything with --all.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month to show (YYYY-MM, default current)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "Range start (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Range end (YYYY-MM-DD, default today)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show every entry")
}

func runList(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		list, err := selectEntries(cmd, a, listMonth, listFrom, listTo, listAll)
		if err != nil {
			return err
		}
		printList(cmd.OutOrStdout(), list)
		return nil
	})
}

// selectEntries resolves the month/range/all flags shared by list and export.
func selectEntries(cmd *cobra.Command, a *app, month, from, to string, all bool) ([]model.TimeEntry, error) {
	ctx := cmd.Context()
	now := time.Now()
	switch {
	case all:
		return a.entries.List(ctx)
	case from != "" || to != "":
		if from == "" {
			return nil, apperr.Validation("--from is required with --to")
		}
		fromDay, err := model.ParseDay(from)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		toDay := model.NewDay(now)
		if to != "" {
			if toDay, err = model.ParseDay(to); err != nil {
				return nil, apperr.Validation("%v", err)
			}
		}
		return a.entries.Range(ctx, fromDay, toDay)
	}
	year, m, err := parseMonth(month, now)
	if err != nil {
		return nil, err
	}
	return a.entries.Month(ctx, year, m)
}

// printList prints one line per entry followed by the total.
func printList(w io.Writer, entries []model.TimeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var total float64
	for _, e := range entries {
		hours := timecalc.ComputeHours(e.StartTime, e.EndTime)
		total += hours
		fmt.Fprintf(w, "%s  %s–%s  %8s  %s\n",
			e.Date, e.StartTime, e.EndTime, timecalc.FormatDuration(hours), e.CreatedBy)
	}
	fmt.Fprintln(w, "--------------------------------------")
	fmt.Fprintf(w, "%-24s%8s\n", "Total", timecalc.FormatDuration(total))
}
