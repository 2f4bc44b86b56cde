package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage approved time entries directly (admin)",
}

var entrySetCmd = &cobra.Command{
	Use:   "set <date> <start> <end>",
	Short: "Record or replace the hours of a day",
	Example: `  timesheet entry set 2025-03-14 18:00 02:30
  timesheet entry set 2025-03-15 09:00 17:00`,
	Args: cobra.ExactArgs(3),
	RunE: runEntrySet,
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Remove the entry of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryDelete,
}

var entryShowCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Show the entry of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryShow,
}

func init() {
	entryCmd.AddCommand(entrySetCmd)
	entryCmd.AddCommand(entryDeleteCmd)
	entryCmd.AddCommand(entryShowCmd)
	entryCmd.AddCommand(listCmd)
}

func runEntrySet(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		e, err := a.entries.Upsert(cmd.Context(), args[0], args[1], args[2], model.RoleAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s–%s (%s).\n",
			e.Date, e.StartTime, e.EndTime, timecalc.FormatDuration(timecalc.ComputeHours(e.StartTime, e.EndTime)))
		return nil
	})
}

func runEntryDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		day, err := a.entries.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry for %s.\n", day)
		return nil
	})
}

func runEntryShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		e, err := a.entries.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Date:       %s\n", e.Date)
		fmt.Fprintf(w, "Hours:      %s–%s (%s)\n", e.StartTime, e.EndTime, timecalc.FormatDuration(timecalc.ComputeHours(e.StartTime, e.EndTime)))
		fmt.Fprintf(w, "Created by: %s\n", e.CreatedBy)
		fmt.Fprintf(w, "Updated:    %s\n", e.UpdatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	})
}
