package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage, pending requests and this month's total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()

	return withApp(ctx, func(a *app) error {
		pending, err := a.workflow.ListPending(ctx)
		if err != nil {
			return err
		}
		current, err := a.store.CurrentInvoiceNumber(ctx)
		if err != nil {
			return apperr.Store("failed to read invoice counter", err)
		}
		list, err := a.entries.Month(ctx, now.Year(), int(now.Month()))
		if err != nil {
			return err
		}
		total := calendar.MonthTotal(now.Year(), now.Month(), calendar.Index(list))

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Storage:   %s\n", describeBackend(a, cfg.Storage.DSN))
		fmt.Fprintf(w, "Pending:   %d modification request(s)\n", len(pending))
		if current == 0 {
			fmt.Fprintln(w, "Invoices:  none issued yet")
		} else {
			fmt.Fprintf(w, "Invoices:  last number %s\n", invoice.FormatNumber(cfg.Invoice.SeriesPrefix, current))
		}
		fmt.Fprintf(w, "%s: %s over %d day(s)\n",
			invoice.MonthName(now.Year(), now.Month()), timecalc.FormatDuration(total), len(list))
		return nil
	})
}
