package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var (
	invoiceMonth string
	invoiceEmail string
	invoiceXLSX  string
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Generate invoices",
}

var invoiceGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Number and send the invoice of a month",
	Long: `Aggregate the approved entries of a month, assign the next invoice number
and post the invoice to the configured webhook. Fails while modification
requests are pending. A failed delivery is reported but the invoice keeps its
number.`,
	Example: `  timesheet invoice generate --month 2025-03
  timesheet invoice generate --month 2025-03 --email billing@example.com --xlsx facture-mars.xlsx`,
	Args: cobra.NoArgs,
	RunE: runInvoiceGenerate,
}

func init() {
	invoiceGenerateCmd.Flags().StringVar(&invoiceMonth, "month", "", "Month to invoice (YYYY-MM, default current)")
	invoiceGenerateCmd.Flags().StringVar(&invoiceEmail, "email", "", "Recipient (default from settings)")
	invoiceGenerateCmd.Flags().StringVar(&invoiceXLSX, "xlsx", "", "Also write the invoice as an Excel workbook to this path")
	invoiceCmd.AddCommand(invoiceGenerateCmd)
}

func runInvoiceGenerate(cmd *cobra.Command, args []string) error {
	year, month, err := parseMonth(invoiceMonth, time.Now())
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app) error {
		inv, err := a.invoices.Generate(cmd.Context(), invoice.Request{Year: year, Month: month, Email: invoiceEmail})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printInvoice(w, inv)
		if invoiceXLSX != "" {
			if err := invoice.SaveXLSX(inv, invoiceXLSX); err != nil {
				return fmt.Errorf("writing %s: %w", invoiceXLSX, err)
			}
			fmt.Fprintf(w, "Workbook written to %s.\n", invoiceXLSX)
		}
		return nil
	})
}

func printInvoice(w io.Writer, inv model.Invoice) {
	fmt.Fprintf(w, "Invoice %s – %s (issued %s)\n", inv.Number, inv.MonthName, inv.Date)
	fmt.Fprintf(w, "%s → %s\n", inv.ProviderName, inv.ClientName)
	fmt.Fprintln(w, "------------------------------------")
	for _, l := range inv.Lines {
		fmt.Fprintf(w, "%s  %s–%s  %6s h\n", l.Date, l.StartTime, l.EndTime, timecalc.FormatHours(l.Hours))
	}
	fmt.Fprintln(w, "------------------------------------")
	fmt.Fprintf(w, "Total:  %s h × %s = %s\n",
		timecalc.FormatHours(inv.TotalHours), timecalc.FormatHours(inv.HourlyRate), timecalc.FormatHours(inv.TotalAmount))
	switch {
	case !inv.Dispatched:
		fmt.Fprintln(w, "Warning: webhook delivery failed; see the log. The number stays assigned.")
	case inv.RecipientEmail == "":
		fmt.Fprintln(w, "Sent to the webhook without a recipient email.")
	default:
		fmt.Fprintf(w, "Sent for delivery to %s.\n", inv.RecipientEmail)
	}
}
