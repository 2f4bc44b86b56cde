package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/invoice"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsSetEmailCmd = &cobra.Command{
	Use:   "set-email <address>",
	Short: "Set the default invoice recipient",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetEmail,
}

func init() {
	settingsCmd.AddCommand(settingsSetEmailCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		st, err := a.store.GetSettings(cmd.Context())
		if err != nil {
			return apperr.Store("failed to read settings", err)
		}
		w := cmd.OutOrStdout()
		email := st.InvoiceEmail
		if email == "" {
			email = "(not set)"
		}
		fmt.Fprintf(w, "Invoice email: %s\n", email)
		if !st.UpdatedAt.IsZero() {
			fmt.Fprintf(w, "Updated:       %s\n", st.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	})
}

func runSettingsSetEmail(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])
	if !invoice.ValidEmail(email) {
		return apperr.Validation("invalid email %q", email)
	}
	return withApp(cmd.Context(), func(a *app) error {
		st, err := a.store.SetInvoiceEmail(cmd.Context(), email)
		if err != nil {
			return apperr.Store("failed to save settings", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice email set to %s.\n", st.InvoiceEmail)
		return nil
	})
}
