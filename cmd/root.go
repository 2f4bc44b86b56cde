package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/config"
	"github.com/Tiliavir/timesheet/internal/logger"
)

var (
	configPath string
	debugLog   bool

	// cfg is loaded once before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Timesheet – shared hours tracking, approvals and invoicing",
	Long: `timesheet records the hours worked for one client, lets the client
propose changes that an admin approves or rejects, and turns an approved
month into a numbered invoice.

Run "timesheet serve" for the HTTP API; the other commands act directly on
the configured store (~/.timesheet by default).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(apperr.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.timesheet/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging to stderr")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Validation("%v", err)
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(hoursCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

// setup loads the configuration and the logger. A broken config file is
// reported but the built-in defaults are still used.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	if err := logger.Init(logger.Config{
		Debug:  debugLog,
		Dir:    cfg.Dir(),
		Stderr: cmd == serveCmd,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: file logging disabled:", err)
		_ = logger.Init(logger.Config{Debug: debugLog})
	}
	logger.Debug("config loaded", "path", cfg.Path(), "dsn", redactDSN(cfg.Storage.DSN))
	return nil
}
