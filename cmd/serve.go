package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/api"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
)

// Seed credentials read by serve. Each account is created only if missing.
const (
	envAdminPassword  = "TIMESHEET_ADMIN_PASSWORD"
	envClientPassword = "TIMESHEET_CLIENT_PASSWORD"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the JSON API used by the web UI until interrupted.

If TIMESHEET_ADMIN_PASSWORD or TIMESHEET_CLIENT_PASSWORD is set, the "admin"
and "client" accounts are created with that password when they do not exist
yet. Use "timesheet user add" for any other account.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !debugLog {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.EphemeralSecret() {
		logger.Warn("no jwt_secret configured; sessions will not survive a restart")
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	return withApp(ctx, func(a *app) error {
		if err := seedUsers(ctx, a); err != nil {
			return err
		}
		logger.Info("storage ready", "backend", describeBackend(a, cfg.Storage.DSN))

		srv := &api.Server{
			Settings: a.store,
			Auth:     a.auth,
			Entries:  a.entries,
			Workflow: a.workflow,
			Invoices: a.invoices,
			Logger:   logger.Get(),
		}
		return srv.ListenAndServe(ctx, addr)
	})
}

func seedUsers(ctx context.Context, a *app) error {
	seeds := []struct {
		env      string
		username string
		role     model.Role
	}{
		{envAdminPassword, "admin", model.RoleAdmin},
		{envClientPassword, "client", model.RoleClient},
	}
	for _, s := range seeds {
		pw := os.Getenv(s.env)
		if pw == "" {
			continue
		}
		created, err := a.auth.EnsureUser(ctx, s.username, pw, s.role)
		if err != nil {
			return err
		}
		if created {
			logger.Info("seeded user", "username", s.username, "role", s.role)
		}
	}
	return nil
}
