// Package api exposes the timesheet over JSON HTTP for the admin and client
// web UIs.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/timesheet/internal/auth"
	"github.com/Tiliavir/timesheet/internal/entries"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/workflow"
)

// Server holds the services behind the routes.
type Server struct {
	Settings storage.SettingsStore
	Auth     *auth.Service
	Entries  *entries.Service
	Workflow *workflow.Service
	Invoices *invoice.Generator
	Logger   *log.Logger
}

func (s *Server) log() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Get()
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	apiGroup.POST("/auth/login", s.login)

	// Every other route needs a verified token.
	protected := apiGroup.Group("/", s.Authenticate())
	{
		protected.POST("/auth/change-password", s.changePassword)
		protected.GET("/time-entries", s.listEntries)
		protected.GET("/calendar", s.calendarMonth)
		protected.GET("/modification-requests", s.listRequests)
	}

	clientRoutes := protected.Group("/", RequireRole(model.RoleClient))
	{
		clientRoutes.POST("/modification-requests", s.submitRequest)
	}

	adminRoutes := protected.Group("/", RequireRole(model.RoleAdmin))
	{
		adminRoutes.POST("/time-entries", s.upsertEntry)
		adminRoutes.DELETE("/time-entries", s.deleteEntry)
		adminRoutes.PATCH("/modification-requests", s.resolveRequest)
		adminRoutes.GET("/settings", s.getSettings)
		adminRoutes.PATCH("/settings", s.updateSettings)
		adminRoutes.POST("/generate-invoice", s.generateInvoice)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
