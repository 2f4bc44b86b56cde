package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/auth"
	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/config"
	"github.com/Tiliavir/timesheet/internal/entries"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/notify"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/storage/filestore"
	"github.com/Tiliavir/timesheet/internal/storage/sqlstore"
	"github.com/Tiliavir/timesheet/internal/workflow"
)

// app bundles the services every command works through.
type app struct {
	store    storage.Store
	entries  *entries.Service
	workflow *workflow.Service
	invoices *invoice.Generator
	auth     *auth.Service
	backend  string
}

// openStore picks the backend from the DSN: postgres:// URLs and SQLite
// files go to the SQL store, anything else is a JSON directory.
func openStore(ctx context.Context, dsn string) (storage.Store, string, error) {
	switch {
	case sqlstore.IsPostgresDSN(dsn):
		s, err := sqlstore.OpenPostgres(ctx, dsn)
		return s, "postgres", err
	case sqlstore.IsSQLiteDSN(dsn):
		s, err := sqlstore.Open(ctx, dsn)
		return s, "sqlite", err
	}
	dir := dsn
	if dir == "" {
		def, err := filestore.DefaultDir()
		if err != nil {
			return nil, "", err
		}
		dir = def
	}
	s, err := filestore.Open(dir)
	return s, "files", err
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	store, backend, err := openStore(ctx, c.Storage.DSN)
	if err != nil {
		return nil, apperr.Store("opening storage", err)
	}

	ws, err := calendar.ParseWeekStart(c.Calendar.WeekStart)
	if err != nil {
		logger.Warn("falling back to monday", "err", err)
	}

	l := logger.Get()
	client := notify.HTTPClient(ctx, notify.Auth{
		BearerToken:  c.Webhook.BearerToken,
		ClientID:     c.Webhook.OAuth.ClientID,
		ClientSecret: c.Webhook.OAuth.ClientSecret,
		TokenURL:     c.Webhook.OAuth.TokenURL,
		Scopes:       c.Webhook.OAuth.Scopes,
	}, c.WebhookTimeout())

	return &app{
		store:    store,
		entries:  entries.New(store, ws, l),
		workflow: workflow.New(store, l),
		invoices: invoice.New(store, notify.New(c.Webhook.URL, client), invoice.Options{
			HourlyRate:   c.Invoice.HourlyRate,
			SeriesPrefix: c.Invoice.SeriesPrefix,
			ClientName:   c.Invoice.ClientName,
			ProviderName: c.Invoice.ProviderName,
			DefaultEmail: c.Invoice.DefaultEmail,
		}, l),
		auth:    auth.New(store, c.Server.JWTSecret, c.TokenTTL()),
		backend: backend,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the store for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("closing store", "err", cerr)
		}
	}()
	return fn(a)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	if !strings.Contains(dsn, "://") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}

func describeBackend(a *app, dsn string) string {
	if a.backend == "files" {
		if fs, ok := a.store.(*filestore.Store); ok {
			return fmt.Sprintf("files (%s)", fs.Dir())
		}
	}
	return fmt.Sprintf("%s (%s)", a.backend, redactDSN(dsn))
}
