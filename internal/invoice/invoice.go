// Package invoice aggregates a month of approved entries into an invoice,
// numbers it from the shared counter and hands it to a notifier.
package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

// Notifier delivers a generated invoice.
type Notifier interface {
	NotifyInvoice(ctx context.Context, inv model.Invoice) error
}

// Options are the fixed commercial terms of an invoice.
type Options struct {
	HourlyRate   float64
	SeriesPrefix string
	ClientName   string
	ProviderName string
	// DefaultEmail is used when neither the request nor the settings name a
	// recipient.
	DefaultEmail string
}

// DefaultOptions returns the terms used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		HourlyRate:   15,
		SeriesPrefix: "46",
		ClientName:   "Olivier",
		ProviderName: "Maxence",
	}
}

// Request selects the month to invoice. Email overrides the configured
// recipient when set.
type Request struct {
	Year  int
	Month int
	Email string
}

// Generator builds invoices.
type Generator struct {
	Entries  storage.EntryStore
	Requests storage.RequestStore
	Settings storage.SettingsStore
	Counter  storage.CounterStore
	Notifier Notifier
	Options  Options
	Logger   *log.Logger
	Clock    func() time.Time
}

// New returns a Generator reading everything from store.
func New(store storage.Store, n Notifier, opts Options, l *log.Logger) *Generator {
	return &Generator{
		Entries:  store,
		Requests: store,
		Settings: store,
		Counter:  store,
		Notifier: n,
		Options:  opts,
		Logger:   l,
	}
}

func (g *Generator) log() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return logger.Get()
}

func (g *Generator) now() time.Time {
	if g.Clock != nil {
		return g.Clock()
	}
	return time.Now()
}

// Generate computes the invoice of req's month from approved entries,
// assigns it the next number and dispatches it. A dispatch failure is logged
// and reported through Invoice.Dispatched; it never fails the call.
func (g *Generator) Generate(ctx context.Context, req Request) (model.Invoice, error) {
	if req.Year < 1970 {
		return model.Invoice{}, apperr.Validation("year is required")
	}
	if req.Month < 1 || req.Month > 12 {
		return model.Invoice{}, apperr.Validation("month must be between 1 and 12")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !ValidEmail(email) {
		return model.Invoice{}, apperr.Validation("invalid email %q", email)
	}

	if g.Requests != nil {
		pending := model.RequestPending
		open, err := g.Requests.ListRequests(ctx, &pending)
		if err != nil {
			return model.Invoice{}, apperr.Store("failed to check pending requests", err)
		}
		if len(open) > 0 {
			return model.Invoice{}, apperr.Conflict("%d pending modification request(s) must be resolved before invoicing", len(open))
		}
	}

	month := time.Month(req.Month)
	first, last := timecalc.MonthRange(req.Year, month)
	entries, err := g.Entries.ListEntries(ctx, storage.EntryFilter{
		Status: model.EntryApproved,
		From:   model.NewDay(first),
		To:     model.NewDay(last),
	})
	if err != nil {
		return model.Invoice{}, apperr.Store("failed to load entries", err)
	}

	opts := g.options()
	inv := model.Invoice{
		Year:         req.Year,
		Month:        req.Month,
		MonthName:    MonthName(req.Year, month),
		Date:         g.now().Format(IssueDateLayout),
		Lines:        make([]model.InvoiceLine, 0, len(entries)),
		HourlyRate:   opts.HourlyRate,
		ClientName:   opts.ClientName,
		ProviderName: opts.ProviderName,
	}
	for _, e := range entries {
		h := timecalc.ComputeHours(e.StartTime, e.EndTime)
		inv.Lines = append(inv.Lines, model.InvoiceLine{
			Date:      e.Date,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Hours:     h,
		})
		inv.TotalHours += h
	}
	inv.TotalAmount = inv.TotalHours * opts.HourlyRate

	inv.Number = g.number(ctx, req.Year, req.Month, opts.SeriesPrefix)
	inv.RecipientEmail = g.recipient(ctx, email, opts.DefaultEmail)

	if g.Notifier != nil {
		if err := g.Notifier.NotifyInvoice(ctx, inv); err != nil {
			g.log().Warn("invoice dispatch failed", "number", inv.Number, "err", err)
		} else {
			inv.Dispatched = true
		}
	}

	g.log().Info("invoice generated",
		"number", inv.Number,
		"month", fmt.Sprintf("%04d-%02d", req.Year, req.Month),
		"entries", len(inv.Lines),
		"hours", timecalc.FormatHours(inv.TotalHours),
		"dispatched", inv.Dispatched)
	return inv, nil
}

func (g *Generator) options() Options {
	opts := g.Options
	def := DefaultOptions()
	if opts.HourlyRate <= 0 {
		opts.HourlyRate = def.HourlyRate
	}
	if opts.SeriesPrefix == "" {
		opts.SeriesPrefix = def.SeriesPrefix
	}
	if opts.ClientName == "" {
		opts.ClientName = def.ClientName
	}
	if opts.ProviderName == "" {
		opts.ProviderName = def.ProviderName
	}
	return opts
}

// number takes the next counter value. If the counter is unavailable the
// invoice is still issued with a year-month number.
func (g *Generator) number(ctx context.Context, year, month int, prefix string) string {
	if g.Counter != nil {
		n, err := g.Counter.IncrementInvoiceNumber(ctx)
		if err == nil {
			return FormatNumber(prefix, n)
		}
		g.log().Warn("invoice counter unavailable, using fallback number", "err", err)
	}
	return FallbackNumber(year, month)
}

// recipient resolves explicit, then stored, then default email.
func (g *Generator) recipient(ctx context.Context, explicit, def string) string {
	if explicit != "" {
		return explicit
	}
	if g.Settings != nil {
		st, err := g.Settings.GetSettings(ctx)
		if err != nil {
			g.log().Warn("cannot read settings for invoice email", "err", err)
		} else if st.InvoiceEmail != "" {
			return st.InvoiceEmail
		}
	}
	return def
}

// FormatNumber renders counter value n in the series: "46-07".
func FormatNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%02d", prefix, n)
}

// FallbackNumber is the year-month number used without a counter: "202503".
func FallbackNumber(year, month int) string {
	return fmt.Sprintf("%04d%02d", year, month)
}

// ValidEmail is the minimal check the settings and invoice forms apply.
func ValidEmail(s string) bool {
	return strings.Contains(s, "@")
}
