// Package notify dispatches generated invoices to an external webhook
// (an n8n workflow in production) that renders and mails the document.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

// DefaultURL is used when no webhook URL is configured.
const DefaultURL = "https://n8n.garagesync.io/webhook/generate-invoice"

// DefaultTimeout bounds a single dispatch.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

// Webhook posts JSON payloads to URL.
type Webhook struct {
	URL  string
	HTTP *http.Client
}

// New returns a Webhook for url using client. A nil client gets a plain
// http.Client with DefaultTimeout.
func New(url string, client *http.Client) *Webhook {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Webhook{URL: url, HTTP: client}
}

// Send posts payload as JSON. Any non-2xx response is an error. There are no
// retries.
func (w *Webhook) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := w.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook error %d: %s", resp.StatusCode, string(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NotifyInvoice sends inv in the webhook's payload format.
func (w *Webhook) NotifyInvoice(ctx context.Context, inv model.Invoice) error {
	return w.Send(ctx, NewInvoicePayload(inv))
}

// InvoiceEntry is one line of the webhook payload.
type InvoiceEntry struct {
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Hours     float64 `json:"hours"`
}

// InvoicePayload is the document the webhook expects. Totals are
// pre-formatted with two decimals; per-line hours stay numeric.
type InvoicePayload struct {
	InvoiceNumber  string         `json:"invoiceNumber"`
	Year           int            `json:"year"`
	Month          int            `json:"month"`
	MonthName      string         `json:"monthName"`
	Date           string         `json:"date"`
	Entries        []InvoiceEntry `json:"entries"`
	TotalHours     string         `json:"totalHours"`
	HourlyRate     float64        `json:"hourlyRate"`
	TotalAmount    string         `json:"totalAmount"`
	ClientName     string         `json:"clientName"`
	ProviderName   string         `json:"providerName"`
	RecipientEmail string         `json:"recipientEmail"`
}

// NewInvoicePayload converts inv for the webhook.
func NewInvoicePayload(inv model.Invoice) InvoicePayload {
	entries := make([]InvoiceEntry, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		entries = append(entries, InvoiceEntry{
			Date:      l.Date.String(),
			StartTime: l.StartTime,
			EndTime:   l.EndTime,
			Hours:     l.Hours,
		})
	}
	return InvoicePayload{
		InvoiceNumber:  inv.Number,
		Year:           inv.Year,
		Month:          inv.Month,
		MonthName:      inv.MonthName,
		Date:           inv.Date,
		Entries:        entries,
		TotalHours:     timecalc.FormatHours(inv.TotalHours),
		HourlyRate:     inv.HourlyRate,
		TotalAmount:    strconv.FormatFloat(inv.TotalAmount, 'f', 2, 64),
		ClientName:     inv.ClientName,
		ProviderName:   inv.ProviderName,
		RecipientEmail: inv.RecipientEmail,
	}
}
