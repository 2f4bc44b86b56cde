package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/timesheet/internal/api"
	"github.com/Tiliavir/timesheet/internal/auth"
	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/entries"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage/filestore"
	"github.com/Tiliavir/timesheet/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type notifierFunc func(context.Context, model.Invoice) error

func (f notifierFunc) NotifyInvoice(ctx context.Context, inv model.Invoice) error { return f(ctx, inv) }

type harness struct {
	t      *testing.T
	router http.Handler
	admin  string
	client string
	sent   []model.Invoice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := logger.Discard()
	authSvc := auth.New(st, "api-test-secret", time.Hour)
	ctx := context.Background()
	if err := authSvc.AddUser(ctx, "admin", "admin123", model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := authSvc.AddUser(ctx, "client", "client123", model.RoleClient); err != nil {
		t.Fatal(err)
	}

	h := &harness{t: t}
	gen := invoice.New(st, notifierFunc(func(_ context.Context, inv model.Invoice) error {
		h.sent = append(h.sent, inv)
		return nil
	}), invoice.DefaultOptions(), l)

	srv := &api.Server{
		Settings: st,
		Auth:     authSvc,
		Entries:  entries.New(st, calendar.Monday, l),
		Workflow: workflow.New(st, l),
		Invoices: gen,
		Logger:   l,
	}
	h.router = srv.Router()
	h.admin = h.login("admin", "admin123")
	h.client = h.login("client", "client123")
	return h
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("%s %s: decoding %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func (h *harness) login(user, pass string) string {
	h.t.Helper()
	code, env := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": user, "password": pass})
	if code != http.StatusOK {
		h.t.Fatalf("login %s: %d %s", user, code, env.Error)
	}
	var sess auth.Session
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		h.t.Fatal(err)
	}
	return sess.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decoding %s: %v", raw, err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
}

func TestLoginFailure(t *testing.T) {
	h := newHarness(t)
	code, env := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	if code != http.StatusUnauthorized || env.Error == "" {
		t.Errorf("bad login = %d %+v", code, env)
	}
	code, _ = h.do(http.MethodPost, "/api/auth/login", "", nil)
	if code != http.StatusBadRequest {
		t.Errorf("empty body login = %d", code)
	}
}

func TestAuthenticationAndRoles(t *testing.T) {
	h := newHarness(t)
	entry := map[string]string{"date": "2025-03-03", "start_time": "09:00", "end_time": "17:00"}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/time-entries", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/time-entries", "not-a-token", nil, http.StatusUnauthorized},
		{"client lists entries", http.MethodGet, "/api/time-entries", h.client, nil, http.StatusOK},
		{"client cannot write entries", http.MethodPost, "/api/time-entries", h.client, entry, http.StatusForbidden},
		{"client cannot read settings", http.MethodGet, "/api/settings", h.client, nil, http.StatusForbidden},
		{"client cannot invoice", http.MethodPost, "/api/generate-invoice", h.client, map[string]int{"year": 2025, "month": 3}, http.StatusForbidden},
		{"client cannot resolve", http.MethodPatch, "/api/modification-requests", h.client, map[string]string{"id": "x", "status": "approved"}, http.StatusForbidden},
		{"admin cannot submit requests", http.MethodPost, "/api/modification-requests", h.admin, entry, http.StatusForbidden},
		{"admin writes entries", http.MethodPost, "/api/time-entries", h.admin, entry, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, env := h.do(tt.method, tt.path, tt.token, tt.body); code != tt.want {
				t.Errorf("%s %s = %d (%s), want %d", tt.method, tt.path, code, env.Error, tt.want)
			}
		})
	}
}

func TestEntryEndpoints(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodPost, "/api/time-entries", h.admin, map[string]string{"date": "2025-03-03", "start_time": "22:00", "end_time": "02:00"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("upsert = %d %s", code, env.Error)
	}
	saved := decode[model.TimeEntry](t, env.Data)
	if saved.CreatedBy != model.RoleAdmin || saved.Status != model.EntryApproved {
		t.Errorf("saved = %+v", saved)
	}

	code, env = h.do(http.MethodPost, "/api/time-entries", h.admin, map[string]string{"date": "2025-03-04", "start_time": "9", "end_time": "17:00"})
	if code != http.StatusBadRequest {
		t.Errorf("bad time = %d", code)
	}

	code, env = h.do(http.MethodGet, "/api/time-entries?year=2025&month=3", h.client, nil)
	if code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	if list := decode[[]model.TimeEntry](t, env.Data); len(list) != 1 {
		t.Errorf("list = %+v", list)
	}
	if code, _ := h.do(http.MethodGet, "/api/time-entries?year=2025", h.client, nil); code != http.StatusBadRequest {
		t.Errorf("year without month = %d", code)
	}

	code, env = h.do(http.MethodGet, "/api/calendar?year=2025&month=3", h.client, nil)
	if code != http.StatusOK {
		t.Fatalf("calendar = %d %s", code, env.Error)
	}
	m := decode[calendar.Month](t, env.Data)
	if m.Total != 4 || m.FirstWeekday != 5 {
		t.Errorf("calendar total=%v first=%d", m.Total, m.FirstWeekday)
	}
	if code, _ := h.do(http.MethodGet, "/api/calendar", h.client, nil); code != http.StatusBadRequest {
		t.Errorf("calendar without params = %d", code)
	}

	if code, env := h.do(http.MethodDelete, "/api/time-entries", h.admin, nil); code != http.StatusBadRequest || env.Error != "date is required" {
		t.Errorf("delete without date = %d %q", code, env.Error)
	}
	if code, _ := h.do(http.MethodDelete, "/api/time-entries?date=2025-03-03", h.admin, nil); code != http.StatusOK {
		t.Errorf("delete = %d", code)
	}
	_, env = h.do(http.MethodGet, "/api/time-entries", h.client, nil)
	if list := decode[[]model.TimeEntry](t, env.Data); len(list) != 0 {
		t.Errorf("after delete = %+v", list)
	}
}

func TestRequestLifecycleAndInvoice(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodPost, "/api/modification-requests", h.client, map[string]string{
		"date": "2025-03-10", "start_time": "09:00", "end_time": "17:30", "comment": "forgot",
	})
	if code != http.StatusOK {
		t.Fatalf("submit = %d %s", code, env.Error)
	}
	req := decode[model.ModificationRequest](t, env.Data)
	if req.Status != model.RequestPending || req.CreatedBy != model.RoleClient {
		t.Errorf("submitted = %+v", req)
	}

	code, env = h.do(http.MethodPost, "/api/generate-invoice", h.admin, map[string]int{"year": 2025, "month": 3})
	if code != http.StatusConflict {
		t.Errorf("invoice with pending = %d %s", code, env.Error)
	}

	code, env = h.do(http.MethodGet, "/api/modification-requests?status=pending", h.admin, nil)
	if list := decode[[]model.ModificationRequest](t, env.Data); code != http.StatusOK || len(list) != 1 {
		t.Errorf("pending list = %d %v", code, list)
	}
	if code, _ := h.do(http.MethodGet, "/api/modification-requests?status=bogus", h.admin, nil); code != http.StatusBadRequest {
		t.Errorf("bogus status filter = %d", code)
	}

	if code, _ := h.do(http.MethodPatch, "/api/modification-requests", h.admin, map[string]string{"id": req.ID, "status": "pending"}); code != http.StatusBadRequest {
		t.Errorf("resolve to pending = %d", code)
	}
	if code, _ := h.do(http.MethodPatch, "/api/modification-requests", h.admin, map[string]string{"id": "missing", "status": "approved"}); code != http.StatusNotFound {
		t.Errorf("resolve unknown = %d", code)
	}
	code, env = h.do(http.MethodPatch, "/api/modification-requests", h.admin, map[string]string{"id": req.ID, "status": "approved", "admin_comment": "ok"})
	if code != http.StatusOK {
		t.Fatalf("approve = %d %s", code, env.Error)
	}
	if code, _ := h.do(http.MethodPatch, "/api/modification-requests", h.admin, map[string]string{"id": req.ID, "status": "rejected"}); code != http.StatusConflict {
		t.Errorf("second resolve = %d", code)
	}

	_, env = h.do(http.MethodGet, "/api/time-entries?year=2025&month=3", h.client, nil)
	list := decode[[]model.TimeEntry](t, env.Data)
	if len(list) != 1 || list[0].Date != "2025-03-10" || list[0].CreatedBy != model.RoleClient {
		t.Fatalf("entries after approval = %+v", list)
	}

	code, env = h.do(http.MethodPost, "/api/generate-invoice", h.admin, map[string]any{"year": 2025, "month": 3, "email": "boss@example.com"})
	if code != http.StatusOK {
		t.Fatalf("invoice = %d %s", code, env.Error)
	}
	inv := decode[model.Invoice](t, env.Data)
	if inv.Number != "46-01" || inv.TotalHours != 8.5 || inv.TotalAmount != 127.5 || !inv.Dispatched {
		t.Errorf("invoice = %+v", inv)
	}
	if len(h.sent) != 1 || h.sent[0].RecipientEmail != "boss@example.com" {
		t.Errorf("sent = %+v", h.sent)
	}
	if code, _ := h.do(http.MethodPost, "/api/generate-invoice", h.admin, map[string]int{"year": 2025, "month": 13}); code != http.StatusBadRequest {
		t.Errorf("invoice month 13 = %d", code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	h := newHarness(t)

	if code, _ := h.do(http.MethodPatch, "/api/settings", h.admin, map[string]string{"invoice_email": "no-at-sign"}); code != http.StatusBadRequest {
		t.Errorf("invalid email = %d", code)
	}
	code, env := h.do(http.MethodPatch, "/api/settings", h.admin, map[string]string{"invoice_email": "billing@example.com"})
	if code != http.StatusOK {
		t.Fatalf("update = %d %s", code, env.Error)
	}
	_, env = h.do(http.MethodGet, "/api/settings", h.admin, nil)
	if st := decode[model.Settings](t, env.Data); st.InvoiceEmail != "billing@example.com" || st.ID != 1 {
		t.Errorf("settings = %+v", st)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	h := newHarness(t)

	if code, _ := h.do(http.MethodPost, "/api/auth/change-password", h.client, map[string]string{"current_password": "client123", "new_password": "123"}); code != http.StatusBadRequest {
		t.Errorf("short password = %d", code)
	}
	if code, _ := h.do(http.MethodPost, "/api/auth/change-password", h.client, map[string]string{"current_password": "wrong", "new_password": "123456"}); code != http.StatusUnauthorized {
		t.Errorf("wrong current = %d", code)
	}
	if code, env := h.do(http.MethodPost, "/api/auth/change-password", h.client, map[string]string{"current_password": "client123", "new_password": "123456"}); code != http.StatusOK {
		t.Fatalf("change = %d %s", code, env.Error)
	}
	h.login("client", "123456")
}
