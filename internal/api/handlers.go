package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/invoice"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/workflow"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var body loginBody
	if !s.bind(c, &body) {
		return
	}
	sess, err := s.Auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, sess)
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// changePassword always acts on the token's user.
func (s *Server) changePassword(c *gin.Context) {
	var body changePasswordBody
	if !s.bind(c, &body) {
		return
	}
	claims, _ := claimsFrom(c)
	if err := s.Auth.ChangePassword(c.Request.Context(), claims.Username, body.CurrentPassword, body.NewPassword); err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, gin.H{"message": "password updated"})
}

// monthQuery reads ?year=&month=. present is false when both are absent.
func monthQuery(c *gin.Context) (year, month int, present bool, err error) {
	ys, ms := c.Query("year"), c.Query("month")
	if ys == "" && ms == "" {
		return 0, 0, false, nil
	}
	year, yerr := strconv.Atoi(ys)
	month, merr := strconv.Atoi(ms)
	if yerr != nil || merr != nil {
		return 0, 0, true, apperr.Validation("year and month must both be numbers")
	}
	return year, month, true, nil
}

func (s *Server) listEntries(c *gin.Context) {
	ctx := c.Request.Context()
	year, month, present, err := monthQuery(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	var list []model.TimeEntry
	if present {
		list, err = s.Entries.Month(ctx, year, month)
	} else {
		list, err = s.Entries.List(ctx)
	}
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, list)
}

type entryBody struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s *Server) upsertEntry(c *gin.Context) {
	var body entryBody
	if !s.bind(c, &body) {
		return
	}
	e, err := s.Entries.Upsert(c.Request.Context(), body.Date, body.StartTime, body.EndTime, model.RoleAdmin)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, e)
}

func (s *Server) deleteEntry(c *gin.Context) {
	day, err := s.Entries.Delete(c.Request.Context(), c.Query("date"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, gin.H{"date": day})
}

func (s *Server) calendarMonth(c *gin.Context) {
	year, month, present, err := monthQuery(c)
	if err == nil && !present {
		err = apperr.Validation("year and month are required")
	}
	if err != nil {
		s.respondErr(c, err)
		return
	}
	m, err := s.Entries.Calendar(c.Request.Context(), year, month)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, m)
}

func (s *Server) listRequests(c *gin.Context) {
	var status *model.RequestStatus
	if q := strings.TrimSpace(c.Query("status")); q != "" {
		st := model.RequestStatus(q)
		status = &st
	}
	list, err := s.Workflow.List(c.Request.Context(), status)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, list)
}

type submitBody struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Comment   string `json:"comment"`
	Action    string `json:"action"`
}

func (s *Server) submitRequest(c *gin.Context) {
	var body submitBody
	if !s.bind(c, &body) {
		return
	}
	req, err := s.Workflow.Submit(c.Request.Context(), workflow.SubmitInput{
		Date:    body.Date,
		Start:   body.StartTime,
		End:     body.EndTime,
		Comment: body.Comment,
		Action:  model.RequestAction(strings.TrimSpace(body.Action)),
	})
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, req)
}

type resolveBody struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	AdminComment *string `json:"admin_comment"`
}

func (s *Server) resolveRequest(c *gin.Context) {
	var body resolveBody
	if !s.bind(c, &body) {
		return
	}
	req, err := s.Workflow.Resolve(c.Request.Context(), body.ID, model.RequestStatus(body.Status), body.AdminComment)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, req)
}

func (s *Server) getSettings(c *gin.Context) {
	st, err := s.Settings.GetSettings(c.Request.Context())
	if err != nil {
		s.respondErr(c, apperr.Store("failed to load settings", err))
		return
	}
	ok(c, st)
}

type settingsBody struct {
	InvoiceEmail string `json:"invoice_email"`
}

func (s *Server) updateSettings(c *gin.Context) {
	var body settingsBody
	if !s.bind(c, &body) {
		return
	}
	email := strings.TrimSpace(body.InvoiceEmail)
	if !invoice.ValidEmail(email) {
		s.respondErr(c, apperr.Validation("a valid email is required"))
		return
	}
	st, err := s.Settings.SetInvoiceEmail(c.Request.Context(), email)
	if err != nil {
		s.respondErr(c, apperr.Store("failed to save settings", err))
		return
	}
	s.log().Info("invoice email updated", "email", email)
	ok(c, st)
}

type invoiceBody struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Email string `json:"email"`
}

func (s *Server) generateInvoice(c *gin.Context) {
	var body invoiceBody
	if !s.bind(c, &body) {
		return
	}
	inv, err := s.Invoices.Generate(c.Request.Context(), invoice.Request{Year: body.Year, Month: body.Month, Email: body.Email})
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ok(c, inv)
}
