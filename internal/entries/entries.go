// Package entries holds the direct operations on approved time entries:
// admin edits, month listings and the calendar view.
package entries

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/calendar"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

// Service wraps an EntryStore with validation.
type Service struct {
	Store     storage.EntryStore
	WeekStart calendar.WeekStart
	Logger    *log.Logger
}

func New(store storage.EntryStore, ws calendar.WeekStart, l *log.Logger) *Service {
	return &Service{Store: store, WeekStart: ws, Logger: l}
}

func (s *Service) log() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Get()
}

// ValidateMonth checks a year/month pair.
func ValidateMonth(year, month int) error {
	if year < 1970 || year > 9999 {
		return apperr.Validation("invalid year %d", year)
	}
	if month < 1 || month > 12 {
		return apperr.Validation("month must be between 1 and 12")
	}
	return nil
}

// List returns all approved entries ordered by date.
func (s *Service) List(ctx context.Context) ([]model.TimeEntry, error) {
	out, err := s.Store.ListEntries(ctx, storage.EntryFilter{Status: model.EntryApproved})
	if err != nil {
		return nil, apperr.Store("failed to list entries", err)
	}
	return out, nil
}

// Month returns the approved entries dated within month of year.
func (s *Service) Month(ctx context.Context, year, month int) ([]model.TimeEntry, error) {
	if err := ValidateMonth(year, month); err != nil {
		return nil, err
	}
	first, last := timecalc.MonthRange(year, time.Month(month))
	out, err := s.Store.ListEntries(ctx, storage.EntryFilter{
		Status: model.EntryApproved,
		From:   model.NewDay(first),
		To:     model.NewDay(last),
	})
	if err != nil {
		return nil, apperr.Store("failed to list entries", err)
	}
	return out, nil
}

// Range returns the approved entries between from and to inclusive.
func (s *Service) Range(ctx context.Context, from, to model.Day) ([]model.TimeEntry, error) {
	if to < from {
		return nil, apperr.Validation("range end %s is before start %s", to, from)
	}
	out, err := s.Store.ListEntries(ctx, storage.EntryFilter{Status: model.EntryApproved, From: from, To: to})
	if err != nil {
		return nil, apperr.Store("failed to list entries", err)
	}
	return out, nil
}

// Calendar builds the grid of month of year.
func (s *Service) Calendar(ctx context.Context, year, month int) (calendar.Month, error) {
	list, err := s.Month(ctx, year, month)
	if err != nil {
		return calendar.Month{}, err
	}
	return calendar.BuildMonth(year, time.Month(month), s.WeekStart, calendar.Index(list)), nil
}

// Upsert records the hours of date on behalf of by, replacing any entry of
// that day.
func (s *Service) Upsert(ctx context.Context, date, start, end string, by model.Role) (model.TimeEntry, error) {
	day, err := model.ParseDay(strings.TrimSpace(date))
	if err != nil {
		return model.TimeEntry{}, apperr.Validation("%v", err)
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return model.TimeEntry{}, apperr.Validation("start_time and end_time are required")
	}
	start, errStart := timecalc.NormalizeClock(start)
	end, errEnd := timecalc.NormalizeClock(end)
	if errStart != nil || errEnd != nil {
		return model.TimeEntry{}, apperr.Validation("times must be HH:MM")
	}
	if !by.Valid() {
		by = model.RoleAdmin
	}

	saved, err := s.Store.UpsertEntry(ctx, model.TimeEntry{
		Date:      day,
		StartTime: start,
		EndTime:   end,
		Status:    model.EntryApproved,
		CreatedBy: by,
	})
	if err != nil {
		return model.TimeEntry{}, apperr.Store("failed to save entry", err)
	}
	s.log().Info("entry saved", "date", day, "start", start, "end", end, "by", by)
	return saved, nil
}

// Delete removes the entry of date. Deleting a missing entry succeeds.
func (s *Service) Delete(ctx context.Context, date string) (model.Day, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", apperr.Validation("date is required")
	}
	day, err := model.ParseDay(date)
	if err != nil {
		return "", apperr.Validation("%v", err)
	}
	if err := s.Store.DeleteEntry(ctx, day); err != nil {
		return "", apperr.Store("failed to delete entry", err)
	}
	s.log().Info("entry deleted", "date", day)
	return day, nil
}

// Get returns the entry of date.
func (s *Service) Get(ctx context.Context, date string) (model.TimeEntry, error) {
	day, err := model.ParseDay(strings.TrimSpace(date))
	if err != nil {
		return model.TimeEntry{}, apperr.Validation("%v", err)
	}
	e, err := s.Store.GetEntry(ctx, day)
	if errors.Is(err, storage.ErrNotFound) {
		return model.TimeEntry{}, apperr.NotFound("no entry for %s", day)
	}
	if err != nil {
		return model.TimeEntry{}, apperr.Store("failed to load entry", err)
	}
	return e, nil
}
