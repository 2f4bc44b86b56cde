// Package workflow runs the modification-request lifecycle: clients submit
// proposals, admins approve or reject them, and an approval is applied to
// the time entry of the request's date.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/logger"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

// Service resolves modification requests against the entry store.
//
// When Requests also implements storage.Transactor, an approval runs in one
// transaction and the transaction-bound store serves both entries and
// requests. Otherwise the entry is changed first and the request flipped
// second, so an interrupted approval leaves the request pending and can be
// retried.
type Service struct {
	Entries  storage.EntryStore
	Requests storage.RequestStore
	Logger   *log.Logger
	Clock    func() time.Time
	NewID    func() string
}

// New returns a Service backed by a single store.
func New(store storage.Store, l *log.Logger) *Service {
	return &Service{Entries: store, Requests: store, Logger: l}
}

// SubmitInput is a client proposal.
type SubmitInput struct {
	Date    string
	Start   string
	End     string
	Comment string
	Action  model.RequestAction
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Get()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Submit records a pending request on behalf of the client. A request
// without an action whose comment is the legacy deletion sentinel becomes a
// deletion request.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (model.ModificationRequest, error) {
	day, err := model.ParseDay(strings.TrimSpace(in.Date))
	if err != nil {
		return model.ModificationRequest{}, apperr.Validation("%v", err)
	}

	comment := strings.TrimSpace(in.Comment)
	action := in.Action
	if action == "" {
		action = model.ActionModify
		if comment == model.DeletionSentinel {
			action = model.ActionDelete
		}
	}
	if !action.Valid() {
		return model.ModificationRequest{}, apperr.Validation("invalid action %q (want modify or delete)", in.Action)
	}

	start, end := strings.TrimSpace(in.Start), strings.TrimSpace(in.End)
	if action == model.ActionModify && (start == "" || end == "") {
		return model.ModificationRequest{}, apperr.Validation("start and end times are required")
	}
	// Delete requests may omit times; any time given is still checked.
	if start, err = normalizeOptional(start); err != nil {
		return model.ModificationRequest{}, apperr.Validation("times must be HH:MM")
	}
	if end, err = normalizeOptional(end); err != nil {
		return model.ModificationRequest{}, apperr.Validation("times must be HH:MM")
	}

	now := s.now()
	req := model.ModificationRequest{
		ID:        s.newID(),
		Date:      day,
		StartTime: start,
		EndTime:   end,
		Action:    action,
		Status:    model.RequestPending,
		CreatedBy: model.RoleClient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if comment != "" {
		req.Comment = &comment
	}

	created, err := s.Requests.CreateRequest(ctx, req)
	if err != nil {
		return model.ModificationRequest{}, apperr.Store("failed to save request", err)
	}
	s.log().Info("modification request submitted", "id", created.ID, "date", created.Date, "action", created.Action)
	return created, nil
}

func normalizeOptional(clock string) (string, error) {
	if clock == "" {
		return "", nil
	}
	return timecalc.NormalizeClock(clock)
}

// List returns requests newest first, optionally only those in status.
func (s *Service) List(ctx context.Context, status *model.RequestStatus) ([]model.ModificationRequest, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation("invalid status %q", *status)
	}
	reqs, err := s.Requests.ListRequests(ctx, status)
	if err != nil {
		return nil, apperr.Store("failed to list requests", err)
	}
	return reqs, nil
}

// ListPending returns the pending requests newest first.
func (s *Service) ListPending(ctx context.Context) ([]model.ModificationRequest, error) {
	pending := model.RequestPending
	return s.List(ctx, &pending)
}

// HasPending reports whether any request still awaits a decision.
func (s *Service) HasPending(ctx context.Context) (bool, error) {
	reqs, err := s.ListPending(ctx)
	if err != nil {
		return false, err
	}
	return len(reqs) > 0, nil
}

// Resolve approves or rejects a pending request. Approving applies it to the
// entry of its date; rejecting leaves entries untouched. A request resolves
// exactly once.
func (s *Service) Resolve(ctx context.Context, id string, status model.RequestStatus, adminComment *string) (model.ModificationRequest, error) {
	if status != model.RequestApproved && status != model.RequestRejected {
		return model.ModificationRequest{}, apperr.Validation("status must be approved or rejected")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.ModificationRequest{}, apperr.Validation("id is required")
	}
	if adminComment != nil {
		c := strings.TrimSpace(*adminComment)
		adminComment = &c
		if c == "" {
			adminComment = nil
		}
	}

	req, err := s.Requests.GetRequest(ctx, id)
	if err != nil {
		return model.ModificationRequest{}, mapStoreErr(id, err)
	}
	if req.Status != model.RequestPending {
		return model.ModificationRequest{}, apperr.Conflict("request %s is already %s", id, req.Status)
	}

	var resolved model.ModificationRequest
	at := s.now()
	if status == model.RequestRejected {
		resolved, err = s.Requests.UpdateRequestStatus(ctx, id, status, adminComment, at)
		if err != nil {
			return model.ModificationRequest{}, mapStoreErr(id, err)
		}
	} else {
		resolved, err = s.approve(ctx, req, adminComment, at)
		if err != nil {
			return model.ModificationRequest{}, err
		}
	}

	s.log().Info("modification request resolved", "id", id, "status", status, "date", req.Date, "action", req.Action)
	return resolved, nil
}

func (s *Service) approve(ctx context.Context, req model.ModificationRequest, adminComment *string, at time.Time) (model.ModificationRequest, error) {
	if tr, ok := s.Requests.(storage.Transactor); ok {
		var resolved model.ModificationRequest
		err := tr.InTx(ctx, func(tx storage.Store) error {
			var err error
			resolved, err = tx.UpdateRequestStatus(ctx, req.ID, model.RequestApproved, adminComment, at)
			if err != nil {
				return mapStoreErr(req.ID, err)
			}
			return applyToEntry(ctx, tx, req, at)
		})
		if err != nil {
			return model.ModificationRequest{}, err
		}
		return resolved, nil
	}

	if err := applyToEntry(ctx, s.Entries, req, at); err != nil {
		return model.ModificationRequest{}, err
	}
	resolved, err := s.Requests.UpdateRequestStatus(ctx, req.ID, model.RequestApproved, adminComment, at)
	if err != nil {
		return model.ModificationRequest{}, mapStoreErr(req.ID, err)
	}
	return resolved, nil
}

// applyToEntry deletes or upserts the entry of req.Date. Both are
// idempotent.
func applyToEntry(ctx context.Context, entries storage.EntryStore, req model.ModificationRequest, at time.Time) error {
	if req.IsDeletion() {
		if err := entries.DeleteEntry(ctx, req.Date); err != nil {
			return apperr.Store("failed to delete entry", err)
		}
		return nil
	}
	_, err := entries.UpsertEntry(ctx, model.TimeEntry{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.EntryApproved,
		CreatedBy: model.RoleClient,
		UpdatedAt: at,
	})
	if err != nil {
		return apperr.Store("failed to save entry", err)
	}
	return nil
}

func mapStoreErr(id string, err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("request %s not found", id)
	case errors.Is(err, storage.ErrNotPending):
		return apperr.Conflict("request %s is no longer pending", id)
	}
	return apperr.Store("failed to update request", err)
}
