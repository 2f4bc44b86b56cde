package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

const requestColumns = "id, date, start_time, end_time, action, comment, status, created_by, admin_comment, created_at, updated_at"

func scanRequest(r rowScanner) (model.ModificationRequest, error) {
	var m model.ModificationRequest
	var date, action, status, createdBy string
	var comment, adminComment sql.NullString
	err := r.Scan(&m.ID, &date, &m.StartTime, &m.EndTime, &action, &comment,
		&status, &createdBy, &adminComment, timeCol{&m.CreatedAt}, timeCol{&m.UpdatedAt})
	if err != nil {
		return model.ModificationRequest{}, err
	}
	m.Date = model.Day(date)
	m.Action = model.RequestAction(action)
	m.Comment = stringPtr(comment)
	m.Status = model.RequestStatus(status)
	m.CreatedBy = model.Role(createdBy)
	m.AdminComment = stringPtr(adminComment)
	return m, nil
}

func (s *Store) ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.ModificationRequest, error) {
	q := "SELECT " + requestColumns + " FROM modification_requests"
	var args []any
	if status != nil {
		q += " WHERE status = ?"
		args = append(args, string(*status))
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	out := []model.ModificationRequest{}
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetRequest(ctx context.Context, id string) (model.ModificationRequest, error) {
	row := s.queryRow(ctx, "SELECT "+requestColumns+" FROM modification_requests WHERE id = ?", id)
	m, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ModificationRequest{}, storage.ErrNotFound
	}
	if err != nil {
		return model.ModificationRequest{}, fmt.Errorf("failed to get request %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) CreateRequest(ctx context.Context, r model.ModificationRequest) (model.ModificationRequest, error) {
	_, err := s.exec(ctx, `
		INSERT INTO modification_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Date), r.StartTime, r.EndTime, string(r.Action), nullString(r.Comment),
		string(r.Status), string(r.CreatedBy), nullString(r.AdminComment),
		s.dialect.ts(r.CreatedAt), s.dialect.ts(r.UpdatedAt))
	if err != nil {
		return model.ModificationRequest{}, fmt.Errorf("failed to create request: %w", err)
	}
	return r, nil
}

// UpdateRequestStatus only touches rows still pending, so of two concurrent
// resolutions exactly one succeeds.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus, adminComment *string, at time.Time) (model.ModificationRequest, error) {
	res, err := s.exec(ctx, `
		UPDATE modification_requests
		SET status = ?, admin_comment = COALESCE(?, admin_comment), updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), nullString(adminComment), s.dialect.ts(at), id)
	if err != nil {
		return model.ModificationRequest{}, fmt.Errorf("failed to update request %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ModificationRequest{}, fmt.Errorf("failed to update request %s: %w", id, err)
	}

	current, err := s.GetRequest(ctx, id)
	if err != nil {
		return model.ModificationRequest{}, err
	}
	if n == 0 {
		return current, storage.ErrNotPending
	}
	return current, nil
}
