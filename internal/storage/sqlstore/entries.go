package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

const entryColumns = "date, start_time, end_time, status, created_by, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (model.TimeEntry, error) {
	var e model.TimeEntry
	var date, status, createdBy string
	err := r.Scan(&date, &e.StartTime, &e.EndTime, &status, &createdBy,
		timeCol{&e.CreatedAt}, timeCol{&e.UpdatedAt})
	if err != nil {
		return model.TimeEntry{}, err
	}
	e.Date = model.Day(date)
	e.Status = model.EntryStatus(status)
	e.CreatedBy = model.Role(createdBy)
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, f storage.EntryFilter) ([]model.TimeEntry, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, string(f.From))
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, string(f.To))
	}
	q := "SELECT " + entryColumns + " FROM time_entries"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date ASC"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []model.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, day model.Day) (model.TimeEntry, error) {
	row := s.queryRow(ctx, "SELECT "+entryColumns+" FROM time_entries WHERE date = ?", string(day))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TimeEntry{}, storage.ErrNotFound
	}
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("failed to get entry %s: %w", day, err)
	}
	return e, nil
}

func (s *Store) UpsertEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	now := time.Now().UTC()
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
	}
	_, err := s.exec(ctx, `
		INSERT INTO time_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			status = excluded.status,
			created_by = excluded.created_by,
			updated_at = excluded.updated_at`,
		string(e.Date), e.StartTime, e.EndTime, string(e.Status), string(e.CreatedBy),
		s.dialect.ts(e.CreatedAt), s.dialect.ts(e.UpdatedAt))
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("failed to upsert entry %s: %w", e.Date, err)
	}
	return s.GetEntry(ctx, e.Date)
}

func (s *Store) DeleteEntry(ctx context.Context, day model.Day) error {
	if _, err := s.exec(ctx, "DELETE FROM time_entries WHERE date = ?", string(day)); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", day, err)
	}
	return nil
}
