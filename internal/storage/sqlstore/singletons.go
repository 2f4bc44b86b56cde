package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

// maxCounterAttempts bounds the compare-and-swap loop of
// IncrementInvoiceNumber.
const maxCounterAttempts = 100

func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	st := model.Settings{}
	err := s.queryRow(ctx, "SELECT id, invoice_email, updated_at FROM settings WHERE id = 1").
		Scan(&st.ID, &st.InvoiceEmail, timeCol{&st.UpdatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{ID: 1}, nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return st, nil
}

func (s *Store) SetInvoiceEmail(ctx context.Context, email string) (model.Settings, error) {
	now := time.Now().UTC()
	_, err := s.exec(ctx, `
		INSERT INTO settings (id, invoice_email, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET invoice_email = excluded.invoice_email, updated_at = excluded.updated_at`,
		email, s.dialect.ts(now))
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return s.GetSettings(ctx)
}

func (s *Store) CurrentInvoiceNumber(ctx context.Context) (int, error) {
	var n int
	err := s.queryRow(ctx, "SELECT current_number FROM invoice_counter WHERE id = 1").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read invoice counter: %w", err)
	}
	return n, nil
}

// IncrementInvoiceNumber reads the counter and swaps in the next value only
// if nobody changed it in between, retrying otherwise.
func (s *Store) IncrementInvoiceNumber(ctx context.Context) (int, error) {
	for attempt := 0; attempt < maxCounterAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		cur, err := s.CurrentInvoiceNumber(ctx)
		if err != nil {
			return 0, err
		}
		res, err := s.exec(ctx,
			"UPDATE invoice_counter SET current_number = ?, updated_at = ? WHERE id = 1 AND current_number = ?",
			cur+1, s.dialect.ts(time.Now()), cur)
		if err != nil {
			return 0, fmt.Errorf("failed to increment invoice counter: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to increment invoice counter: %w", err)
		}
		if n == 1 {
			return cur + 1, nil
		}
	}
	return 0, fmt.Errorf("invoice counter still contended after %d attempts", maxCounterAttempts)
}

func (s *Store) GetUser(ctx context.Context, username string) (model.User, error) {
	var u model.User
	var role string
	err := s.queryRow(ctx, "SELECT username, password_hash, role, created_at FROM users WHERE username = ?", username).
		Scan(&u.Username, &u.PasswordHash, &role, timeCol{&u.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, storage.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	u.Role = model.Role(role)
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		u.Username, u.PasswordHash, string(u.Role), s.dialect.ts(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, storage.ErrExists)
		}
		return fmt.Errorf("failed to create user %q: %w", u.Username, err)
	}
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	res, err := s.exec(ctx, "UPDATE users SET password_hash = ? WHERE username = ?", hash, username)
	if err != nil {
		return fmt.Errorf("failed to update password of %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password of %q: %w", username, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises duplicate-key errors of both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
