package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

func (s *Store) GetSettings(_ context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Settings{ID: 1}
	if _, err := readJSON(s.path(settingsFile), &st); err != nil {
		return model.Settings{}, err
	}
	return st, nil
}

func (s *Store) SetInvoiceEmail(_ context.Context, email string) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Settings{ID: 1, InvoiceEmail: email, UpdatedAt: time.Now().UTC()}
	if err := writeJSON(s.path(settingsFile), st); err != nil {
		return model.Settings{}, err
	}
	return st, nil
}

func (s *Store) loadCounter() (model.InvoiceCounter, error) {
	c := model.InvoiceCounter{ID: 1}
	if _, err := readJSON(s.path(counterFile), &c); err != nil {
		return model.InvoiceCounter{}, err
	}
	return c, nil
}

func (s *Store) CurrentInvoiceNumber(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCounter()
	if err != nil {
		return 0, err
	}
	return c.CurrentNumber, nil
}

// IncrementInvoiceNumber reads, increments and rewrites the counter under the
// store mutex, so callers sharing this Store never receive the same number.
func (s *Store) IncrementInvoiceNumber(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCounter()
	if err != nil {
		return 0, err
	}
	c.CurrentNumber++
	c.UpdatedAt = time.Now().UTC()
	if err := writeJSON(s.path(counterFile), c); err != nil {
		return 0, err
	}
	return c.CurrentNumber, nil
}

func (s *Store) loadUsers() (map[string]model.User, error) {
	users := map[string]model.User{}
	if _, err := readJSON(s.path(usersFile), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) GetUser(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return model.User{}, err
	}
	u, ok := users[username]
	if !ok {
		return model.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	if _, exists := users[u.Username]; exists {
		return fmt.Errorf("user %q: %w", u.Username, storage.ErrExists)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	users[u.Username] = u
	return writeJSON(s.path(usersFile), users)
}

func (s *Store) UpdatePasswordHash(_ context.Context, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	u, ok := users[username]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = hash
	users[username] = u
	return writeJSON(s.path(usersFile), users)
}

var _ storage.Store = (*Store)(nil)
