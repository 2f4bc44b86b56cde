// Package auth authenticates users against the user store and issues the
// signed session tokens every API route verifies.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Service logs users in and verifies their tokens.
type Service struct {
	Users  storage.UserStore
	Secret []byte
	TTL    time.Duration
	Clock  func() time.Time
}

// New returns a Service signing with secret.
func New(users storage.UserStore, secret string, ttl time.Duration) *Service {
	return &Service{Users: users, Secret: []byte(secret), TTL: ttl}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Login checks credentials and issues a token. Unknown users and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, apperr.Validation("username and password are required")
	}

	u, err := s.Users.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, apperr.Auth("invalid credentials")
	}
	if err != nil {
		return Session{}, apperr.Store("failed to load user", err)
	}
	if !CheckPassword(password, u.PasswordHash) {
		return Session{}, apperr.Auth("invalid credentials")
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	token, expires, err := signToken(s.Secret, u.Username, u.Role, s.now(), ttl)
	if err != nil {
		return Session{}, apperr.Store("failed to sign token", err)
	}
	return Session{Token: token, Username: u.Username, Role: u.Role, ExpiresAt: expires.UTC()}, nil
}

// Verify validates a token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Auth("missing token")
	}
	claims, err := parseToken(s.Secret, token, s.Clock)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindAuth, Msg: "invalid or expired token", Err: err}
	}
	return claims, nil
}

// ChangePassword replaces the password of username after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if strings.TrimSpace(username) == "" || current == "" || next == "" {
		return apperr.Validation("username, current password and new password are required")
	}
	if len(next) < MinPasswordLength {
		return apperr.Validation("new password must be at least %d characters", MinPasswordLength)
	}

	u, err := s.Users.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("user %q not found", username)
	}
	if err != nil {
		return apperr.Store("failed to load user", err)
	}
	if !CheckPassword(current, u.PasswordHash) {
		return apperr.Auth("current password is incorrect")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return apperr.Store("failed to hash password", err)
	}
	if err := s.Users.UpdatePasswordHash(ctx, username, hash); err != nil {
		return apperr.Store("failed to update password", err)
	}
	return nil
}

// ResetPassword sets a new password for username without checking the old
// one. It is reserved for operators with direct store access.
func (s *Service) ResetPassword(ctx context.Context, username, next string) error {
	if strings.TrimSpace(username) == "" {
		return apperr.Validation("username is required")
	}
	if len(next) < MinPasswordLength {
		return apperr.Validation("new password must be at least %d characters", MinPasswordLength)
	}
	hash, err := HashPassword(next)
	if err != nil {
		return apperr.Store("failed to hash password", err)
	}
	err = s.Users.UpdatePasswordHash(ctx, username, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("user %q not found", username)
	}
	if err != nil {
		return apperr.Store("failed to update password", err)
	}
	return nil
}

// AddUser creates a user with a freshly hashed password.
func (s *Service) AddUser(ctx context.Context, username, password string, role model.Role) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.Validation("username is required")
	}
	if !role.Valid() {
		return apperr.Validation("invalid role %q (want admin or client)", role)
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return apperr.Store("failed to hash password", err)
	}
	err = s.Users.CreateUser(ctx, model.User{Username: username, PasswordHash: hash, Role: role})
	if errors.Is(err, storage.ErrExists) {
		return apperr.Conflict("user %q already exists", username)
	}
	if err != nil {
		return apperr.Store("failed to create user", err)
	}
	return nil
}

// EnsureUser creates the user unless it exists. It reports whether a user
// was created.
func (s *Service) EnsureUser(ctx context.Context, username, password string, role model.Role) (bool, error) {
	_, err := s.Users.GetUser(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, apperr.Store("failed to load user", err)
	}
	if err := s.AddUser(ctx, username, password, role); err != nil {
		return false, err
	}
	return true, nil
}
