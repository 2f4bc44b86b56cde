// Package storage defines the persistence contracts the timesheet core
// depends on. Backends live in the filestore and sqlstore subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
)

// ErrNotFound is returned by backends when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when creating a record whose key is taken.
var ErrExists = errors.New("already exists")

// ErrNotPending is returned by UpdateRequestStatus when the request has
// already been resolved.
var ErrNotPending = errors.New("request is not pending")

// EntryFilter narrows ListEntries. Zero fields do not filter.
type EntryFilter struct {
	Status model.EntryStatus
	From   model.Day
	To     model.Day
}

// Match reports whether e passes the filter.
func (f EntryFilter) Match(e model.TimeEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	return true
}

// EntryStore persists approved time entries keyed by date.
type EntryStore interface {
	// ListEntries returns matching entries ordered by date ascending.
	ListEntries(ctx context.Context, f EntryFilter) ([]model.TimeEntry, error)
	GetEntry(ctx context.Context, day model.Day) (model.TimeEntry, error)
	// UpsertEntry creates or replaces the entry of e.Date, keeping the
	// first CreatedAt on replace.
	UpsertEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error)
	// DeleteEntry removes the entry of day; a missing entry is not an error.
	DeleteEntry(ctx context.Context, day model.Day) error
}

// RequestStore persists modification requests.
type RequestStore interface {
	// ListRequests returns requests newest first, optionally filtered by status.
	ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.ModificationRequest, error)
	GetRequest(ctx context.Context, id string) (model.ModificationRequest, error)
	CreateRequest(ctx context.Context, r model.ModificationRequest) (model.ModificationRequest, error)
	// UpdateRequestStatus moves a pending request to status. It returns
	// ErrNotFound for an unknown id and ErrNotPending if the request was
	// already resolved.
	UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus, adminComment *string, at time.Time) (model.ModificationRequest, error)
}

// SettingsStore holds the settings singleton.
type SettingsStore interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SetInvoiceEmail(ctx context.Context, email string) (model.Settings, error)
}

// CounterStore holds the invoice counter singleton.
type CounterStore interface {
	CurrentInvoiceNumber(ctx context.Context) (int, error)
	// IncrementInvoiceNumber atomically adds one and returns the new value.
	// Concurrent callers never observe the same value.
	IncrementInvoiceNumber(ctx context.Context) (int, error)
}

// UserStore holds login identities.
type UserStore interface {
	GetUser(ctx context.Context, username string) (model.User, error)
	CreateUser(ctx context.Context, u model.User) error
	UpdatePasswordHash(ctx context.Context, username, hash string) error
}

// Store is a complete backend.
type Store interface {
	EntryStore
	RequestStore
	SettingsStore
	CounterStore
	UserStore
	Close() error
}

// Transactor is implemented by backends that can run several writes as one
// unit. fn receives a Store bound to the transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Store) error) error
}
