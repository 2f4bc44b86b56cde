package sqlstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/storage/sqlstore"
)

// backends returns a fresh SQLite store and, when TIMESHEET_TEST_POSTGRES_DSN
// is set, a PostgreSQL store.
func backends(t *testing.T) map[string]*sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	out := map[string]*sqlstore.Store{}

	lite, err := sqlstore.OpenSQLite(ctx, filepath.Join(t.TempDir(), "timesheet.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { lite.Close() })
	out["sqlite"] = lite

	if dsn := os.Getenv("TIMESHEET_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := sqlstore.OpenPostgres(ctx, dsn)
		if err != nil {
			t.Fatalf("OpenPostgres: %v", err)
		}
		resetPostgres(t, pg)
		t.Cleanup(func() { pg.Close() })
		out["postgres"] = pg
	}
	return out
}

func resetPostgres(t *testing.T, s *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()
	err := s.InTx(ctx, func(tx storage.Store) error {
		entries, err := tx.ListEntries(ctx, storage.EntryFilter{})
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := tx.DeleteEntry(ctx, e.Date); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "timesheet.db")

	s, err := sqlstore.Open(ctx, "sqlite:"+path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if s.Dialect() != sqlstore.SQLite {
		t.Errorf("Dialect = %q, want sqlite", s.Dialect())
	}
	if _, err := s.UpsertEntry(ctx, model.TimeEntry{Date: "2025-01-02", StartTime: "09:00", EndTime: "17:00", Status: model.EntryApproved, CreatedBy: model.RoleAdmin}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = sqlstore.Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s.Close()
	if _, err := s.GetEntry(ctx, "2025-01-02"); err != nil {
		t.Errorf("entry lost across reopen: %v", err)
	}
}

func TestDSNDetection(t *testing.T) {
	tests := []struct {
		dsn      string
		postgres bool
		sqlite   bool
	}{
		{"postgres://u@localhost/db", true, false},
		{"postgresql://u@localhost/db", true, false},
		{"sqlite:/tmp/x", false, true},
		{"/var/lib/timesheet.db", false, true},
		{"/home/me/.timesheet", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := sqlstore.IsPostgresDSN(tt.dsn); got != tt.postgres {
			t.Errorf("IsPostgresDSN(%q) = %v, want %v", tt.dsn, got, tt.postgres)
		}
		if got := sqlstore.IsSQLiteDSN(tt.dsn); got != tt.sqlite {
			t.Errorf("IsSQLiteDSN(%q) = %v, want %v", tt.dsn, got, tt.sqlite)
		}
	}
}

func TestEntries(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, d := range []model.Day{"2025-03-02", "2025-02-28", "2025-03-01"} {
				e := model.TimeEntry{Date: d, StartTime: "09:00", EndTime: "17:00", Status: model.EntryApproved, CreatedBy: model.RoleAdmin}
				if _, err := s.UpsertEntry(ctx, e); err != nil {
					t.Fatalf("UpsertEntry: %v", err)
				}
			}

			first, err := s.GetEntry(ctx, "2025-03-01")
			if err != nil {
				t.Fatal(err)
			}
			updated, err := s.UpsertEntry(ctx, model.TimeEntry{Date: "2025-03-01", StartTime: "22:00", EndTime: "02:00", Status: model.EntryApproved, CreatedBy: model.RoleClient})
			if err != nil {
				t.Fatal(err)
			}
			if updated.StartTime != "22:00" || updated.CreatedBy != model.RoleClient {
				t.Errorf("updated = %+v", updated)
			}
			if !updated.CreatedAt.Equal(first.CreatedAt) {
				t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, updated.CreatedAt)
			}

			march, err := s.ListEntries(ctx, storage.EntryFilter{Status: model.EntryApproved, From: "2025-03-01", To: "2025-03-31"})
			if err != nil {
				t.Fatal(err)
			}
			if len(march) != 2 || march[0].Date != "2025-03-01" || march[1].Date != "2025-03-02" {
				t.Errorf("march = %+v", march)
			}

			if err := s.DeleteEntry(ctx, "2025-03-01"); err != nil {
				t.Fatal(err)
			}
			if err := s.DeleteEntry(ctx, "2025-03-01"); err != nil {
				t.Errorf("second DeleteEntry: %v", err)
			}
			if _, err := s.GetEntry(ctx, "2025-03-01"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("GetEntry after delete err = %v", err)
			}
		})
	}
}

func TestRequestsConditionalResolve(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
			comment := "forgot to clock out"
			idA, idB := uuid.NewString(), uuid.NewString()

			for i, id := range []string{idA, idB} {
				_, err := s.CreateRequest(ctx, model.ModificationRequest{
					ID: id, Date: "2025-03-10", StartTime: "09:00", EndTime: "18:00",
					Action: model.ActionModify, Comment: &comment, Status: model.RequestPending,
					CreatedBy: model.RoleClient, CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base,
				})
				if err != nil {
					t.Fatalf("CreateRequest: %v", err)
				}
			}

			got, err := s.GetRequest(ctx, idA)
			if err != nil {
				t.Fatal(err)
			}
			if got.Comment == nil || *got.Comment != comment || got.AdminComment != nil {
				t.Errorf("GetRequest = %+v", got)
			}

			var wg sync.WaitGroup
			var mu sync.Mutex
			wins := 0
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.UpdateRequestStatus(ctx, idA, model.RequestApproved, nil, base)
					if err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					} else if !errors.Is(err, storage.ErrNotPending) {
						t.Errorf("UpdateRequestStatus: %v", err)
					}
				}()
			}
			wg.Wait()
			if wins != 1 {
				t.Errorf("successful resolutions = %d, want 1", wins)
			}

			if _, err := s.UpdateRequestStatus(ctx, "missing", model.RequestRejected, nil, base); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("unknown id err = %v", err)
			}

			pending := model.RequestPending
			list, err := s.ListRequests(ctx, &pending)
			if err != nil {
				t.Fatal(err)
			}
			found := false
			for _, r := range list {
				if r.ID == idA {
					t.Errorf("resolved request still listed as pending")
				}
				if r.ID == idB {
					found = true
				}
			}
			if !found {
				t.Errorf("pending request missing from list")
			}
		})
	}
}

func TestRequestsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := backends(t)["sqlite"]
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		_, err := s.CreateRequest(ctx, model.ModificationRequest{
			ID: id, Date: "2025-03-10", Action: model.ActionDelete, Status: model.RequestPending,
			CreatedBy: model.RoleClient, CreatedAt: base.Add(time.Duration(i) * time.Hour), UpdatedAt: base,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListRequests(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "new" || list[2].ID != "old" {
		t.Errorf("order = %v", list)
	}
}

func TestRequestsNewestFirstWithinSecond(t *testing.T) {
	ctx := context.Background()
	s := backends(t)["sqlite"]
	base := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	for _, r := range []struct {
		id string
		at time.Time
	}{
		{"whole-second", base},
		{"half-second", base.Add(500 * time.Millisecond)},
	} {
		_, err := s.CreateRequest(ctx, model.ModificationRequest{
			ID: r.id, Date: "2025-03-10", Action: model.ActionDelete, Status: model.RequestPending,
			CreatedBy: model.RoleClient, CreatedAt: r.at, UpdatedAt: r.at,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListRequests(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "half-second" {
		t.Errorf("order = %v, want half-second first", list)
	}
}

func TestCounterConcurrentIncrement(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start, err := s.CurrentInvoiceNumber(ctx)
			if err != nil {
				t.Fatal(err)
			}

			const n = 16
			var wg sync.WaitGroup
			results := make(chan int, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					v, err := s.IncrementInvoiceNumber(ctx)
					if err != nil {
						t.Errorf("IncrementInvoiceNumber: %v", err)
						return
					}
					results <- v
				}()
			}
			wg.Wait()
			close(results)

			seen := map[int]bool{}
			for v := range results {
				if seen[v] {
					t.Errorf("duplicate number %d", v)
				}
				seen[v] = true
			}
			end, err := s.CurrentInvoiceNumber(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if end != start+n {
				t.Errorf("counter = %d, want %d", end, start+n)
			}
		})
	}
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := backends(t)["sqlite"]
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.UpsertEntry(ctx, model.TimeEntry{Date: "2025-05-05", StartTime: "09:00", EndTime: "12:00", Status: model.EntryApproved, CreatedBy: model.RoleAdmin}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}
	if _, err := s.GetEntry(ctx, "2025-05-05"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("entry survived rollback: %v", err)
	}
}

func TestSettingsAndUsers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			st, err := s.SetInvoiceEmail(ctx, "billing@example.com")
			if err != nil {
				t.Fatal(err)
			}
			if st.ID != 1 || st.InvoiceEmail != "billing@example.com" {
				t.Errorf("settings = %+v", st)
			}

			username := "user-" + uuid.NewString()
			if err := s.CreateUser(ctx, model.User{Username: username, PasswordHash: "h1", Role: model.RoleClient}); err != nil {
				t.Fatal(err)
			}
			if err := s.CreateUser(ctx, model.User{Username: username, PasswordHash: "h1", Role: model.RoleClient}); !errors.Is(err, storage.ErrExists) {
				t.Errorf("duplicate CreateUser err = %v", err)
			}
			if err := s.UpdatePasswordHash(ctx, username, "h2"); err != nil {
				t.Fatal(err)
			}
			u, err := s.GetUser(ctx, username)
			if err != nil || u.PasswordHash != "h2" || u.Role != model.RoleClient {
				t.Errorf("GetUser = %+v, %v", u, err)
			}
			if err := s.UpdatePasswordHash(ctx, "nobody-"+username, "x"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("UpdatePasswordHash unknown err = %v", err)
			}
		})
	}
}
