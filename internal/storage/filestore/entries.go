package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

// dayFilePath returns the path for the given date's JSON file.
func (s *Store) dayFilePath(day model.Day) string {
	t := day.Time()
	return filepath.Join(s.base, "entries", t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func (s *Store) LoadDay(day model.Day) (model.DayFile, error) {
	var df model.DayFile
	found, err := readJSON(s.dayFilePath(day), &df)
	if err != nil {
		return model.DayFile{}, err
	}
	if !found {
		return model.DayFile{Date: day}, nil
	}
	return df, nil
}

func (s *Store) GetEntry(_ context.Context, day model.Day) (model.TimeEntry, error) {
	df, err := s.LoadDay(day)
	if err != nil {
		return model.TimeEntry{}, err
	}
	if df.Entry == nil {
		return model.TimeEntry{}, storage.ErrNotFound
	}
	return *df.Entry, nil
}

func (s *Store) UpsertEntry(_ context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	df, err := s.LoadDay(e.Date)
	if err != nil {
		return model.TimeEntry{}, err
	}
	now := time.Now().UTC()
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	switch {
	case df.Entry != nil:
		e.CreatedAt = df.Entry.CreatedAt
	case e.CreatedAt.IsZero():
		e.CreatedAt = e.UpdatedAt
	}
	df.Date = e.Date
	df.Entry = &e
	if err := writeJSON(s.dayFilePath(e.Date), df); err != nil {
		return model.TimeEntry{}, err
	}
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, day model.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.dayFilePath(day))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage error deleting entry %s: %w", day, err)
	}
	return nil
}

func (s *Store) ListEntries(_ context.Context, f storage.EntryFilter) ([]model.TimeEntry, error) {
	var days []model.Day
	var err error
	if f.From != "" && f.To != "" {
		days = dayRange(f.From, f.To)
	} else {
		days, err = s.storedDays()
		if err != nil {
			return nil, err
		}
	}

	entries := []model.TimeEntry{}
	for _, d := range days {
		df, err := s.LoadDay(d)
		if err != nil {
			return nil, err
		}
		if df.Entry != nil && f.Match(*df.Entry) {
			entries = append(entries, *df.Entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// dayRange lists every day in [from, to] inclusive.
func dayRange(from, to model.Day) []model.Day {
	var days []model.Day
	end := to.Time()
	for d := from.Time(); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, model.NewDay(d))
	}
	return days
}

// storedDays walks the entries tree and returns the day of every day file.
func (s *Store) storedDays() ([]model.Day, error) {
	root := filepath.Join(s.base, "entries")
	var days []model.Day
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), ".json")
		day, err := model.ParseDay(strings.ReplaceAll(key, "/", "-"))
		if err != nil {
			return nil // stray file
		}
		days = append(days, day)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage error listing entries: %w", err)
	}
	return days, nil
}
