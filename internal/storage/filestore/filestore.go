// Package filestore keeps the timesheet in human-readable JSON files: one file
// per worked day plus small files for requests, settings, the invoice counter
// and users. Writes are atomic (temp file + rename) and serialised by a
// process-wide mutex.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	requestsFile = "requests.json"
	settingsFile = "settings.json"
	counterFile  = "counter.json"
	usersFile    = "users.json"
)

// Store is a file-backed storage.Store rooted at a directory.
type Store struct {
	base string
	mu   sync.Mutex
}

// DefaultDir returns the root data directory (~/.timesheet).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet"), nil
}

// Open returns a Store rooted at base, creating the directory if needed.
func Open(base string) (*Store, error) {
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating %s: %w", base, err)
	}
	return &Store{base: base}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.base }

// Close is a no-op; files are closed after every operation.
func (s *Store) Close() error { return nil }

// readJSON decodes path into v. It reports false if the file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return false, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return true, nil
}

// writeJSON atomically replaces path with the JSON encoding of v.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.base, name)
}
