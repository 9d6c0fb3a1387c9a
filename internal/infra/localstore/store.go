// Package localstore provides the local fallback task store: a single JSON file
// holding the whole task collection plus scalar preferences, keyed like a
// browser key-value store.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/qcteam/teamcal/internal/domain"
)

// Keys of the persisted key-value document.
const (
	keyTasks         = "tasks"
	keyWeeklyCleanup = "weekly_cleanup"
	keyLastCleanup   = "last_cleanup"
)

// storeData is the JSON file structure: opaque values by key.
type storeData map[string]json.RawMessage

// Store implements domain.LocalStore and domain.Preferences using a JSON file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Ensure Store implements the local ports.
var (
	_ domain.LocalStore  = (*Store)(nil)
	_ domain.Preferences = (*Store)(nil)
)

// LoadAll returns the persisted collection. A missing file yields an empty collection.
func (s *Store) LoadAll() ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	err := s.withLock(func(data storeData) error {
		raw, ok := data[keyTasks]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return fmt.Errorf("decode tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.Subtasks == nil {
			t.Subtasks = []domain.Subtask{}
		}
	}
	return tasks, nil
}

// SaveAll replaces the persisted collection with tasks.
func (s *Store) SaveAll(tasks []*domain.Task) error {
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return s.withLockWrite(func(data storeData) error {
		return data.put(keyTasks, tasks)
	})
}

// WeeklyCleanupEnabled reports the weekly-cleanup toggle. Defaults to false.
func (s *Store) WeeklyCleanupEnabled() (bool, error) {
	var enabled bool
	err := s.withLock(func(data storeData) error {
		return data.get(keyWeeklyCleanup, &enabled)
	})
	return enabled, err
}

// SetWeeklyCleanupEnabled persists the weekly-cleanup toggle.
func (s *Store) SetWeeklyCleanupEnabled(enabled bool) error {
	return s.withLockWrite(func(data storeData) error {
		return data.put(keyWeeklyCleanup, enabled)
	})
}

// LastCleanupDay returns the day of the last weekly cleanup, or "".
func (s *Store) LastCleanupDay() (domain.Day, error) {
	var day domain.Day
	err := s.withLock(func(data storeData) error {
		return data.get(keyLastCleanup, &day)
	})
	return day, err
}

// SetLastCleanupDay records the day of the last weekly cleanup.
func (s *Store) SetLastCleanupDay(day domain.Day) error {
	return s.withLockWrite(func(data storeData) error {
		return data.put(keyLastCleanup, day)
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	data := storeData{}
	if err := data.put(keyTasks, []*domain.Task{}); err != nil {
		return err
	}
	return s.write(data)
}

func (d storeData) get(key string, v any) error {
	raw, ok := d[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (d storeData) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	d[key] = raw
	return nil
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// read loads the key-value document. A missing file reads as empty so the
// fallback works before Initialize has run.
func (s *Store) read() (storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storeData{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	data := storeData{}
	if len(content) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return data, nil
}

func (s *Store) write(data storeData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
