package domain

import (
	"context"
	"time"
)

// TaskWriter is the mutation contract shared by every task backend.
type TaskWriter interface {
	// Create stores a new task and returns its assigned ID.
	// The store sets ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, task *Task) (string, error)

	// Update applies a partial update and refreshes UpdatedAt.
	Update(ctx context.Context, id string, patch TaskPatch) error

	// Delete removes a task.
	Delete(ctx context.Context, id string) error
}

// RemoteStore is a shared document collection keyed by task ID with a realtime feed.
type RemoteStore interface {
	TaskWriter

	// Subscribe opens a feed of full collection snapshots ordered by (date, createdAt).
	// The handler may be called from another goroutine. After OnError the feed is closed.
	Subscribe(ctx context.Context, handler SnapshotHandler) (Subscription, error)

	// ServerNow samples the store's clock via a write-then-read on a metadata document.
	// Returns ErrServerClockUnavailable if the store has no authoritative clock.
	ServerNow(ctx context.Context) (time.Time, error)
}

// SnapshotHandler receives realtime feed events.
type SnapshotHandler interface {
	// OnSnapshot receives the complete, ordered collection.
	OnSnapshot(tasks []*Task)

	// OnError is called once when the feed fails; no further events follow.
	OnError(err error)
}

// Subscription is an open realtime feed.
type Subscription interface {
	// Close stops the feed and waits for the delivery goroutine to exit.
	Close()
}

// LocalStore persists the whole collection as one blob.
type LocalStore interface {
	// LoadAll returns the persisted collection, or an empty one.
	LoadAll() ([]*Task, error)

	// SaveAll replaces the persisted collection.
	SaveAll(tasks []*Task) error
}

// Preferences holds the scalar settings persisted next to the local collection.
type Preferences interface {
	// WeeklyCleanupEnabled reports the weekly-cleanup toggle (default off).
	WeeklyCleanupEnabled() (bool, error)

	// SetWeeklyCleanupEnabled persists the toggle.
	SetWeeklyCleanupEnabled(enabled bool) error

	// LastCleanupDay returns the day of the last weekly cleanup, or "".
	LastCleanupDay() (Day, error)

	// SetLastCleanupDay records the day of the last weekly cleanup.
	SetLastCleanupDay(day Day) error
}

// Identity is an anonymous session identity. A zero Identity means "none".
type Identity struct {
	Expiry time.Time
	UID    string
	Token  string
}

// IsZero returns true if no identity was obtained.
func (i Identity) IsZero() bool {
	return i.UID == ""
}

// IdentityProvider obtains an anonymous credential.
type IdentityProvider interface {
	// EnsureIdentity resolves once an identity is active, or returns a zero
	// Identity after a bounded wait. It never blocks indefinitely.
	EnsureIdentity(ctx context.Context) Identity
}

// Logger writes categorized log lines. taskID may be empty for global entries.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (data dir + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ConfigInfo describes one config file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates config files.
type ConfigManager interface {
	// GetDataConfigInfo returns the data-directory config file.
	GetDataConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitDataConfig writes a commented template into the data directory.
	InitDataConfig(cfg *Config) error

	// InitGlobalConfig writes a commented template into the global config directory.
	InitGlobalConfig(cfg *Config) error
}
