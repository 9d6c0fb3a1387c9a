// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
	mu      sync.Mutex
}

// NewMockClock creates a clock fixed at now.
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{NowTime: now}
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Set moves the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = t
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// MemoryRemote is an in-memory domain.RemoteStore with synchronous snapshot
// delivery and error injection.
// Fields are ordered to minimize memory padding.
type MemoryRemote struct {
	Clock         domain.Clock
	ServerTime    *time.Time // nil means ServerNow fails
	CreateErr     error
	UpdateErr     error
	DeleteErr     error
	SubscribeErr  error
	tasks         map[string]*domain.Task
	handlers      map[int]domain.SnapshotHandler
	Calls         []string
	nextID        int
	nextSub       int
	mu            sync.Mutex
	HoldSnapshots bool // suppress delivery until Publish
}

// NewMemoryRemote creates an empty MemoryRemote.
func NewMemoryRemote(clock domain.Clock) *MemoryRemote {
	return &MemoryRemote{
		Clock:    clock,
		tasks:    make(map[string]*domain.Task),
		handlers: make(map[int]domain.SnapshotHandler),
		nextID:   1,
	}
}

// Seed inserts tasks as-is without notifying subscribers.
func (m *MemoryRemote) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.tasks[t.ID] = t.Clone()
	}
}

// Snapshot returns the stored collection in feed order.
func (m *MemoryRemote) Snapshot() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *MemoryRemote) snapshotLocked() []*domain.Task {
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	domain.SortTasks(out)
	return out
}

// Publish delivers the current collection to every subscriber.
func (m *MemoryRemote) Publish() {
	m.mu.Lock()
	tasks := m.snapshotLocked()
	handlers := m.handlersLocked()
	m.mu.Unlock()
	for _, h := range handlers {
		h.OnSnapshot(domain.CloneTasks(tasks))
	}
}

// Deliver sends an arbitrary snapshot to every subscriber without changing storage.
func (m *MemoryRemote) Deliver(tasks []*domain.Task) {
	m.mu.Lock()
	handlers := m.handlersLocked()
	m.mu.Unlock()
	for _, h := range handlers {
		h.OnSnapshot(domain.CloneTasks(tasks))
	}
}

// Fail ends every subscription with err.
func (m *MemoryRemote) Fail(err error) {
	m.mu.Lock()
	handlers := m.handlersLocked()
	m.handlers = make(map[int]domain.SnapshotHandler)
	m.mu.Unlock()
	for _, h := range handlers {
		h.OnError(err)
	}
}

// Subscribers returns the number of open subscriptions.
func (m *MemoryRemote) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

func (m *MemoryRemote) handlersLocked() []domain.SnapshotHandler {
	out := make([]domain.SnapshotHandler, 0, len(m.handlers))
	for i := 0; i < m.nextSub; i++ {
		if h, ok := m.handlers[i]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (m *MemoryRemote) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MemoryRemote) afterWrite() {
	m.mu.Lock()
	hold := m.HoldSnapshots
	m.mu.Unlock()
	if !hold {
		m.Publish()
	}
}

// Subscribe registers handler and delivers the current collection unless snapshots are held.
func (m *MemoryRemote) Subscribe(_ context.Context, handler domain.SnapshotHandler) (domain.Subscription, error) {
	m.mu.Lock()
	m.record("subscribe")
	if m.SubscribeErr != nil {
		err := m.SubscribeErr
		m.mu.Unlock()
		return nil, err
	}
	id := m.nextSub
	m.nextSub++
	m.handlers[id] = handler
	hold := m.HoldSnapshots
	tasks := m.snapshotLocked()
	m.mu.Unlock()

	if !hold {
		handler.OnSnapshot(tasks)
	}
	return &memorySubscription{remote: m, id: id}, nil
}

// Create stores a task with a sequential "r<n>" id.
func (m *MemoryRemote) Create(_ context.Context, task *domain.Task) (string, error) {
	m.mu.Lock()
	m.record("create")
	if m.CreateErr != nil {
		err := m.CreateErr
		m.mu.Unlock()
		return "", err
	}
	now := m.Clock.Now()
	doc := task.Clone()
	doc.ID = "r" + strconv.Itoa(m.nextID)
	m.nextID++
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Subtasks == nil {
		doc.Subtasks = []domain.Subtask{}
	}
	doc.Normalize(now)
	m.tasks[doc.ID] = doc
	m.mu.Unlock()

	m.afterWrite()
	return doc.ID, nil
}

// Update applies a patch and refreshes UpdatedAt.
func (m *MemoryRemote) Update(_ context.Context, id string, patch domain.TaskPatch) error {
	m.mu.Lock()
	m.record("update:" + id)
	if m.UpdateErr != nil {
		err := m.UpdateErr
		m.mu.Unlock()
		return err
	}
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, domain.ErrTaskNotFound)
	}
	now := m.Clock.Now()
	patch.ApplyTo(t, now)
	t.UpdatedAt = now
	m.mu.Unlock()

	m.afterWrite()
	return nil
}

// Delete removes a task.
func (m *MemoryRemote) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	m.record("delete:" + id)
	if m.DeleteErr != nil {
		err := m.DeleteErr
		m.mu.Unlock()
		return err
	}
	delete(m.tasks, id)
	m.mu.Unlock()

	m.afterWrite()
	return nil
}

// ServerNow returns ServerTime or ErrServerClockUnavailable.
func (m *MemoryRemote) ServerNow(_ context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("server_now")
	if m.ServerTime == nil {
		return time.Time{}, domain.ErrServerClockUnavailable
	}
	return *m.ServerTime, nil
}

// CallCount returns how many recorded calls start with prefix.
func (m *MemoryRemote) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type memorySubscription struct {
	remote *MemoryRemote
	id     int
}

func (s *memorySubscription) Close() {
	s.remote.mu.Lock()
	defer s.remote.mu.Unlock()
	delete(s.remote.handlers, s.id)
}

// MemoryLocal is an in-memory domain.LocalStore and domain.Preferences.
// Fields are ordered to minimize memory padding.
type MemoryLocal struct {
	SaveErr     error
	LoadErr     error
	tasks       []*domain.Task
	LastCleanup domain.Day
	Saves       int
	mu          sync.Mutex
	CleanupOn   bool
}

// NewMemoryLocal creates an empty MemoryLocal.
func NewMemoryLocal(tasks ...*domain.Task) *MemoryLocal {
	return &MemoryLocal{tasks: domain.CloneTasks(tasks)}
}

// LoadAll returns a copy of the stored collection.
func (m *MemoryLocal) LoadAll() ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return domain.CloneTasks(m.tasks), nil
}

// SaveAll replaces the stored collection.
func (m *MemoryLocal) SaveAll(tasks []*domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.tasks = domain.CloneTasks(tasks)
	m.Saves++
	return nil
}

// Stored returns the persisted collection.
func (m *MemoryLocal) Stored() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneTasks(m.tasks)
}

func (m *MemoryLocal) WeeklyCleanupEnabled() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CleanupOn, nil
}

func (m *MemoryLocal) SetWeeklyCleanupEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CleanupOn = enabled
	return nil
}

func (m *MemoryLocal) LastCleanupDay() (domain.Day, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastCleanup, nil
}

func (m *MemoryLocal) SetLastCleanupDay(day domain.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCleanup = day
	return nil
}

// StaticIdentity is a domain.IdentityProvider returning a fixed identity.
type StaticIdentity struct {
	Identity domain.Identity
}

// EnsureIdentity returns the configured identity.
func (s StaticIdentity) EnsureIdentity(_ context.Context) domain.Identity {
	return s.Identity
}

// LogEntry is a line captured by RecordingLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// RecordingLogger is a domain.Logger that keeps every entry in memory.
type RecordingLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (l *RecordingLogger) add(level, taskID, category, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

func (l *RecordingLogger) Debug(taskID, category, msg string) { l.add("DEBUG", taskID, category, msg) }
func (l *RecordingLogger) Info(taskID, category, msg string)  { l.add("INFO", taskID, category, msg) }
func (l *RecordingLogger) Warn(taskID, category, msg string)  { l.add("WARN", taskID, category, msg) }
func (l *RecordingLogger) Error(taskID, category, msg string) { l.add("ERROR", taskID, category, msg) }

// Count returns the number of entries at level.
func (l *RecordingLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Ensure the doubles implement their ports.
var (
	_ domain.RemoteStore      = (*MemoryRemote)(nil)
	_ domain.LocalStore       = (*MemoryLocal)(nil)
	_ domain.Preferences      = (*MemoryLocal)(nil)
	_ domain.IdentityProvider = StaticIdentity{}
	_ domain.Logger           = (*RecordingLogger)(nil)
	_ domain.Clock            = (*MockClock)(nil)
)
