// Package repository is the single source of truth for the task collection.
// It routes every write to the current backend (remote once the realtime feed
// delivered, local otherwise), falls back to the local store once per call when
// a remote write fails, and replaces the collection wholesale on each snapshot.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
)

const (
	logRepo = "repo"
	logSync = "sync"
)

// Notices shown when a confirmation is declined.
const (
	NoticeDeleteCancelled = "Deletion cancelled. Incorrect confirmation text."
	NoticeStatusUnchanged = "Status unchanged."
)

const (
	promptDelete           = "Type DELETE to permanently remove this task."
	promptCompleteSubtasks = "This task has unfinished subtasks. Mark all subtasks done and complete the task?"
)

// Options configures a Repository. Remote may be nil for a local-only session.
// Fields are ordered to minimize memory padding.
type Options struct {
	Remote domain.RemoteStore
	Local  domain.LocalStore
	Clock  domain.Clock
	Logger domain.Logger
	Broker *confirm.Broker
	NewID  func() string
	Actor  string // createdBy for new tasks
}

// Repository owns the in-memory task collection.
// Fields are ordered to minimize memory padding.
type Repository struct {
	remote    domain.RemoteStore
	local     domain.LocalStore
	clock     domain.Clock
	log       domain.Logger
	current   backend
	sub       domain.Subscription
	broker    *confirm.Broker
	newID     func() string
	ready     chan struct{}
	listeners map[int]func()
	unsynced  map[string]*domain.Task // fallback writes made while remote; nil marks a delete
	actor     string
	tasks     []*domain.Task
	nextLst   int
	readyOnce sync.Once
	mu        sync.RWMutex
	persistMu sync.Mutex
	feedDead  bool
}

// New creates a Repository in local mode. Call Subscribe to attach the realtime feed.
func New(opts Options) *Repository {
	r := &Repository{
		remote:    opts.Remote,
		local:     opts.Local,
		clock:     opts.Clock,
		log:       opts.Logger,
		broker:    opts.Broker,
		newID:     opts.NewID,
		actor:     opts.Actor,
		ready:     make(chan struct{}),
		listeners: make(map[int]func()),
		unsynced:  make(map[string]*domain.Task),
		tasks:     []*domain.Task{},
	}
	if r.clock == nil {
		r.clock = domain.RealClock{}
	}
	if r.log == nil {
		r.log = domain.NopLogger{}
	}
	if r.broker == nil {
		r.broker = confirm.NewBroker()
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	r.current = localBackend{r: r}
	return r
}

// SetActor sets the createdBy value for tasks created from now on.
func (r *Repository) SetActor(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actor = uid
}

// Load populates the collection from the local store. It is a no-op once the
// remote feed has delivered, since snapshots are authoritative.
func (r *Repository) Load(_ context.Context) error {
	tasks, err := r.local.LoadAll()
	if err != nil {
		return fmt.Errorf("load local tasks: %w", err)
	}
	domain.SortTasks(tasks)

	r.mu.Lock()
	if r.current.kind() == BackendRemote {
		r.mu.Unlock()
		return nil
	}
	r.tasks = tasks
	r.mu.Unlock()

	r.log.Info("", logRepo, fmt.Sprintf("loaded %d tasks from local store", len(tasks)))
	r.notify()
	return nil
}

// Subscribe opens the realtime feed. Without a remote store the repository
// stays local and is ready immediately. A subscription failure is not returned:
// it switches the session to local mode.
func (r *Repository) Subscribe(ctx context.Context) {
	if r.remote == nil {
		r.log.Info("", logSync, "no remote store configured, using local store")
		r.markReady()
		return
	}

	sub, err := r.remote.Subscribe(ctx, feedHandler{r: r})
	if err != nil {
		r.onFeedError(err)
		return
	}
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
}

// feedHandler adapts the repository to domain.SnapshotHandler.
type feedHandler struct {
	r *Repository
}

func (h feedHandler) OnSnapshot(tasks []*domain.Task) { h.r.onSnapshot(tasks) }
func (h feedHandler) OnError(err error)               { h.r.onFeedError(err) }

func (r *Repository) onSnapshot(tasks []*domain.Task) {
	tasks = domain.CloneTasks(tasks)
	for _, t := range tasks {
		if t.Subtasks == nil {
			t.Subtasks = []domain.Subtask{}
		}
	}
	domain.SortTasks(tasks)

	r.persistMu.Lock()
	r.mu.Lock()
	if r.feedDead {
		r.mu.Unlock()
		r.persistMu.Unlock()
		return
	}
	first := r.current.kind() != BackendRemote
	tasks = r.overlayUnsyncedLocked(tasks)
	r.tasks = tasks
	r.current = remoteBackend{store: r.remote}
	r.mu.Unlock()

	// Mirror so a later offline start sees recent data.
	if err := r.local.SaveAll(tasks); err != nil {
		r.log.Warn("", logSync, fmt.Sprintf("mirror snapshot to local store: %v", err))
	}
	r.persistMu.Unlock()

	if first {
		r.log.Info("", logSync, fmt.Sprintf("remote feed ready (%d tasks)", len(tasks)))
	}
	r.markReady()
	r.notify()
}

func (r *Repository) onFeedError(err error) {
	r.mu.Lock()
	if r.feedDead {
		r.mu.Unlock()
		return
	}
	r.feedDead = true
	r.current = localBackend{r: r}
	r.mu.Unlock()

	r.log.Warn("", logSync, fmt.Sprintf("realtime feed failed, switching to local store: %v", err))
	r.markReady()
	r.notify()
}

func (r *Repository) markReady() {
	r.readyOnce.Do(func() { close(r.ready) })
}

// Ready is closed once the first snapshot or feed failure arrived (or at
// once without a remote store).
func (r *Repository) Ready() <-chan struct{} {
	return r.ready
}

// RemoteReady reports whether writes currently target the remote store.
func (r *Repository) RemoteReady() bool {
	return r.Backend() == BackendRemote
}

// Backend returns the current write path.
func (r *Repository) Backend() Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.kind()
}

// Tasks returns a copy of the collection in (date, createdAt) order.
func (r *Repository) Tasks() []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.CloneTasks(r.tasks)
}

// Get returns a copy of one task.
func (r *Repository) Get(id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}
	return r.tasks[idx].Clone(), nil
}

// OnChange registers fn to run after every mutation and snapshot.
// The returned func unregisters it.
func (r *Repository) OnChange(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextLst
	r.nextLst++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Repository) notify() {
	r.mu.RLock()
	fns := make([]func(), 0, len(r.listeners))
	for i := 0; i < r.nextLst; i++ {
		if fn, ok := r.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	r.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// Create stores a new task built from draft with status in_progress.
// Validation is the caller's job.
func (r *Repository) Create(ctx context.Context, draft domain.TaskDraft) (string, error) {
	r.mu.RLock()
	actor := r.actor
	r.mu.RUnlock()

	task := draft.ToTask(r.clock.Now().Location())
	task.CreatedBy = actor

	var id string
	err := r.write("", "create", func(b backend) error {
		var err error
		id, err = b.Create(ctx, task)
		return err
	})
	if err != nil {
		return "", err
	}
	r.log.Info(id, logRepo, fmt.Sprintf("created %q on %s", task.Title, task.Date))
	return id, nil
}

// Update applies a partial update.
func (r *Repository) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if patch.IsEmpty() {
		return domain.ErrNoFieldsToUpdate
	}
	if _, err := r.Get(id); err != nil {
		return r.writeThrough(id, "update", err, func(s domain.RemoteStore) error {
			return s.Update(ctx, id, patch)
		})
	}

	err := r.write(id, "update", func(b backend) error {
		if err := b.Update(ctx, id, patch); err != nil {
			return err
		}
		if b.kind() == BackendRemote {
			r.applyOptimistic(id, patch)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Debug(id, logRepo, "updated")
	return nil
}

// Delete removes a task. Interactive callers go through RequestDelete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(id); err != nil {
		return r.writeThrough(id, "delete", err, func(s domain.RemoteStore) error {
			return s.Delete(ctx, id)
		})
	}

	err := r.write(id, "delete", func(b backend) error {
		if err := b.Delete(ctx, id); err != nil {
			return err
		}
		if b.kind() == BackendRemote {
			r.removeOptimistic(id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info(id, logRepo, "deleted")
	return nil
}

// ChangeStatus sets a task's status. Completing a task with unfinished subtasks
// needs confirmation: the status is left alone and a pending request is returned.
// Confirming marks every subtask done in the same update.
func (r *Repository) ChangeStatus(ctx context.Context, id string, status domain.Status) (*confirm.Request, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	task, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if status.IsDone() && task.HasOpenSubtasks() {
		req, err := r.broker.Request(confirm.Request{
			Kind:         confirm.KindCompleteOpenSubtasks,
			TaskID:       id,
			Prompt:       promptCompleteSubtasks,
			CancelNotice: NoticeStatusUnchanged,
		}, func(ctx context.Context) error {
			return r.completeWithSubtasks(ctx, id)
		})
		if err != nil {
			return nil, err
		}
		return &req, nil
	}

	return nil, r.Update(ctx, id, domain.StatusPatch(status, r.clock.Now()))
}

func (r *Repository) completeWithSubtasks(ctx context.Context, id string) error {
	task, err := r.Get(id)
	if err != nil {
		return err
	}
	subtasks := make([]domain.Subtask, len(task.Subtasks))
	for i, st := range task.Subtasks {
		st.Done = true
		subtasks[i] = st
	}
	patch := domain.StatusPatch(domain.StatusDone, r.clock.Now())
	patch.Subtasks = &subtasks
	return r.Update(ctx, id, patch)
}

// RequestDelete asks for the typed DELETE confirmation before removing a task.
func (r *Repository) RequestDelete(_ context.Context, id string) (confirm.Request, error) {
	if _, err := r.Get(id); err != nil {
		return confirm.Request{}, err
	}
	return r.broker.Request(confirm.Request{
		Kind:         confirm.KindDelete,
		TaskID:       id,
		Prompt:       promptDelete,
		RequireText:  domain.DeleteConfirmationToken,
		CancelNotice: NoticeDeleteCancelled,
	}, func(ctx context.Context) error {
		return r.Delete(ctx, id)
	})
}

// ResolveConfirmation answers the pending confirmation identified by token.
func (r *Repository) ResolveConfirmation(ctx context.Context, token string, ans confirm.Answer) (confirm.Outcome, error) {
	out, err := r.broker.Resolve(ctx, token, ans)
	if err == nil && !out.Confirmed {
		r.log.Info(out.TaskID, logRepo, fmt.Sprintf("%s not confirmed", out.Kind))
	}
	return out, err
}

// CancelConfirmation drops the pending confirmation identified by token.
func (r *Repository) CancelConfirmation(token string) (confirm.Outcome, error) {
	return r.broker.Cancel(token)
}

// PendingConfirmation returns the outstanding confirmation, if any.
func (r *Repository) PendingConfirmation() (confirm.Request, bool) {
	return r.broker.Pending()
}

// ServerNow samples the remote store's clock.
func (r *Repository) ServerNow(ctx context.Context) (time.Time, error) {
	r.mu.RLock()
	usable := r.remote != nil && !r.feedDead
	r.mu.RUnlock()
	if !usable {
		return time.Time{}, domain.ErrServerClockUnavailable
	}
	return r.remote.ServerNow(ctx)
}

// Close stops the realtime feed.
func (r *Repository) Close() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

// write runs op on the current backend. A remote failure is logged and op is
// retried once on the local backend; the caller only sees local errors.
func (r *Repository) write(id, what string, op func(b backend) error) error {
	r.mu.RLock()
	b := r.current
	r.mu.RUnlock()

	err := op(b)
	if err == nil {
		r.notify()
		return nil
	}
	if b.kind() == BackendLocal {
		return err
	}

	r.log.Warn(id, logSync, fmt.Sprintf("remote %s failed, using local store: %v", what, err))
	if err := op(localBackend{r: r, track: true}); err != nil {
		return err
	}
	r.notify()
	return nil
}

// writeThrough sends a write for an id the feed has not delivered yet, such as
// a task created remotely a moment ago. Without a remote session, or when the
// remote write fails, the original lookup error is returned: there is no local
// copy to fall back on.
func (r *Repository) writeThrough(id, what string, notFound error, op func(s domain.RemoteStore) error) error {
	if !r.RemoteReady() {
		return notFound
	}
	if err := op(r.remote); err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) {
			r.log.Warn(id, logSync, fmt.Sprintf("remote %s of undelivered task failed: %v", what, err))
		}
		return notFound
	}
	r.log.Debug(id, logRepo, what+" sent ahead of snapshot")
	r.notify()
	return nil
}

func (r *Repository) applyOptimistic(id string, patch domain.TaskPatch) {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexLocked(id); idx >= 0 {
		t := r.tasks[idx].Clone()
		patch.ApplyTo(t, now)
		r.tasks[idx] = t
		domain.SortTasks(r.tasks)
	}
	delete(r.unsynced, id)
}

func (r *Repository) removeOptimistic(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexLocked(id); idx >= 0 {
		r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	}
	delete(r.unsynced, id)
}

// overlayUnsyncedLocked applies fallback writes the remote store has not seen
// to a snapshot, so neither memory nor the local mirror loses them.
func (r *Repository) overlayUnsyncedLocked(tasks []*domain.Task) []*domain.Task {
	if len(r.unsynced) == 0 {
		return tasks
	}
	tasks = slices.DeleteFunc(tasks, func(t *domain.Task) bool {
		_, ok := r.unsynced[t.ID]
		return ok
	})
	for _, t := range r.unsynced {
		if t != nil {
			tasks = append(tasks, t.Clone())
		}
	}
	domain.SortTasks(tasks)
	return tasks
}

// Unsynced returns the ids of fallback writes not yet confirmed by the remote store.
func (r *Repository) Unsynced() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.unsynced))
	for id := range r.unsynced {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Repository) indexLocked(id string) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist saves the whole collection (caller must hold persistMu).
func (r *Repository) persist(tasks []*domain.Task) error {
	if err := r.local.SaveAll(tasks); err != nil {
		return fmt.Errorf("save local tasks: %w", err)
	}
	return nil
}
