package repository

import (
	"context"
	"slices"

	"github.com/qcteam/teamcal/internal/domain"
)

// Backend names the store that currently receives writes.
type Backend string

// Backends.
const (
	BackendRemote Backend = "remote"
	BackendLocal  Backend = "local"
)

// backend is one write path. The Repository holds the current one explicitly.
type backend interface {
	domain.TaskWriter
	kind() Backend
}

// remoteBackend writes to the shared store; the feed reflects the result.
type remoteBackend struct {
	store domain.RemoteStore
}

func (b remoteBackend) kind() Backend { return BackendRemote }

func (b remoteBackend) Create(ctx context.Context, task *domain.Task) (string, error) {
	return b.store.Create(ctx, task)
}

func (b remoteBackend) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	return b.store.Update(ctx, id, patch)
}

func (b remoteBackend) Delete(ctx context.Context, id string) error {
	return b.store.Delete(ctx, id)
}

// localBackend mutates the in-memory collection and persists it whole.
// persistMu keeps file writes in the same order as the mutations.
// A tracked backend is the fallback for a failed remote write: it records the
// result in r.unsynced so later snapshots do not drop it.
type localBackend struct {
	r     *Repository
	track bool
}

func (b localBackend) kind() Backend { return BackendLocal }

func (b localBackend) Create(_ context.Context, task *domain.Task) (string, error) {
	r := b.r
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
	now := r.clock.Now()
	t := task.Clone()
	t.ID = r.newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Normalize(now)

	r.mu.Lock()
	r.tasks = append(r.tasks, t)
	domain.SortTasks(r.tasks)
	if b.track {
		r.unsynced[t.ID] = t.Clone()
	}
	snapshot := domain.CloneTasks(r.tasks)
	r.mu.Unlock()

	if err := r.persist(snapshot); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (b localBackend) Update(_ context.Context, id string, patch domain.TaskPatch) error {
	r := b.r
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
	now := r.clock.Now()

	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	t := r.tasks[idx].Clone()
	patch.ApplyTo(t, now)
	t.UpdatedAt = now
	r.tasks[idx] = t
	domain.SortTasks(r.tasks)
	if b.track {
		r.unsynced[id] = t.Clone()
	}
	snapshot := domain.CloneTasks(r.tasks)
	r.mu.Unlock()

	return r.persist(snapshot)
}

func (b localBackend) Delete(_ context.Context, id string) error {
	r := b.r
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.Lock()
	r.tasks = slices.DeleteFunc(r.tasks, func(t *domain.Task) bool { return t.ID == id })
	if b.track {
		r.unsynced[id] = nil
	}
	snapshot := domain.CloneTasks(r.tasks)
	r.mu.Unlock()

	return r.persist(snapshot)
}
