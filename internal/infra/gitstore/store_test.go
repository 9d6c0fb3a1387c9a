package gitstore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/testutil"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *Store {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	store, err := NewWithRepo(repo, "teamcal-test", Options{
		Clock:        fixedClock{now: testNow},
		PollInterval: time.Hour,
	})
	require.NoError(t, err)
	return store
}

func newTask(title string, date domain.Day) *domain.Task {
	return &domain.Task{
		Title:    title,
		Date:     date,
		Priority: domain.PriorityGeneral,
		Status:   domain.StatusInProgress,
	}
}

func TestStore_CreateAssignsSequentialIDs(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id1, err := store.Create(ctx, newTask("First", "2024-01-05"))
	require.NoError(t, err)
	id2, err := store.Create(ctx, newTask("Second", "2024-01-05"))
	require.NoError(t, err)

	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)

	got, err := store.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, testNow, got.CreatedAt)
	assert.Equal(t, testNow, got.UpdatedAt)
	assert.Nil(t, got.DoneAt)
	assert.Empty(t, got.Subtasks)
}

func TestStore_GetNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get("42")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_ListOrdersByDateThenCreatedAt(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, newTask("Later", "2024-01-07"))
	require.NoError(t, err)
	_, err = store.Create(ctx, newTask("Earlier", "2024-01-03"))
	require.NoError(t, err)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Earlier", tasks[0].Title)
	assert.Equal(t, "Later", tasks[1].Title)
}

func TestStore_UpdateDoneStampsDoneAt(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, newTask("Ship", "2024-01-05"))
	require.NoError(t, err)

	err = store.Update(ctx, id, domain.TaskPatch{Status: domain.Ptr(domain.StatusDone)})
	require.NoError(t, err)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	require.NotNil(t, got.DoneAt)
	assert.Equal(t, testNow, *got.DoneAt)

	err = store.Update(ctx, id, domain.TaskPatch{Status: domain.Ptr(domain.StatusInProgress)})
	require.NoError(t, err)

	got, err = store.Get(id)
	require.NoError(t, err)
	assert.Nil(t, got.DoneAt)
}

func TestStore_UpdateMissing(t *testing.T) {
	store := setupStore(t)

	err := store.Update(context.Background(), "9", domain.TaskPatch{Title: domain.Ptr("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, newTask("Gone", "2024-01-05"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStore_IDsNotReusedAfterDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id1, err := store.Create(ctx, newTask("A", "2024-01-05"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id1))

	id2, err := store.Create(ctx, newTask("B", "2024-01-05"))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestStore_ServerNowUnavailable(t *testing.T) {
	store := setupStore(t)

	_, err := store.ServerNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerClockUnavailable)
}

type chanHandler struct {
	snapshots chan []*domain.Task
}

func (h chanHandler) OnSnapshot(tasks []*domain.Task) { h.snapshots <- tasks }
func (h chanHandler) OnError(error)                   {}

func TestStore_SubscribeSeesWrites(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	h := chanHandler{snapshots: make(chan []*domain.Task, 8)}

	sub, err := store.Subscribe(ctx, h)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case first := <-h.snapshots:
		assert.Empty(t, first)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = store.Create(ctx, newTask("Live", "2024-01-05"))
	require.NoError(t, err)

	select {
	case next := <-h.snapshots:
		require.Len(t, next, 1)
		assert.Equal(t, "Live", next[0].Title)
	case <-time.After(2 * time.Second):
		t.Fatal("write not observed")
	}
}

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestStore_EncryptedBlobs(t *testing.T) {
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	store, err := NewWithRepo(repo, "teamcal-test", Options{
		Clock:         fixedClock{now: testNow},
		PollInterval:  time.Hour,
		EncryptionKey: testKey,
	})
	require.NoError(t, err)

	id, err := store.Create(context.Background(), newTask("Batch 42 release", "2024-01-05"))
	require.NoError(t, err)

	ref, err := repo.Reference(store.taskRef(id), true)
	require.NoError(t, err)
	blob, err := repo.BlobObject(ref.Hash())
	require.NoError(t, err)
	r, err := blob.Reader()
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.NotContains(t, string(raw), "Batch 42")

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Batch 42 release", got.Title)

	// A store without the key refuses the sealed blob.
	plain, err := NewWithRepo(repo, "teamcal-test", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	_, err = plain.Get(id)
	assert.Error(t, err)
}

func TestNewWithRepo_InvalidKey(t *testing.T) {
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	_, err = NewWithRepo(repo, "teamcal-test", Options{EncryptionKey: "short"})
	assert.Error(t, err)
}

func TestStore_PushFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	log := &testutil.RecordingLogger{}
	store, err := New(dir, "teamcal-test", Options{
		Clock:        fixedClock{now: testNow},
		Logger:       log,
		PollInterval: time.Hour,
		Push:         true,
	})
	require.NoError(t, err)

	// No origin remote: the push fails but the write stands.
	id, err := store.Create(context.Background(), newTask("Offline", "2024-01-05"))
	require.NoError(t, err)
	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Offline", got.Title)

	require.Equal(t, 1, log.Count("WARN"))
	assert.Equal(t, "sync", log.Entries[0].Category)
	assert.Contains(t, log.Entries[0].Msg, "push failed")
}
