package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/domain"
)

type recordingHandler struct {
	snapshots chan []*domain.Task
	errs      chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		snapshots: make(chan []*domain.Task, 16),
		errs:      make(chan error, 1),
	}
}

func (h *recordingHandler) OnSnapshot(tasks []*domain.Task) { h.snapshots <- tasks }
func (h *recordingHandler) OnError(err error)               { h.errs <- err }

type fakeSource struct {
	err   error
	tasks []*domain.Task
	mu    sync.Mutex
}

func (s *fakeSource) list(_ context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return domain.CloneTasks(s.tasks), nil
}

func (s *fakeSource) set(tasks []*domain.Task, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.err = err
}

func waitSnapshot(t *testing.T, h *recordingHandler) []*domain.Task {
	t.Helper()
	select {
	case s := <-h.snapshots:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestPoller_DeliversFirstSnapshotAndChanges(t *testing.T) {
	src := &fakeSource{}
	src.set([]*domain.Task{{ID: "1", Title: "A"}}, nil)
	p := New(src.list, time.Hour)
	h := newRecordingHandler()

	sub, err := p.Subscribe(context.Background(), h)
	require.NoError(t, err)
	defer sub.Close()

	first := waitSnapshot(t, h)
	require.Len(t, first, 1)

	// Unchanged poll emits nothing
	p.Trigger()
	select {
	case <-h.snapshots:
		t.Fatal("unchanged collection should not be re-delivered")
	case <-time.After(100 * time.Millisecond):
	}

	src.set([]*domain.Task{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}, nil)
	p.Trigger()
	second := waitSnapshot(t, h)
	assert.Len(t, second, 2)
}

func TestPoller_ErrorEndsFeed(t *testing.T) {
	src := &fakeSource{}
	src.set(nil, errors.New("connection refused"))
	p := New(src.list, time.Hour)
	h := newRecordingHandler()

	sub, err := p.Subscribe(context.Background(), h)
	require.NoError(t, err)

	select {
	case err := <-h.errs:
		assert.Contains(t, err.Error(), "connection refused")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
	sub.Close()
	assert.Empty(t, h.snapshots)
}

func TestPoller_BeforeHookFailure(t *testing.T) {
	src := &fakeSource{}
	p := New(src.list, time.Hour).WithBefore(func(context.Context) error {
		return errors.New("fetch failed")
	})
	h := newRecordingHandler()

	sub, err := p.Subscribe(context.Background(), h)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case err := <-h.errs:
		assert.Contains(t, err.Error(), "fetch failed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestPoller_CloseIsIdempotent(t *testing.T) {
	src := &fakeSource{}
	p := New(src.list, time.Hour)
	h := newRecordingHandler()

	sub, err := p.Subscribe(context.Background(), h)
	require.NoError(t, err)
	waitSnapshot(t, h)

	sub.Close()
	sub.Close()
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint([]*domain.Task{{ID: "1", Title: "A"}})
	require.NoError(t, err)
	b, err := Fingerprint([]*domain.Task{{ID: "1", Title: "A"}})
	require.NoError(t, err)
	c, err := Fingerprint([]*domain.Task{{ID: "1", Title: "B"}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
