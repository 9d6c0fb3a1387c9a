package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/repository"
	"github.com/qcteam/teamcal/internal/testutil"
)

type fixture struct {
	repo  *repository.Repository
	local *testutil.MemoryLocal
	clock *testutil.MockClock
	ids   int
}

func (f *fixture) newID() string {
	f.ids++
	return fmt.Sprintf("id%d", f.ids)
}

// newFixture builds a local-only repository seeded with tasks, at 2024-01-05 09:00 UTC.
func newFixture(t *testing.T, tasks ...*domain.Task) *fixture {
	t.Helper()
	f := &fixture{
		local: testutil.NewMemoryLocal(tasks...),
		clock: testutil.NewMockClock(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
	}
	f.repo = repository.New(repository.Options{
		Local: f.local,
		Clock: f.clock,
		NewID: f.newID,
		Actor: "uid-1",
	})
	f.repo.Subscribe(context.Background())
	require.NoError(t, f.repo.Load(context.Background()))
	t.Cleanup(f.repo.Close)
	return f
}

func seedTask(id string, date domain.Day, status domain.Status) *domain.Task {
	t := &domain.Task{
		ID:        id,
		Title:     "task " + id,
		Date:      date,
		Priority:  domain.PriorityGeneral,
		Status:    status,
		Subtasks:  []domain.Subtask{},
		CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	if status.IsDone() {
		d := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
		t.DoneAt = &d
	}
	return t
}
