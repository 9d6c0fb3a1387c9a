package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/testutil"
)

var now = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func task(id string, date domain.Day, subtasks ...domain.Subtask) *domain.Task {
	if subtasks == nil {
		subtasks = []domain.Subtask{}
	}
	return &domain.Task{
		ID:        id,
		Title:     "task " + id,
		Date:      date,
		Priority:  domain.PriorityGeneral,
		Status:    domain.StatusInProgress,
		Subtasks:  subtasks,
		CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// newSession returns a fresh local-only container over local.
// A container bootstraps once, so every command run gets its own.
func newSession(t *testing.T, local *testutil.MemoryLocal) *app.Container {
	t.Helper()
	c := app.NewWithDeps(app.Config{}, nil, nil, local, testutil.StaticIdentity{}, testutil.NewMockClock(now), nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// run executes the root command with args and stdin and returns combined output.
func run(t *testing.T, local *testutil.MemoryLocal, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(newSession(t, local), "test")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func stored(t *testing.T, local *testutil.MemoryLocal, id string) *domain.Task {
	t.Helper()
	for _, task := range local.Stored() {
		if task.ID == id {
			return task
		}
	}
	require.FailNow(t, "task not stored", id)
	return nil
}
