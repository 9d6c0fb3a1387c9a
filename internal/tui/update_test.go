package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/repository"
	"github.com/qcteam/teamcal/internal/testutil"
	"github.com/qcteam/teamcal/internal/usecase"
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

// newTestModel returns a loaded model over a local-only container.
func newTestModel(t *testing.T, tasks ...*domain.Task) *Model {
	t.Helper()
	c := app.NewWithDeps(app.Config{}, nil, nil, testutil.NewMemoryLocal(tasks...), testutil.StaticIdentity{}, testutil.NewMockClock(now), nil)
	_, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.loadTasks()())
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestUpdate_TasksLoadedShowsToday(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"), task("b", "2024-01-06"))

	require.Len(t, m.taskList.Items(), 1)
	assert.Equal(t, "a", m.SelectedTask().ID)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, SectionTomorrow, m.section)
	require.Len(t, m.taskList.Items(), 1)
	assert.Equal(t, "b", m.SelectedTask().ID)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, SectionAll, m.section)
	assert.Len(t, m.taskList.Items(), 2)
}

func TestUpdate_NewTask(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("n"))
	assert.Equal(t, ModeInputTitle, m.mode)

	press(m, keyRunes("Label jars"))
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	created, ok := msg.(MsgTaskCreated)
	require.True(t, ok, "got %T", msg)

	m.Update(created)
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.titleInput.Value())

	got, err := m.container.Repo.Get(created.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Label jars", got.Title)
	assert.Equal(t, domain.Day("2024-01-05"), got.Date)
}

func TestUpdate_NewTaskRejectsBlankTitle(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("n"))
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, domain.ErrEmptyTitle)
	assert.Equal(t, ModeInputTitle, m.mode)

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_DoneWithoutSubtasksApplies(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	msg := press(m, keyRunes("x"))()
	assert.Equal(t, MsgStatusChanged{TaskID: "a", Status: domain.StatusDone}, msg)

	got, err := m.container.Repo.Get("a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func TestUpdate_DoneWithOpenSubtasksAsksFirst(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05", domain.Subtask{ID: "s", Text: "seal"}))

	msg := press(m, keyRunes("x"))()
	req, ok := msg.(MsgConfirmationRequested)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, confirm.KindCompleteOpenSubtasks, req.Request.Kind)

	m.Update(req)
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), req.Request.Prompt)

	resolved := press(m, keyRunes("n"))()
	m.Update(resolved)
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, repository.NoticeStatusUnchanged, m.notice)

	got, err := m.container.Repo.Get("a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestUpdate_ConfirmCompletesSubtasks(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05", domain.Subtask{ID: "s", Text: "seal"}))

	m.Update(press(m, keyRunes("x"))())
	resolved := press(m, keyRunes("y"))()
	out, ok := resolved.(MsgConfirmationResolved)
	require.True(t, ok, "got %T", resolved)
	assert.True(t, out.Outcome.Confirmed)

	got, err := m.container.Repo.Get("a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	assert.True(t, got.Subtasks[0].Done)
}

func TestUpdate_DeleteNeedsTypedToken(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	m.Update(press(m, keyRunes("d"))())
	require.Equal(t, ModeConfirm, m.mode)
	require.NotNil(t, m.pending)
	assert.Equal(t, domain.DeleteConfirmationToken, m.pending.RequireText)

	// "y" is text here, not a yes.
	press(m, keyRunes("y"))
	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	assert.Equal(t, repository.NoticeDeleteCancelled, m.notice)
	_, err := m.container.Repo.Get("a")
	require.NoError(t, err)

	m.Update(press(m, keyRunes("d"))())
	press(m, keyRunes("DELETE"))
	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	assert.Equal(t, ModeNormal, m.mode)
	_, err = m.container.Repo.Get("a")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdate_EscCancelsConfirmation(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	m.Update(press(m, keyRunes("d"))())
	msg := press(m, tea.KeyMsg{Type: tea.KeyEsc})()
	out, ok := msg.(MsgConfirmationResolved)
	require.True(t, ok, "got %T", msg)
	assert.False(t, out.Outcome.Confirmed)

	_, pending := m.container.Repo.PendingConfirmation()
	assert.False(t, pending)
}

func TestUpdate_StatusPicker(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	press(m, keyRunes("e"))
	require.Equal(t, ModeStatus, m.mode)
	assert.Equal(t, 0, m.statusCursor)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	msg := press(m, tea.KeyMsg{Type: tea.KeyEnter})()
	assert.Equal(t, MsgStatusChanged{TaskID: "a", Status: domain.StatusDelayed}, msg)
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_ToggleImportant(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	assert.Nil(t, press(m, keyRunes("*"))())
	got, err := m.container.Repo.Get("a")
	require.NoError(t, err)
	assert.True(t, got.Important)
}

func TestUpdate_ChangeFeedReloads(t *testing.T) {
	m := newTestModel(t)
	m.Init()
	defer m.Close()

	_, err := m.container.NewTaskUseCase().Execute(context.Background(), usecase.NewTaskInput{
		Draft: domain.TaskDraft{Title: "From elsewhere", Date: "2024-01-05"},
	})
	require.NoError(t, err)

	done := make(chan tea.Msg, 1)
	go func() { done <- m.waitForChange()() }()
	select {
	case msg := <-done:
		assert.Equal(t, MsgTasksChanged{}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	m.Update(m.loadTasks()())
	require.Len(t, m.taskList.Items(), 1)
	assert.Equal(t, "From elsewhere", m.SelectedTask().Title)
}

func TestUpdate_Maintenance(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-03"))

	msg := press(m, keyRunes("M"))()
	done, ok := msg.(MsgMaintenanceDone)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, done.Err)

	m.Update(done)
	assert.Contains(t, m.notice, "Rolled over 0")
}

func TestUpdate_HelpAndDetail(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"))

	press(m, keyRunes("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeDetail, m.mode)
	assert.Contains(t, m.View(), "task a")
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestView_Header(t *testing.T) {
	m := newTestModel(t, task("a", "2024-01-05"), task("b", "2024-01-06"))

	out := m.View()
	assert.Contains(t, out, "Today (1)")
	assert.Contains(t, out, "Tomorrow (1)")
	assert.Contains(t, out, "All (2)")
	assert.Contains(t, out, "○ local")
	assert.Contains(t, out, "task a")
}

func TestView_EmptyState(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "Nothing scheduled today")
}
