package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

func TestNewTask_Execute(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewNewTask(f.repo, f.clock, f.newID)

	out, err := uc.Execute(context.Background(), usecase.NewTaskInput{Draft: domain.TaskDraft{
		Title:    "  Calibrate scale  ",
		Date:     "2024-01-05",
		Assignee: " Noi ",
		Subtasks: []domain.Subtask{{Text: "zero"}, {Text: "   "}},
	}})
	require.NoError(t, err)

	task, err := f.repo.Get(out.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Calibrate scale", task.Title)
	assert.Equal(t, "Noi", task.Assignee)
	assert.Equal(t, domain.PriorityGeneral, task.Priority)
	assert.Equal(t, domain.StatusInProgress, task.Status)
	assert.Equal(t, "uid-1", task.CreatedBy)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, "subtask_id1", task.Subtasks[0].ID)
}

func TestNewTask_Execute_ValidationFailureNeverReachesRepository(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewNewTask(f.repo, f.clock, f.newID)

	_, err := uc.Execute(context.Background(), usecase.NewTaskInput{Draft: domain.TaskDraft{
		Title:    " ",
		Date:     "2024-01-05",
		EtaDate:  "2024-01-04",
		Reminder: &domain.Reminder{Date: "2024-01-05", Time: "08:00"},
	}})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.ErrorIs(t, err, domain.ErrEtaBeforeDate)
	assert.ErrorIs(t, err, domain.ErrReminderInPast)
	assert.Empty(t, f.repo.Tasks())
	assert.Zero(t, f.local.Saves)
}

func TestEditTask_Execute(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	uc := usecase.NewEditTask(f.repo, f.clock, f.newID)

	out, err := uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch: domain.TaskPatch{
			Title:   domain.Ptr(" Renamed "),
			EtaDate: domain.Ptr(domain.Day("2024-01-09")),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Task.Title)
	assert.Equal(t, domain.Day("2024-01-09"), out.Task.EtaDate)
}

func TestEditTask_Execute_ValidatesMergedResult(t *testing.T) {
	seed := seedTask("1", "2024-01-05", domain.StatusInProgress)
	seed.EtaDate = "2024-01-07"
	f := newFixture(t, seed)
	uc := usecase.NewEditTask(f.repo, f.clock, f.newID)

	// Moving the date past the stored ETA breaks ETA >= date.
	_, err := uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch:  domain.TaskPatch{Date: domain.Ptr(domain.Day("2024-01-08"))},
	})
	assert.ErrorIs(t, err, domain.ErrEtaBeforeDate)

	_, err = uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch:  domain.TaskPatch{Title: domain.Ptr("  ")},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	got, err := f.repo.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "task 1", got.Title)
}

func TestEditTask_Execute_Errors(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	uc := usecase.NewEditTask(f.repo, f.clock, f.newID)

	_, err := uc.Execute(context.Background(), usecase.EditTaskInput{TaskID: "1"})
	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)

	_, err = uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "missing",
		Patch:  domain.TaskPatch{Title: domain.Ptr("x")},
	})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	past := f.clock.Now().Add(-1)
	_, err = uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch:  domain.TaskPatch{ReminderAt: &past},
	})
	assert.ErrorIs(t, err, domain.ErrReminderInPast)
}

func TestEditTask_Execute_StatusKeepsDoneAtInvariant(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	uc := usecase.NewEditTask(f.repo, f.clock, f.newID)

	out, err := uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch:  domain.TaskPatch{Status: domain.Ptr(domain.StatusDone)},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Task.DoneAt)

	out, err = uc.Execute(context.Background(), usecase.EditTaskInput{
		TaskID: "1",
		Patch:  domain.TaskPatch{Status: domain.Ptr(domain.StatusInProgress)},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Task.DoneAt)
}

func TestListTasks_Execute(t *testing.T) {
	a := seedTask("a", "2024-01-05", domain.StatusInProgress)
	a.Department = domain.DepartmentQA
	a.Assignee = "Somchai"
	b := seedTask("b", "2024-01-05", domain.StatusDone)
	c := seedTask("c", "2024-01-06", domain.StatusDelayed)
	f := newFixture(t, a, b, c)
	uc := usecase.NewListTasks(f.repo)

	ids := func(in usecase.ListTasksInput) []string {
		out, err := uc.Execute(context.Background(), in)
		require.NoError(t, err)
		var got []string
		for _, t := range out.Tasks {
			got = append(got, t.ID)
		}
		return got
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(usecase.ListTasksInput{}))
	assert.Equal(t, []string{"a", "b"}, ids(usecase.ListTasksInput{Day: "2024-01-05"}))
	assert.Equal(t, []string{"c"}, ids(usecase.ListTasksInput{Status: domain.StatusDelayed}))
	assert.Equal(t, []string{"a"}, ids(usecase.ListTasksInput{Department: domain.DepartmentQA}))
	assert.Equal(t, []string{"a"}, ids(usecase.ListTasksInput{Assignee: "somc"}))
}

func TestShowTask_Execute(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	uc := usecase.NewShowTask(f.repo)

	out, err := uc.Execute(context.Background(), usecase.ShowTaskInput{TaskID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "task 1", out.Task.Title)

	_, err = uc.Execute(context.Background(), usecase.ShowTaskInput{TaskID: "2"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestChangeStatus_Execute(t *testing.T) {
	withSubtasks := seedTask("2", "2024-01-05", domain.StatusInProgress)
	withSubtasks.Subtasks = []domain.Subtask{{ID: "s1", Text: "check"}}
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress), withSubtasks)
	uc := usecase.NewChangeStatus(f.repo)
	ctx := context.Background()

	out, err := uc.Execute(ctx, usecase.ChangeStatusInput{TaskID: "1", Status: domain.StatusDone})
	require.NoError(t, err)
	assert.Nil(t, out.Confirmation)

	out, err = uc.Execute(ctx, usecase.ChangeStatusInput{TaskID: "2", Status: domain.StatusDone})
	require.NoError(t, err)
	require.NotNil(t, out.Confirmation)
	assert.Equal(t, confirm.KindCompleteOpenSubtasks, out.Confirmation.Kind)

	_, err = uc.Execute(ctx, usecase.ChangeStatusInput{TaskID: "1", Status: "finished"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDeleteAndResolve(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	del := usecase.NewDeleteTask(f.repo)
	resolve := usecase.NewResolveConfirmation(f.repo)
	ctx := context.Background()

	out, err := del.Execute(ctx, usecase.DeleteTaskInput{TaskID: "1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DeleteConfirmationToken, out.Confirmation.RequireText)

	pending, ok := resolve.PendingConfirmation()
	require.True(t, ok)
	assert.Equal(t, out.Confirmation.Token, pending.Token)

	res, err := resolve.Execute(ctx, usecase.ResolveConfirmationInput{
		Token:  out.Confirmation.Token,
		Answer: confirm.Answer{Text: "delete"},
	})
	require.NoError(t, err)
	assert.False(t, res.Outcome.Confirmed)
	assert.Equal(t, "Deletion cancelled. Incorrect confirmation text.", res.Outcome.Notice)
	assert.Len(t, f.repo.Tasks(), 1)

	out, err = del.Execute(ctx, usecase.DeleteTaskInput{TaskID: "1"})
	require.NoError(t, err)
	res, err = resolve.Execute(ctx, usecase.ResolveConfirmationInput{
		Token:  out.Confirmation.Token,
		Answer: confirm.Answer{Text: "DELETE"},
	})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Confirmed)
	assert.Empty(t, f.repo.Tasks())
}

func TestResolveConfirmation_Cancel(t *testing.T) {
	f := newFixture(t, seedTask("1", "2024-01-05", domain.StatusInProgress))
	ctx := context.Background()
	req, err := f.repo.RequestDelete(ctx, "1")
	require.NoError(t, err)
	uc := usecase.NewResolveConfirmation(f.repo)

	res, err := uc.Execute(ctx, usecase.ResolveConfirmationInput{Token: req.Token, Cancel: true})
	require.NoError(t, err)
	assert.False(t, res.Outcome.Confirmed)
	assert.Equal(t, "1", res.Outcome.TaskID)

	_, err = uc.Execute(ctx, usecase.ResolveConfirmationInput{Token: req.Token, Cancel: true})
	assert.ErrorIs(t, err, domain.ErrConfirmationNotFound)
	assert.Len(t, f.repo.Tasks(), 1)
}
