package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatch_IsEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{Title: Ptr("x")}.IsEmpty())
	assert.False(t, TaskPatch{ClearReminder: true}.IsEmpty())
}

func TestTaskPatch_ApplyTo(t *testing.T) {
	reminder := testNow.Add(time.Hour)
	task := &Task{
		Title:      "old",
		Date:       "2024-01-05",
		EtaDate:    "2024-01-06",
		Priority:   PriorityGeneral,
		Department: DepartmentQA,
		Assignee:   "Mira",
		Notes:      "n",
		Status:     StatusInProgress,
		ReminderAt: &reminder,
		Subtasks:   []Subtask{{ID: "s", Text: "one"}},
	}
	subtasks := []Subtask{{ID: "t", Text: "two", Done: true}}

	TaskPatch{
		Title:         Ptr("new"),
		EtaDate:       Ptr(Day("")),
		Priority:      Ptr(PriorityUrgent),
		Important:     Ptr(true),
		Department:    Ptr(Department("")),
		Subtasks:      &subtasks,
		ClearReminder: true,
	}.ApplyTo(task, testNow)

	assert.Equal(t, "new", task.Title)
	assert.Equal(t, Day("2024-01-05"), task.Date)
	assert.True(t, task.EtaDate.IsZero())
	assert.Equal(t, PriorityUrgent, task.Priority)
	assert.True(t, task.Important)
	assert.Empty(t, task.Department)
	assert.Equal(t, "Mira", task.Assignee)
	assert.Nil(t, task.ReminderAt)
	assert.Equal(t, subtasks, task.Subtasks)

	subtasks[0].Text = "mutated"
	assert.Equal(t, "two", task.Subtasks[0].Text)
}

func TestStatusPatch(t *testing.T) {
	task := &Task{Status: StatusInProgress}

	StatusPatch(StatusDone, testNow).ApplyTo(task, testNow.Add(time.Hour))
	assert.Equal(t, StatusDone, task.Status)
	require.NotNil(t, task.DoneAt)
	assert.Equal(t, testNow, *task.DoneAt)

	p := StatusPatch(StatusDelayed, testNow)
	assert.Nil(t, p.DoneAt)
	p.ApplyTo(task, testNow)
	assert.Equal(t, StatusDelayed, task.Status)
	assert.Nil(t, task.DoneAt)
}

func TestTaskPatch_DoneAtIgnoredWhenNotDone(t *testing.T) {
	task := &Task{Status: StatusInProgress}

	TaskPatch{DoneAt: Ptr(testNow)}.ApplyTo(task, testNow)

	assert.Nil(t, task.DoneAt)
}
