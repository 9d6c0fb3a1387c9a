package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return string(rune('0' + n))
	}
}

func TestTaskDraft_Normalize(t *testing.T) {
	d := TaskDraft{
		Title:    "  Calibrate  ",
		Assignee: " Mira ",
		Notes:    "\nnotes\n",
		Subtasks: []Subtask{{Text: "one"}, {Text: "   "}, {ID: "keep", Text: "two"}},
	}

	d.Normalize(seqID())

	assert.Equal(t, "Calibrate", d.Title)
	assert.Equal(t, "Mira", d.Assignee)
	assert.Equal(t, "notes", d.Notes)
	assert.Equal(t, PriorityGeneral, d.Priority)
	assert.Equal(t, []Subtask{{ID: "subtask_1", Text: "one"}, {ID: "keep", Text: "two"}}, d.Subtasks)
}

func TestTaskDraft_Validate(t *testing.T) {
	valid := func() TaskDraft {
		return TaskDraft{Title: "x", Date: "2024-01-05", Priority: PriorityGeneral}
	}

	tests := []struct {
		name   string
		modify func(d *TaskDraft)
		want   []error
	}{
		{"valid", func(*TaskDraft) {}, nil},
		{"eta same day", func(d *TaskDraft) { d.EtaDate = "2024-01-05" }, nil},
		{"future reminder", func(d *TaskDraft) { d.Reminder = &Reminder{Date: "2024-01-05", Time: "09:30"} }, nil},
		{"blank title", func(d *TaskDraft) { d.Title = " " }, []error{ErrEmptyTitle}},
		{"missing date", func(d *TaskDraft) { d.Date = "" }, []error{ErrInvalidDate}},
		{"eta before date", func(d *TaskDraft) { d.EtaDate = "2024-01-04" }, []error{ErrEtaBeforeDate}},
		{"bad eta", func(d *TaskDraft) { d.EtaDate = "soon" }, []error{ErrInvalidDate}},
		{"bad priority", func(d *TaskDraft) { d.Priority = "high" }, []error{ErrInvalidPriority}},
		{"bad department", func(d *TaskDraft) { d.Department = "Sales" }, []error{ErrInvalidDepartment}},
		{"reminder without time", func(d *TaskDraft) { d.Reminder = &Reminder{Date: "2024-01-06"} }, []error{ErrReminderMissing}},
		{"past reminder", func(d *TaskDraft) { d.Reminder = &Reminder{Date: "2024-01-05", Time: "08:59"} }, []error{ErrReminderInPast}},
		{"several", func(d *TaskDraft) { d.Title = ""; d.Department = "Sales" }, []error{ErrEmptyTitle, ErrInvalidDepartment}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.modify(&d)

			err := d.Validate(testNow)

			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestTaskDraft_ToTask(t *testing.T) {
	d := TaskDraft{
		Title:     "x",
		Date:      "2024-01-05",
		EtaDate:   "2024-01-07",
		Reminder:  &Reminder{Date: "2024-01-06", Time: "14:30"},
		Subtasks:  []Subtask{{ID: "s", Text: "one"}},
		Important: true,
	}

	task := d.ToTask(time.UTC)

	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, PriorityGeneral, task.Priority)
	assert.Nil(t, task.DoneAt)
	assert.True(t, task.Important)
	require.NotNil(t, task.ReminderAt)
	assert.Equal(t, time.Date(2024, 1, 6, 14, 30, 0, 0, time.UTC), *task.ReminderAt)

	task.Subtasks[0].Done = true
	assert.False(t, d.Subtasks[0].Done)
}

func TestReminder_At(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)

	at, err := Reminder{Date: "2024-01-06", Time: "07:05"}.At(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 22, 5, 0, 0, time.UTC), at.UTC())

	_, err = Reminder{Date: "2024-01-06", Time: "25:00"}.At(loc)
	assert.ErrorIs(t, err, ErrReminderMissing)
	_, err = Reminder{Time: "10:00"}.At(loc)
	assert.ErrorIs(t, err, ErrReminderMissing)
}

func TestValidateTask(t *testing.T) {
	task := &Task{Title: "x", Date: "2024-01-05", Priority: PriorityUrgent, Status: StatusDelayed}
	assert.NoError(t, ValidateTask(task))

	task.Status = "paused"
	task.EtaDate = "2024-01-01"
	err := ValidateTask(task)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, ErrEtaBeforeDate)
	assert.Contains(t, err.Error(), "invalid task: ")
}
