package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailyView(t *testing.T) {
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)
	tasks := []*Task{
		{ID: "today", Date: "2024-01-05", Status: StatusInProgress},
		{ID: "tomorrow", Date: "2024-01-06", Status: StatusInProgress},
		{ID: "starred", Date: "2024-01-09", Status: StatusInProgress, Important: true},
		{ID: "delayed", Date: "2024-01-05", Status: StatusDelayed},
		{ID: "remind", Date: "2024-01-10", Status: StatusInProgress, ReminderAt: &future},
		{ID: "reminded", Date: "2024-01-10", Status: StatusInProgress, ReminderAt: &past},
	}

	v := BuildDailyView(tasks, testNow)

	assert.Equal(t, Day("2024-01-05"), v.Today)
	assert.Equal(t, Day("2024-01-06"), v.Tomorrow)
	assert.Equal(t, []string{"today", "delayed"}, ids(v.Due))
	assert.Equal(t, []string{"tomorrow"}, ids(v.Next))
	assert.Equal(t, []string{"starred", "delayed", "remind"}, ids(v.Alerts))
}

func TestBuildDailyView_EmptySlices(t *testing.T) {
	v := BuildDailyView(nil, testNow)

	assert.NotNil(t, v.Due)
	assert.NotNil(t, v.Next)
	assert.NotNil(t, v.Alerts)
}

func TestBuildCalendarMonth(t *testing.T) {
	tasks := []*Task{
		{
			ID: "a", Title: "A", Date: "2024-02-29", Department: DepartmentQC,
			Priority: PriorityUrgent, Status: StatusDelayed,
			Subtasks: []Subtask{{Done: true}, {}},
		},
		{ID: "b", Title: "B", Date: "2024-03-01"},
	}

	cal := BuildCalendarMonth(tasks, 2024, time.February, "2024-02-10")

	assert.Equal(t, 4, cal.Leading) // 2024-02-01 is a Thursday
	require.Len(t, cal.Days, 29)
	assert.True(t, cal.Days[9].Today)
	assert.False(t, cal.Days[10].Today)

	last := cal.Days[28]
	assert.Equal(t, Day("2024-02-29"), last.Date)
	require.Len(t, last.Entries, 1)
	e := last.Entries[0]
	assert.Equal(t, "a", e.ID)
	assert.Equal(t, DepartmentQC.Color(), e.Color)
	assert.True(t, e.Urgent)
	assert.True(t, e.Delayed)
	assert.Equal(t, 1, e.SubtasksDone)
	assert.Equal(t, 2, e.SubtasksTotal)

	assert.NotNil(t, cal.Days[0].Entries)
	assert.Empty(t, cal.Days[0].Entries)
}

func TestCompletedReport(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		v := testNow.Add(-d)
		return &v
	}
	tasks := []*Task{
		{ID: "old", Status: StatusDone, DoneAt: at(30 * 24 * time.Hour)},
		{ID: "yesterday", Status: StatusDone, DoneAt: at(24 * time.Hour)},
		{ID: "open", Status: StatusInProgress},
		{ID: "hour", Status: StatusDone, DoneAt: at(time.Hour)},
	}

	assert.Equal(t, []string{"hour", "yesterday"}, ids(CompletedReport(tasks, testNow, 7)))
	assert.Equal(t, []string{"hour", "yesterday", "old"}, ids(CompletedReport(tasks, testNow, 0)))
	assert.Empty(t, CompletedReport(nil, testNow, 7))
}

func ids(tasks []*Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
