package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"

	"github.com/qcteam/teamcal/internal/domain"
)

func TestTaskMeta(t *testing.T) {
	task := &domain.Task{
		Title:      "Check labels",
		Date:       "2024-01-05",
		EtaDate:    "2024-01-07",
		Department: domain.DepartmentQC,
		Assignee:   "Mira",
		Notes:      "line one\nline two",
		Subtasks: []domain.Subtask{
			{ID: "a", Text: "front", Done: true},
			{ID: "b", Text: "back"},
		},
	}
	assert.Equal(t, "2024-01-05 → 2024-01-07 · QC · @Mira · 1/2 · line one line two", taskMeta(task))

	bare := &domain.Task{Date: "2024-01-05", EtaDate: "2024-01-05"}
	assert.Equal(t, "2024-01-05", taskMeta(bare))
}

func TestTaskDelegate_Render(t *testing.T) {
	styles := DefaultStyles()
	d := newTaskDelegate(styles)
	task := &domain.Task{
		ID:        "t1",
		Title:     "Calibrate the humidity chamber before the audit starts next week",
		Date:      "2024-01-05",
		Priority:  domain.PriorityUrgent,
		Important: true,
		Status:    domain.StatusDelayed,
	}
	m := list.New([]list.Item{taskItem{task: task}}, d, 40, 10)

	var buf bytes.Buffer
	d.Render(&buf, m, 0, taskItem{task: task})
	out := buf.String()

	assert.Contains(t, out, "[URGENT]")
	assert.Contains(t, out, "★")
	assert.Contains(t, out, ">")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2024-01-05")
	assert.Len(t, strings.Split(out, "\n"), d.Height())
}

func TestTaskItem_FilterValue(t *testing.T) {
	item := taskItem{task: &domain.Task{Title: "Weigh samples"}}
	assert.Equal(t, "Weigh samples", item.FilterValue())
}

func TestEscapeNewlines(t *testing.T) {
	assert.Equal(t, "a b c d", escapeNewlines("a\r\nb\nc\rd"))
}
