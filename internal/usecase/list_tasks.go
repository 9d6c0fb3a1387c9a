package usecase

import (
	"context"
	"strings"

	"github.com/qcteam/teamcal/internal/domain"
)

// ListTasksInput filters the collection. Zero fields match everything.
type ListTasksInput struct {
	Day        domain.Day
	Status     domain.Status
	Department domain.Department
	Assignee   string // Case-insensitive substring
}

// ListTasksOutput contains the matching tasks in collection order.
type ListTasksOutput struct {
	Tasks []*domain.Task
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks TaskService
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks TaskService) *ListTasks {
	return &ListTasks{tasks: tasks}
}

// Execute returns the tasks matching in.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	assignee := strings.ToLower(strings.TrimSpace(in.Assignee))
	out := []*domain.Task{}
	for _, t := range uc.tasks.Tasks() {
		if in.Day != "" && t.Date != in.Day {
			continue
		}
		if in.Status != "" && t.Status != in.Status {
			continue
		}
		if in.Department != "" && t.Department != in.Department {
			continue
		}
		if assignee != "" && !strings.Contains(strings.ToLower(t.Assignee), assignee) {
			continue
		}
		out = append(out, t)
	}
	return &ListTasksOutput{Tasks: out}, nil
}
