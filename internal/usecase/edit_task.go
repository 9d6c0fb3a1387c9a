package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/qcteam/teamcal/internal/domain"
)

// EditTaskInput contains the parameters for editing a task.
// Only non-nil patch fields are updated.
type EditTaskInput struct {
	Patch  domain.TaskPatch
	TaskID string // Task ID to edit (required)
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The task as it looks after the edit
}

// EditTask is the use case for editing an existing task.
type EditTask struct {
	tasks TaskService
	clock domain.Clock
	newID func() string
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks TaskService, clock domain.Clock, newID func() string) *EditTask {
	return &EditTask{
		tasks: tasks,
		clock: clock,
		newID: newID,
	}
}

// Execute validates the merged result and applies the patch.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	patch := in.Patch
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	current, err := uc.tasks.Get(in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	patch.Title = trimmed(patch.Title)
	patch.Assignee = trimmed(patch.Assignee)
	patch.Notes = trimmed(patch.Notes)
	if patch.Subtasks != nil {
		pruned := domain.PruneSubtasks(*patch.Subtasks, uc.newID)
		patch.Subtasks = &pruned
	}

	now := uc.clock.Now()
	merged := current.Clone()
	patch.ApplyTo(merged, now)
	if err := domain.ValidateTask(merged); err != nil {
		return nil, err
	}
	if patch.ReminderAt != nil && !patch.ClearReminder && patch.ReminderAt.Before(now) {
		return nil, &domain.ValidationError{Errs: []error{domain.ErrReminderInPast}}
	}

	if err := uc.tasks.Update(ctx, in.TaskID, patch); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if updated, err := uc.tasks.Get(in.TaskID); err == nil {
		merged = updated
	}
	return &EditTaskOutput{Task: merged}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.Ptr(strings.TrimSpace(*s))
}
