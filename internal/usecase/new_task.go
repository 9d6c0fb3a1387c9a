package usecase

import (
	"context"
	"fmt"

	"github.com/qcteam/teamcal/internal/domain"
)

// NewTaskInput contains the parameters for creating a new task.
type NewTaskInput struct {
	Draft domain.TaskDraft
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	TaskID string // The ID of the created task
}

// NewTask is the use case for creating a new task.
type NewTask struct {
	tasks TaskService
	clock domain.Clock
	newID func() string
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks TaskService, clock domain.Clock, newID func() string) *NewTask {
	return &NewTask{
		tasks: tasks,
		clock: clock,
		newID: newID,
	}
}

// Execute validates the draft and creates the task.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	draft := in.Draft
	draft.Normalize(uc.newID)
	if err := draft.Validate(uc.clock.Now()); err != nil {
		return nil, err
	}

	id, err := uc.tasks.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &NewTaskOutput{TaskID: id}, nil
}
