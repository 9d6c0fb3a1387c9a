package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/confirm"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string
}

// DeleteTaskOutput carries the typed confirmation the deletion waits for.
type DeleteTaskOutput struct {
	Confirmation confirm.Request
}

// DeleteTask is the use case for requesting a deletion.
type DeleteTask struct {
	tasks TaskService
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks TaskService) *DeleteTask {
	return &DeleteTask{tasks: tasks}
}

// Execute registers the deletion; it happens once the confirmation resolves.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	req, err := uc.tasks.RequestDelete(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &DeleteTaskOutput{Confirmation: req}, nil
}
