package usecase

import (
	"context"
	"fmt"

	"github.com/qcteam/teamcal/internal/domain"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string
}

// ShowTaskOutput contains the task.
type ShowTaskOutput struct {
	Task *domain.Task
}

// ShowTask is the use case for reading one task.
type ShowTask struct {
	tasks TaskService
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks TaskService) *ShowTask {
	return &ShowTask{tasks: tasks}
}

// Execute returns the task.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := uc.tasks.Get(in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &ShowTaskOutput{Task: task}, nil
}
