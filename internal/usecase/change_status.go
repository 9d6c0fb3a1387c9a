package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
)

// ChangeStatusInput contains the parameters for a status change.
type ChangeStatusInput struct {
	TaskID string
	Status domain.Status
}

// ChangeStatusOutput is either an applied change or a pending confirmation.
type ChangeStatusOutput struct {
	Confirmation *confirm.Request // Non-nil when the user must confirm first
}

// ChangeStatus is the use case for moving a task between statuses.
type ChangeStatus struct {
	tasks TaskService
}

// NewChangeStatus creates a new ChangeStatus use case.
func NewChangeStatus(tasks TaskService) *ChangeStatus {
	return &ChangeStatus{tasks: tasks}
}

// Execute changes the status or returns the confirmation it needs.
func (uc *ChangeStatus) Execute(ctx context.Context, in ChangeStatusInput) (*ChangeStatusOutput, error) {
	status, err := domain.ParseStatus(string(in.Status))
	if err != nil {
		return nil, err
	}
	req, err := uc.tasks.ChangeStatus(ctx, in.TaskID, status)
	if err != nil {
		return nil, err
	}
	return &ChangeStatusOutput{Confirmation: req}, nil
}
