package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/confirm"
)

// ResolveConfirmationInput answers or cancels a pending confirmation.
type ResolveConfirmationInput struct {
	Token  string
	Answer confirm.Answer
	Cancel bool // Drop the request without answering
}

// ResolveConfirmationOutput reports how the confirmation ended.
type ResolveConfirmationOutput struct {
	Outcome confirm.Outcome
}

// ResolveConfirmation is the use case for the second phase of a confirmation.
type ResolveConfirmation struct {
	tasks TaskService
}

// NewResolveConfirmation creates a new ResolveConfirmation use case.
func NewResolveConfirmation(tasks TaskService) *ResolveConfirmation {
	return &ResolveConfirmation{tasks: tasks}
}

// Execute resolves the confirmation identified by in.Token.
func (uc *ResolveConfirmation) Execute(ctx context.Context, in ResolveConfirmationInput) (*ResolveConfirmationOutput, error) {
	var (
		out confirm.Outcome
		err error
	)
	if in.Cancel {
		out, err = uc.tasks.CancelConfirmation(in.Token)
	} else {
		out, err = uc.tasks.ResolveConfirmation(ctx, in.Token, in.Answer)
	}
	if err != nil {
		return nil, err
	}
	return &ResolveConfirmationOutput{Outcome: out}, nil
}

// PendingConfirmation returns the outstanding confirmation, if any.
func (uc *ResolveConfirmation) PendingConfirmation() (confirm.Request, bool) {
	return uc.tasks.PendingConfirmation()
}
