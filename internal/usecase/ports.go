// Package usecase contains application use cases.
package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/infra/gcal"
	"github.com/qcteam/teamcal/internal/maintenance"
)

// TaskService is the repository surface the use cases drive.
type TaskService interface {
	Tasks() []*domain.Task
	Get(id string) (*domain.Task, error)
	Create(ctx context.Context, draft domain.TaskDraft) (string, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) error
	ChangeStatus(ctx context.Context, id string, status domain.Status) (*confirm.Request, error)
	RequestDelete(ctx context.Context, id string) (confirm.Request, error)
	ResolveConfirmation(ctx context.Context, token string, ans confirm.Answer) (confirm.Outcome, error)
	CancelConfirmation(token string) (confirm.Outcome, error)
	PendingConfirmation() (confirm.Request, bool)
}

// MaintenanceRunner runs the startup maintenance jobs.
type MaintenanceRunner interface {
	RunAll(ctx context.Context) (maintenance.Report, error)
}

// CalendarExporter pushes tasks to an external calendar.
type CalendarExporter interface {
	Export(ctx context.Context, tasks []*domain.Task) (gcal.Result, error)
}
