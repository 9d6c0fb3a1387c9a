package app

import (
	"github.com/qcteam/teamcal/internal/httpapi"
)

// HTTPServer returns the HTTP API wired to the container's use cases.
func (c *Container) HTTPServer() *httpapi.Server {
	return httpapi.New(httpapi.Deps{
		Feed:          c.Repo,
		Logger:        c.Logger,
		NewTask:       c.NewTaskUseCase(),
		EditTask:      c.EditTaskUseCase(),
		ListTasks:     c.ListTasksUseCase(),
		ShowTask:      c.ShowTaskUseCase(),
		ChangeStatus:  c.ChangeStatusUseCase(),
		DeleteTask:    c.DeleteTaskUseCase(),
		Confirmations: c.ResolveConfirmationUseCase(),
		DailyView:     c.DailyViewUseCase(),
		CalendarMonth: c.CalendarMonthUseCase(),
		DoneReport:    c.DoneReportUseCase(),
		WeeklyCleanup: c.WeeklyCleanupUseCase(),
		Maintenance:   c.RunMaintenanceUseCase(),
	})
}
