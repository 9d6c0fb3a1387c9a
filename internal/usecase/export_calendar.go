package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/infra/gcal"
)

// ExportCalendarInput limits the export. Zero From exports everything.
type ExportCalendarInput struct {
	From        domain.Day // First day to export
	IncludeDone bool
}

// ExportCalendarOutput reports what was exported.
type ExportCalendarOutput struct {
	Result gcal.Result
}

// ExportCalendar is the use case for pushing tasks to Google Calendar.
type ExportCalendar struct {
	tasks    TaskService
	exporter CalendarExporter
}

// NewExportCalendar creates a new ExportCalendar use case.
func NewExportCalendar(tasks TaskService, exporter CalendarExporter) *ExportCalendar {
	return &ExportCalendar{tasks: tasks, exporter: exporter}
}

// Execute exports the selected tasks.
func (uc *ExportCalendar) Execute(ctx context.Context, in ExportCalendarInput) (*ExportCalendarOutput, error) {
	var selected []*domain.Task
	for _, t := range uc.tasks.Tasks() {
		if !in.IncludeDone && t.Status.IsDone() {
			continue
		}
		last := t.Date
		if !t.EtaDate.IsZero() {
			last = t.EtaDate
		}
		if !in.From.IsZero() && last.Before(in.From) {
			continue
		}
		selected = append(selected, t)
	}
	res, err := uc.exporter.Export(ctx, selected)
	return &ExportCalendarOutput{Result: res}, err
}
