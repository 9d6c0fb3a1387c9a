package usecase

import (
	"context"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

// DailyViewOutput is the task list page for today.
type DailyViewOutput struct {
	View domain.DailyView
}

// DailyView is the use case behind the daily task list.
type DailyView struct {
	tasks TaskService
	clock domain.Clock
}

// NewDailyView creates a new DailyView use case.
func NewDailyView(tasks TaskService, clock domain.Clock) *DailyView {
	return &DailyView{tasks: tasks, clock: clock}
}

// Execute groups the collection around the current day.
func (uc *DailyView) Execute(_ context.Context) (*DailyViewOutput, error) {
	return &DailyViewOutput{View: domain.BuildDailyView(uc.tasks.Tasks(), uc.clock.Now())}, nil
}

// CalendarMonthInput selects the month. A zero Year means the current month.
type CalendarMonthInput struct {
	Year  int
	Month time.Month
}

// CalendarMonthOutput is the month grid.
type CalendarMonthOutput struct {
	Calendar domain.CalendarMonth
}

// CalendarMonth is the use case behind the month calendar.
type CalendarMonth struct {
	tasks TaskService
	clock domain.Clock
}

// NewCalendarMonth creates a new CalendarMonth use case.
func NewCalendarMonth(tasks TaskService, clock domain.Clock) *CalendarMonth {
	return &CalendarMonth{tasks: tasks, clock: clock}
}

// Execute lays out the requested month.
func (uc *CalendarMonth) Execute(_ context.Context, in CalendarMonthInput) (*CalendarMonthOutput, error) {
	now := uc.clock.Now()
	year, month := in.Year, in.Month
	if year == 0 {
		year, month = now.Year(), now.Month()
	}
	if month < time.January || month > time.December {
		return nil, domain.ErrInvalidDate
	}
	return &CalendarMonthOutput{
		Calendar: domain.BuildCalendarMonth(uc.tasks.Tasks(), year, month, domain.DayOf(now)),
	}, nil
}

// DoneReportInput selects the window. Days <= 0 means all time.
type DoneReportInput struct {
	Days int
}

// DoneReportOutput lists completed tasks, newest first.
type DoneReportOutput struct {
	Tasks []*domain.Task
}

// DoneReport is the use case behind the completed-work report.
type DoneReport struct {
	tasks TaskService
	clock domain.Clock
}

// NewDoneReport creates a new DoneReport use case.
func NewDoneReport(tasks TaskService, clock domain.Clock) *DoneReport {
	return &DoneReport{tasks: tasks, clock: clock}
}

// Execute builds the report.
func (uc *DoneReport) Execute(_ context.Context, in DoneReportInput) (*DoneReportOutput, error) {
	return &DoneReportOutput{
		Tasks: domain.CompletedReport(uc.tasks.Tasks(), uc.clock.Now(), in.Days),
	}, nil
}
