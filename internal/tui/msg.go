package tui

import (
	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/maintenance"
)

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when the views are rebuilt from the repository.
type MsgTasksLoaded struct {
	View domain.DailyView
	All  []*domain.Task
}

func (MsgTasksLoaded) sealed() {}

// MsgTasksChanged is sent when the repository reports a change.
type MsgTasksChanged struct{}

func (MsgTasksChanged) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	TaskID string
}

func (MsgTaskCreated) sealed() {}

// MsgStatusChanged is sent when a status change was applied.
type MsgStatusChanged struct {
	TaskID string
	Status domain.Status
}

func (MsgStatusChanged) sealed() {}

// MsgConfirmationRequested is sent when an operation needs the user's answer.
type MsgConfirmationRequested struct {
	Request confirm.Request
}

func (MsgConfirmationRequested) sealed() {}

// MsgConfirmationResolved is sent when a confirmation was answered or cancelled.
type MsgConfirmationResolved struct {
	Outcome confirm.Outcome
}

func (MsgConfirmationResolved) sealed() {}

// MsgMaintenanceDone is sent after an on-demand maintenance run.
type MsgMaintenanceDone struct {
	Err    error
	Report maintenance.Report
}

func (MsgMaintenanceDone) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// Compile-time check that all message types implement Msg.
var (
	_ Msg = MsgTasksLoaded{}
	_ Msg = MsgTasksChanged{}
	_ Msg = MsgTaskCreated{}
	_ Msg = MsgStatusChanged{}
	_ Msg = MsgConfirmationRequested{}
	_ Msg = MsgConfirmationResolved{}
	_ Msg = MsgMaintenanceDone{}
	_ Msg = MsgError{}
)
