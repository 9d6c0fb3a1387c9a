package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayoutSizes()
		return m, nil

	case MsgTasksLoaded:
		m.view = msg.View
		m.all = msg.All
		m.updateTaskList()
		return m, nil

	case MsgTasksChanged:
		return m, tea.Batch(m.loadTasks(), m.waitForChange())

	case MsgTaskCreated:
		m.mode = ModeNormal
		m.titleInput.Reset()
		m.titleInput.Blur()
		return m, m.loadTasks()

	case MsgStatusChanged:
		m.mode = ModeNormal
		m.notice = ""
		return m, m.loadTasks()

	case MsgConfirmationRequested:
		req := msg.Request
		m.pending = &req
		m.mode = ModeConfirm
		m.confirmInput.Reset()
		if req.RequireText != "" {
			return m, m.confirmInput.Focus()
		}
		return m, nil

	case MsgConfirmationResolved:
		m.pending = nil
		m.mode = ModeNormal
		m.confirmInput.Blur()
		m.notice = msg.Outcome.Notice
		return m, m.loadTasks()

	case MsgMaintenanceDone:
		m.err = msg.Err
		m.notice = fmt.Sprintf("Rolled over %d, cleaned up %d", len(msg.Report.Rollover.Moved), len(msg.Report.Cleanup.Deleted))
		return m, m.loadTasks()

	case MsgError:
		m.err = msg.Err
		if m.mode == ModeInputTitle || m.mode == ModeStatus {
			m.mode = ModeNormal
		}
		return m, nil
	}

	return m, nil
}

// handleKeyMsg routes key presses by mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalMode(msg)
	case ModeInputTitle:
		return m.handleInputTitleMode(msg)
	case ModeStatus:
		return m.handleStatusMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeDetail:
		return m.handleDetailMode(msg)
	}
	return m, nil
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Section):
		m.section = m.section.Next()
		m.taskList.Select(0)
		m.updateTaskList()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Maintenance):
		return m, m.runMaintenance()

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputTitle
		m.titleInput.Reset()
		return m, m.titleInput.Focus()
	}

	task := m.SelectedTask()
	if task != nil {
		switch {
		case key.Matches(msg, m.keys.Detail):
			m.mode = ModeDetail
			m.initDetailViewport()
			return m, nil

		case key.Matches(msg, m.keys.Done):
			return m, m.changeStatus(task.ID, domain.StatusDone)

		case key.Matches(msg, m.keys.EditStatus):
			m.mode = ModeStatus
			m.statusCursor = statusIndex(task.Status)
			return m, nil

		case key.Matches(msg, m.keys.Important):
			return m, m.toggleImportant(task)

		case key.Matches(msg, m.keys.Delete):
			return m, m.requestDelete(task.ID)
		}
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.titleInput.Reset()
		m.titleInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.err = domain.ErrEmptyTitle
			return m, nil
		}
		return m, m.createTask(title, m.sectionDay())
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func statusIndex(s domain.Status) int {
	for i, st := range domain.AllStatuses() {
		if st == s {
			return i
		}
	}
	return 0
}

func (m *Model) handleStatusMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := domain.AllStatuses()

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.statusCursor > 0 {
			m.statusCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.statusCursor < len(statuses)-1 {
			m.statusCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		task := m.SelectedTask()
		m.mode = ModeNormal
		if task == nil {
			return m, nil
		}
		return m, m.changeStatus(task.ID, statuses[m.statusCursor])
	}
	return m, nil
}

// handleConfirmMode answers the pending confirmation. Typed confirmations
// submit the input on enter; yes/no confirmations take y or n.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending == nil {
		m.mode = ModeNormal
		return m, nil
	}
	token := m.pending.Token

	if key.Matches(msg, m.keys.Escape) {
		return m, m.resolveConfirmation(usecase.ResolveConfirmationInput{Token: token, Cancel: true})
	}

	if m.pending.RequireText != "" {
		if key.Matches(msg, m.keys.Submit) {
			in := usecase.ResolveConfirmationInput{Token: token}
			in.Answer.Text = m.confirmInput.Value()
			return m, m.resolveConfirmation(in)
		}
		var cmd tea.Cmd
		m.confirmInput, cmd = m.confirmInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "y", "Y", "enter":
		in := usecase.ResolveConfirmationInput{Token: token}
		in.Answer.Yes = true
		return m, m.resolveConfirmation(in)
	case "n", "N":
		return m, m.resolveConfirmation(usecase.ResolveConfirmationInput{Token: token})
	}
	return m, nil
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape, m.keys.Help, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) handleDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape, m.keys.Detail, m.keys.Quit) {
		m.mode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}
