package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	err       error
	pending   *confirm.Request
	changes   chan struct{}
	stopFeed  func()

	// State
	view   domain.DailyView
	all    []*domain.Task
	notice string

	// Components
	keys           KeyMap
	styles         Styles
	help           help.Model
	taskList       list.Model
	detailViewport viewport.Model

	// Input state
	titleInput   textinput.Model
	confirmInput textinput.Model

	// Numeric state (smaller types last)
	mode         Mode
	section      Section
	statusCursor int
	width        int
	height       int
}

// New creates a new TUI Model with the given container.
func New(c *app.Container) *Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	ci := textinput.New()
	ci.Placeholder = domain.DeleteConfirmationToken
	ci.CharLimit = 20

	styles := DefaultStyles()
	taskList := list.New([]list.Item{}, newTaskDelegate(styles), 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetShowPagination(false)
	taskList.SetFilteringEnabled(false)
	taskList.DisableQuitKeybindings()

	return &Model{
		container:    c,
		mode:         ModeNormal,
		section:      SectionToday,
		keys:         DefaultKeyMap(),
		styles:       styles,
		help:         help.New(),
		taskList:     taskList,
		titleInput:   ti,
		confirmInput: ci,
		changes:      make(chan struct{}, 1),
	}
}

// Init subscribes to repository changes and loads the first view.
func (m *Model) Init() tea.Cmd {
	if m.stopFeed == nil {
		changes := m.changes
		m.stopFeed = m.container.Repo.OnChange(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}
	return tea.Batch(m.loadTasks(), m.waitForChange())
}

// Close unregisters the change listener.
func (m *Model) Close() {
	if m.stopFeed != nil {
		m.stopFeed()
		m.stopFeed = nil
	}
}

// waitForChange blocks until the repository reports a change.
func (m *Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return MsgTasksChanged{}
	}
}

// loadTasks returns a command that rebuilds the daily view and the full list.
func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		daily, err := m.container.DailyViewUseCase().Execute(ctx)
		if err != nil {
			return MsgError{Err: err}
		}
		all, err := m.container.ListTasksUseCase().Execute(ctx, usecase.ListTasksInput{})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksLoaded{View: daily.View, All: all.Tasks}
	}
}

func (m *Model) createTask(title string, day domain.Day) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.NewTaskUseCase().Execute(context.Background(), usecase.NewTaskInput{
			Draft: domain.TaskDraft{Title: title, Date: day},
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{TaskID: out.TaskID}
	}
}

func (m *Model) changeStatus(id string, status domain.Status) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ChangeStatusUseCase().Execute(context.Background(), usecase.ChangeStatusInput{
			TaskID: id,
			Status: status,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		if out.Confirmation != nil {
			return MsgConfirmationRequested{Request: *out.Confirmation}
		}
		return MsgStatusChanged{TaskID: id, Status: status}
	}
}

func (m *Model) toggleImportant(task *domain.Task) tea.Cmd {
	id, important := task.ID, !task.Important
	return func() tea.Msg {
		_, err := m.container.EditTaskUseCase().Execute(context.Background(), usecase.EditTaskInput{
			TaskID: id,
			Patch:  domain.TaskPatch{Important: &important},
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return nil
	}
}

func (m *Model) requestDelete(id string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.DeleteTaskUseCase().Execute(context.Background(), usecase.DeleteTaskInput{TaskID: id})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgConfirmationRequested{Request: out.Confirmation}
	}
}

func (m *Model) resolveConfirmation(in usecase.ResolveConfirmationInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ResolveConfirmationUseCase().Execute(context.Background(), in)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgConfirmationResolved{Outcome: out.Outcome}
	}
}

func (m *Model) runMaintenance() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.RunMaintenanceUseCase().Execute(context.Background())
		return MsgMaintenanceDone{Report: out.Report, Err: err}
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.taskList.SelectedItem() == nil {
		return nil
	}
	if ti, ok := m.taskList.SelectedItem().(taskItem); ok {
		return ti.task
	}
	return nil
}

// sectionTasks returns the tasks shown for the current section.
func (m *Model) sectionTasks() []*domain.Task {
	switch m.section {
	case SectionToday:
		return m.view.Due
	case SectionTomorrow:
		return m.view.Next
	case SectionAlerts:
		return m.view.Alerts
	case SectionAll:
		return m.all
	}
	return nil
}

// sectionDay is the day new tasks are created on.
func (m *Model) sectionDay() domain.Day {
	if m.section == SectionTomorrow {
		return m.view.Tomorrow
	}
	return m.view.Today
}

// updateTaskList refreshes the list items, keeping the selection on the same task.
func (m *Model) updateTaskList() {
	var selectedID string
	if t := m.SelectedTask(); t != nil {
		selectedID = t.ID
	}
	tasks := m.sectionTasks()
	items := make([]list.Item, 0, len(tasks))
	selected := 0
	for i, task := range tasks {
		items = append(items, taskItem{task: task})
		if task.ID == selectedID {
			selected = i
		}
	}
	m.taskList.SetItems(items)
	m.taskList.Select(selected)
}

func (m *Model) updateLayoutSizes() {
	listHeight := m.height - 8
	if listHeight < 3 {
		listHeight = 3
	}
	m.taskList.SetSize(m.width-4, listHeight)
	m.help.Width = m.width
}

func (m *Model) initDetailViewport() {
	width := m.width - 8
	height := m.height - 8
	if width < 40 {
		width = 40
	}
	if height < 10 {
		height = 10
	}
	m.detailViewport = viewport.New(width, height)
	m.detailViewport.SetContent(m.detailContent(width))
}

func (m *Model) detailContent(width int) string {
	task := m.SelectedTask()
	if task == nil {
		return "No task selected"
	}

	wrap := lipgloss.NewStyle().Width(width)
	row := func(label, value string) string {
		return m.styles.DetailLabel.Render(label) + m.styles.DetailValue.Render(value)
	}

	lines := []string{
		m.styles.DetailTitle.Render(fmt.Sprintf("Task %s", task.ID)),
		wrap.Render(m.styles.TaskTitleSelected.Render(task.Title)),
		"",
		row("Status", m.styles.StatusStyle(task.Status).Render(task.Status.Display())),
		row("Date", string(task.Date)),
	}
	if !task.EtaDate.IsZero() {
		lines = append(lines, row("ETA", string(task.EtaDate)))
	}
	lines = append(lines, row("Priority", string(task.Priority)))
	if task.Department != "" {
		lines = append(lines, row("Department", m.styles.DepartmentStyle(task.Department).Render(string(task.Department))))
	}
	if task.Assignee != "" {
		lines = append(lines, row("Assignee", task.Assignee))
	}
	if task.ReminderAt != nil {
		lines = append(lines, row("Reminder", task.ReminderAt.Format("2006-01-02 15:04")))
	}
	if task.DoneAt != nil {
		lines = append(lines, row("Done at", task.DoneAt.Format("2006-01-02 15:04")))
	}
	if len(task.Subtasks) > 0 {
		done, total := task.SubtaskProgress()
		lines = append(lines, "", m.styles.HeaderText.Render(fmt.Sprintf("Subtasks (%d/%d)", done, total)))
		for _, st := range task.Subtasks {
			box := "[ ]"
			if st.Done {
				box = "[x]"
			}
			lines = append(lines, wrap.Render(box+" "+st.Text))
		}
	}
	if task.Notes != "" {
		lines = append(lines, "", m.styles.HeaderText.Render("Notes"), wrap.Render(task.Notes))
	}
	return strings.Join(lines, "\n")
}
