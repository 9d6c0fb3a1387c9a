package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeDetail:
		content = m.viewDetail()
	case ModeNormal, ModeInputTitle, ModeStatus, ModeConfirm:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the main task list view.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if len(m.taskList.Items()) == 0 {
		b.WriteString(m.viewEmptyState())
	} else {
		b.WriteString(m.taskList.View())
	}
	b.WriteString("\n")

	switch m.mode {
	case ModeInputTitle:
		b.WriteString("\n" + m.viewTitleInput())
	case ModeStatus:
		b.WriteString("\n" + m.viewStatusPicker())
	case ModeConfirm:
		b.WriteString("\n" + m.viewConfirmDialog())
	case ModeNormal, ModeHelp, ModeDetail:
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

// viewHeader renders the title, section tabs and sync state.
func (m *Model) viewHeader() string {
	title := m.styles.Header.Render("teamcal") + "  " + m.styles.Footer.Render(string(m.view.Today))

	tabs := make([]string, 0, sectionCount)
	for s := SectionToday; s < sectionCount; s++ {
		label := fmt.Sprintf("%s (%d)", s, m.sectionCount(s))
		if s == m.section {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(tabs, "  ")+"   "+m.styles.Footer.Render(m.syncLabel()),
	)
}

func (m *Model) sectionCount(s Section) int {
	switch s {
	case SectionToday:
		return len(m.view.Due)
	case SectionTomorrow:
		return len(m.view.Next)
	case SectionAlerts:
		return len(m.view.Alerts)
	case SectionAll:
		return len(m.all)
	}
	return 0
}

// syncLabel shows which store receives writes.
func (m *Model) syncLabel() string {
	if m.container == nil || m.container.Repo == nil {
		return ""
	}
	if m.container.Repo.RemoteReady() {
		return "● synced"
	}
	return "○ " + string(m.container.Repo.Backend())
}

func (m *Model) viewEmptyState() string {
	msg := "No tasks"
	switch m.section {
	case SectionToday:
		msg = "Nothing scheduled today"
	case SectionTomorrow:
		msg = "Nothing scheduled tomorrow"
	case SectionAlerts:
		msg = "No alerts"
	case SectionAll:
	}
	return m.styles.Footer.Render(msg + ". Press n to add a task.")
}

func (m *Model) viewTitleInput() string {
	title := m.styles.DialogTitle.Render("◆ New Task for " + string(m.sectionDay()))
	label := m.styles.InputPrompt.Render("Title")
	hint := m.styles.FooterKey.Render("enter") + m.styles.Footer.Render(" create  ") +
		m.styles.FooterKey.Render("esc") + m.styles.Footer.Render(" cancel")
	return m.styles.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", label, m.titleInput.View(), "", hint,
	))
}

func (m *Model) viewStatusPicker() string {
	lines := []string{m.styles.DialogTitle.Render("Change status"), ""}
	for i, st := range domain.AllStatuses() {
		cursor := "  "
		if i == m.statusCursor {
			cursor = m.styles.SelectionIndicator.Render("> ")
		}
		lines = append(lines, cursor+m.styles.StatusStyle(st).Render(StatusIcon(st)+" "+st.Display()))
	}
	lines = append(lines, "", m.styles.FooterKey.Render("enter")+m.styles.Footer.Render(" apply  ")+
		m.styles.FooterKey.Render("esc")+m.styles.Footer.Render(" cancel"))
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

// viewConfirmDialog renders the pending confirmation.
func (m *Model) viewConfirmDialog() string {
	if m.pending == nil {
		return ""
	}
	req := m.pending

	color := palette.amber
	heading := "Complete task?"
	if req.Kind == confirm.KindDelete {
		color = palette.red
		heading = "Delete task?"
	}

	title := m.styles.DialogTitle.Foreground(color).Render(heading)
	prompt := m.styles.DialogPrompt.Render(req.Prompt)

	var body string
	if req.RequireText != "" {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.confirmInput.View(),
			"",
			m.styles.FooterKey.Render("enter")+m.styles.Footer.Render(" submit  ")+
				m.styles.FooterKey.Render("esc")+m.styles.Footer.Render(" cancel"),
		)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Left,
			m.styles.HelpKey.Render("[ y ] Confirm"), "  ",
			m.styles.Footer.Render("[ n ] Cancel"),
		)
	}

	return m.styles.Dialog.BorderForeground(color).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", prompt, "", body),
	)
}

func (m *Model) viewFooter() string {
	var notice string
	if m.notice != "" {
		notice = m.styles.Notice.Render(m.notice) + "\n"
	}
	if m.mode != ModeNormal {
		return notice
	}
	return notice + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) viewHelp() string {
	title := m.styles.HeaderText.Render("KEYBOARD SHORTCUTS")
	return m.styles.Help.Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", m.help.FullHelpView(m.keys.FullHelp()),
	))
}

func (m *Model) viewDetail() string {
	hint := m.styles.FooterKey.Render("esc") + m.styles.Footer.Render(" back")
	return lipgloss.JoinVertical(lipgloss.Left, m.detailViewport.View(), "", hint)
}
