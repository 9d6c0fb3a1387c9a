package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/qcteam/teamcal/internal/domain"
)

type taskItem struct {
	task *domain.Task
}

func (t taskItem) FilterValue() string {
	return t.task.Title
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

type taskDelegate struct {
	styles Styles
}

func newTaskDelegate(styles Styles) taskDelegate {
	return taskDelegate{styles: styles}
}

func (d taskDelegate) Height() int {
	return 2
}

func (d taskDelegate) Spacing() int {
	return 1
}

func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// taskMeta is the second line of an item: date, department, assignee and progress.
func taskMeta(t *domain.Task) string {
	parts := []string{string(t.Date)}
	if !t.EtaDate.IsZero() && t.EtaDate != t.Date {
		parts[0] += " → " + string(t.EtaDate)
	}
	if t.Department != "" {
		parts = append(parts, string(t.Department))
	}
	if t.Assignee != "" {
		parts = append(parts, "@"+t.Assignee)
	}
	if done, total := t.SubtaskProgress(); total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", done, total))
	}
	if t.Notes != "" {
		parts = append(parts, escapeNewlines(t.Notes))
	}
	return strings.Join(parts, " · ")
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		return
	}
	task := ti.task
	selected := index == m.Index()

	indicatorChar := " "
	titleStyle := d.styles.TaskTitle
	if selected {
		indicatorChar = ">"
		titleStyle = d.styles.TaskTitleSelected
	}

	var badges string
	if task.Priority == domain.PriorityUrgent {
		badges += "[URGENT] "
	}
	if task.Important {
		badges += "★ "
	}

	const prefixWidth = 6
	listWidth := m.Width()
	maxTitleLen := listWidth - prefixWidth - runewidth.StringWidth(badges) - 2
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title := escapeNewlines(task.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}

	line := "  " + d.styles.SelectionIndicator.Render(indicatorChar) + " " +
		d.styles.StatusStyle(task.Status).Render(StatusIcon(task.Status)) + " "
	if task.Priority == domain.PriorityUrgent {
		line += d.styles.BadgeUrgent.Render("[URGENT]") + " "
	}
	if task.Important {
		line += d.styles.BadgeImportant.Render("★") + " "
	}
	line += titleStyle.Render(title)
	_, _ = fmt.Fprintln(w, line)

	meta := taskMeta(task)
	maxMetaLen := listWidth - prefixWidth - 2
	if maxMetaLen < 10 {
		maxMetaLen = 10
	}
	if runewidth.StringWidth(meta) > maxMetaLen {
		meta = runewidth.Truncate(meta, maxMetaLen-3, "...")
	}
	metaLine := strings.Repeat(" ", prefixWidth) + meta
	if task.Department != "" {
		metaLine = strings.Repeat(" ", prefixWidth-2) + d.styles.DepartmentStyle(task.Department).Render("▍") + " " + meta
	}
	_, _ = fmt.Fprint(w, d.styles.TaskDesc.Render(metaLine))
}
