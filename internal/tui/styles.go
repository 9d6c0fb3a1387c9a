package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/qcteam/teamcal/internal/domain"
)

// palette is the TUI color scheme. Department colors come from domain.
var palette = struct {
	accent, accentSoft lipgloss.Color
	ink, inkBright     lipgloss.Color
	dim                lipgloss.Color
	red, amber, green  lipgloss.Color
	blue, coral        lipgloss.Color
}{
	accent:     lipgloss.Color("#0F766E"),
	accentSoft: lipgloss.Color("#5EEAD4"),
	ink:        lipgloss.Color("#E5E7EB"),
	inkBright:  lipgloss.Color("#FDE68A"),
	dim:        lipgloss.Color("#6B7280"),
	red:        lipgloss.Color("#DC2626"),
	amber:      lipgloss.Color("#F59E0B"),
	green:      lipgloss.Color("#16A34A"),
	blue:       lipgloss.Color("#60A5FA"),
	coral:      lipgloss.Color("#F97316"),
}

// Styles holds the rendered styles for every view.
type Styles struct {
	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderText  lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	TaskTitle          lipgloss.Style
	TaskTitleSelected  lipgloss.Style
	TaskDesc           lipgloss.Style
	SelectionIndicator lipgloss.Style
	BadgeUrgent        lipgloss.Style
	BadgeImportant     lipgloss.Style

	StatusInProgress lipgloss.Style
	StatusDone       lipgloss.Style
	StatusDelayed    lipgloss.Style

	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	Footer    lipgloss.Style
	FooterKey lipgloss.Style
	Notice    lipgloss.Style
	ErrorMsg  lipgloss.Style

	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style
	InputPrompt  lipgloss.Style

	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App:         lipgloss.NewStyle().Padding(1, 2),
		Header:      fg(palette.accent).Bold(true).MarginBottom(1),
		HeaderText:  lipgloss.NewStyle().Bold(true),
		TabActive:   fg(palette.inkBright).Bold(true).Underline(true),
		TabInactive: fg(palette.dim),

		TaskTitle:          fg(palette.ink),
		TaskTitleSelected:  fg(palette.inkBright).Bold(true),
		TaskDesc:           fg(palette.dim),
		SelectionIndicator: fg(palette.inkBright),
		BadgeUrgent:        fg(palette.red).Bold(true),
		BadgeImportant:     fg(palette.amber),

		StatusInProgress: fg(palette.blue),
		StatusDone:       fg(palette.green),
		StatusDelayed:    fg(palette.coral),

		Help:      boxed(palette.dim),
		HelpKey:   fg(palette.accentSoft).Bold(true),
		Footer:    fg(palette.dim),
		FooterKey: fg(palette.accentSoft).Bold(true),
		Notice:    fg(palette.amber),
		ErrorMsg:  fg(palette.red),

		Dialog:       boxed(palette.accent),
		DialogTitle:  fg(palette.accent).Bold(true),
		DialogPrompt: fg(palette.ink),
		InputPrompt:  fg(palette.accentSoft).Bold(true),

		DetailTitle: fg(palette.accent).Bold(true),
		DetailLabel: fg(palette.dim).Width(12),
		DetailValue: fg(palette.ink),
	}
}

// StatusStyle returns the style for a status badge.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusDone:
		return s.StatusDone
	case domain.StatusDelayed:
		return s.StatusDelayed
	default:
		return s.StatusInProgress
	}
}

// DepartmentStyle colors a department tag.
func (s Styles) DepartmentStyle(d domain.Department) lipgloss.Style {
	return fg(lipgloss.Color(d.Color()))
}

// StatusIcon returns the list glyph for a status.
func StatusIcon(status domain.Status) string {
	switch status {
	case domain.StatusDone:
		return "✓"
	case domain.StatusDelayed:
		return "!"
	case domain.StatusInProgress:
		return "●"
	}
	return "?"
}
