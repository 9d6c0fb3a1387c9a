// Package tui provides the terminal user interface for teamcal.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal     Mode = iota // Default navigation mode
	ModeInputTitle             // Title input mode (for new task)
	ModeStatus                 // Status picker mode
	ModeConfirm                // Confirmation dialog mode
	ModeHelp                   // Help overlay mode
	ModeDetail                 // Task detail view mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInputTitle:
		return "input_title"
	case ModeStatus:
		return "status"
	case ModeConfirm:
		return "confirm"
	case ModeHelp:
		return "help"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode accepts text input.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeInputTitle:
		return true
	case ModeNormal, ModeStatus, ModeConfirm, ModeHelp, ModeDetail:
		return false
	}
	return false
}

// Section selects which slice of the daily view the list shows.
type Section int

const (
	SectionToday Section = iota
	SectionTomorrow
	SectionAlerts
	SectionAll
)

// sectionCount is the number of sections cycled by Tab.
const sectionCount = 4

// String returns the tab label.
func (s Section) String() string {
	switch s {
	case SectionToday:
		return "Today"
	case SectionTomorrow:
		return "Tomorrow"
	case SectionAlerts:
		return "Alerts"
	case SectionAll:
		return "All"
	}
	return ""
}

// Next returns the following section, wrapping around.
func (s Section) Next() Section {
	return (s + 1) % sectionCount
}
