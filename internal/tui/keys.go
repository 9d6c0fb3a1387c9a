package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	Section key.Binding // Cycle today/tomorrow/alerts/all

	// Task management
	New        key.Binding // Create new task for the shown day
	Done       key.Binding // Mark task done
	EditStatus key.Binding // Pick a status
	Important  key.Binding // Toggle the star
	Delete     key.Binding // Delete task (typed confirmation)

	// View
	Detail      key.Binding // Toggle detail view
	Maintenance key.Binding // Run rollover and cleanup now
	Refresh     key.Binding // Refresh task list
	Help        key.Binding // Show help

	// General
	Quit    key.Binding // Quit application
	Escape  key.Binding // Cancel/back
	Confirm key.Binding // Confirm action (in confirm mode)
	Submit  key.Binding // Submit input
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Section: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Done: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "done"),
		),
		EditStatus: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "change status"),
		),
		Important: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "star"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter", "v"),
			key.WithHelp("enter", "details"),
		),
		Maintenance: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "maintenance"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
	}
}

// ShortHelp returns keybindings to show in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Section, k.New, k.Done, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Section, k.Detail},
		{k.New, k.Done, k.EditStatus, k.Important, k.Delete},
		{k.Maintenance, k.Refresh, k.Help, k.Quit},
	}
}
