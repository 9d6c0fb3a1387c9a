package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/tui"
)

// launchTUI starts the session and runs the interactive task list until quit.
func launchTUI(c *app.Container) error {
	if c == nil {
		return fmt.Errorf("teamcal is not initialized")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := c.Bootstrap(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	stop := c.StartMaintenance(ctx)
	defer stop()

	m := tui.New(c)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
