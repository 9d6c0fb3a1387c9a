// Package cli provides the command-line interface for teamcal.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/repository"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupView  = "view"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for teamcal.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "teamcal",
		Short: "Shared team task calendar",
		Long: `teamcal keeps a team's scheduled tasks in a shared store and falls back
to a local file when the shared store is unavailable.

Run without arguments to open the interactive task list.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupView, Title: "Views and Maintenance:"},
	)

	setup := []*cobra.Command{
		newConfigCommand(c),
		newServeCommand(c),
	}
	tasks := []*cobra.Command{
		newAddCommand(c),
		newListCommand(c),
		newShowCommand(c),
		newEditCommand(c),
		newStatusCommand(c),
		newDoneCommand(c),
		newRmCommand(c),
	}
	views := []*cobra.Command{
		newReportCommand(c),
		newCalendarCommand(c),
		newMaintainCommand(c),
		newCleanupCommand(c),
		newExportCalendarCommand(c),
	}
	for _, cmd := range setup {
		cmd.GroupID = groupSetup
		root.AddCommand(cmd)
	}
	for _, cmd := range tasks {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}
	for _, cmd := range views {
		cmd.GroupID = groupView
		root.AddCommand(cmd)
	}

	return root
}

// start runs the session bootstrap and reports a degraded session on stderr.
func start(cmd *cobra.Command, c *app.Container) error {
	res, err := c.Bootstrap(cmd.Context())
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if c.Remote != nil && res.Backend == repository.BackendLocal {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: shared store unavailable, working on local data")
	}
	return nil
}
