package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/maintenance"
	"github.com/qcteam/teamcal/internal/usecase"
)

// newMaintainCommand creates the maintain command.
func newMaintainCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Run daily rollover and weekly cleanup now",
		Long: `Run both maintenance jobs immediately.

Daily rollover moves every unfinished task dated before today to today.
Weekly cleanup deletes done tasks on Sundays from 00:00 when it is
enabled and has not run yet today.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.RunMaintenanceUseCase().Execute(cmd.Context())
			printReport(cmd, out.Report)
			return err
		},
	}
}

func printReport(cmd *cobra.Command, r maintenance.Report) {
	w := cmd.OutOrStdout()
	if len(r.Rollover.Moved) == 0 {
		_, _ = fmt.Fprintln(w, "Rollover: nothing to move")
	} else {
		_, _ = fmt.Fprintf(w, "Rollover: moved %d task(s) to %s: %s\n",
			len(r.Rollover.Moved), r.Rollover.Today, strings.Join(r.Rollover.Moved, ", "))
	}
	if r.Cleanup.Skipped != "" {
		_, _ = fmt.Fprintf(w, "Cleanup: skipped (%s)\n", r.Cleanup.Skipped)
	} else {
		_, _ = fmt.Fprintf(w, "Cleanup: deleted %d done task(s)\n", len(r.Cleanup.Deleted))
	}
}

// newCleanupCommand creates the cleanup command for the weekly-cleanup toggle.
func newCleanupCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:       "cleanup [on|off]",
		Short:     "Show or set the weekly cleanup toggle",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var in usecase.WeeklyCleanupInput
			if len(args) == 1 {
				switch strings.ToLower(args[0]) {
				case "on":
					in.Enabled = new(bool)
					*in.Enabled = true
				case "off":
					in.Enabled = new(bool)
				default:
					return fmt.Errorf("invalid argument %q: want on or off", args[0])
				}
			}

			out, err := c.WeeklyCleanupUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			state := "off"
			if out.Enabled {
				state = "on"
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Weekly cleanup: %s\n", state)
			if !out.LastRun.IsZero() {
				_, _ = fmt.Fprintf(w, "Last run: %s\n", out.LastRun)
			}
			return nil
		},
	}
}
