package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/usecase"
)

// newExportCalendarCommand creates the export-calendar command.
func newExportCalendarCommand(c *app.Container) *cobra.Command {
	var opts struct {
		From        string
		IncludeDone bool
	}

	cmd := &cobra.Command{
		Use:   "export-calendar",
		Short: "Export tasks to Google Calendar",
		Long: `Create or update one all-day event per task in Google Calendar.

Requires [calendar] credentials and token in the config. Events are
matched to tasks by ID, so repeated exports update in place.

Examples:
  teamcal export-calendar --from today
  teamcal export-calendar --include-done`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in usecase.ExportCalendarInput
			in.IncludeDone = opts.IncludeDone
			if opts.From != "" {
				from, err := parseDay(opts.From, c.Clock)
				if err != nil {
					return err
				}
				in.From = from
			}

			uc, err := c.ExportCalendarUseCase(cmd.Context())
			if err != nil {
				return err
			}
			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), in)
			r := out.Result
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported: %d created, %d updated, %d unchanged, %d failed\n",
				r.Created, r.Updated, r.Unchanged, r.Failed)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Skip tasks that end before this day")
	cmd.Flags().BoolVar(&opts.IncludeDone, "include-done", false, "Export done tasks too")

	return cmd
}

