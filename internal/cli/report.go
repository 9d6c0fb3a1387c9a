package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// newReportCommand creates the report command for completed work.
func newReportCommand(c *app.Container) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show completed tasks",
		Long: `List done tasks, most recently completed first.

Examples:
  # Last 7 days
  teamcal report

  # Everything ever completed
  teamcal report --days 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.DoneReportUseCase().Execute(cmd.Context(), usecase.DoneReportInput{Days: days})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No completed tasks")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DONE AT\tID\tDEPARTMENT\tASSIGNEE\tTITLE")
			for _, t := range out.Tasks {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					t.DoneAt.Format("2006-01-02 15:04"), t.ID, orDash(string(t.Department)), orDash(t.Assignee), t.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Window in days (0 = all time)")

	return cmd
}

// newCalendarCommand creates the calendar command.
func newCalendarCommand(c *app.Container) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month calendar",
		Long: `Print a month grid with the number of tasks per day.

Examples:
  teamcal calendar
  teamcal calendar --month 2024-02`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in usecase.CalendarMonthInput
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("%w: want YYYY-MM", domain.ErrInvalidDate)
				}
				in.Year, in.Month = t.Year(), t.Month()
			}

			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.CalendarMonthUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			printCalendar(cmd.OutOrStdout(), out.Calendar)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")

	return cmd
}

// printCalendar prints a Sunday-first grid. Each cell is the day number,
// a task count and a marker: * for today, ! when a task is urgent or delayed.
func printCalendar(w io.Writer, cal domain.CalendarMonth) {
	_, _ = fmt.Fprintf(w, "%s %d\n", cal.Month, cal.Year)
	_, _ = fmt.Fprintln(w, " Sun     Mon     Tue     Wed     Thu     Fri     Sat")

	var line strings.Builder
	cell := cal.Leading
	line.WriteString(strings.Repeat("        ", cal.Leading))
	for _, d := range cal.Days {
		mark := " "
		for _, e := range d.Entries {
			if e.Urgent || e.Delayed {
				mark = "!"
				break
			}
		}
		if d.Today {
			mark = "*"
		}
		count := "  "
		if n := len(d.Entries); n > 0 {
			count = fmt.Sprintf("%-2d", n)
		}
		dayNum := d.Date.Time(time.UTC).Day()
		fmt.Fprintf(&line, "%3d%s%s  ", dayNum, mark, count)

		cell++
		if cell%7 == 0 {
			_, _ = fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		_, _ = fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
