package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// newAddCommand creates the add command for creating tasks.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title      string
		Date       string
		Eta        string
		Priority   string
		Department string
		Assignee   string
		Notes      string
		Remind     string
		Subtasks   []string
		Important  bool
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new task",
		Long: `Create a new task with status 'in_progress'.

Dates accept YYYY-MM-DD, today, tomorrow or yesterday.

Examples:
  # Create a task for today
  teamcal add --title "Calibrate scale"

  # Urgent task for QC with an ETA and a checklist
  teamcal add --title "Batch 42 release" --date tomorrow --eta 2024-01-09 \
    --priority urgent --department QC --subtask "Sample" --subtask "Sign off"

  # With a reminder
  teamcal add --title "Call supplier" --remind "2024-01-08 14:30"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Title == "" {
				return fmt.Errorf("required flag(s) \"title\" not set")
			}
			draft := domain.TaskDraft{
				Title:      opts.Title,
				Priority:   domain.Priority(opts.Priority),
				Department: domain.Department(opts.Department),
				Assignee:   opts.Assignee,
				Notes:      opts.Notes,
				Subtasks:   subtasksFromFlags(opts.Subtasks),
				Important:  opts.Important,
			}
			var err error
			if draft.Date, err = parseDay(opts.Date, c.Clock); err != nil {
				return err
			}
			if opts.Eta != "" {
				if draft.EtaDate, err = parseDay(opts.Eta, c.Clock); err != nil {
					return err
				}
			}
			if opts.Remind != "" {
				if draft.Reminder, err = parseReminder(opts.Remind, c.Clock); err != nil {
					return err
				}
			}

			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.NewTaskUseCase().Execute(cmd.Context(), usecase.NewTaskInput{Draft: draft})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", out.TaskID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "today", "Scheduled day")
	cmd.Flags().StringVar(&opts.Eta, "eta", "", "Expected completion day")
	cmd.Flags().StringVar(&opts.Priority, "priority", string(domain.PriorityGeneral), "Priority (general, urgent)")
	cmd.Flags().StringVar(&opts.Department, "department", "", "Department (QA, DEV, Productio, QC, Other)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&opts.Remind, "remind", "", "Reminder as \"YYYY-MM-DD HH:MM\"")
	cmd.Flags().StringArrayVar(&opts.Subtasks, "subtask", nil, "Subtask (can specify multiple)")
	cmd.Flags().BoolVar(&opts.Important, "important", false, "Star the task")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Date       string
		Status     string
		Department string
		Assignee   string
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display tasks ordered by date and creation time.

Output is tab-separated with columns:
  ID, DATE, STATUS, PRIORITY, DEPARTMENT, ASSIGNEE, SUBTASKS, TITLE

Examples:
  # Everything
  teamcal list

  # Today's QC tasks
  teamcal list --date today --department QC

  # Delayed work assigned to Mira
  teamcal list --status delayed --assignee mira`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTasksInput{
				Department: domain.Department(opts.Department),
				Assignee:   opts.Assignee,
			}
			if opts.Date != "" {
				day, err := parseDay(opts.Date, c.Clock)
				if err != nil {
					return err
				}
				input.Day = day
			}
			if opts.Status != "" {
				status, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return err
				}
				input.Status = status
			}

			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			printTaskList(cmd.OutOrStdout(), out.Tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "Only tasks on this day")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Only tasks with this status")
	cmd.Flags().StringVar(&opts.Department, "department", "", "Only tasks of this department")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee contains (case-insensitive)")

	return cmd
}

// printTaskList prints tasks in TSV format.
func printTaskList(w io.Writer, tasks []*domain.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tPRIORITY\tDEPARTMENT\tASSIGNEE\tSUBTASKS\tTITLE")

	for _, task := range tasks {
		dept := "-"
		if task.Department != "" {
			dept = string(task.Department)
		}
		assignee := "-"
		if task.Assignee != "" {
			assignee = task.Assignee
		}
		subtasks := "-"
		if done, total := task.SubtaskProgress(); total > 0 {
			subtasks = fmt.Sprintf("%d/%d", done, total)
		}
		title := task.Title
		if task.Important {
			title = "★ " + title
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Date,
			task.Status,
			task.Priority,
			dept,
			assignee,
			subtasks,
			title,
		)
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Task)
			}
			printTaskDetails(cmd.OutOrStdout(), out.Task)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskDetails prints a task in a human-readable format.
func printTaskDetails(w io.Writer, task *domain.Task) {
	_, _ = fmt.Fprintf(w, "%s\n", task.Title)
	_, _ = fmt.Fprintf(w, "  ID: %s\n", task.ID)
	_, _ = fmt.Fprintf(w, "  Status: %s\n", task.Status.Display())
	_, _ = fmt.Fprintf(w, "  Date: %s\n", task.Date)
	if !task.EtaDate.IsZero() {
		_, _ = fmt.Fprintf(w, "  ETA: %s\n", task.EtaDate)
	}
	_, _ = fmt.Fprintf(w, "  Priority: %s\n", task.Priority)
	if task.Important {
		_, _ = fmt.Fprintln(w, "  Important: yes")
	}
	if task.Department != "" {
		_, _ = fmt.Fprintf(w, "  Department: %s\n", task.Department)
	}
	if task.Assignee != "" {
		_, _ = fmt.Fprintf(w, "  Assignee: %s\n", task.Assignee)
	}
	if task.ReminderAt != nil {
		_, _ = fmt.Fprintf(w, "  Reminder: %s\n", task.ReminderAt.Format("2006-01-02 15:04"))
	}
	if task.DoneAt != nil {
		_, _ = fmt.Fprintf(w, "  Done at: %s\n", task.DoneAt.Format("2006-01-02 15:04"))
	}
	if task.CreatedBy != "" {
		_, _ = fmt.Fprintf(w, "  Created by: %s\n", task.CreatedBy)
	}
	if len(task.Subtasks) > 0 {
		done, total := task.SubtaskProgress()
		_, _ = fmt.Fprintf(w, "\nSubtasks (%d/%d):\n", done, total)
		for _, st := range task.Subtasks {
			box := "[ ]"
			if st.Done {
				box = "[x]"
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", box, st.Text)
		}
	}
	if task.Notes != "" {
		_, _ = fmt.Fprintf(w, "\nNotes:\n")
		for _, line := range strings.Split(task.Notes, "\n") {
			_, _ = fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// newEditCommand creates the edit command for updating task fields.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title      string
		Date       string
		Eta        string
		Priority   string
		Department string
		Assignee   string
		Notes      string
		Status     string
		Remind     string
		Subtasks   []string
		Important  bool
		NoRemind   bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Long: `Edit one or more fields of a task. Only the given flags change.

An empty --eta, --department, --assignee or --notes clears the field.
--subtask replaces the whole checklist.

Examples:
  teamcal edit 3f2a --title "Batch 42 release" --eta 2024-01-10
  teamcal edit 3f2a --assignee "" --no-remind`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch domain.TaskPatch

			if flags.Changed("title") {
				patch.Title = &opts.Title
			}
			if flags.Changed("date") {
				day, err := parseDay(opts.Date, c.Clock)
				if err != nil {
					return err
				}
				patch.Date = &day
			}
			if flags.Changed("eta") {
				var eta domain.Day
				if opts.Eta != "" {
					var err error
					if eta, err = parseDay(opts.Eta, c.Clock); err != nil {
						return err
					}
				}
				patch.EtaDate = &eta
			}
			if flags.Changed("priority") {
				patch.Priority = domain.Ptr(domain.Priority(opts.Priority))
			}
			if flags.Changed("important") {
				patch.Important = &opts.Important
			}
			if flags.Changed("department") {
				patch.Department = domain.Ptr(domain.Department(opts.Department))
			}
			if flags.Changed("assignee") {
				patch.Assignee = &opts.Assignee
			}
			if flags.Changed("notes") {
				patch.Notes = &opts.Notes
			}
			if flags.Changed("subtask") {
				subtasks := subtasksFromFlags(opts.Subtasks)
				patch.Subtasks = &subtasks
			}
			if flags.Changed("status") {
				status, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return err
				}
				sp := domain.StatusPatch(status, c.Clock.Now())
				patch.Status, patch.DoneAt = sp.Status, sp.DoneAt
			}
			if opts.NoRemind {
				patch.ClearReminder = true
			} else if opts.Remind != "" {
				r, err := parseReminder(opts.Remind, c.Clock)
				if err != nil {
					return err
				}
				at, err := r.At(c.Clock.Now().Location())
				if err != nil {
					return err
				}
				patch.ReminderAt = &at
			}

			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.EditTaskUseCase().Execute(cmd.Context(), usecase.EditTaskInput{
				TaskID: args[0],
				Patch:  patch,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Date, "date", "", "New scheduled day")
	cmd.Flags().StringVar(&opts.Eta, "eta", "", "New ETA day (empty clears)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority")
	cmd.Flags().BoolVar(&opts.Important, "important", false, "Star or unstar (--important=false)")
	cmd.Flags().StringVar(&opts.Department, "department", "", "New department (empty clears)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "New assignee (empty clears)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "New notes (empty clears)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status, applied without confirmation")
	cmd.Flags().StringArrayVar(&opts.Subtasks, "subtask", nil, "Replace subtasks (can specify multiple)")
	cmd.Flags().StringVar(&opts.Remind, "remind", "", "New reminder as \"YYYY-MM-DD HH:MM\"")
	cmd.Flags().BoolVar(&opts.NoRemind, "no-remind", false, "Remove the reminder")

	return cmd
}

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change task status",
		Long: `Change a task's status to in_progress, done or delayed.

Completing a task with unfinished subtasks asks first; confirming also
marks every subtask done. Use --yes to confirm without asking.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := start(cmd, c); err != nil {
				return err
			}
			return changeStatus(cmd, c, args[0], status, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm without asking")

	return cmd
}

// newDoneCommand creates the done command, a shortcut for status <id> done.
func newDoneCommand(c *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := start(cmd, c); err != nil {
				return err
			}
			return changeStatus(cmd, c, args[0], domain.StatusDone, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm without asking")

	return cmd
}

func changeStatus(cmd *cobra.Command, c *app.Container, id string, status domain.Status, yes bool) error {
	out, err := c.ChangeStatusUseCase().Execute(cmd.Context(), usecase.ChangeStatusInput{
		TaskID: id,
		Status: status,
	})
	if err != nil {
		return err
	}

	if out.Confirmation != nil {
		var preset *confirm.Answer
		if yes {
			preset = &confirm.Answer{Yes: true}
		}
		outcome, err := answerConfirmation(cmd, c, *out.Confirmation, preset)
		if err != nil || !outcome.Confirmed {
			return err
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", id, status.Display())
	return nil
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	var typed string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Permanently delete a task. You must type DELETE to confirm.

Examples:
  # Asks for the confirmation text
  teamcal rm 3f2a

  # Non-interactive
  teamcal rm 3f2a --confirm DELETE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := start(cmd, c); err != nil {
				return err
			}
			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			var preset *confirm.Answer
			if cmd.Flags().Changed("confirm") {
				preset = &confirm.Answer{Text: typed}
			}
			outcome, err := answerConfirmation(cmd, c, out.Confirmation, preset)
			if err != nil {
				return err
			}
			if outcome.Confirmed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typed, "confirm", "", "Confirmation text (skips the prompt)")

	return cmd
}
