package domain

import (
	"errors"
	"strings"
	"time"
)

// TaskDraft is the user-supplied content of a new or edited task, before the
// store assigns identity and timestamps.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	Reminder   *Reminder  `json:"reminder,omitempty"`   // Optional reminder (date + time of day)
	Title      string     `json:"title"`                // Required, trimmed
	Date       Day        `json:"date"`                 // Required
	EtaDate    Day        `json:"etaDate,omitempty"`    // Optional, must not precede Date
	Priority   Priority   `json:"priority"`             // Empty means general
	Department Department `json:"department,omitempty"` // Optional
	Assignee   string     `json:"assignee,omitempty"`   // Optional, trimmed
	Notes      string     `json:"notes,omitempty"`      // Optional, trimmed
	Subtasks   []Subtask  `json:"subtasks,omitempty"`   // Blank entries are pruned
	Important  bool       `json:"important"`
}

// Reminder is a reminder as entered: a calendar day and an "HH:MM" clock time.
type Reminder struct {
	Date Day    `json:"date"`
	Time string `json:"time"`
}

// At resolves the reminder to an instant in loc.
func (r Reminder) At(loc *time.Location) (time.Time, error) {
	if r.Date.IsZero() || r.Time == "" {
		return time.Time{}, ErrReminderMissing
	}
	t, err := time.ParseInLocation(DayLayout+" 15:04", string(r.Date)+" "+r.Time, loc)
	if err != nil {
		return time.Time{}, ErrReminderMissing
	}
	return t, nil
}

// ValidationError collects every problem found in a draft.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "invalid task: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// Normalize trims text fields, defaults the priority, prunes blank subtasks and
// gives id-less subtasks a fresh id from newID.
func (d *TaskDraft) Normalize(newID func() string) {
	d.Title = strings.TrimSpace(d.Title)
	d.Assignee = strings.TrimSpace(d.Assignee)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Priority == "" {
		d.Priority = PriorityGeneral
	}
	d.Subtasks = PruneSubtasks(d.Subtasks, newID)
}

// Validate checks the draft against the form rules. now is used for the
// reminder check and its location to resolve the reminder time.
func (d *TaskDraft) Validate(now time.Time) error {
	var errs []error
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, ErrEmptyTitle)
	}
	if !d.Date.IsValid() {
		errs = append(errs, ErrInvalidDate)
	}
	if !d.EtaDate.IsZero() {
		if !d.EtaDate.IsValid() {
			errs = append(errs, ErrInvalidDate)
		} else if d.Date.IsValid() && d.EtaDate.Before(d.Date) {
			errs = append(errs, ErrEtaBeforeDate)
		}
	}
	if d.Priority != "" && !d.Priority.IsValid() {
		errs = append(errs, ErrInvalidPriority)
	}
	if !d.Department.IsValid() {
		errs = append(errs, ErrInvalidDepartment)
	}
	if d.Reminder != nil {
		at, err := d.Reminder.At(now.Location())
		if err != nil {
			errs = append(errs, err)
		} else if at.Before(now) {
			errs = append(errs, ErrReminderInPast)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}

// ToTask builds an unsaved task with status in_progress and no doneAt.
func (d *TaskDraft) ToTask(loc *time.Location) *Task {
	t := &Task{
		Title:      d.Title,
		Date:       d.Date,
		EtaDate:    d.EtaDate,
		Priority:   d.Priority,
		Important:  d.Important,
		Department: d.Department,
		Assignee:   d.Assignee,
		Notes:      d.Notes,
		Subtasks:   append([]Subtask{}, d.Subtasks...),
		Status:     StatusInProgress,
	}
	if t.Priority == "" {
		t.Priority = PriorityGeneral
	}
	if d.Reminder != nil {
		if at, err := d.Reminder.At(loc); err == nil {
			t.ReminderAt = &at
		}
	}
	return t
}

// PruneSubtasks drops subtasks with blank text and assigns missing ids.
// Order is preserved.
func PruneSubtasks(subtasks []Subtask, newID func() string) []Subtask {
	out := make([]Subtask, 0, len(subtasks))
	for _, st := range subtasks {
		if strings.TrimSpace(st.Text) == "" {
			continue
		}
		if st.ID == "" && newID != nil {
			st.ID = "subtask_" + newID()
		}
		out = append(out, st)
	}
	return out
}

// ValidateTask checks the invariants a stored task must satisfy.
func ValidateTask(t *Task) error {
	var errs []error
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, ErrEmptyTitle)
	}
	if !t.Date.IsValid() {
		errs = append(errs, ErrInvalidDate)
	}
	if !t.EtaDate.IsZero() && t.EtaDate.Before(t.Date) {
		errs = append(errs, ErrEtaBeforeDate)
	}
	if !t.Priority.IsValid() {
		errs = append(errs, ErrInvalidPriority)
	}
	if !t.Department.IsValid() {
		errs = append(errs, ErrInvalidDepartment)
	}
	if !t.Status.IsValid() {
		errs = append(errs, ErrInvalidStatus)
	}
	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}

// IsValidationError reports whether err came from draft or task validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
