package domain

import (
	"slices"
	"time"
)

// TaskPatch is a partial update. Nil fields are left untouched.
// Pointers to empty values clear optional fields (EtaDate, Department, Assignee, Notes).
type TaskPatch struct {
	Title         *string     `json:"title,omitempty"`
	Date          *Day        `json:"date,omitempty"`
	EtaDate       *Day        `json:"etaDate,omitempty"`
	Priority      *Priority   `json:"priority,omitempty"`
	Important     *bool       `json:"important,omitempty"`
	Department    *Department `json:"department,omitempty"`
	Assignee      *string     `json:"assignee,omitempty"`
	Status        *Status     `json:"status,omitempty"`
	DoneAt        *time.Time  `json:"doneAt,omitempty"` // Only meaningful together with Status done
	Subtasks      *[]Subtask  `json:"subtasks,omitempty"`
	ReminderAt    *time.Time  `json:"reminderAt,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
	ClearReminder bool        `json:"clearReminder,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.EtaDate == nil && p.Priority == nil &&
		p.Important == nil && p.Department == nil && p.Assignee == nil && p.Status == nil &&
		p.DoneAt == nil && p.Subtasks == nil && p.ReminderAt == nil && p.Notes == nil && !p.ClearReminder
}

// ApplyTo merges the patch into t and re-establishes the doneAt invariant.
// UpdatedAt is not touched; stores stamp it.
func (p TaskPatch) ApplyTo(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.EtaDate != nil {
		t.EtaDate = *p.EtaDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	if p.Department != nil {
		t.Department = *p.Department
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Subtasks != nil {
		t.Subtasks = slices.Clone(*p.Subtasks)
	}
	if p.ClearReminder {
		t.ReminderAt = nil
	} else if p.ReminderAt != nil {
		r := *p.ReminderAt
		t.ReminderAt = &r
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DoneAt != nil && t.Status.IsDone() {
		d := *p.DoneAt
		t.DoneAt = &d
	}
	t.Normalize(now)
}

// StatusPatch returns a patch that changes only the status. Becoming done
// stamps doneAt with now.
func StatusPatch(status Status, now time.Time) TaskPatch {
	p := TaskPatch{Status: &status}
	if status.IsDone() {
		n := now
		p.DoneAt = &n
	}
	return p
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
