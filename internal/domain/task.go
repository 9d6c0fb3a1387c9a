// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"time"
)

// Task represents a scheduled unit of team work.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt  time.Time  `json:"createdAt" yaml:"createdAt"`                       // Set by the store on create
	UpdatedAt  time.Time  `json:"updatedAt" yaml:"updatedAt"`                       // Set by the store on every write
	DoneAt     *time.Time `json:"doneAt" yaml:"doneAt"`                             // Non-nil exactly when status is done
	ReminderAt *time.Time `json:"reminderAt,omitempty" yaml:"reminderAt,omitempty"` // Optional reminder
	ID         string     `json:"id" yaml:"-"`                                      // Assigned by the creating store
	Title      string     `json:"title" yaml:"title"`                               // Title (required)
	Date       Day        `json:"date" yaml:"date"`                                 // Scheduled day
	EtaDate    Day        `json:"etaDate,omitempty" yaml:"etaDate,omitempty"`       // Optional, >= Date
	Priority   Priority   `json:"priority" yaml:"priority"`                         // general or urgent
	Department Department `json:"department,omitempty" yaml:"department,omitempty"` // Optional team
	Assignee   string     `json:"assignee,omitempty" yaml:"assignee,omitempty"`     // Free text
	Status     Status     `json:"status" yaml:"status"`                             // Current status
	Notes      string     `json:"notes,omitempty" yaml:"notes,omitempty"`           // Free text
	CreatedBy  string     `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`   // Anonymous identity uid
	Subtasks   []Subtask  `json:"subtasks" yaml:"subtasks"`                         // Ordered checklist
	Important  bool       `json:"important" yaml:"important"`                       // Starred
}

// Subtask is a checklist entry inside a task.
type Subtask struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// HasOpenSubtasks returns true if any subtask is unfinished.
func (t *Task) HasOpenSubtasks() bool {
	for _, st := range t.Subtasks {
		if !st.Done {
			return true
		}
	}
	return false
}

// SubtaskProgress returns the number of finished subtasks and the total.
func (t *Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Done {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// HasFutureReminder returns true if the reminder is set and after now.
func (t *Task) HasFutureReminder(now time.Time) bool {
	return t.ReminderAt != nil && t.ReminderAt.After(now)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Subtasks = slices.Clone(t.Subtasks)
	if t.DoneAt != nil {
		d := *t.DoneAt
		c.DoneAt = &d
	}
	if t.ReminderAt != nil {
		r := *t.ReminderAt
		c.ReminderAt = &r
	}
	return &c
}

// Normalize enforces the status/doneAt invariant.
// A done task without doneAt gets now; a task that is not done loses doneAt.
func (t *Task) Normalize(now time.Time) {
	if t.Status.IsDone() {
		if t.DoneAt == nil {
			n := now
			t.DoneAt = &n
		}
		return
	}
	t.DoneAt = nil
}

// CompareTasks orders tasks by date, then creation time, then id.
func CompareTasks(a, b *Task) int {
	if a.Date != b.Date {
		if a.Date < b.Date {
			return -1
		}
		return 1
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// SortTasks sorts tasks in collection order (date, createdAt).
func SortTasks(tasks []*Task) {
	slices.SortStableFunc(tasks, CompareTasks)
}

// CloneTasks deep-copies a task collection.
func CloneTasks(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
