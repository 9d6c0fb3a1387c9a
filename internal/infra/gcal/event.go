package gcal

import (
	"fmt"
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/qcteam/teamcal/internal/domain"
)

// PropertyKey is the private extended property linking an event to a task.
const PropertyKey = "teamcalId"

// departmentColorIDs maps departments onto the Calendar event palette.
var departmentColorIDs = map[domain.Department]string{
	domain.DepartmentQA:        "9",  // blueberry
	domain.DepartmentDev:       "10", // basil
	domain.DepartmentProductio: "6",  // tangerine
	domain.DepartmentQC:        "3",  // grape
	domain.DepartmentOther:     "8",  // graphite
}

// ColorID returns the event color for a department. Unknown departments use Other's.
func ColorID(d domain.Department) string {
	if id, ok := departmentColorIDs[d]; ok {
		return id
	}
	return departmentColorIDs[domain.DepartmentOther]
}

// EventFromTask converts a task into an all-day event spanning date to ETA.
func EventFromTask(t *domain.Task) (*calendar.Event, error) {
	if t == nil {
		return nil, fmt.Errorf("could not convert nil task")
	}
	if !t.Date.IsValid() {
		return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrInvalidDate)
	}

	last := t.Date
	if t.EtaDate.IsValid() && !t.EtaDate.Before(t.Date) {
		last = t.EtaDate
	}

	return &calendar.Event{
		Summary:     summary(t),
		Description: description(t),
		ColorId:     ColorID(t.Department),
		// All-day end dates are exclusive.
		Start: &calendar.EventDateTime{Date: t.Date.String()},
		End:   &calendar.EventDateTime{Date: last.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKey: t.ID},
		},
	}, nil
}

func summary(t *domain.Task) string {
	title := t.Title
	if t.Priority == domain.PriorityUrgent {
		title = "[URGENT] " + title
	}
	switch t.Status {
	case domain.StatusDone:
		return "✓ " + title
	case domain.StatusDelayed:
		return "! " + title
	}
	return title
}

func description(t *domain.Task) string {
	var b strings.Builder
	if t.Department != "" {
		fmt.Fprintf(&b, "Department: %s\n", t.Department)
	}
	if t.Assignee != "" {
		fmt.Fprintf(&b, "Assignee: %s\n", t.Assignee)
	}
	fmt.Fprintf(&b, "Status: %s\n", t.Status.Display())
	if len(t.Subtasks) > 0 {
		done, total := t.SubtaskProgress()
		fmt.Fprintf(&b, "\nSubtasks (%d/%d):\n", done, total)
		for _, st := range t.Subtasks {
			mark := " "
			if st.Done {
				mark = "x"
			}
			fmt.Fprintf(&b, "[%s] %s\n", mark, st.Text)
		}
	}
	if t.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// eventPatch returns the fields of target that differ from existing, or nil.
func eventPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		changed = true
	}
	if dateOf(existing.Start) != dateOf(target.Start) || dateOf(existing.End) != dateOf(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}

	if !changed {
		return nil
	}
	return patch
}

func dateOf(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}
