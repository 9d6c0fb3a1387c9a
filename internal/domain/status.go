package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusInProgress Status = "in_progress" // Default for new tasks
	StatusDone       Status = "done"        // Completed, doneAt is set
	StatusDelayed    Status = "delayed"     // Rolled over from an earlier day
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusInProgress,
		StatusDone,
		StatusDelayed,
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusDone, StatusDelayed:
		return true
	}
	return false
}

// IsDone returns true if the status is done.
func (s Status) IsDone() bool {
	return s == StatusDone
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusDelayed:
		return "Delayed"
	default:
		return string(s)
	}
}

// ParseStatus parses a status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityGeneral Priority = "general"
	PriorityUrgent  Priority = "urgent"
)

// IsValid returns true if the priority is known.
func (p Priority) IsValid() bool {
	return p == PriorityGeneral || p == PriorityUrgent
}

// Department is the team a task belongs to. The zero value means none.
type Department string

const (
	DepartmentQA        Department = "QA"
	DepartmentDev       Department = "DEV"
	DepartmentProductio Department = "Productio"
	DepartmentQC        Department = "QC"
	DepartmentOther     Department = "Other"
)

// departmentColors maps each department to its display color (hex).
var departmentColors = map[Department]string{
	DepartmentQA:        "#4f8cff",
	DepartmentDev:       "#22a06b",
	DepartmentProductio: "#f5a623",
	DepartmentQC:        "#b455d6",
	DepartmentOther:     "#8590a2",
}

// AllDepartments returns the known departments in display order.
func AllDepartments() []Department {
	return []Department{
		DepartmentQA,
		DepartmentDev,
		DepartmentProductio,
		DepartmentQC,
		DepartmentOther,
	}
}

// IsValid returns true for a known department or none.
func (d Department) IsValid() bool {
	if d == "" {
		return true
	}
	_, ok := departmentColors[d]
	return ok
}

// Color returns the display color. Unknown and empty departments use Other's color.
func (d Department) Color() string {
	if c, ok := departmentColors[d]; ok {
		return c
	}
	return departmentColors[DepartmentOther]
}
