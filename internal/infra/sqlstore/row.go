package sqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

// taskRow is the tasks table. Timestamps are written by the database.
type taskRow struct {
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime:false"`
	DoneAt     *time.Time `gorm:"index"`
	ReminderAt *time.Time
	ID         string `gorm:"primaryKey;size:64"`
	Title      string `gorm:"not null"`
	Date       string `gorm:"size:10;not null;index"`
	EtaDate    string `gorm:"size:10"`
	Priority   string `gorm:"size:16;not null;default:general"`
	Department string `gorm:"size:32"`
	Assignee   string
	Status     string `gorm:"size:16;not null;index"`
	Notes      string `gorm:"type:text"`
	CreatedBy  string `gorm:"size:128"`
	Subtasks   string `gorm:"type:text"` // JSON array
	Important  bool   `gorm:"not null;default:false"`
}

func (taskRow) TableName() string { return "tasks" }

// metaRow holds named timestamps; "server-time" backs ServerNow.
type metaRow struct {
	StampedAt time.Time `gorm:"not null"`
	Name      string    `gorm:"primaryKey;size:64"`
}

func (metaRow) TableName() string { return "teamcal_meta" }

func (r *taskRow) toTask() (*domain.Task, error) {
	subtasks := []domain.Subtask{}
	if r.Subtasks != "" {
		if err := json.Unmarshal([]byte(r.Subtasks), &subtasks); err != nil {
			return nil, fmt.Errorf("decode subtasks of task %s: %w", r.ID, err)
		}
	}
	return &domain.Task{
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		DoneAt:     r.DoneAt,
		ReminderAt: r.ReminderAt,
		ID:         r.ID,
		Title:      r.Title,
		Date:       domain.Day(r.Date),
		EtaDate:    domain.Day(r.EtaDate),
		Priority:   domain.Priority(r.Priority),
		Department: domain.Department(r.Department),
		Assignee:   r.Assignee,
		Status:     domain.Status(r.Status),
		Notes:      r.Notes,
		CreatedBy:  r.CreatedBy,
		Subtasks:   subtasks,
		Important:  r.Important,
	}, nil
}

// columns returns the user-editable columns of t.
func columns(t *domain.Task) (map[string]any, error) {
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []domain.Subtask{}
	}
	encoded, err := json.Marshal(subtasks)
	if err != nil {
		return nil, fmt.Errorf("encode subtasks: %w", err)
	}
	return map[string]any{
		"title":       t.Title,
		"date":        string(t.Date),
		"eta_date":    string(t.EtaDate),
		"priority":    string(t.Priority),
		"department":  string(t.Department),
		"assignee":    t.Assignee,
		"status":      string(t.Status),
		"notes":       t.Notes,
		"created_by":  t.CreatedBy,
		"subtasks":    string(encoded),
		"important":   t.Important,
		"done_at":     t.DoneAt,
		"reminder_at": t.ReminderAt,
	}, nil
}
