package cli

import (
	"fmt"
	"strings"

	"github.com/qcteam/teamcal/internal/domain"
)

// parseDay accepts "today", "tomorrow", "yesterday" or YYYY-MM-DD.
func parseDay(s string, clock domain.Clock) (domain.Day, error) {
	today := domain.DayOf(clock.Now())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return domain.ParseDay(strings.TrimSpace(s))
}

// parseReminder parses "YYYY-MM-DD HH:MM".
func parseReminder(s string, clock domain.Clock) (*domain.Reminder, error) {
	date, at, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return nil, fmt.Errorf("%w: want \"YYYY-MM-DD HH:MM\"", domain.ErrReminderMissing)
	}
	day, err := parseDay(date, clock)
	if err != nil {
		return nil, err
	}
	return &domain.Reminder{Date: day, Time: strings.TrimSpace(at)}, nil
}

// subtasksFromFlags turns repeated --subtask values into unsaved subtasks.
func subtasksFromFlags(texts []string) []domain.Subtask {
	out := make([]domain.Subtask, 0, len(texts))
	for _, text := range texts {
		out = append(out, domain.Subtask{Text: text})
	}
	return out
}
