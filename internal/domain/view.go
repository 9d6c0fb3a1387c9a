package domain

import (
	"slices"
	"time"
)

// DailyView is the task list page: today, tomorrow and alerts.
type DailyView struct {
	Today    Day     `json:"today"`
	Tomorrow Day     `json:"tomorrow"`
	Due      []*Task `json:"dueToday"`
	Next     []*Task `json:"dueTomorrow"`
	Alerts   []*Task `json:"alerts"`
}

// BuildDailyView groups tasks for the day containing now.
// Alerts are important tasks, delayed tasks and tasks with a future reminder.
func BuildDailyView(tasks []*Task, now time.Time) DailyView {
	today := DayOf(now)
	v := DailyView{
		Today:    today,
		Tomorrow: today.AddDays(1),
		Due:      []*Task{},
		Next:     []*Task{},
		Alerts:   []*Task{},
	}
	for _, t := range tasks {
		switch t.Date {
		case v.Today:
			v.Due = append(v.Due, t)
		case v.Tomorrow:
			v.Next = append(v.Next, t)
		}
		if t.Important || t.Status == StatusDelayed || t.HasFutureReminder(now) {
			v.Alerts = append(v.Alerts, t)
		}
	}
	return v
}

// CalendarEntry is a task bar inside a calendar cell.
type CalendarEntry struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Department    Department `json:"department,omitempty"`
	Color         string     `json:"color"`
	Status        Status     `json:"status"`
	SubtasksDone  int        `json:"subtasksDone"`
	SubtasksTotal int        `json:"subtasksTotal"`
	Urgent        bool       `json:"urgent"`
	Important     bool       `json:"important"`
	Delayed       bool       `json:"delayed"`
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date    Day             `json:"date"`
	Entries []CalendarEntry `json:"entries"`
	Today   bool            `json:"today"`
}

// CalendarMonth is a month grid. Leading is the number of empty cells before
// the 1st so that weeks start on Sunday.
type CalendarMonth struct {
	Days    []CalendarDay `json:"days"`
	Year    int           `json:"year"`
	Month   time.Month    `json:"month"`
	Leading int           `json:"leading"`
}

// BuildCalendarMonth lays out a month with its tasks.
func BuildCalendarMonth(tasks []*Task, year int, month time.Month, today Day) CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()
	cal := CalendarMonth{
		Year:    year,
		Month:   month,
		Leading: int(first.Weekday()),
		Days:    make([]CalendarDay, 0, daysIn),
	}
	byDay := make(map[Day][]CalendarEntry)
	for _, t := range tasks {
		done, total := t.SubtaskProgress()
		byDay[t.Date] = append(byDay[t.Date], CalendarEntry{
			ID:            t.ID,
			Title:         t.Title,
			Department:    t.Department,
			Color:         t.Department.Color(),
			Status:        t.Status,
			SubtasksDone:  done,
			SubtasksTotal: total,
			Urgent:        t.Priority == PriorityUrgent,
			Important:     t.Important,
			Delayed:       t.Status == StatusDelayed,
		})
	}
	for d := 1; d <= daysIn; d++ {
		day := DayOf(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		entries := byDay[day]
		if entries == nil {
			entries = []CalendarEntry{}
		}
		cal.Days = append(cal.Days, CalendarDay{Date: day, Entries: entries, Today: day == today})
	}
	return cal
}

// CompletedReport returns done tasks completed within the last days days
// (days <= 0 means all), newest first.
func CompletedReport(tasks []*Task, now time.Time, days int) []*Task {
	var start time.Time
	if days > 0 {
		start = now.AddDate(0, 0, -days)
	}
	out := []*Task{}
	for _, t := range tasks {
		if !t.Status.IsDone() || t.DoneAt == nil {
			continue
		}
		if days > 0 && t.DoneAt.Before(start) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b *Task) int {
		return b.DoneAt.Compare(*a.DoneAt)
	})
	return out
}
