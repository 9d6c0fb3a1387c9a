// Package maintenance runs the time-gated batch jobs: the daily rollover of
// overdue tasks and the weekly cleanup of old completed tasks.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

const (
	logCategory = "maintenance"
	cleanupAge  = 7 * 24 * time.Hour
)

// Skip reasons reported by RunWeeklyCleanup.
const (
	SkipDisabled   = "disabled"
	SkipNotSunday  = "not the first day of the week"
	SkipAlreadyRan = "already ran today"
)

// TaskRepository is the slice of the repository the jobs need.
type TaskRepository interface {
	Tasks() []*domain.Task
	Update(ctx context.Context, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id string) error
	ServerNow(ctx context.Context) (time.Time, error)
}

// RolloverResult lists the tasks moved to today.
type RolloverResult struct {
	Today domain.Day `json:"today"`
	Moved []string   `json:"moved"`
}

// CleanupResult reports a weekly cleanup run. Skipped is empty when it ran.
type CleanupResult struct {
	Now     time.Time  `json:"now"`
	Day     domain.Day `json:"day"`
	Skipped string     `json:"skipped,omitempty"`
	Deleted []string   `json:"deleted"`
	Server  bool       `json:"serverClock"`
}

// Report combines both jobs.
type Report struct {
	Rollover RolloverResult `json:"rollover"`
	Cleanup  CleanupResult  `json:"cleanup"`
}

// Scheduler runs the maintenance jobs. Runs are serialized.
type Scheduler struct {
	repo  TaskRepository
	prefs domain.Preferences
	clock domain.Clock
	log   domain.Logger
	mu    sync.Mutex
}

// New creates a Scheduler.
func New(repo TaskRepository, prefs domain.Preferences, clock domain.Clock, log domain.Logger) *Scheduler {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if log == nil {
		log = domain.NopLogger{}
	}
	return &Scheduler{repo: repo, prefs: prefs, clock: clock, log: log}
}

// RunDailyRollover moves every unfinished task (or done task with an open
// subtask) dated before today to today with status delayed. A failed update is
// logged and the scan continues; the joined errors are returned.
func (s *Scheduler) RunDailyRollover(ctx context.Context) (RolloverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollover(ctx)
}

func (s *Scheduler) rollover(ctx context.Context) (RolloverResult, error) {
	today := domain.DayOf(s.clock.Now())
	res := RolloverResult{Today: today, Moved: []string{}}

	var errs []error
	for _, t := range s.repo.Tasks() {
		if !needsRollover(t, today) {
			continue
		}
		patch := domain.TaskPatch{
			Date:   domain.Ptr(today),
			Status: domain.Ptr(domain.StatusDelayed),
		}
		if err := s.repo.Update(ctx, t.ID, patch); err != nil {
			s.log.Error(t.ID, logCategory, fmt.Sprintf("rollover: %v", err))
			errs = append(errs, fmt.Errorf("roll over task %s: %w", t.ID, err))
			continue
		}
		s.log.Info(t.ID, logCategory, fmt.Sprintf("rolled over from %s to %s", t.Date, today))
		res.Moved = append(res.Moved, t.ID)
	}
	return res, errors.Join(errs...)
}

func needsRollover(t *domain.Task, today domain.Day) bool {
	return (!t.Status.IsDone() || t.HasOpenSubtasks()) && t.Date.Before(today)
}

// RunWeeklyCleanup deletes done tasks completed at least seven days ago. It
// only runs when enabled, on a Sunday, and once per day; "now" comes from the
// server clock when available.
func (s *Scheduler) RunWeeklyCleanup(ctx context.Context) (CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanup(ctx)
}

func (s *Scheduler) cleanup(ctx context.Context) (CleanupResult, error) {
	res := CleanupResult{Deleted: []string{}}

	enabled, err := s.prefs.WeeklyCleanupEnabled()
	if err != nil {
		return res, fmt.Errorf("read cleanup setting: %w", err)
	}
	if !enabled {
		res.Skipped = SkipDisabled
		return res, nil
	}

	local := s.clock.Now()
	now, err := s.repo.ServerNow(ctx)
	if err != nil {
		s.log.Debug("", logCategory, fmt.Sprintf("server clock unavailable, using local time: %v", err))
		now = local
	} else {
		res.Server = true
		now = now.In(local.Location())
	}
	res.Now = now
	res.Day = domain.DayOf(now)

	if now.Weekday() != time.Sunday {
		res.Skipped = SkipNotSunday
		return res, nil
	}
	last, err := s.prefs.LastCleanupDay()
	if err != nil {
		return res, fmt.Errorf("read last cleanup day: %w", err)
	}
	if last == res.Day {
		res.Skipped = SkipAlreadyRan
		return res, nil
	}

	cutoff := now.Add(-cleanupAge)
	var errs []error
	for _, t := range s.repo.Tasks() {
		if !t.Status.IsDone() || t.DoneAt == nil || t.DoneAt.After(cutoff) {
			continue
		}
		if err := s.repo.Delete(ctx, t.ID); err != nil {
			s.log.Error(t.ID, logCategory, fmt.Sprintf("cleanup: %v", err))
			errs = append(errs, fmt.Errorf("delete task %s: %w", t.ID, err))
			continue
		}
		res.Deleted = append(res.Deleted, t.ID)
	}

	// Marked even when nothing qualified so later syncs cannot re-fire it today.
	if err := s.prefs.SetLastCleanupDay(res.Day); err != nil {
		errs = append(errs, fmt.Errorf("record cleanup day: %w", err))
	}
	s.log.Info("", logCategory, fmt.Sprintf("weekly cleanup removed %d tasks", len(res.Deleted)))
	return res, errors.Join(errs...)
}

// RunAll runs the rollover and then the cleanup.
func (s *Scheduler) RunAll(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep Report
	var rollErr, cleanErr error
	rep.Rollover, rollErr = s.rollover(ctx)
	rep.Cleanup, cleanErr = s.cleanup(ctx)
	return rep, errors.Join(rollErr, cleanErr)
}

// Start re-runs RunAll every interval until ctx is done or stop is called.
// A non-positive interval starts nothing.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunAll(ctx); err != nil {
					s.log.Warn("", logCategory, fmt.Sprintf("scheduled run: %v", err))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
