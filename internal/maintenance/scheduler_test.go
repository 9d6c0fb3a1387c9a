package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/repository"
	"github.com/qcteam/teamcal/internal/testutil"
)

type fixture struct {
	sched  *Scheduler
	repo   *repository.Repository
	remote *testutil.MemoryRemote
	prefs  *testutil.MemoryLocal
	clock  *testutil.MockClock
}

func newFixture(t *testing.T, now time.Time, tasks ...*domain.Task) *fixture {
	t.Helper()
	f := &fixture{
		prefs: testutil.NewMemoryLocal(),
		clock: testutil.NewMockClock(now),
	}
	f.remote = testutil.NewMemoryRemote(f.clock)
	f.remote.Seed(tasks...)
	f.repo = repository.New(repository.Options{
		Remote: f.remote,
		Local:  f.prefs,
		Clock:  f.clock,
	})
	f.repo.Subscribe(context.Background())
	t.Cleanup(f.repo.Close)
	f.sched = New(f.repo, f.prefs, f.clock, nil)
	return f
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func task(id string, date domain.Day, status domain.Status) *domain.Task {
	t := &domain.Task{
		ID:        id,
		Title:     "task " + id,
		Date:      date,
		Priority:  domain.PriorityGeneral,
		Status:    status,
		Subtasks:  []domain.Subtask{},
		CreatedAt: at("2023-12-31T08:00:00Z"),
	}
	if status.IsDone() {
		d := at("2024-01-01T00:00:00Z")
		t.DoneAt = &d
	}
	return t
}

func TestRollover_MovesOverdueToToday(t *testing.T) {
	f := newFixture(t, at("2024-01-05T10:00:00Z"), task("1", "2024-01-01", domain.StatusInProgress))

	res, err := f.sched.RunDailyRollover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.Moved)

	got, err := f.repo.Get("1")
	require.NoError(t, err)
	assert.Equal(t, domain.Day("2024-01-05"), got.Date)
	assert.Equal(t, domain.StatusDelayed, got.Status)
}

func TestRollover_Qualification(t *testing.T) {
	doneOpen := task("done-open", "2024-01-02", domain.StatusDone)
	doneOpen.Subtasks = []domain.Subtask{{ID: "subtask_1", Text: "x", Done: false}}
	doneClosed := task("done-closed", "2024-01-02", domain.StatusDone)
	doneClosed.Subtasks = []domain.Subtask{{ID: "subtask_1", Text: "x", Done: true}}

	f := newFixture(t, at("2024-01-05T10:00:00Z"),
		doneOpen,
		doneClosed,
		task("delayed", "2024-01-03", domain.StatusDelayed),
		task("today", "2024-01-05", domain.StatusInProgress),
		task("future", "2024-01-09", domain.StatusInProgress),
	)

	res, err := f.sched.RunDailyRollover(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"done-open", "delayed"}, res.Moved)

	got, _ := f.repo.Get("done-open")
	assert.Equal(t, domain.StatusDelayed, got.Status)
	assert.Nil(t, got.DoneAt, "leaving done clears doneAt")

	got, _ = f.repo.Get("done-closed")
	assert.Equal(t, domain.Day("2024-01-02"), got.Date)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func TestRollover_Idempotent(t *testing.T) {
	f := newFixture(t, at("2024-01-05T10:00:00Z"),
		task("1", "2024-01-01", domain.StatusInProgress),
		task("2", "2024-01-03", domain.StatusDelayed),
	)
	ctx := context.Background()

	_, err := f.sched.RunDailyRollover(ctx)
	require.NoError(t, err)
	updates := f.remote.CallCount("update:")

	res, err := f.sched.RunDailyRollover(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Moved)
	assert.Equal(t, updates, f.remote.CallCount("update:"))
}

func TestRollover_ContinuesAfterFailure(t *testing.T) {
	f := newFixture(t, at("2024-01-05T10:00:00Z"),
		task("1", "2024-01-01", domain.StatusInProgress),
	)
	// Both backends failing: remote errors, and the local fallback cannot persist.
	f.remote.UpdateErr = errors.New("remote down")
	f.prefs.SaveErr = errors.New("disk full")

	res, err := f.sched.RunDailyRollover(context.Background())
	assert.Error(t, err)
	assert.Empty(t, res.Moved)
}

func TestCleanup_DeletesOldDoneTasksOnSunday(t *testing.T) {
	f := newFixture(t, at("2024-01-14T09:00:00Z"),
		task("old", "2024-01-01", domain.StatusDone),
		task("open", "2024-01-14", domain.StatusInProgress),
	)
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, []string{"old"}, res.Deleted)
	assert.Equal(t, domain.Day("2024-01-14"), f.prefs.LastCleanup)

	_, err = f.repo.Get("old")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = f.repo.Get("open")
	assert.NoError(t, err)
}

func TestCleanup_NotOnMonday(t *testing.T) {
	// 2024-01-08 is a Monday.
	f := newFixture(t, at("2024-01-08T09:00:00Z"), task("old", "2024-01-01", domain.StatusDone))
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipNotSunday, res.Skipped)
	assert.Empty(t, res.Deleted)
	assert.Empty(t, f.prefs.LastCleanup)
}

func TestCleanup_Disabled(t *testing.T) {
	f := newFixture(t, at("2024-01-14T09:00:00Z"), task("old", "2024-01-01", domain.StatusDone))

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipDisabled, res.Skipped)
	assert.Zero(t, f.remote.CallCount("delete:"))
	assert.Zero(t, f.remote.CallCount("server_now"))
}

func TestCleanup_OncePerDay(t *testing.T) {
	f := newFixture(t, at("2024-01-14T09:00:00Z"), task("old", "2024-01-01", domain.StatusDone))
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))
	ctx := context.Background()

	_, err := f.sched.RunWeeklyCleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, f.remote.CallCount("delete:"))

	// A later sync brings in another eligible task; the gate holds for today.
	late := task("late", "2024-01-02", domain.StatusDone)
	f.remote.Seed(late)
	f.remote.Publish()
	f.clock.Advance(3 * time.Hour)

	res, err := f.sched.RunWeeklyCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, SkipAlreadyRan, res.Skipped)
	assert.Equal(t, 1, f.remote.CallCount("delete:"))
}

func TestCleanup_MarksDayWhenNothingQualifies(t *testing.T) {
	f := newFixture(t, at("2024-01-14T09:00:00Z"), task("fresh", "2024-01-13", domain.StatusInProgress))
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, domain.Day("2024-01-14"), f.prefs.LastCleanup)
}

func TestCleanup_AgeBoundary(t *testing.T) {
	now := at("2024-01-14T09:00:00Z")
	exact := task("exact", "2024-01-07", domain.StatusDone)
	d := now.Add(-7 * 24 * time.Hour)
	exact.DoneAt = &d
	recent := task("recent", "2024-01-08", domain.StatusDone)
	r := now.Add(-6 * 24 * time.Hour)
	recent.DoneAt = &r

	f := newFixture(t, now, exact, recent)
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"exact"}, res.Deleted)
}

func TestCleanup_PrefersServerClock(t *testing.T) {
	// Local clock says Monday, server says Sunday.
	f := newFixture(t, at("2024-01-15T09:00:00Z"), task("old", "2024-01-01", domain.StatusDone))
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))
	server := at("2024-01-14T23:30:00Z")
	f.remote.ServerTime = &server

	res, err := f.sched.RunWeeklyCleanup(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Server)
	assert.Equal(t, domain.Day("2024-01-14"), res.Day)
	assert.Equal(t, []string{"old"}, res.Deleted)
}

func TestRunAll(t *testing.T) {
	f := newFixture(t, at("2024-01-14T09:00:00Z"),
		task("old", "2024-01-01", domain.StatusDone),
		task("late", "2024-01-10", domain.StatusInProgress),
	)
	require.NoError(t, f.prefs.SetWeeklyCleanupEnabled(true))

	rep, err := f.sched.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, rep.Rollover.Moved)
	assert.Equal(t, []string{"old"}, rep.Cleanup.Deleted)
}

func TestStart_NonPositiveIntervalIsNoop(t *testing.T) {
	f := newFixture(t, at("2024-01-05T10:00:00Z"))
	stop := f.sched.Start(context.Background(), 0)
	stop()
}

func TestStart_RunsOnTimer(t *testing.T) {
	f := newFixture(t, at("2024-01-05T10:00:00Z"), task("1", "2024-01-01", domain.StatusInProgress))
	stop := f.sched.Start(context.Background(), 10*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		got, err := f.repo.Get("1")
		return err == nil && got.Status == domain.StatusDelayed
	}, 2*time.Second, 10*time.Millisecond)
}
