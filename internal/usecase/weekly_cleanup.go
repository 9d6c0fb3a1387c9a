package usecase

import (
	"context"
	"fmt"

	"github.com/qcteam/teamcal/internal/domain"
)

// WeeklyCleanupInput sets the toggle. A nil Enabled only reads it.
type WeeklyCleanupInput struct {
	Enabled *bool
}

// WeeklyCleanupOutput reports the toggle and the last run.
type WeeklyCleanupOutput struct {
	LastRun domain.Day
	Enabled bool
}

// WeeklyCleanup is the use case for the weekly-cleanup setting.
type WeeklyCleanup struct {
	prefs domain.Preferences
}

// NewWeeklyCleanup creates a new WeeklyCleanup use case.
func NewWeeklyCleanup(prefs domain.Preferences) *WeeklyCleanup {
	return &WeeklyCleanup{prefs: prefs}
}

// Execute reads, and optionally updates, the setting.
func (uc *WeeklyCleanup) Execute(_ context.Context, in WeeklyCleanupInput) (*WeeklyCleanupOutput, error) {
	if in.Enabled != nil {
		if err := uc.prefs.SetWeeklyCleanupEnabled(*in.Enabled); err != nil {
			return nil, fmt.Errorf("save weekly cleanup setting: %w", err)
		}
	}
	enabled, err := uc.prefs.WeeklyCleanupEnabled()
	if err != nil {
		return nil, fmt.Errorf("read weekly cleanup setting: %w", err)
	}
	last, err := uc.prefs.LastCleanupDay()
	if err != nil {
		return nil, fmt.Errorf("read last cleanup day: %w", err)
	}
	return &WeeklyCleanupOutput{Enabled: enabled, LastRun: last}, nil
}
