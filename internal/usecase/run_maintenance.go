package usecase

import (
	"context"

	"github.com/qcteam/teamcal/internal/maintenance"
)

// RunMaintenanceOutput reports both jobs.
type RunMaintenanceOutput struct {
	Report maintenance.Report
}

// RunMaintenance is the use case for running rollover and cleanup on demand.
type RunMaintenance struct {
	runner MaintenanceRunner
}

// NewRunMaintenance creates a new RunMaintenance use case.
func NewRunMaintenance(runner MaintenanceRunner) *RunMaintenance {
	return &RunMaintenance{runner: runner}
}

// Execute runs both jobs. The report is returned even when a job failed.
func (uc *RunMaintenance) Execute(ctx context.Context) (*RunMaintenanceOutput, error) {
	report, err := uc.runner.RunAll(ctx)
	return &RunMaintenanceOutput{Report: report}, err
}
