package cron

import (
	"context"
	"errors"

	"github.com/roadcasehq/merchtable-backend/internal/alerts"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

type alertSweeper interface {
	Sweep(ctx context.Context) (*alerts.SweepResult, error)
}

// AlertSweepJob walks the inventory and raises or retires low-stock
// alerts.
type AlertSweepJob struct {
	alerts alertSweeper
	logg   *logger.Logger
}

// NewAlertSweepJob builds the sweep job.
func NewAlertSweepJob(sweeper alertSweeper, logg *logger.Logger) (*AlertSweepJob, error) {
	if sweeper == nil {
		return nil, errors.New("alert sweeper required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &AlertSweepJob{alerts: sweeper, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *AlertSweepJob) Name() string {
	return "alert_sweep"
}

// Run executes one sweep.
func (j *AlertSweepJob) Run(ctx context.Context) error {
	result, err := j.alerts.Sweep(ctx)
	if err != nil {
		return err
	}
	if result.Raised > 0 || result.Resolved > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"raised":   result.Raised,
			"resolved": result.Resolved,
		})
		j.logg.Info(logCtx, "low stock sweep changed alerts")
	}
	return nil
}
