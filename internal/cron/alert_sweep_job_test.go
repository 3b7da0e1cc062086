package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadcasehq/merchtable-backend/internal/alerts"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

type stubSweeper struct {
	result *alerts.SweepResult
	err    error
	calls  int
}

func (s *stubSweeper) Sweep(context.Context) (*alerts.SweepResult, error) {
	s.calls++
	return s.result, s.err
}

func TestAlertSweepJobRunsSweep(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	sweeper := &stubSweeper{result: &alerts.SweepResult{Raised: 2, Resolved: 1}}
	job, err := NewAlertSweepJob(sweeper, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "alert_sweep" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestAlertSweepJobPropagatesError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	sweeper := &stubSweeper{err: errors.New("db down")}
	job, err := NewAlertSweepJob(sweeper, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

type stubPruner struct {
	deleted int64
	err     error
	cutoff  time.Time
}

func (s *stubPruner) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestOutboxRetentionJobUsesRetentionWindow(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	pruner := &stubPruner{deleted: 3}
	job, err := NewOutboxRetentionJob(pruner, 48*time.Hour, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	want := now.Add(-48 * time.Hour)
	if !pruner.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, pruner.cutoff)
	}
}
