package cron

import (
	"context"
	"errors"
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

const defaultOutboxRetention = 7 * 24 * time.Hour

type outboxPruner interface {
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

// OutboxRetentionJob deletes published outbox rows past the retention
// window so the table stays small.
type OutboxRetentionJob struct {
	outbox    outboxPruner
	retention time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

// NewOutboxRetentionJob builds the retention job.
func NewOutboxRetentionJob(pruner outboxPruner, retention time.Duration, logg *logger.Logger) (*OutboxRetentionJob, error) {
	if pruner == nil {
		return nil, errors.New("outbox pruner required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	return &OutboxRetentionJob{
		outbox:    pruner,
		retention: retention,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *OutboxRetentionJob) Name() string {
	return "outbox_retention"
}

// Run prunes one batch of expired rows.
func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	deleted, err := j.outbox.DeletePublishedBefore(cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logCtx := j.logg.WithField(ctx, "deleted", deleted)
		j.logg.Info(logCtx, "pruned published outbox events")
	}
	return nil
}
