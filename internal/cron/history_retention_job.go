package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
)

const defaultHistoryRetention = 7 * 24 * time.Hour

type historyPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HistoryRetentionJobParams configures the reservation history purge.
type HistoryRetentionJobParams struct {
	Logger     *logger.Logger
	Repository historyPurger
	Retention  time.Duration
}

// NewHistoryRetentionJob constructs the job that enforces the reservation
// history retention window. Rows carry their own expires_at stamp; the job
// deletes everything whose stamp has passed.
func NewHistoryRetentionJob(params HistoryRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("history repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultHistoryRetention
	}
	return &historyRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type historyRetentionJob struct {
	logg      *logger.Logger
	repo      historyPurger
	retention time.Duration
	now       func() time.Time
}

func (j *historyRetentionJob) Name() string { return "reservation-history-retention" }

func (j *historyRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deleted, err := j.repo.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("reservation history purge: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "reservation history purge complete")
	return nil
}
