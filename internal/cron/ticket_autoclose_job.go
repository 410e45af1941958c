package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
)

const defaultTicketIdleWindow = 30 * 24 * time.Hour

type staleTicketCloser interface {
	CloseInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TicketAutoCloseJobParams configures the stale support ticket sweep.
type TicketAutoCloseJobParams struct {
	Logger     *logger.Logger
	Repository staleTicketCloser
	IdleWindow time.Duration
}

// NewTicketAutoCloseJob constructs the job that closes support tickets
// nobody has touched for the configured idle window.
func NewTicketAutoCloseJob(params TicketAutoCloseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("support repository required")
	}
	idle := params.IdleWindow
	if idle <= 0 {
		idle = defaultTicketIdleWindow
	}
	return &ticketAutoCloseJob{
		logg: params.Logger,
		repo: params.Repository,
		idle: idle,
		now:  time.Now,
	}, nil
}

type ticketAutoCloseJob struct {
	logg *logger.Logger
	repo staleTicketCloser
	idle time.Duration
	now  func() time.Time
}

func (j *ticketAutoCloseJob) Name() string { return "support-ticket-autoclose" }

func (j *ticketAutoCloseJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.idle)
	closed, err := j.repo.CloseInactiveBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ticket autoclose: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"tickets_closed": closed,
	})
	j.logg.Info(logCtx, "ticket autoclose complete")
	return nil
}
