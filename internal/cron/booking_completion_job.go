package cron

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultCompletionBatch = 200

type bookingCompleter interface {
	CompleteElapsed(ctx context.Context, today time.Time, limit int) (*bookings.CompletionResult, error)
}

type BookingCompletionJobParams struct {
	Logger    *logger.Logger
	Bookings  bookingCompleter
	BatchSize int
}

// NewBookingCompletionJob moves confirmed stays whose check-out date has
// passed to COMPLETED.
func NewBookingCompletionJob(params BookingCompletionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultCompletionBatch
	}
	return &bookingCompletionJob{
		logg:     params.Logger,
		bookings: params.Bookings,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type bookingCompletionJob struct {
	logg     *logger.Logger
	bookings bookingCompleter
	batch    int
	now      func() time.Time
}

func (j *bookingCompletionJob) Name() string { return "booking-completion" }

func (j *bookingCompletionJob) Run(ctx context.Context) error {
	today := j.now().UTC().Truncate(24 * time.Hour)
	result, err := j.bookings.CompleteElapsed(ctx, today, j.batch)
	if err != nil && result == nil {
		return fmt.Errorf("complete elapsed bookings: %w", err)
	}

	var errs error
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	ids := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		errs = multierr.Append(errs, fmt.Errorf("booking %s: %w", id, result.Failed[id]))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":     today.Format(time.DateOnly),
		"completed": len(result.Completed),
		"failed":    len(result.Failed),
	})
	j.logg.Info(logCtx, "booking completion sweep finished")
	return errs
}
