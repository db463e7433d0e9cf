package cron

import (
	"context"
	"fmt"
	"time"

	bookingService "toolrent/internal/domains/booking/service"

	"github.com/rs/zerolog"
)

const overdueJobName = "overdue-scan"

// OverdueJob flags checked-out items of bookings whose end date has passed.
type OverdueJob struct {
	bookings bookingService.Booking
	now      func() time.Time
}

func NewOverdueJob(bookings bookingService.Booking) *OverdueJob {
	return &OverdueJob{bookings: bookings, now: time.Now}
}

func (j *OverdueJob) Name() string {
	return overdueJobName
}

func (j *OverdueJob) Run(ctx context.Context) error {
	asOf := j.now()

	updated, err := j.bookings.ScanOverdue(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to scan overdue bookings: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int("updated", updated).
		Time("as_of", asOf).
		Msg("overdue scan finished")

	return nil
}
