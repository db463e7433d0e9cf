package cron

import (
	"time"

	"toolrent/config"
	"toolrent/infras/metrics"
	"toolrent/infras/redis"
	bookingService "toolrent/internal/domains/booking/service"
)

// NewWorker builds the cron service with every scheduled job of the rental engine.
func NewWorker(cfg *config.Config, store *redis.LockStore, jobMetrics *metrics.CronJobMetrics, bookings bookingService.Booking) (*Service, error) {
	lock, err := NewRedisLock(store, cfg.Cron.LockKey, time.Duration(cfg.Cron.LockTTLSeconds)*time.Second)
	if err != nil {
		return nil, err
	}

	return NewService(ServiceParams{
		Registry: NewRegistry(NewOverdueJob(bookings)),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: time.Duration(cfg.Cron.OverdueScanIntervalSeconds) * time.Second,
	})
}
