package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolrent/infras/metrics"

	"github.com/rs/zerolog/log"
)

const defaultInterval = time.Hour

var errLockRequired = errors.New("cron lock is required")

type ServiceParams struct {
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval, guarded by Lock.
type Service struct {
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Lock == nil {
		return nil, errLockRequired
	}

	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Service{
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if err := s.runCycle(ctx); err != nil {
		log.Error().Err(err).Msg("cron cycle failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("cron service stopped")

			return ctx.Err() //nolint:wrapcheck
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				log.Error().Err(err).Msg("cron cycle failed")
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		log.Info().Msg("cron lock held by another instance, skipping cycle")

		return nil
	}

	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			log.Error().Err(relErr).Msg("failed to release cron lock")
		}
	}()

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}

	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) {
	logger := log.With().Str("job", job.Name()).Logger()
	logger.Info().Msg("cron job started")

	start := time.Now()
	err := job.Run(logger.WithContext(ctx))
	duration := time.Since(start)

	s.metrics.ObserveDuration(job.Name(), duration)

	if err != nil {
		logger.Error().Err(err).Dur("duration", duration).Msg("cron job failed")
		s.metrics.IncFailure(job.Name())

		return
	}

	logger.Info().Dur("duration", duration).Msg("cron job completed")
	s.metrics.IncSuccess(job.Name())
}
