package di

import (
	"toolrent/config"
	"toolrent/infras/metrics"
	"toolrent/internal/cron"
)

// Worker is the background process running the scheduled jobs.
type Worker struct {
	Config  *config.Config
	Cron    *cron.Service
	Metrics *metrics.Registry
}
