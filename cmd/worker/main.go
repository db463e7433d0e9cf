package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"toolrent/config"
	"toolrent/di"
	"toolrent/shared/logger"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	worker, err := di.InitializeWorker()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cron worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enable {
		go serveMetrics(ctx, worker)
	}

	log.Info().
		Int("interval_seconds", cfg.Cron.OverdueScanIntervalSeconds).
		Str("lock_key", cfg.Cron.LockKey).
		Msg("Starting cron worker")

	if err := worker.Cron.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Cron worker stopped unexpectedly")
	}

	log.Info().Msg("Cron worker stopped")
}

func serveMetrics(ctx context.Context, worker *di.Worker) {
	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/metrics", worker.Metrics.Handler())
	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", worker.Config.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop metrics server")
		}
	}()

	log.Info().Str("port", worker.Config.Metrics.Port).Msg("Serving worker metrics")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
