//go:build wireinject
// +build wireinject

package di

import (
	"toolrent/config"
	"toolrent/infras/jwt"
	"toolrent/infras/kafka"
	"toolrent/infras/metrics"
	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	"toolrent/infras/redis"
	"toolrent/internal/cron"
	"toolrent/permissions"
	"toolrent/shared/cache"
	"toolrent/transport/http"
	"toolrent/transport/http/middleware"
	"toolrent/transport/http/router"

	bookingRepository "toolrent/internal/domains/booking/repository"
	bookingService "toolrent/internal/domains/booking/service"
	reportRepository "toolrent/internal/domains/report/repository"
	reportService "toolrent/internal/domains/report/service"
	toolRepository "toolrent/internal/domains/tool/repository"
	toolService "toolrent/internal/domains/tool/service"
	bookingHandler "toolrent/internal/handlers/booking"
	reportHandler "toolrent/internal/handlers/report"
	toolHandler "toolrent/internal/handlers/tool"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	metrics.New,
	metrics.NewBookingMetrics,
)

var workerInfrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	redis.NewLockStore,
	kafka.New,
	metrics.New,
	metrics.NewBookingMetrics,
	metrics.NewCronJobMetrics,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var toolDomain = wire.NewSet(
	toolRepository.New,
	toolService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var reportDomain = wire.NewSet(
	reportRepository.New,
	reportService.New,
)

var domains = wire.NewSet(
	toolDomain,
	bookingDomain,
	reportDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	toolHandler.New,
	bookingHandler.New,
	reportHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() (*Worker, error) {
	wire.Build(
		config.Get,
		workerInfrastructures,
		sharedHelpers,
		toolDomain,
		bookingDomain,
		cron.NewWorker,
		wire.Struct(new(Worker), "*"),
	)

	return &Worker{}, nil
}
