package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Report=MockReportService

import (
	"context"
	"fmt"

	"toolrent/config"
	"toolrent/infras/otel"
	"toolrent/internal/domains/report/model/dto"
	"toolrent/internal/domains/report/repository"
	"toolrent/shared"
	"toolrent/shared/cache"
	"toolrent/shared/constant"

	"github.com/rs/zerolog/log"
)

const topToolsLimit = 5

var (
	cacheStats = constant.CachePrefixReport + ":stats"
	cacheUsage = constant.CachePrefixReport + ":usage"
)

type Report interface {
	Stats(ctx context.Context) (dto.StatsResponse, error)
	Usage(ctx context.Context, query dto.UsageQuery) (dto.UsageResponse, error)
}

type serviceImpl struct {
	repo  repository.Report
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Report, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Report {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.cache.Get(ctx, cacheStats, &res); err == nil {
		return res, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get stats")

		return res, fmt.Errorf("failed to get stats: %w", err)
	}

	res.FromModel(stats)
	s.save(ctx, cacheStats, res)

	return res, nil
}

func (s *serviceImpl) Usage(ctx context.Context, query dto.UsageQuery) (res dto.UsageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Usage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	from, until, err := query.Range()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(cacheUsage, query.From, query.To)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	usage, err := s.repo.Usage(ctx, from, until)
	if err != nil {
		log.Error().Err(err).Msg("failed to get usage")

		return res, fmt.Errorf("failed to get usage: %w", err)
	}

	tools, err := s.repo.TopTools(ctx, from, until, topToolsLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to get top tools")

		return res, fmt.Errorf("failed to get top tools: %w", err)
	}

	res.FromModel(query, usage, tools)
	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save report to cache")
		}
	}()
}
