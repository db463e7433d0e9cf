package service

import (
	"context"
	"fmt"

	"toolrent/internal/domains/tool/model/dto"
	"toolrent/shared"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"

	"github.com/rs/zerolog/log"
)

// GetInPeriod is Get plus the units still free over the requested window.
func (s *serviceImpl) GetInPeriod(ctx context.Context, id string, query dto.PeriodQuery) (res dto.ToolResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetInPeriod")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	period, err := query.ToPeriod()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res, err = s.Get(ctx, id)
	if err != nil {
		return res, err
	}

	free, err := s.repo.FreeInPeriod(ctx, id, period.Start, period.End)
	if err != nil {
		log.Error().Err(err).Str("toolID", id).Msg("failed to compute tool availability")

		return res, fmt.Errorf("failed to compute tool availability: %w", err)
	}

	free = max(free, 0)
	res.AvailableInPeriod = &free

	return res, nil
}

// ListAvailableInPeriod lists listable tools with at least one unit free over the
// window, ordered by name.
func (s *serviceImpl) ListAvailableInPeriod(ctx context.Context, query dto.PeriodQuery, filter dto.AvailableFilter) (res dto.AvailableToolsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListAvailableInPeriod")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	period, err := query.ToPeriod()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheAvailableTool, gDto.QueryParams{}, []any{query, filter})

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for available tools")

		return res, nil
	}

	tools, err := s.repo.ListAvailableInPeriod(ctx, period.Start, period.End, filter.ToModel())
	if err != nil {
		log.Error().Err(err).Msg("failed to list available tools")

		return res, fmt.Errorf("failed to list available tools: %w", err)
	}

	res.FromModels(period, tools)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save available tools to cache")
		}
	}()

	return res, nil
}
