package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"toolrent/config"
	"toolrent/infras/metrics"
	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	"toolrent/internal/domains/tool/model"
	"toolrent/internal/domains/tool/model/dto"
	"toolrent/internal/domains/tool/repository"
	"toolrent/shared"
	"toolrent/shared/cache"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetTool       = "tool:get"
	cacheGetAllTool    = "tool:gets"
	cacheCountTool     = "tool:count"
	cacheAvailableTool = "tool:available"
)

var sortableColumns = map[string]string{
	model.FieldName:              model.TableName + "." + model.FieldName,
	model.FieldPricePerDay:       model.TableName + "." + model.FieldPricePerDay,
	model.FieldQuantityAvailable: model.TableName + "." + model.FieldQuantityAvailable,
	constant.FieldCreatedAt:      model.TableName + "." + constant.FieldCreatedAt,
}

// Catalog owns tool records and the quantity ledger. AdjustQuantity is the only
// path that changes quantity_available.
type Catalog interface {
	Create(ctx context.Context, req dto.CreateToolRequest) (dto.ToolResponse, error)
	Get(ctx context.Context, id string) (dto.ToolResponse, error)
	GetInPeriod(ctx context.Context, id string, query dto.PeriodQuery) (dto.ToolResponse, error)
	GetToolsTx(ctx context.Context, sqltx *sqlx.Tx, ids []string) ([]model.Tool, error)
	Search(ctx context.Context, params gDto.QueryParams, filter dto.SearchFilter) (dto.GetToolsResponse, error)
	ListAvailableInPeriod(ctx context.Context, query dto.PeriodQuery, filter dto.AvailableFilter) (dto.AvailableToolsResponse, error)
	AdjustQuantity(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) error
	UpdateQuantity(ctx context.Context, id string, delta int) (dto.QuantityResponse, error)
	Update(ctx context.Context, req dto.UpdateToolRequest, id string) error
	UpdateStatus(ctx context.Context, req dto.UpdateToolStatusRequest, id string) error
	Delete(ctx context.Context, id string) error
	InvalidateCaches(ctx context.Context, ids ...string)
}

type serviceImpl struct {
	repo       repository.Tool
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	metrics    *metrics.BookingMetrics
}

func New(repo repository.Tool, transactor postgres.Transactor, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, metrics *metrics.BookingMetrics) Catalog {
	return &serviceImpl{
		repo:       repo,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		metrics:    metrics,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateToolRequest) (res dto.ToolResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	tool := req.ToModel(user)

	if err = s.repo.Insert(ctx, tool); err != nil {
		if isForeignKeyViolation(err) {
			return res, failure.BadRequestFromString("category not found") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create tool")

		return res, fmt.Errorf("failed to create tool: %w", err)
	}

	res.FromModel(tool)

	s.InvalidateCaches(ctx)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ToolResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetTool, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for tool")

		return res, nil
	}

	tool, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get tool")

		return res, fmt.Errorf("failed to get tool: %w", err)
	}

	if tool.ID == constant.Empty {
		return res, failure.NotFound("tool not found") // nolint:wrapcheck
	}

	res.FromModel(tool)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save tool to cache")
		}
	}()

	return res, nil
}

// GetToolsTx loads exactly the requested tools inside sqltx. Any id that does not
// resolve yields NotFound naming the missing tools.
func (s *serviceImpl) GetToolsTx(ctx context.Context, sqltx *sqlx.Tx, ids []string) (tools []model.Tool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetToolsTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	unique := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(unique) == 0 {
		return []model.Tool{}, nil
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: unique, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	tools, err = s.repo.GetAllTx(ctx, sqltx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get tools")

		return nil, fmt.Errorf("failed to get tools: %w", err)
	}

	if len(tools) != len(unique) {
		found := make(map[string]struct{}, len(tools))
		for _, tool := range tools {
			found[tool.ID] = struct{}{}
		}

		missing := []string{}
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}

		return nil, failure.NotFound(fmt.Sprintf("tool not found: %v", missing)) // nolint:wrapcheck
	}

	return tools, nil
}

func (s *serviceImpl) Search(ctx context.Context, params gDto.QueryParams, filter dto.SearchFilter) (res dto.GetToolsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Search")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.Clamp(s.cfg.Booking.MaxPageSize)

	column, ok := sortableColumns[params.SortBy]
	if !ok {
		column = sortableColumns[model.FieldName]
	}

	params.SortBy = column
	if params.SortDir == constant.Empty {
		params.SortDir = gDto.SortDirAsc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllTool, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for tools")

		return res, nil
	}

	group := filter.ToFilterGroup()

	total, err := s.count(ctx, params, filter, group)
	if err != nil {
		return res, err
	}

	tools, err := s.repo.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to search tools")

		return res, fmt.Errorf("failed to search tools: %w", err)
	}

	res.FromModels(tools, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save tools to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter dto.SearchFilter, group gDto.FilterGroup) (total int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountTool, gDto.QueryParams{}, filter)

	if err = s.cache.Get(ctx, cacheKey, &total); err == nil {
		return total, nil
	}

	total, err = s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Int("page", params.Page).Msg("failed to count tools")

		return 0, fmt.Errorf("failed to count tools: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save tool count to cache")
		}
	}()

	return total, nil
}

// AdjustQuantity applies delta to the tool's ledger inside sqltx with a
// compare-and-swap on the version column. A lost race re-reads and retries up to
// the configured attempts before reporting ConcurrencyConflict.
func (s *serviceImpl) AdjustQuantity(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AdjustQuantity")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"tool.id": id, "tool.delta": delta})

	if delta == 0 {
		return nil
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	attempts := max(s.cfg.Booking.MaxAdjustAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("adjust quantity aborted: %w", err)
		}

		var tool model.Tool

		tool, err = s.repo.GetTx(ctx, sqltx, filter, model.FieldID, model.FieldName, model.FieldQuantityAvailable, model.FieldVersion)
		if err != nil {
			log.Error().Err(err).Str("toolID", id).Msg("failed to read tool quantity")

			return fmt.Errorf("failed to read tool quantity: %w", err)
		}

		if tool.ID == constant.Empty {
			return failure.NotFound("tool not found: " + id) // nolint:wrapcheck
		}

		if tool.QuantityAvailable+delta < 0 {
			return failure.UnavailableStock(fmt.Sprintf("tool %s has only %d units available", id, tool.QuantityAvailable)) // nolint:wrapcheck
		}

		var applied bool

		applied, err = s.repo.CompareAndAdjustTx(ctx, sqltx, id, tool.Version, delta)
		if err != nil {
			log.Error().Err(err).Str("toolID", id).Msg("failed to adjust tool quantity")

			return fmt.Errorf("failed to adjust tool quantity: %w", err)
		}

		if applied {
			return nil
		}

		s.metrics.IncQuantityConflict()
		log.Warn().Str("toolID", id).Int("attempt", attempt).Msg("tool quantity changed concurrently, retrying")
	}

	return failure.ConcurrencyConflict("tool quantity changed concurrently, retry the request") // nolint:wrapcheck
}

// UpdateQuantity is a manual stock correction in its own transaction.
func (s *serviceImpl) UpdateQuantity(ctx context.Context, id string, delta int) (res dto.QuantityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateQuantity")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.transactor.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		if err := s.AdjustQuantity(ctx, sqltx, id, delta); err != nil {
			return err
		}

		tool, err := s.repo.GetTx(ctx, sqltx, shared.FilterByID(id, model.FieldID, model.TableName), model.FieldID, model.FieldQuantityAvailable)
		if err != nil {
			return fmt.Errorf("failed to read tool quantity: %w", err)
		}

		res = dto.QuantityResponse{ID: tool.ID, QuantityAvailable: tool.QuantityAvailable}

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	s.InvalidateCaches(ctx, id)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateToolRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.mustExist(ctx, filter); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		if isForeignKeyViolation(err) {
			return failure.BadRequestFromString("category not found") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update tool")

		return fmt.Errorf("failed to update tool: %w", err)
	}

	s.InvalidateCaches(ctx, id)

	return nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateToolStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.mustExist(ctx, filter); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Msg("failed to update tool status")

		return fmt.Errorf("failed to update tool status: %w", err)
	}

	s.InvalidateCaches(ctx, id)

	return nil
}

// Delete removes a tool that no booking ever referenced.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.mustExist(ctx, filter); err != nil {
		return err
	}

	referenced, err := s.repo.HasBookingHistory(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to check tool booking history")

		return fmt.Errorf("failed to check tool booking history: %w", err)
	}

	if referenced {
		return failure.InvalidState("tool has booking history and cannot be deleted") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if isForeignKeyViolation(err) {
			return failure.InvalidState("tool has booking history and cannot be deleted") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete tool")

		return fmt.Errorf("failed to delete tool: %w", err)
	}

	s.InvalidateCaches(ctx, id)

	return nil
}

// InvalidateCaches drops cached details for ids and every cached listing.
func (s *serviceImpl) InvalidateCaches(ctx context.Context, ids ...string) {
	go func() {
		c := context.WithoutCancel(ctx)

		for _, id := range ids {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetTool, id)); err != nil {
				log.Error().Err(err).Str("toolID", id).Msg("failed to delete tool from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllTool)
		shared.InvalidateCaches(c, s.cache, cacheCountTool)
		shared.InvalidateCaches(c, s.cache, cacheAvailableTool)
	}()
}

func (s *serviceImpl) mustExist(ctx context.Context, filter gDto.FilterGroup) error {
	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check tool existence")

		return fmt.Errorf("failed to check tool existence: %w", err)
	}

	if !exist {
		return failure.NotFound("tool not found") // nolint:wrapcheck
	}

	return nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeFkViolation
}
