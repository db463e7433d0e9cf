package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"toolrent/config"
	"toolrent/infras/kafka"
	"toolrent/infras/metrics"
	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	"toolrent/internal/domains/booking/model"
	"toolrent/internal/domains/booking/model/dto"
	"toolrent/internal/domains/booking/repository"
	toolModel "toolrent/internal/domains/tool/model"
	toolService "toolrent/internal/domains/tool/service"
	"toolrent/shared"
	"toolrent/shared/cache"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"
	"toolrent/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

const (
	opCreate      = "create"
	opCancel      = "cancel"
	opCheckout    = "checkout"
	opReturn      = "return"
	opScanOverdue = "scan_overdue"
)

var sortableColumns = map[string]string{
	constant.FieldCreatedAt: model.TableName + "." + constant.FieldCreatedAt,
	model.FieldStartDate:    model.TableName + "." + model.FieldStartDate,
	model.FieldEndDate:      model.TableName + "." + model.FieldEndDate,
	model.FieldStatus:       model.TableName + "." + model.FieldStatus,
}

// Booking is the lifecycle engine. Every mutation runs in one transaction that
// covers the booking rows and the tool quantity ledger.
type Booking interface {
	Create(ctx context.Context, userID string, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	Cancel(ctx context.Context, id string, actor dto.Actor) error
	Checkout(ctx context.Context, id string) (dto.CheckoutResponse, error)
	Return(ctx context.Context, id string) (dto.ReturnResponse, error)
	ScanOverdue(ctx context.Context, asOf time.Time) (int, error)
	GetDetail(ctx context.Context, id string, actor dto.Actor) (dto.BookingResponse, error)
	ListForUser(ctx context.Context, userID string, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, status model.Status) (dto.GetBookingsResponse, error)
}

type serviceImpl struct {
	repo       repository.Booking
	catalog    toolService.Catalog
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	kafka      kafka.Client
	metrics    *metrics.BookingMetrics
}

func New(
	repo repository.Booking,
	catalog toolService.Catalog,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	kafka kafka.Client,
	metrics *metrics.BookingMetrics,
) Booking {
	return &serviceImpl{
		repo:       repo,
		catalog:    catalog,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		kafka:      kafka,
		metrics:    metrics,
	}
}

// Create reserves every requested line against the live shelf quantity and
// persists the booking as pending. Nothing is written unless all lines succeed.
func (s *serviceImpl) Create(ctx context.Context, userID string, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.observe(opCreate, err) }()

	start, end, err := req.Check()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = ctx.Err(); err != nil {
		return res, fmt.Errorf("create booking aborted: %w", err)
	}

	booking, items := req.ToModel(userID, start, end)

	err = s.transactor.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		tools, err := s.catalog.GetToolsTx(ctx, sqltx, req.ToolIDs())
		if err != nil {
			return err //nolint:wrapcheck
		}

		byID := make(map[string]toolModel.Tool, len(tools))
		for _, tool := range tools {
			byID[tool.ID] = tool
		}

		for _, line := range req.Items {
			tool := byID[line.ToolID]

			if tool.Status != toolModel.StatusAvailable {
				return failure.UnavailableStock(fmt.Sprintf("tool %s is %s", tool.Name, tool.Status)) // nolint:wrapcheck
			}

			if tool.QuantityAvailable < line.Quantity {
				return failure.UnavailableStock(fmt.Sprintf("tool %s has only %d units available", tool.Name, tool.QuantityAvailable)) // nolint:wrapcheck
			}
		}

		if err := s.repo.InsertTx(ctx, sqltx, booking); err != nil {
			log.Error().Err(err).Msg("failed to insert booking")

			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if err := s.repo.InsertItemsTx(ctx, sqltx, items); err != nil {
			log.Error().Err(err).Msg("failed to insert booking items")

			return fmt.Errorf("failed to insert booking items: %w", err)
		}

		return s.adjust(ctx, sqltx, items, -1)
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	s.afterCommit(ctx, booking, items, model.EventCreated)

	return dto.CreateBookingResponse{ID: booking.ID, Status: booking.Status}, nil
}

// Cancel releases every reserved item of a pending booking back to the shelf.
func (s *serviceImpl) Cancel(ctx context.Context, id string, actor dto.Actor) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.observe(opCancel, err) }()

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("cancel booking aborted: %w", err)
	}

	var (
		booking   model.Booking
		cancelled []model.Item
	)

	err = s.transactor.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		var items []model.Item
		var err error

		// Only the owner may cancel, admins included.
		booking, items, err = s.lock(ctx, sqltx, id, dto.Actor{UserID: actor.UserID})
		if err != nil {
			return err
		}

		if err := model.CheckCancellable(booking.Status, items); err != nil {
			return err //nolint:wrapcheck
		}

		cancelled = model.Select(items, func(status model.ItemStatus) bool {
			return model.CanTransition(status, model.ItemStatusCancelled)
		})

		if err := s.moveItems(ctx, sqltx, cancelled, model.ItemStatusCancelled, nil); err != nil {
			return err
		}

		if err := s.adjust(ctx, sqltx, cancelled, 1); err != nil {
			return err
		}

		booking.Status = model.StatusCancelled

		return s.setStatus(ctx, sqltx, booking)
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.afterCommit(ctx, booking, cancelled, model.EventCancelled)

	return nil
}

// Checkout hands every reserved item over to the customer. Quantities were
// already taken off the shelf at creation.
func (s *serviceImpl) Checkout(ctx context.Context, id string) (res dto.CheckoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.observe(opCheckout, err) }()

	if err = ctx.Err(); err != nil {
		return res, fmt.Errorf("checkout aborted: %w", err)
	}

	var (
		booking    model.Booking
		checkedOut []model.Item
	)

	err = s.transactor.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		var items []model.Item
		var err error

		booking, items, err = s.lock(ctx, sqltx, id, dto.Actor{Admin: true})
		if err != nil {
			return err
		}

		if err := model.CheckCheckoutable(booking.Status); err != nil {
			return err //nolint:wrapcheck
		}

		checkedOut = model.Select(items, func(status model.ItemStatus) bool {
			return model.CanTransition(status, model.ItemStatusCheckedOut)
		})

		if len(checkedOut) == 0 {
			return nil
		}

		now := timezone.Now()
		if err := s.moveItems(ctx, sqltx, checkedOut, model.ItemStatusCheckedOut, map[string]any{model.FieldCheckedOutAt: now}); err != nil {
			return err
		}

		booking.Status = model.StatusConfirmed

		return s.setStatus(ctx, sqltx, booking)
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if len(checkedOut) > 0 {
		s.afterCommit(ctx, booking, checkedOut, model.EventCheckedOut)
	}

	return dto.CheckoutResponse{ID: booking.ID, Status: booking.Status, CheckedOut: len(checkedOut)}, nil
}

// Return takes back every checked-out or overdue item. A closed booking is left
// untouched and reported as not applied.
func (s *serviceImpl) Return(ctx context.Context, id string) (res dto.ReturnResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Return")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.observe(opReturn, err) }()

	if err = ctx.Err(); err != nil {
		return res, fmt.Errorf("return aborted: %w", err)
	}

	var (
		booking  model.Booking
		returned []model.Item
	)

	err = s.transactor.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		var items []model.Item
		var err error

		booking, items, err = s.lock(ctx, sqltx, id, dto.Actor{Admin: true})
		if err != nil {
			return err
		}

		if booking.Status.IsClosed() {
			return nil
		}

		returned = model.Select(items, func(status model.ItemStatus) bool {
			return model.CanTransition(status, model.ItemStatusReturned)
		})

		if len(returned) == 0 {
			return failure.InvalidState("booking has no checked out items to return") // nolint:wrapcheck
		}

		now := timezone.Now()
		if err := s.moveItems(ctx, sqltx, returned, model.ItemStatusReturned, map[string]any{model.FieldReturnedAt: now}); err != nil {
			return err
		}

		if err := s.adjust(ctx, sqltx, returned, 1); err != nil {
			return err
		}

		for i := range items {
			if model.CanTransition(items[i].Status, model.ItemStatusReturned) {
				items[i].Status = model.ItemStatusReturned
			}
		}

		next := model.DeriveStatus(booking.Status, items)
		if next == booking.Status {
			return nil
		}

		booking.Status = next

		return s.setStatus(ctx, sqltx, booking)
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res = dto.ReturnResponse{
		ID:        booking.ID,
		Status:    booking.Status,
		Applied:   len(returned) > 0,
		Completed: len(returned) > 0 && booking.Status == model.StatusCompleted,
		Returned:  len(returned),
	}

	if res.Applied {
		s.afterCommit(ctx, booking, returned, model.EventReturned)

		if res.Completed {
			s.publish(ctx, model.NewEvent(model.EventCompleted, booking, nil, timezone.Now()))
		}
	}

	return res, nil
}

// ScanOverdue marks checked-out items of bookings that ended before asOf as
// overdue. Running it again with the same date moves nothing.
func (s *serviceImpl) ScanOverdue(ctx context.Context, asOf time.Time) (updated int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ScanOverdue")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.observe(opScanOverdue, err) }()

	asOf = shared.TruncateDate(asOf)
	scope.SetAttributes(map[string]any{"scan.as_of": asOf})

	bookingIDs, err := s.repo.MarkOverdue(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Time("asOf", asOf).Msg("failed to scan overdue items")

		return 0, fmt.Errorf("failed to scan overdue items: %w", err)
	}

	updated = len(bookingIDs)
	s.metrics.AddOverdue(int64(updated))

	if updated == 0 {
		return 0, nil
	}

	perBooking := map[string]int{}
	for _, id := range bookingIDs {
		perBooking[id]++
	}

	now := timezone.Now()
	events := make([]model.Event, 0, len(perBooking))

	for _, id := range slices.Sorted(maps.Keys(perBooking)) {
		events = append(events, model.Event{Type: model.EventItemsOverdue, BookingID: id, Count: perBooking[id], OccurredAt: now})
	}

	s.invalidate(ctx, slices.Collect(maps.Keys(perBooking))...)
	s.publish(ctx, events...)

	log.Info().Time("asOf", asOf).Int("updated", updated).Msg("overdue scan finished")

	return updated, nil
}

func (s *serviceImpl) GetDetail(ctx context.Context, id string, actor dto.Actor) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetDetail")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		if !visible(res.UserID, actor) {
			return dto.BookingResponse{}, failure.NotFound("booking not found") // nolint:wrapcheck
		}

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty || !visible(booking.UserID, actor) {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	items, err := s.repo.GetItems(ctx, booking.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking items")

		return res, fmt.Errorf("failed to get booking items: %w", err)
	}

	res.FromModel(booking, items)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ListForUser(ctx context.Context, userID string, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldUserID, Value: userID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	return s.list(ctx, params, filter)
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, status model.Status) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}
	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	return s.list(ctx, params, filter)
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	params.Clamp(s.cfg.Booking.MaxPageSize)

	column, ok := sortableColumns[params.SortBy]
	if !ok {
		column = sortableColumns[constant.FieldCreatedAt]
	}

	params.SortBy = column
	if params.SortDir == constant.Empty {
		params.SortDir = gDto.SortDirDesc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.count(ctx, filter)
	if err != nil {
		return res, err
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	items, err := s.repo.GetItems(ctx, ids...)
	if err != nil {
		log.Error().Err(err).Msg("failed to list booking items")

		return res, fmt.Errorf("failed to list booking items: %w", err)
	}

	grouped := map[string][]model.Item{}
	for _, item := range items {
		grouped[item.BookingID] = append(grouped[item.BookingID], item)
	}

	res.FromModels(bookings, grouped, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, filter gDto.FilterGroup) (total int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, gDto.QueryParams{}, filter)

	if err = s.cache.Get(ctx, cacheKey, &total); err == nil {
		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return total, nil
}

// lock reads the booking row FOR UPDATE together with its items. A booking the
// actor may not see is reported as missing.
func (s *serviceImpl) lock(ctx context.Context, sqltx *sqlx.Tx, id string, actor dto.Actor) (model.Booking, []model.Item, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, sqltx, id)
	if err != nil {
		log.Error().Err(err).Str("bookingID", id).Msg("failed to lock booking")

		return booking, nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty || !visible(booking.UserID, actor) {
		return booking, nil, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	items, err := s.repo.GetItemsTx(ctx, sqltx, booking.ID)
	if err != nil {
		log.Error().Err(err).Str("bookingID", id).Msg("failed to get booking items")

		return booking, nil, fmt.Errorf("failed to get booking items: %w", err)
	}

	return booking, items, nil
}

// moveItems sets items to status, plus any extra columns, and updates the slice in place.
func (s *serviceImpl) moveItems(ctx context.Context, sqltx *sqlx.Tx, items []model.Item, status model.ItemStatus, extra map[string]any) error {
	if len(items) == 0 {
		return nil
	}

	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
	}
	maps.Copy(fields, extra)

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	affected, err := s.repo.UpdateItemsTx(ctx, sqltx, ids, fields)
	if err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("failed to update booking items")

		return fmt.Errorf("failed to update booking items: %w", err)
	}

	if affected != int64(len(items)) {
		return fmt.Errorf("failed to update booking items: %d of %d rows changed", affected, len(items))
	}

	for i := range items {
		items[i].Status = status
	}

	return nil
}

// adjust applies sign*quantity to every item's tool, in tool id order so that
// concurrent transactions lock tool rows in the same sequence.
func (s *serviceImpl) adjust(ctx context.Context, sqltx *sqlx.Tx, items []model.Item, sign int) error {
	ordered := slices.Clone(items)
	slices.SortFunc(ordered, func(a, b model.Item) int {
		return strings.Compare(a.ToolID, b.ToolID)
	})

	for _, item := range ordered {
		if err := s.catalog.AdjustQuantity(ctx, sqltx, item.ToolID, sign*item.Quantity); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

func (s *serviceImpl) setStatus(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error {
	if err := s.repo.UpdateStatusTx(ctx, sqltx, booking.ID, booking.Status); err != nil {
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to update booking status")

		return fmt.Errorf("failed to update booking status: %w", err)
	}

	return nil
}

func (s *serviceImpl) afterCommit(ctx context.Context, booking model.Booking, items []model.Item, eventType model.EventType) {
	s.invalidate(ctx, booking.ID)

	toolIDs := make([]string, len(items))
	for i, item := range items {
		toolIDs[i] = item.ToolID
	}

	if eventType != model.EventCheckedOut {
		s.catalog.InvalidateCaches(ctx, toolIDs...)
	}

	s.publish(ctx, model.NewEvent(eventType, booking, items, timezone.Now()))
}

func (s *serviceImpl) invalidate(ctx context.Context, ids ...string) {
	go func() {
		c := context.WithoutCancel(ctx)

		for _, id := range ids {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
				log.Error().Err(err).Str("bookingID", id).Msg("failed to delete booking from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, constant.CachePrefixReport)
	}()
}

// publish sends events without blocking the caller. Delivery failures are logged.
func (s *serviceImpl) publish(ctx context.Context, events ...model.Event) {
	if len(events) == 0 {
		return
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		messages[i] = kafka.Message{Key: event.BookingID, Value: event}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.BookingTopic, messages...); err != nil {
			log.Error().Err(err).Str("topic", s.cfg.Kafka.BookingTopic).Msg("failed to publish booking events")
		}
	}()
}

func (s *serviceImpl) observe(operation string, err error) {
	if err == nil {
		s.metrics.IncTransition(operation)

		return
	}

	if kind := failure.GetKind(err); kind != failure.KindInternal {
		s.metrics.IncRejection(operation, string(kind))
	}
}

func visible(ownerID string, actor dto.Actor) bool {
	return actor.Admin || ownerID == actor.UserID
}
