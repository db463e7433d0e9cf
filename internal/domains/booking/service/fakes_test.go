package service_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"toolrent/infras/kafka"
	"toolrent/internal/domains/booking/model"
	bookingRepo "toolrent/internal/domains/booking/repository"
	toolModel "toolrent/internal/domains/tool/model"
	toolRepo "toolrent/internal/domains/tool/repository"
	"toolrent/shared/cache"
	gDto "toolrent/shared/dto"
)

// store is an in-memory database shared by the fake repositories.
type store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	tools    map[string]toolModel.Tool
	bookings map[string]model.Booking
	items    map[string]model.Item
	order    []string
}

func newStore(tools ...toolModel.Tool) *store {
	s := &store{
		tools:    map[string]toolModel.Tool{},
		bookings: map[string]model.Booking{},
		items:    map[string]model.Item{},
	}

	for _, tool := range tools {
		s.tools[tool.ID] = tool
	}

	return s
}

func (s *store) tool(id string) toolModel.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tools[id]
}

func (s *store) booking(id string) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bookings[id]
}

func (s *store) itemsOf(bookingID string) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.itemsOfLocked(bookingID)
}

func (s *store) itemsOfLocked(bookingID string) []model.Item {
	items := []model.Item{}

	for _, id := range s.order {
		item := s.items[id]
		if item.BookingID == bookingID {
			item.ToolName = s.tools[item.ToolID].Name
			items = append(items, item)
		}
	}

	return items
}

// transactor serialises transactions and restores the store when fn fails.
type transactor struct {
	store *store
}

func (t *transactor) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	tools := maps.Clone(t.store.tools)
	bookings := maps.Clone(t.store.bookings)
	items := maps.Clone(t.store.items)
	order := slices.Clone(t.store.order)
	t.store.mu.Unlock()

	if err := fn(nil); err != nil {
		t.store.mu.Lock()
		t.store.tools, t.store.bookings, t.store.items, t.store.order = tools, bookings, items, order
		t.store.mu.Unlock()

		return err
	}

	return nil
}

func filterValue(filter gDto.FilterGroup, field string) (any, bool) {
	for _, f := range filter.Filters {
		if flt, ok := f.(gDto.Filter); ok && flt.Field == field {
			return flt.Value, true
		}
	}

	return nil, false
}

// toolRepository implements the parts of the tool repository the catalog uses
// on the write path.
type toolRepository struct {
	toolRepo.Tool
	store *store
	// raced, when set, bumps the version of the tool before the next compare-and-swap.
	raced map[string]int
}

func (r *toolRepository) GetTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (toolModel.Tool, error) {
	id, _ := filterValue(filter, toolModel.FieldID)

	return r.store.tool(id.(string)), nil
}

func (r *toolRepository) GetAllTx(_ context.Context, _ *sqlx.Tx, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]toolModel.Tool, error) {
	value, _ := filterValue(filter, toolModel.FieldID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tools := []toolModel.Tool{}
	for _, id := range value.([]string) {
		if tool, ok := r.store.tools[id]; ok {
			tools = append(tools, tool)
		}
	}

	return tools, nil
}

func (r *toolRepository) CompareAndAdjustTx(_ context.Context, _ *sqlx.Tx, id string, version, delta int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tool := r.store.tools[id]

	if r.raced[id] > 0 {
		r.raced[id]--
		tool.Version++
		r.store.tools[id] = tool
	}

	if tool.Version != version || tool.QuantityAvailable+delta < 0 {
		return false, nil
	}

	tool.QuantityAvailable += delta
	tool.Version++
	r.store.tools[id] = tool

	return true, nil
}

type bookingRepository struct {
	store *store
}

var _ bookingRepo.Booking = (*bookingRepository)(nil)

func (r *bookingRepository) InsertTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.bookings[booking.ID] = booking

	return nil
}

func (r *bookingRepository) InsertItemsTx(_ context.Context, _ *sqlx.Tx, items []model.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range items {
		r.store.items[item.ID] = item
		r.store.order = append(r.store.order, item.ID)
	}

	return nil
}

func (r *bookingRepository) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	id, _ := filterValue(filter, model.FieldID)

	return r.store.booking(id.(string)), nil
}

func (r *bookingRepository) GetForUpdateTx(_ context.Context, _ *sqlx.Tx, id string) (model.Booking, error) {
	return r.store.booking(id), nil
}

func (r *bookingRepository) matching(filter gDto.FilterGroup) []model.Booking {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	userID, byUser := filterValue(filter, model.FieldUserID)
	status, byStatus := filterValue(filter, model.FieldStatus)

	bookings := []model.Booking{}
	for _, booking := range r.store.bookings {
		if byUser && booking.UserID != userID {
			continue
		}

		if byStatus && booking.Status != status {
			continue
		}

		bookings = append(bookings, booking)
	}

	slices.SortFunc(bookings, func(a, b model.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return bookings
}

func (r *bookingRepository) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	bookings := r.matching(filter)

	from := min((params.Page-1)*params.Limit, len(bookings))
	to := min(from+params.Limit, len(bookings))

	return bookings[from:to], nil
}

func (r *bookingRepository) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *bookingRepository) GetItems(_ context.Context, bookingIDs ...string) ([]model.Item, error) {
	items := []model.Item{}
	for _, id := range bookingIDs {
		items = append(items, r.store.itemsOf(id)...)
	}

	return items, nil
}

func (r *bookingRepository) GetItemsTx(_ context.Context, _ *sqlx.Tx, bookingID string) ([]model.Item, error) {
	return r.store.itemsOf(bookingID), nil
}

func (r *bookingRepository) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id string, status model.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking := r.store.bookings[id]
	booking.Status = status
	r.store.bookings[id] = booking

	return nil
}

func (r *bookingRepository) UpdateItemsTx(_ context.Context, _ *sqlx.Tx, ids []string, fields map[string]any) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var affected int64

	for _, id := range ids {
		item, ok := r.store.items[id]
		if !ok {
			continue
		}

		if status, ok := fields[model.FieldStatus].(model.ItemStatus); ok {
			item.Status = status
		}

		if at, ok := fields[model.FieldCheckedOutAt].(time.Time); ok {
			item.CheckedOutAt = &at
		}

		if at, ok := fields[model.FieldReturnedAt].(time.Time); ok {
			item.ReturnedAt = &at
		}

		r.store.items[id] = item
		affected++
	}

	return affected, nil
}

func (r *bookingRepository) MarkOverdue(_ context.Context, asOf time.Time) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bookingIDs := []string{}

	for _, id := range r.store.order {
		item := r.store.items[id]
		if item.Status != model.ItemStatusCheckedOut || !r.store.bookings[item.BookingID].EndDate.Before(asOf) {
			continue
		}

		item.Status = model.ItemStatusOverdue
		r.store.items[id] = item
		bookingIDs = append(bookingIDs, item.BookingID)
	}

	return bookingIDs, nil
}

// missCache never holds anything.
type missCache struct{}

func (missCache) Save(context.Context, string, any, int) error { return nil }
func (missCache) Get(context.Context, string, any) error       { return cache.Nil }
func (missCache) Delete(context.Context, string) error         { return nil }
func (missCache) Clear(context.Context, string) error          { return nil }

// recorder keeps every message published to Kafka.
type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) SendMessages(_ context.Context, _ string, messages ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range messages {
		r.events = append(r.events, message.Value.(model.Event))
	}

	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]model.EventType, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}

	return types
}
