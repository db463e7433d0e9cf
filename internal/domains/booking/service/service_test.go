package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolrent/config"
	"toolrent/infras/metrics"
	"toolrent/infras/otel/mocks"
	"toolrent/internal/domains/booking/model"
	"toolrent/internal/domains/booking/model/dto"
	"toolrent/internal/domains/booking/service"
	toolModel "toolrent/internal/domains/tool/model"
	toolService "toolrent/internal/domains/tool/service"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"
)

type engine struct {
	store    *store
	tools    *toolRepository
	events   *recorder
	registry *metrics.Registry
	svc      service.Booking
}

func newEngine(t *testing.T, tools ...toolModel.Tool) *engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.Booking.MaxAdjustAttempts = 3
	cfg.Booking.MaxPageSize = 100
	cfg.Kafka.BookingTopic = "toolrent.booking.events"

	e := &engine{
		store:    newStore(tools...),
		events:   &recorder{},
		registry: metrics.New(),
	}
	e.tools = &toolRepository{store: e.store, raced: map[string]int{}}

	tx := &transactor{store: e.store}
	bookingMetrics := metrics.NewBookingMetrics(e.registry)
	otel := mocks.NewOtel()

	catalog := toolService.New(e.tools, tx, cfg, missCache{}, otel, bookingMetrics)
	e.svc = service.New(&bookingRepository{store: e.store}, catalog, tx, cfg, missCache{}, otel, e.events, bookingMetrics)

	return e
}

func newTool(name string, quantity int) toolModel.Tool {
	return toolModel.Tool{
		ID:                uuid.NewString(),
		Name:              name,
		PricePerDay:       decimal.NewFromInt(15),
		QuantityAvailable: quantity,
		Version:           1,
		CategoryID:        1,
		Status:            toolModel.StatusAvailable,
	}
}

func request(start, end string, lines ...dto.CreateBookingItemRequest) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{StartDate: start, EndDate: end, Items: lines}
}

func line(toolID string, quantity int) dto.CreateBookingItemRequest {
	return dto.CreateBookingItemRequest{ToolID: toolID, Quantity: quantity}
}

var (
	member = dto.Actor{UserID: "member-1"}
	admin  = dto.Actor{UserID: "admin-1", Admin: true}
)

func TestBooking_FullLifecycleRestoresStock(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)

	checkout, err := e.svc.Checkout(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, checkout.Status)
	assert.Equal(t, 1, checkout.CheckedOut)
	assert.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)

	items := e.store.itemsOf(created.ID)
	require.Len(t, items, 1)
	assert.Equal(t, model.ItemStatusCheckedOut, items[0].Status)
	assert.NotNil(t, items[0].CheckedOutAt)

	returned, err := e.svc.Return(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, returned.Applied)
	assert.True(t, returned.Completed)
	assert.Equal(t, 1, returned.Returned)
	assert.Equal(t, model.StatusCompleted, e.store.booking(created.ID).Status)
	assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)

	require.Eventually(t, func() bool {
		return len(e.events.types()) == 4
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t,
		[]model.EventType{model.EventCreated, model.EventCheckedOut, model.EventReturned, model.EventCompleted},
		e.events.types(),
	)
}

func TestBooking_CreateChecksLiveStock(t *testing.T) {
	saw := newTool("Saw", 3)
	e := newEngine(t, saw)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(saw.ID, 2)))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, "member-2", request("2025-01-03", "2025-01-07", line(saw.ID, 2)))
	assert.True(t, failure.IsKind(err, failure.KindUnavailableStock), "got %v", err)
	assert.Equal(t, 1, e.store.tool(saw.ID).QuantityAvailable)
}

func TestBooking_CreateRejectsInvalidRequests(t *testing.T) {
	drill := newTool("Drill", 5)
	broken := newTool("Broken ladder", 5)
	broken.Status = toolModel.StatusMaintenance

	tests := []struct {
		name     string
		req      dto.CreateBookingRequest
		wantKind failure.Kind
	}{
		{
			name:     "start equals end",
			req:      request("2025-01-05", "2025-01-05", line(drill.ID, 1)),
			wantKind: failure.KindValidation,
		},
		{
			name:     "start after end",
			req:      request("2025-01-06", "2025-01-05", line(drill.ID, 1)),
			wantKind: failure.KindValidation,
		},
		{
			name:     "duplicate tool",
			req:      request("2025-01-01", "2025-01-05", line(drill.ID, 1), line(drill.ID, 2)),
			wantKind: failure.KindValidation,
		},
		{
			name:     "no items",
			req:      request("2025-01-01", "2025-01-05"),
			wantKind: failure.KindValidation,
		},
		{
			name:     "non-positive quantity",
			req:      request("2025-01-01", "2025-01-05", line(drill.ID, 0)),
			wantKind: failure.KindValidation,
		},
		{
			name:     "unknown tool",
			req:      request("2025-01-01", "2025-01-05", line(drill.ID, 1), line(uuid.NewString(), 1)),
			wantKind: failure.KindNotFound,
		},
		{
			name:     "tool under maintenance",
			req:      request("2025-01-01", "2025-01-05", line(broken.ID, 1)),
			wantKind: failure.KindUnavailableStock,
		},
		{
			name:     "more than on the shelf",
			req:      request("2025-01-01", "2025-01-05", line(drill.ID, 6)),
			wantKind: failure.KindUnavailableStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, drill, broken)

			_, err := e.svc.Create(context.Background(), member.UserID, tt.req)

			assert.True(t, failure.IsKind(err, tt.wantKind), "got %v", err)
			assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
			assert.Empty(t, e.store.bookings)
		})
	}
}

func TestBooking_CreateIsAllOrNothing(t *testing.T) {
	drill := newTool("Drill", 5)
	saw := newTool("Saw", 5)
	e := newEngine(t, drill, saw)

	// every compare-and-swap on the saw loses, so the drill decrement must roll back
	e.tools.raced[saw.ID] = 3

	_, err := e.svc.Create(context.Background(), member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2), line(saw.ID, 1)))

	assert.True(t, failure.IsKind(err, failure.KindConcurrencyConflict), "got %v", err)
	assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
	assert.Empty(t, e.store.bookings)
	assert.Empty(t, e.store.items)
}

func TestBooking_CreateRetriesAfterLostRace(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)
	e.tools.raced[drill.ID] = 1

	_, err := e.svc.Create(context.Background(), member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))

	require.NoError(t, err)
	assert.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)
}

func TestBooking_ConcurrentCreatesNeverOversell(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	for i := range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := e.svc.Create(context.Background(), uuid.NewString(), request("2025-01-01", "2025-01-05", line(drill.ID, 2)))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()

				return
			}

			assert.True(t, failure.IsKind(err, failure.KindUnavailableStock), "attempt %d: %v", i, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, 2, success)
	assert.Equal(t, 1, e.store.tool(drill.ID).QuantityAvailable)
}

func TestBooking_Cancel(t *testing.T) {
	drill := newTool("Drill", 5)
	saw := newTool("Saw", 4)

	t.Run("restores exactly once", func(t *testing.T) {
		e := newEngine(t, drill, saw)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2), line(saw.ID, 3)))
		require.NoError(t, err)

		require.NoError(t, e.svc.Cancel(ctx, created.ID, member))
		assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
		assert.Equal(t, 4, e.store.tool(saw.ID).QuantityAvailable)
		assert.Equal(t, model.StatusCancelled, e.store.booking(created.ID).Status)

		for _, item := range e.store.itemsOf(created.ID) {
			assert.Equal(t, model.ItemStatusCancelled, item.Status)
		}

		err = e.svc.Cancel(ctx, created.ID, member)
		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
		assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("someone else's booking is not found", func(t *testing.T) {
		e := newEngine(t, drill)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1)))
		require.NoError(t, err)

		err = e.svc.Cancel(ctx, created.ID, dto.Actor{UserID: "intruder"})
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
		assert.Equal(t, 4, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("admin cannot cancel someone else's booking", func(t *testing.T) {
		e := newEngine(t, drill)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))
		require.NoError(t, err)
		require.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)

		err = e.svc.Cancel(ctx, created.ID, admin)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
		assert.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)
		assert.Equal(t, model.StatusPending, e.store.booking(created.ID).Status)

		assert.NoError(t, e.svc.Cancel(ctx, created.ID, member))
		assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("checked out booking cannot be cancelled", func(t *testing.T) {
		e := newEngine(t, drill)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1)))
		require.NoError(t, err)

		_, err = e.svc.Checkout(ctx, created.ID)
		require.NoError(t, err)

		err = e.svc.Cancel(ctx, created.ID, member)
		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
		assert.Equal(t, 4, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("missing booking", func(t *testing.T) {
		e := newEngine(t, drill)

		err := e.svc.Cancel(context.Background(), uuid.NewString(), admin)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestBooking_CheckoutRejectsClosedBookings(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1)))
	require.NoError(t, err)
	require.NoError(t, e.svc.Cancel(ctx, created.ID, member))

	_, err = e.svc.Checkout(ctx, created.ID)
	assert.True(t, failure.IsKind(err, failure.KindInvalidState))

	_, err = e.svc.Checkout(ctx, uuid.NewString())
	assert.True(t, failure.IsKind(err, failure.KindNotFound))
}

func TestBooking_Return(t *testing.T) {
	drill := newTool("Drill", 5)
	saw := newTool("Saw", 5)

	t.Run("nothing checked out", func(t *testing.T) {
		e := newEngine(t, drill)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1)))
		require.NoError(t, err)

		_, err = e.svc.Return(ctx, created.ID)
		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("closed booking is a no-op", func(t *testing.T) {
		e := newEngine(t, drill)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1)))
		require.NoError(t, err)
		require.NoError(t, e.svc.Cancel(ctx, created.ID, member))

		res, err := e.svc.Return(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, model.StatusCancelled, res.Status)
		assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("partial return keeps booking confirmed", func(t *testing.T) {
		e := newEngine(t, drill, saw)
		ctx := context.Background()

		created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 1), line(saw.ID, 2)))
		require.NoError(t, err)

		_, err = e.svc.Checkout(ctx, created.ID)
		require.NoError(t, err)

		// put the saw line back on the shelf so only the drill comes back
		e.store.mu.Lock()
		for id, item := range e.store.items {
			if item.ToolID == saw.ID {
				item.Status = model.ItemStatusReserved
				e.store.items[id] = item
			}
		}
		e.store.mu.Unlock()

		res, err := e.svc.Return(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.False(t, res.Completed)
		assert.Equal(t, 1, res.Returned)
		assert.Equal(t, model.StatusConfirmed, e.store.booking(created.ID).Status)
		assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
	})

	t.Run("missing booking", func(t *testing.T) {
		e := newEngine(t, drill)

		_, err := e.svc.Return(context.Background(), uuid.NewString())
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestBooking_ScanOverdue(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))
	require.NoError(t, err)

	_, err = e.svc.Checkout(ctx, created.ID)
	require.NoError(t, err)

	updated, err := e.svc.ScanOverdue(ctx, time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, updated, "end date itself is not overdue yet")

	asOf := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	updated, err = e.svc.ScanOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, model.ItemStatusOverdue, e.store.itemsOf(created.ID)[0].Status)
	assert.Equal(t, 3, e.store.tool(drill.ID).QuantityAvailable)

	updated, err = e.svc.ScanOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)

	res, err := e.svc.Return(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
}

func TestBooking_Reads(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, "member-2", request("2025-02-01", "2025-02-05", line(drill.ID, 1)))
	require.NoError(t, err)

	detail, err := e.svc.GetDetail(ctx, created.ID, member)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", detail.StartDate)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Drill", detail.Items[0].ToolName)

	_, err = e.svc.GetDetail(ctx, created.ID, dto.Actor{UserID: "member-2"})
	assert.True(t, failure.IsKind(err, failure.KindNotFound))

	_, err = e.svc.GetDetail(ctx, created.ID, admin)
	assert.NoError(t, err)

	mine, err := e.svc.ListForUser(ctx, member.UserID, gDto.QueryParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.TotalData)
	require.Len(t, mine.Bookings, 1)
	assert.Len(t, mine.Bookings[0].Items, 1)

	all, err := e.svc.GetAll(ctx, gDto.QueryParams{Page: 1, Limit: 500}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalData)

	cancelled, err := e.svc.GetAll(ctx, gDto.QueryParams{}, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled.TotalData)
}

func TestBooking_CancelledContextAbortsBeforeMutation(t *testing.T) {
	drill := newTool("Drill", 5)
	e := newEngine(t, drill)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.svc.Create(ctx, member.UserID, request("2025-01-01", "2025-01-05", line(drill.ID, 2)))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, e.store.tool(drill.ID).QuantityAvailable)
}
