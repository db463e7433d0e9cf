package booking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	otelMocks "toolrent/infras/otel/mocks"
	"toolrent/internal/domains/booking/mocks"
	"toolrent/internal/domains/booking/model"
	"toolrent/internal/domains/booking/model/dto"
	"toolrent/internal/handlers/booking"
	"toolrent/shared/constant"
	"toolrent/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockBookingService, chi.Router) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBookingService(ctrl)
	handler := booking.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router chi.Router, method, path, body, userID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))

	ctx := context.WithValue(req.Context(), constant.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req.WithContext(ctx))

	return recorder
}

func TestCreateBooking(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *mocks.MockBookingService)
		wantCode int
	}{
		{
			name: "created",
			body: `{"start_date":"2025-06-01","end_date":"2025-06-03","items":[{"tool_id":"6f1c7a0e-8d4b-4c3e-9a61-2f5b7c9d0e11","quantity":2}]}`,
			setup: func(svc *mocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), "u-1", gomock.Any()).
					Return(dto.CreateBookingResponse{ID: "b-1", Status: model.StatusPending}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate tool lines rejected before the engine",
			body:     `{"start_date":"2025-06-01","end_date":"2025-06-03","items":[{"tool_id":"6f1c7a0e-8d4b-4c3e-9a61-2f5b7c9d0e11","quantity":1},{"tool_id":"6f1c7a0e-8d4b-4c3e-9a61-2f5b7c9d0e11","quantity":1}]}`,
			setup:    func(*mocks.MockBookingService) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{"start_date":`,
			setup:    func(*mocks.MockBookingService) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "stock exhausted",
			body: `{"start_date":"2025-06-01","end_date":"2025-06-03","items":[{"tool_id":"6f1c7a0e-8d4b-4c3e-9a61-2f5b7c9d0e11","quantity":9}]}`,
			setup: func(svc *mocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), "u-1", gomock.Any()).
					Return(dto.CreateBookingResponse{}, failure.UnavailableStock("not enough units"))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)
			tt.setup(svc)

			recorder := serve(router, http.MethodPost, "/bookings", tt.body, "u-1", constant.RoleMember)

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestCancelBooking_PassesActor(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Cancel(gomock.Any(), "b-1", dto.Actor{UserID: "u-9", Admin: true}).Return(nil)

	recorder := serve(router, http.MethodPost, "/bookings/b-1/cancel", "", "u-9", constant.RoleAdmin)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetBookingByID_HiddenFromOtherMembers(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().GetDetail(gomock.Any(), "b-1", dto.Actor{UserID: "u-2"}).
		Return(dto.BookingResponse{}, failure.NotFound("booking not found"))

	recorder := serve(router, http.MethodGet, "/bookings/b-1", "", "u-2", constant.RoleMember)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetMyBookings_RequiresUser(t *testing.T) {
	_, router := setup(t)

	recorder := serve(router, http.MethodGet, "/bookings/mybookings", "", "", "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetBookings_StatusFilter(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), model.StatusConfirmed).Return(dto.GetBookingsResponse{}, nil)

	recorder := serve(router, http.MethodGet, "/bookings?status=confirmed", "", "u-9", constant.RoleAdmin)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(router, http.MethodGet, "/bookings?status=lost", "", "u-9", constant.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestReturnBooking_NoOp(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Return(gomock.Any(), "b-1").
		Return(dto.ReturnResponse{ID: "b-1", Status: model.StatusCompleted, Applied: false}, nil)

	recorder := serve(router, http.MethodPost, "/bookings/b-1/return", "", "u-9", constant.RoleAdmin)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data dto.ReturnResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.False(t, body.Data.Applied)
	assert.Equal(t, model.StatusCompleted, body.Data.Status)
}

func TestScanOverdue(t *testing.T) {
	svc, router := setup(t)
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	svc.EXPECT().ScanOverdue(gomock.Any(), asOf).Return(4, nil)

	recorder := serve(router, http.MethodPost, "/bookings/overdue/scan", `{"as_of":"2025-06-10"}`, "u-9", constant.RoleAdmin)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"as_of":"2025-06-10","updated":4}}`, recorder.Body.String())
}

func TestScanOverdue_BadDate(t *testing.T) {
	_, router := setup(t)

	recorder := serve(router, http.MethodPost, "/bookings/overdue/scan", `{"as_of":"10/06/2025"}`, "u-9", constant.RoleAdmin)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
