package tool_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "toolrent/infras/otel/mocks"
	"toolrent/internal/domains/tool/mocks"
	"toolrent/internal/domains/tool/model"
	"toolrent/internal/domains/tool/model/dto"
	"toolrent/internal/handlers/tool"
	"toolrent/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockCatalog, chi.Router) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCatalog(ctrl)
	handler := tool.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, path, strings.NewReader(body)))

	return recorder
}

func TestSearchTools_Filters(t *testing.T) {
	svc, router := setup(t)

	minPrice := decimal.RequireFromString("5")
	svc.EXPECT().Search(gomock.Any(), gomock.Any(), dto.SearchFilter{
		Query:         "drill",
		CategoryID:    2,
		Status:        model.StatusAvailable,
		MinPrice:      &minPrice,
		AvailableOnly: true,
	}).Return(dto.GetToolsResponse{}, nil)

	recorder := serve(router, http.MethodGet, "/tools?query=drill&category_id=2&status=available&min_price=5&available_only=true", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSearchTools_InvalidQuery(t *testing.T) {
	_, router := setup(t)

	for _, query := range []string{"status=lost", "category_id=abc", "max_price=cheap"} {
		recorder := serve(router, http.MethodGet, "/tools?"+query, "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code, query)
	}
}

func TestGetToolByID(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().Get(gomock.Any(), "t-1").Return(dto.ToolResponse{ID: "t-1"}, nil)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/tools/t-1", "").Code)

	period := dto.PeriodQuery{StartDate: "2025-06-01", EndDate: "2025-06-05"}
	svc.EXPECT().GetInPeriod(gomock.Any(), "t-1", period).Return(dto.ToolResponse{ID: "t-1"}, nil)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/tools/t-1?start_date=2025-06-01&end_date=2025-06-05", "").Code)

	svc.EXPECT().Get(gomock.Any(), "missing").Return(dto.ToolResponse{}, failure.NotFound("tool not found"))
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/tools/missing", "").Code)
}

func TestGetAvailableTools(t *testing.T) {
	svc, router := setup(t)

	period := dto.PeriodQuery{StartDate: "2025-06-01", EndDate: "2025-06-05"}

	svc.EXPECT().ListAvailableInPeriod(gomock.Any(), period, dto.AvailableFilter{CategoryID: 3}).
		Return(dto.AvailableToolsResponse{}, nil)
	svc.EXPECT().ListAvailableInPeriod(gomock.Any(), period, dto.AvailableFilter{Search: "drill"}).
		Return(dto.AvailableToolsResponse{}, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/tools/available?start_date=2025-06-01&end_date=2025-06-05&category_id=3", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/tools/available?start_date=2025-06-01&end_date=2025-06-05&search=drill", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/tools/available?start_date=2025-06-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/tools/available?start_date=2025-06-01&end_date=2025-06-05&category_id=-1", "").Code)
}

func TestAdjustQuantity(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().UpdateQuantity(gomock.Any(), "t-1", -2).Return(dto.QuantityResponse{ID: "t-1", QuantityAvailable: 3}, nil)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPatch, "/tools/t-1/quantity", `{"delta":-2}`).Code)

	svc.EXPECT().UpdateQuantity(gomock.Any(), "t-1", -9).Return(dto.QuantityResponse{}, failure.UnavailableStock("quantity cannot go below zero"))
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPatch, "/tools/t-1/quantity", `{"delta":-9}`).Code)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPatch, "/tools/t-1/quantity", `{"delta":0}`).Code)
}

func TestDeleteTool_WithHistory(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().Delete(gomock.Any(), "t-1").Return(failure.InvalidState("tool has booking history"))

	assert.Equal(t, http.StatusConflict, serve(router, http.MethodDelete, "/tools/t-1", "").Code)
}
