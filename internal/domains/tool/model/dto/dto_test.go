package dto_test

import (
	"testing"
	"time"

	"toolrent/internal/domains/tool/model"
	"toolrent/internal/domains/tool/model/dto"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToolRequest_ToModel(t *testing.T) {
	req := dto.CreateToolRequest{
		Name:              "Hammer drill",
		PricePerDay:       decimal.RequireFromString("12.50"),
		QuantityAvailable: 4,
		CategoryID:        2,
	}

	tool := req.ToModel("admin-1")

	assert.NotEmpty(t, tool.ID)
	assert.Equal(t, model.StatusAvailable, tool.Status)
	assert.Equal(t, 1, tool.Version)
	assert.Equal(t, 4, tool.QuantityAvailable)
	assert.True(t, decimal.RequireFromString("12.5").Equal(tool.PricePerDay))
	assert.Equal(t, "admin-1", tool.CreatedBy)
}

func TestPeriodQuery_ToPeriod(t *testing.T) {
	tests := []struct {
		name    string
		query   dto.PeriodQuery
		want    dto.Period
		wantErr bool
	}{
		{
			name:  "valid range",
			query: dto.PeriodQuery{StartDate: "2025-01-01", EndDate: "2025-01-05"},
			want: dto.Period{
				Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			},
		},
		{name: "same day", query: dto.PeriodQuery{StartDate: "2025-01-01", EndDate: "2025-01-01"}, wantErr: true},
		{name: "reversed", query: dto.PeriodQuery{StartDate: "2025-01-05", EndDate: "2025-01-01"}, wantErr: true},
		{name: "bad start", query: dto.PeriodQuery{StartDate: "01-01-2025", EndDate: "2025-01-05"}, wantErr: true},
		{name: "bad end", query: dto.PeriodQuery{StartDate: "2025-01-01", EndDate: "tomorrow"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := tt.query.ToPeriod()

			if tt.wantErr {
				assert.True(t, failure.IsKind(err, failure.KindValidation))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, period)
		})
	}
}

func TestSearchFilter_ToFilterGroup(t *testing.T) {
	minPrice := decimal.NewFromInt(5)

	t.Run("empty filter has no where clause", func(t *testing.T) {
		group := dto.SearchFilter{}.ToFilterGroup()
		where, _ := group.GetWhereClause()

		assert.Empty(t, where)
	})

	t.Run("query category and price", func(t *testing.T) {
		group := dto.SearchFilter{Query: "drill", CategoryID: 3, MinPrice: &minPrice}.ToFilterGroup()
		where, args := group.GetWhereClause()

		assert.Equal(t, "((LOWER(tools.name) LIKE LOWER(:search_name)  OR LOWER(tools.description) LIKE LOWER(:search_description) ) AND tools.category_id = :category_id AND tools.price_per_day >= :min_price)", where)
		assert.Equal(t, "%drill%", args["search_name"])
		assert.Equal(t, 3, args["category_id"])
	})

	t.Run("available only", func(t *testing.T) {
		group := dto.SearchFilter{AvailableOnly: true}.ToFilterGroup()

		assert.Len(t, group.Filters, 2)
		assert.Equal(t, gDto.FilterOperatorGreaterEq, group.Filters[1].(gDto.Filter).Operator)
	})
}

func TestAvailableToolsResponse_FromModels(t *testing.T) {
	period := dto.Period{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	res := dto.AvailableToolsResponse{}
	res.FromModels(period, []model.Availability{
		{Tool: model.Tool{ID: "t-1", Name: "Saw", QuantityAvailable: 1}, AvailableInPeriod: 3},
	})

	assert.Equal(t, "2025-01-01", res.StartDate)
	assert.Equal(t, "2025-01-05", res.EndDate)
	require.Len(t, res.Tools, 1)
	require.NotNil(t, res.Tools[0].AvailableInPeriod)
	assert.Equal(t, 3, *res.Tools[0].AvailableInPeriod)
	assert.Equal(t, 1, res.Tools[0].QuantityAvailable)
}
