package dto_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"toolrent/shared/constant"
	"toolrent/shared/dto"
	"toolrent/shared/model"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "creator",
		ModifiedBy: "modifier",
	})

	assert.NotEmpty(t, metadata.CreatedAt)
	assert.NotEmpty(t, metadata.ModifiedAt)
	assert.Equal(t, "creator", metadata.CreatedBy)
	assert.Equal(t, "modifier", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name: "with all valid parameters",
			queryParams: map[string]string{
				"page":     "2",
				"limit":    "20",
				"sort_by":  "name",
				"sort_dir": "asc",
			},
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: "ASC"},
		},
		{
			name:           "defaults when empty",
			queryParams:    map[string]string{},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "invalid values fall back to defaults",
			queryParams:    map[string]string{"page": "-1", "limit": "abc", "sort_dir": "sideways"},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:        "no defaults when disabled",
			queryParams: map[string]string{},
			expected:    dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse("http://example.com/v1/bookings")
			assert.NoError(t, err)

			query := u.Query()
			for key, value := range tt.queryParams {
				query.Set(key, value)
			}
			u.RawQuery = query.Encode()

			req, err := http.NewRequest(http.MethodGet, u.String(), nil)
			assert.NoError(t, err)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Clamp(t *testing.T) {
	tests := []struct {
		name      string
		params    dto.QueryParams
		maxLimit  int
		wantPage  int
		wantLimit int
	}{
		{name: "zero values use defaults", params: dto.QueryParams{}, maxLimit: 100, wantPage: 1, wantLimit: 10},
		{name: "limit above max is capped", params: dto.QueryParams{Page: 3, Limit: 500}, maxLimit: 100, wantPage: 3, wantLimit: 100},
		{name: "limit within max kept", params: dto.QueryParams{Page: 2, Limit: 25}, maxLimit: 100, wantPage: 2, wantLimit: 25},
		{name: "no max", params: dto.QueryParams{Page: 1, Limit: 500}, maxLimit: 0, wantPage: 1, wantLimit: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Clamp(tt.maxLimit)

			assert.Equal(t, tt.wantPage, tt.params.Page)
			assert.Equal(t, tt.wantLimit, tt.params.Limit)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		group     dto.FilterGroup
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "empty group",
			group:     dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
		{
			name: "eq and in",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{Field: "booking_id", Value: "b-1", Operator: dto.FilterOperatorEq, Table: "booking_items"},
					dto.Filter{Field: "status", Value: []string{"checked_out", "overdue"}, Operator: dto.FilterOperatorIn, Table: "booking_items"},
				},
			},
			wantWhere: "(booking_items.booking_id = :booking_id AND booking_items.status IN (:status_0, :status_1) )",
			wantArgs: map[string]any{
				"booking_id": "b-1",
				"status_0":   "checked_out",
				"status_1":   "overdue",
			},
		},
		{
			name: "nested or group with like",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.FilterGroup{
						Operator: dto.FilterGroupOperatorOr,
						Filters: []any{
							dto.Filter{ArgName: "search_name", Field: "name", Value: "drill", Operator: dto.FilterOperatorLike, Table: "tools"},
							dto.Filter{ArgName: "search_description", Field: "description", Value: "drill", Operator: dto.FilterOperatorLike, Table: "tools"},
						},
					},
					dto.Filter{ArgName: "min_price", Field: "price_per_day", Value: 10, Operator: dto.FilterOperatorGreaterEq, Table: "tools"},
				},
			},
			wantWhere: "((LOWER(tools.name) LIKE LOWER(:search_name)  OR LOWER(tools.description) LIKE LOWER(:search_description) ) AND tools.price_per_day >= :min_price)",
			wantArgs: map[string]any{
				"search_name":        "%drill%",
				"search_description": "%drill%",
				"min_price":          10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.group.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_SkipsEmptyMembers(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.FilterGroup{Operator: dto.FilterGroupOperatorOr},
			dto.Filter{Field: "status", Value: "available", Operator: dto.FilterOperatorEq, Table: "tools"},
			dto.Filter{Field: "name", Operator: "unknown"},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(tools.status = :status)", where)
	assert.Equal(t, map[string]any{"status": "available"}, args)
}
