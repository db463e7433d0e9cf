package dto

import (
	"strings"
	"time"

	"toolrent/internal/domains/tool/model"
	"toolrent/shared"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"
	gModel "toolrent/shared/model"
	"toolrent/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateToolRequest struct {
	Name              string          `json:"name"               validate:"required,max=150"`
	Description       string          `json:"description"        validate:"omitempty,max=1000"`
	PricePerDay       decimal.Decimal `json:"price_per_day"      validate:"nonnegdecimal"`
	QuantityAvailable int             `json:"quantity_available" validate:"min=0"`
	CategoryID        int             `json:"category_id"        validate:"required,gt=0"`
	Status            model.Status    `json:"status"             validate:"omitempty,oneof=available reserved checked_out maintenance inactive"`
}

func (c *CreateToolRequest) ToModel(user string) model.Tool {
	status := c.Status
	if status == "" {
		status = model.StatusAvailable
	}

	now := timezone.Now()

	return model.Tool{
		ID:                uuid.NewString(),
		Name:              c.Name,
		Description:       c.Description,
		PricePerDay:       c.PricePerDay,
		QuantityAvailable: c.QuantityAvailable,
		Version:           1,
		CategoryID:        c.CategoryID,
		Status:            status,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateToolRequest changes descriptive fields only. Quantity goes through
// AdjustQuantityRequest and status through UpdateToolStatusRequest.
type UpdateToolRequest struct {
	Name        string           `db:"name"          json:"name"          validate:"omitempty,max=150"`
	Description string           `db:"description"   json:"description"   validate:"omitempty,max=1000"`
	PricePerDay *decimal.Decimal `db:"price_per_day" json:"price_per_day" validate:"omitempty,nonnegdecimal"`
	CategoryID  int              `db:"category_id"   json:"category_id"   validate:"omitempty,gt=0"`
}

type UpdateToolStatusRequest struct {
	Status model.Status `db:"status" json:"status" validate:"required,oneof=available reserved checked_out maintenance inactive"`
}

type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type ToolResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	PricePerDay       decimal.Decimal `json:"price_per_day"`
	QuantityAvailable int             `json:"quantity_available"`
	CategoryID        int             `json:"category_id"`
	CategoryName      string          `json:"category_name"`
	Status            model.Status    `json:"status"`
	AvailableInPeriod *int            `json:"available_in_period,omitempty"`
	gDto.Metadata
}

func (r *ToolResponse) FromModel(model model.Tool) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.PricePerDay = model.PricePerDay
	r.QuantityAvailable = model.QuantityAvailable
	r.CategoryID = model.CategoryID
	r.CategoryName = model.CategoryName
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetToolsResponse struct {
	Tools     []ToolResponse `json:"tools"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetToolsResponse) FromModels(models []model.Tool, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Tools = make([]ToolResponse, len(models))
	for i, mod := range models {
		r.Tools[i].FromModel(mod)
	}
}

type AvailableToolsResponse struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Tools     []ToolResponse `json:"tools"`
}

func (r *AvailableToolsResponse) FromModels(period Period, models []model.Availability) {
	r.StartDate = period.Start.Format(time.DateOnly)
	r.EndDate = period.End.Format(time.DateOnly)

	r.Tools = make([]ToolResponse, len(models))
	for i, mod := range models {
		free := mod.AvailableInPeriod
		r.Tools[i].FromModel(mod.Tool)
		r.Tools[i].AvailableInPeriod = &free
	}
}

// Period is a half-open date range [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodQuery is the raw date range taken from the query string.
type PeriodQuery struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"required,datetime=2006-01-02"`
}

// ToPeriod parses the dates and requires start to fall strictly before end.
func (q PeriodQuery) ToPeriod() (Period, error) {
	start, err := shared.ParseDate(q.StartDate)
	if err != nil {
		return Period{}, failure.Validation("start_date must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	end, err := shared.ParseDate(q.EndDate)
	if err != nil {
		return Period{}, failure.Validation("end_date must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	if !start.Before(end) {
		return Period{}, failure.Validation("start_date must be before end_date") // nolint:wrapcheck
	}

	return Period{Start: start, End: end}, nil
}

// AvailableFilter narrows the tools listed as free in a period.
type AvailableFilter struct {
	CategoryID int    `json:"category_id"`
	Search     string `json:"search"`
}

func (f AvailableFilter) ToModel() model.AvailabilityFilter {
	return model.AvailabilityFilter{
		CategoryID: f.CategoryID,
		Search:     strings.TrimSpace(f.Search),
	}
}

// SearchFilter narrows the catalog search. Zero values are ignored.
type SearchFilter struct {
	Query         string           `json:"query"`
	CategoryID    int              `json:"category_id"`
	Status        model.Status     `json:"status"`
	MinPrice      *decimal.Decimal `json:"min_price"`
	MaxPrice      *decimal.Decimal `json:"max_price"`
	AvailableOnly bool             `json:"available_only"`
}

func (f SearchFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	if f.Query != "" {
		group.Filters = append(group.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldName, Value: f.Query, Operator: gDto.FilterOperatorLike, Table: model.TableName},
				gDto.Filter{ArgName: "search_description", Field: model.FieldDescription, Value: f.Query, Operator: gDto.FilterOperatorLike, Table: model.TableName},
			},
		})
	}

	if f.CategoryID > 0 {
		group.Filters = append(group.Filters, gDto.Filter{Field: model.FieldCategoryID, Value: f.CategoryID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if f.Status != "" {
		group.Filters = append(group.Filters, gDto.Filter{Field: model.FieldStatus, Value: f.Status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if f.MinPrice != nil {
		group.Filters = append(group.Filters, gDto.Filter{ArgName: "min_price", Field: model.FieldPricePerDay, Value: *f.MinPrice, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName})
	}

	if f.MaxPrice != nil {
		group.Filters = append(group.Filters, gDto.Filter{ArgName: "max_price", Field: model.FieldPricePerDay, Value: *f.MaxPrice, Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	if f.AvailableOnly {
		group.Filters = append(group.Filters,
			gDto.Filter{ArgName: "available_status", Field: model.FieldStatus, Value: model.StatusAvailable, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "min_quantity", Field: model.FieldQuantityAvailable, Value: 1, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		)
	}

	return group
}

type QuantityResponse struct {
	ID                string `json:"id"`
	QuantityAvailable int    `json:"quantity_available"`
}
