package dto

import (
	"time"

	"toolrent/internal/domains/booking/model"
	"toolrent/shared"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"
	gModel "toolrent/shared/model"
	"toolrent/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingItemRequest struct {
	ToolID   string `json:"tool_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CreateBookingRequest struct {
	StartDate string                     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string                     `json:"end_date"   validate:"required,datetime=2006-01-02"`
	Items     []CreateBookingItemRequest `json:"items"      validate:"required,min=1,unique=ToolID,dive"`
}

// Check enforces the creation preconditions and returns the parsed date range.
func (r *CreateBookingRequest) Check() (start, end time.Time, err error) {
	start, err = shared.ParseDate(r.StartDate)
	if err != nil {
		return start, end, failure.Validation("start_date must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	end, err = shared.ParseDate(r.EndDate)
	if err != nil {
		return start, end, failure.Validation("end_date must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	if !start.Before(end) {
		return start, end, failure.Validation("start_date must be before end_date") // nolint:wrapcheck
	}

	if len(r.Items) == 0 {
		return start, end, failure.Validation("booking must contain at least one item") // nolint:wrapcheck
	}

	seen := make(map[string]struct{}, len(r.Items))

	for _, item := range r.Items {
		if item.Quantity <= 0 {
			return start, end, failure.Validation("quantity must be greater than 0") // nolint:wrapcheck
		}

		if _, ok := seen[item.ToolID]; ok {
			return start, end, failure.Validation("tool " + item.ToolID + " is listed more than once") // nolint:wrapcheck
		}

		seen[item.ToolID] = struct{}{}
	}

	return start, end, nil
}

// ToolIDs lists the requested tools in request order.
func (r *CreateBookingRequest) ToolIDs() []string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ToolID
	}

	return ids
}

func (r *CreateBookingRequest) ToModel(userID string, start, end time.Time) (model.Booking, []model.Item) {
	now := timezone.Now()
	metadata := gModel.Metadata{
		CreatedAt:  now,
		ModifiedAt: now,
		CreatedBy:  userID,
		ModifiedBy: userID,
	}

	booking := model.Booking{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
		Status:    model.StatusPending,
		Metadata:  metadata,
	}

	items := make([]model.Item, len(r.Items))
	for i, line := range r.Items {
		items[i] = model.Item{
			ID:        uuid.NewString(),
			BookingID: booking.ID,
			ToolID:    line.ToolID,
			Quantity:  line.Quantity,
			Status:    model.ItemStatusReserved,
			Metadata:  metadata,
		}
	}

	return booking, items
}

type CreateBookingResponse struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

type BookingItemResponse struct {
	ID           string           `json:"id"`
	ToolID       string           `json:"tool_id"`
	ToolName     string           `json:"tool_name"`
	Quantity     int              `json:"quantity"`
	Status       model.ItemStatus `json:"status"`
	CheckedOutAt *string          `json:"checked_out_at"`
	ReturnedAt   *string          `json:"returned_at"`
}

func (r *BookingItemResponse) FromModel(item model.Item) {
	r.ID = item.ID
	r.ToolID = item.ToolID
	r.ToolName = item.ToolName
	r.Quantity = item.Quantity
	r.Status = item.Status
	r.CheckedOutAt = timezone.FormatPtr(item.CheckedOutAt, constant.DateFormat)
	r.ReturnedAt = timezone.FormatPtr(item.ReturnedAt, constant.DateFormat)
}

type BookingResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Status    model.Status          `json:"status"`
	Items     []BookingItemResponse `json:"items"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking, items []model.Item) {
	r.ID = booking.ID
	r.UserID = booking.UserID
	r.StartDate = booking.StartDate.UTC().Format(constant.DateOnlyFormat)
	r.EndDate = booking.EndDate.UTC().Format(constant.DateOnlyFormat)
	r.Status = booking.Status
	r.Metadata.FromModel(booking.Metadata)

	r.Items = make([]BookingItemResponse, len(items))
	for i, item := range items {
		r.Items[i].FromModel(item)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

// FromModels pairs each booking with its items, keyed by booking id.
func (r *GetBookingsResponse) FromModels(bookings []model.Booking, items map[string][]model.Item, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(bookings))
	for i, booking := range bookings {
		r.Bookings[i].FromModel(booking, items[booking.ID])
	}
}

type CheckoutResponse struct {
	ID         string       `json:"id"`
	Status     model.Status `json:"status"`
	CheckedOut int          `json:"checked_out"`
}

// ReturnResponse reports the outcome of a return. Applied is false when the
// booking was already closed and nothing happened.
type ReturnResponse struct {
	ID        string       `json:"id"`
	Status    model.Status `json:"status"`
	Applied   bool         `json:"applied"`
	Completed bool         `json:"completed"`
	Returned  int          `json:"returned"`
}

type ScanOverdueRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// AsOfDate resolves the scan date, defaulting to today in UTC.
func (r ScanOverdueRequest) AsOfDate() (time.Time, error) {
	if r.AsOf == constant.Empty {
		return shared.TruncateDate(time.Now()), nil
	}

	asOf, err := shared.ParseDate(r.AsOf)
	if err != nil {
		return time.Time{}, failure.Validation("as_of must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	return asOf, nil
}

type ScanOverdueResponse struct {
	AsOf    string `json:"as_of"`
	Updated int    `json:"updated"`
}

// Actor is the caller an operation runs on behalf of.
type Actor struct {
	UserID string
	Admin  bool
}
