package model

import (
	"time"

	"toolrent/shared/model"
)

const (
	TableName      = "bookings"
	EntityName     = "booking"
	ItemTableName  = "booking_items"
	ItemEntityName = "booking_item"

	FieldID           = "id"
	FieldUserID       = "user_id"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldStatus       = "status"
	FieldBookingID    = "booking_id"
	FieldToolID       = "tool_id"
	FieldQuantity     = "quantity"
	FieldCheckedOutAt = "checked_out_at"
	FieldReturnedAt   = "returned_at"
)

// Status of a booking as a whole. It is derived from the statuses of its items.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ItemStatus of a single tool line within a booking.
type ItemStatus string

const (
	ItemStatusReserved   ItemStatus = "reserved"
	ItemStatusCheckedOut ItemStatus = "checked_out"
	ItemStatusReturned   ItemStatus = "returned"
	ItemStatusCancelled  ItemStatus = "cancelled"
	ItemStatusOverdue    ItemStatus = "overdue"
)

type Booking struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Status    Status    `db:"status"`
	model.Metadata
}

type Item struct {
	ID           string     `db:"id"`
	BookingID    string     `db:"booking_id"`
	ToolID       string     `db:"tool_id"`
	ToolName     string     `column:"name"          db:"tool_name" table:"tools"`
	Quantity     int        `db:"quantity"`
	Status       ItemStatus `db:"status"`
	CheckedOutAt *time.Time `db:"checked_out_at"`
	ReturnedAt   *time.Time `db:"returned_at"`
	model.Metadata
}

func (Item) GetJoinQuery() string {
	return "JOIN tools ON tools.id = booking_items.tool_id"
}
