package model

import (
	"toolrent/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName         = "tools"
	EntityName        = "tool"
	CategoryTableName = "tool_categories"

	FieldID                = "id"
	FieldName              = "name"
	FieldDescription       = "description"
	FieldPricePerDay       = "price_per_day"
	FieldQuantityAvailable = "quantity_available"
	FieldVersion           = "version"
	FieldCategoryID        = "category_id"
	FieldStatus            = "status"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusCheckedOut  Status = "checked_out"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// Listable reports whether the tool may show up in availability searches.
func (s Status) Listable() bool {
	return s != StatusMaintenance && s != StatusInactive
}

// Tool is a catalog entry. QuantityAvailable is the ledger of units on the shelf:
// reservations take units out of it and cancellations and returns put them back.
// Version guards every change to that ledger.
type Tool struct {
	ID                string          `db:"id"`
	Name              string          `db:"name"`
	Description       string          `db:"description"`
	PricePerDay       decimal.Decimal `db:"price_per_day"`
	QuantityAvailable int             `db:"quantity_available"`
	Version           int             `db:"version"`
	CategoryID        int             `db:"category_id"`
	CategoryName      string          `column:"name"      db:"category_name" table:"tool_categories"`
	Status            Status          `db:"status"`
	model.Metadata
}

func (Tool) GetJoinQuery() string {
	return "JOIN tool_categories ON tool_categories.id = tools.category_id"
}

// AvailabilityFilter narrows the period listing. Zero values are ignored.
type AvailabilityFilter struct {
	CategoryID int
	Search     string
}

// Availability is a tool together with the units free over a queried period.
type Availability struct {
	Tool
	AvailableInPeriod int `db:"available_in_period"`
}
