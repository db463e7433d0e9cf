package dto

import (
	"time"

	"toolrent/internal/domains/report/model"
	"toolrent/shared"
	"toolrent/shared/failure"
)

type StatsResponse struct {
	TotalTools      int `json:"total_tools"`
	TotalBookings   int `json:"total_bookings"`
	ActiveBookings  int `json:"active_bookings"`
	Members         int `json:"members"`
	CheckedOutUnits int `json:"checked_out_units"`
	OverdueUnits    int `json:"overdue_units"`
}

func (r *StatsResponse) FromModel(stats model.Stats) {
	r.TotalTools = stats.TotalTools
	r.TotalBookings = stats.TotalBookings
	r.ActiveBookings = stats.ActiveBookings
	r.Members = stats.Members
	r.CheckedOutUnits = stats.CheckedOutUnits
	r.OverdueUnits = stats.OverdueUnits
}

// UsageQuery is an inclusive date range.
type UsageQuery struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to"   validate:"required,datetime=2006-01-02"`
}

// Range returns the half-open interval [from, to+1 day).
func (q UsageQuery) Range() (from, until time.Time, err error) {
	from, err = shared.ParseDate(q.From)
	if err != nil {
		return from, until, failure.Validation("from must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	to, err := shared.ParseDate(q.To)
	if err != nil {
		return from, until, failure.Validation("to must be a date formatted as 2006-01-02") // nolint:wrapcheck
	}

	if to.Before(from) {
		return from, until, failure.Validation("from must not be after to") // nolint:wrapcheck
	}

	return from, to.AddDate(0, 0, 1), nil
}

type TopToolResponse struct {
	ToolID   string `json:"tool_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type UsageResponse struct {
	From            string            `json:"from"`
	To              string            `json:"to"`
	BookingsCreated int               `json:"bookings_created"`
	UnitsCheckedOut int               `json:"units_checked_out"`
	TopTools        []TopToolResponse `json:"top_tools"`
}

func (r *UsageResponse) FromModel(query UsageQuery, usage model.Usage, tools []model.TopTool) {
	r.From = query.From
	r.To = query.To
	r.BookingsCreated = usage.BookingsCreated
	r.UnitsCheckedOut = usage.UnitsCheckedOut

	r.TopTools = make([]TopToolResponse, len(tools))
	for i, tool := range tools {
		r.TopTools[i] = TopToolResponse{ToolID: tool.ToolID, Name: tool.Name, Quantity: tool.Quantity}
	}
}
