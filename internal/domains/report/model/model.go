package model

// Stats is a snapshot of the whole rental operation.
type Stats struct {
	TotalTools      int `db:"total_tools"`
	TotalBookings   int `db:"total_bookings"`
	ActiveBookings  int `db:"active_bookings"`
	Members         int `db:"members"`
	CheckedOutUnits int `db:"checked_out_units"`
	OverdueUnits    int `db:"overdue_units"`
}

// Usage covers activity inside a date range.
type Usage struct {
	BookingsCreated int `db:"bookings_created"`
	UnitsCheckedOut int `db:"units_checked_out"`
}

type TopTool struct {
	ToolID   string `db:"tool_id"`
	Name     string `db:"name"`
	Quantity int    `db:"quantity"`
}
