package model

import "time"

type EventType string

const (
	EventCreated      EventType = "booking.created"
	EventCancelled    EventType = "booking.cancelled"
	EventCheckedOut   EventType = "booking.checked_out"
	EventReturned     EventType = "booking.returned"
	EventCompleted    EventType = "booking.completed"
	EventItemsOverdue EventType = "booking.items_overdue"
)

// Event is published after a lifecycle transition commits.
type Event struct {
	Type       EventType   `json:"type"`
	BookingID  string      `json:"booking_id"`
	UserID     string      `json:"user_id,omitempty"`
	Status     Status      `json:"status,omitempty"`
	Items      []EventItem `json:"items,omitempty"`
	Count      int         `json:"count,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type EventItem struct {
	ToolID   string     `json:"tool_id"`
	Quantity int        `json:"quantity"`
	Status   ItemStatus `json:"status"`
}

func NewEvent(eventType EventType, booking Booking, items []Item, now time.Time) Event {
	event := Event{
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		Status:     booking.Status,
		Count:      len(items),
		OccurredAt: now,
	}

	for _, item := range items {
		event.Items = append(event.Items, EventItem{ToolID: item.ToolID, Quantity: item.Quantity, Status: item.Status})
	}

	return event
}
