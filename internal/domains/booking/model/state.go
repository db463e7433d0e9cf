package model

import (
	"toolrent/shared/failure"
)

// HeldItemStatuses are the item statuses that keep units away from the shelf.
var HeldItemStatuses = []ItemStatus{ItemStatusReserved, ItemStatusCheckedOut, ItemStatusOverdue}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusReserved:   {ItemStatusCheckedOut, ItemStatusCancelled},
	ItemStatusCheckedOut: {ItemStatusReturned, ItemStatusOverdue},
	ItemStatusOverdue:    {ItemStatusReturned},
}

// IsClosed reports whether no further lifecycle operation applies.
func (s Status) IsClosed() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusReturned || s == ItemStatusCancelled
}

func (s ItemStatus) IsHeld() bool {
	switch s {
	case ItemStatusReserved, ItemStatusCheckedOut, ItemStatusOverdue:
		return true
	default:
		return false
	}
}

func (s ItemStatus) IsReturnable() bool {
	return s == ItemStatusCheckedOut || s == ItemStatusOverdue
}

// HasLeftShelf reports whether the item was ever handed over.
func (s ItemStatus) HasLeftShelf() bool {
	return s == ItemStatusCheckedOut || s == ItemStatusReturned || s == ItemStatusOverdue
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to ItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// CheckCancellable rejects cancelling anything but a pending booking whose items never left the shelf.
func CheckCancellable(status Status, items []Item) error {
	if status.IsClosed() {
		return failure.InvalidState("booking is already " + string(status)) // nolint:wrapcheck
	}

	if status == StatusConfirmed {
		return failure.InvalidState("confirmed booking cannot be cancelled") // nolint:wrapcheck
	}

	for _, item := range items {
		if item.Status.HasLeftShelf() {
			return failure.InvalidState("booking has items that were already checked out") // nolint:wrapcheck
		}
	}

	return nil
}

func CheckCheckoutable(status Status) error {
	if status.IsClosed() {
		return failure.InvalidState("booking is already " + string(status)) // nolint:wrapcheck
	}

	return nil
}

// Select returns the items whose status satisfies keep.
func Select(items []Item, keep func(ItemStatus) bool) []Item {
	selected := []Item{}

	for _, item := range items {
		if keep(item.Status) {
			selected = append(selected, item)
		}
	}

	return selected
}

// DeriveStatus computes the booking status implied by its items.
func DeriveStatus(current Status, items []Item) Status {
	if len(items) == 0 {
		return current
	}

	terminal, returned, handedOver := 0, 0, 0

	for _, item := range items {
		if item.Status.IsTerminal() {
			terminal++
		}

		if item.Status == ItemStatusReturned {
			returned++
		}

		if item.Status.HasLeftShelf() {
			handedOver++
		}
	}

	switch {
	case terminal == len(items) && returned > 0:
		return StatusCompleted
	case terminal == len(items):
		return StatusCancelled
	case handedOver > 0:
		return StatusConfirmed
	default:
		return current
	}
}
