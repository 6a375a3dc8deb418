package orders

import (
	"fmt"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type Event string

const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
	EventDeliver  Event = "deliver"
)

// Terminal states have no entry.
var transitions = map[domain.OrderStatus]map[Event]domain.OrderStatus{
	domain.OrderStatusOrdered: {
		EventAccept: domain.OrderStatusCooking,
		EventReject: domain.OrderStatusRejected,
		EventCancel: domain.OrderStatusCancelled,
	},
	domain.OrderStatusCooking: {
		EventComplete: domain.OrderStatusDelivering,
	},
	domain.OrderStatusDelivering: {
		EventDeliver: domain.OrderStatusDelivered,
	},
}

// Next returns the status reached by applying ev to from.
func Next(from domain.OrderStatus, ev Event) (domain.OrderStatus, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s an order in status %s", domain.ErrInvalidTransition, ev, from)
	}
	return to, nil
}
