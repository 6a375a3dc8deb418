package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/maejang/internal/domain"
)

var allEvents = []Event{EventAccept, EventReject, EventCancel, EventComplete, EventDeliver}

func TestNext_Table(t *testing.T) {
	tests := []struct {
		from domain.OrderStatus
		ev   Event
		want domain.OrderStatus
	}{
		{domain.OrderStatusOrdered, EventAccept, domain.OrderStatusCooking},
		{domain.OrderStatusOrdered, EventReject, domain.OrderStatusRejected},
		{domain.OrderStatusOrdered, EventCancel, domain.OrderStatusCancelled},
		{domain.OrderStatusCooking, EventComplete, domain.OrderStatusDelivering},
		{domain.OrderStatusDelivering, EventDeliver, domain.OrderStatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_TerminalStatesRejectEveryEvent(t *testing.T) {
	for _, from := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled, domain.OrderStatusRejected} {
		assert.True(t, from.Terminal())
		for _, ev := range allEvents {
			_, err := Next(from, ev)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s/%s", from, ev)
		}
	}
}

func TestNext_OutOfOrderEvents(t *testing.T) {
	tests := []struct {
		from domain.OrderStatus
		ev   Event
	}{
		{domain.OrderStatusOrdered, EventComplete},
		{domain.OrderStatusOrdered, EventDeliver},
		{domain.OrderStatusCooking, EventCancel},
		{domain.OrderStatusCooking, EventAccept},
		{domain.OrderStatusDelivering, EventReject},
	}

	for _, tt := range tests {
		_, err := Next(tt.from, tt.ev)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
}
