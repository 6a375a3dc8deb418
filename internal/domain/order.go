package domain

import "time"

type OrderStatus string

const (
	OrderStatusOrdered    OrderStatus = "ORDERED"
	OrderStatusCooking    OrderStatus = "COOKING"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusRejected   OrderStatus = "REJECTED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Terminal reports whether no transition leaves the status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderLine struct {
	MenuID     int64  `json:"menu_id"`
	OptionText string `json:"option_text,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

type Order struct {
	ID             int64       `json:"id"`
	CustomerUserID int64       `json:"customer_user_id"`
	StoreID        int64       `json:"store_id"`
	TotalPrice     int64       `json:"total_price"`
	Note           string      `json:"note,omitempty"`
	Status         OrderStatus `json:"status"`
	Lines          []OrderLine `json:"lines"`
	CreatedAt      time.Time   `json:"created_at"`
}
