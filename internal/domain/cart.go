package domain

import "time"

// CartItem is a menu a customer intends to order. StoreID is the menu's store.
type CartItem struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MenuID     int64     `json:"menu_id"`
	StoreID    int64     `json:"store_id"`
	OptionText string    `json:"option,omitempty"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}
