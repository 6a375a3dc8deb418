package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateStore     = errors.New("owner already has a store")
)

var (
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrAddressNotFound  = fmt.Errorf("address %w", ErrNotFound)
	ErrMenuNotFound     = fmt.Errorf("menu %w", ErrNotFound)
	ErrStoreNotFound    = fmt.Errorf("store %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
)
