package carts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/orders"
)

type Repository interface {
	Create(ctx context.Context, item *domain.CartItem) error
	// GetByID returns nil when the item does not exist.
	GetByID(ctx context.Context, id int64) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Delete(ctx context.Context, id int64) error
	// DeleteMany removes the listed items that belong to userID.
	DeleteMany(ctx context.Context, userID int64, ids []int64) error
}

type MenuCatalog interface {
	FindByID(ctx context.Context, id int64) (*domain.Menu, error)
}

type OrderPlacer interface {
	Create(ctx context.Context, customerID int64, req orders.CreateRequest) (*domain.Order, error)
}

type AddRequest struct {
	MenuID   int64  `json:"menu_id"`
	Option   string `json:"option"`
	Quantity *int   `json:"quantity"`
}

type CheckoutRequest struct {
	StoreID int64  `json:"store_id"`
	Note    string `json:"note"`
}

// Service keeps a customer's cart. Prices are not held here; an order
// snapshots them at checkout.
type Service struct {
	repo   Repository
	menus  MenuCatalog
	placer OrderPlacer
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, menus MenuCatalog, placer OrderPlacer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		menus:  menus,
		placer: placer,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Add(ctx context.Context, userID int64, req AddRequest) (*domain.CartItem, error) {
	if req.Quantity == nil || *req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if *req.Quantity > orders.MaxLineQuantity {
		return nil, fmt.Errorf("%w: quantity must be at most %d", domain.ErrValidation, orders.MaxLineQuantity)
	}

	menu, err := s.menus.FindByID(ctx, req.MenuID)
	if err != nil {
		return nil, fmt.Errorf("find menu: %w", err)
	}
	if menu == nil || menu.IsDeleted {
		return nil, fmt.Errorf("%w: %d", domain.ErrMenuNotFound, req.MenuID)
	}

	item := &domain.CartItem{
		UserID:     userID,
		MenuID:     menu.ID,
		StoreID:    menu.StoreID,
		OptionText: strings.TrimSpace(req.Option),
		Quantity:   *req.Quantity,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	s.logger.Info("cart item added", "cart_item_id", item.ID, "user_id", userID, "menu_id", menu.ID)
	return item, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, itemID int64) error {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return domain.ErrCartItemNotFound
	}
	if item.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	s.logger.Info("cart item removed", "cart_item_id", itemID, "user_id", userID)
	return nil
}

// Checkout orders every cart item of one store and then drops those items.
// A failed order leaves the cart untouched.
func (s *Service) Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*domain.Order, error) {
	if req.StoreID <= 0 {
		return nil, fmt.Errorf("%w: store_id is required", domain.ErrValidation)
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	var (
		lines []orders.LineRequest
		ids   []int64
	)
	for _, item := range items {
		if item.StoreID != req.StoreID {
			continue
		}
		quantity := item.Quantity
		lines = append(lines, orders.LineRequest{MenuID: item.MenuID, OptionText: item.OptionText, Quantity: &quantity})
		ids = append(ids, item.ID)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart has no items from store %d", domain.ErrValidation, req.StoreID)
	}

	order, err := s.placer.Create(ctx, userID, orders.CreateRequest{StoreID: req.StoreID, Note: req.Note, Lines: lines})
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteMany(ctx, userID, ids); err != nil {
		// The order stands; the customer can clear the cart by hand.
		s.logger.Error("failed to clear cart after checkout", "order_id", order.ID, "user_id", userID, "error", err)
	}

	s.logger.Info("cart checked out", "order_id", order.ID, "user_id", userID, "items", len(ids))
	return order, nil
}
