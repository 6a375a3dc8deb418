package menus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*domain.Menu, error)
	ListByStore(ctx context.Context, storeID int64) ([]domain.Menu, error)
	Create(ctx context.Context, menu *domain.Menu) error
	Update(ctx context.Context, menu *domain.Menu) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type StoreDirectory interface {
	OwnerOf(ctx context.Context, storeID int64) (int64, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	OptionText  string `json:"option_text"`
	Category    string `json:"category"`
}

// UpdateRequest leaves nil fields unchanged.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
	OptionText  *string `json:"option_text"`
	Category    *string `json:"category"`
}

// Catalog manages a store's menus. Deleted menus stay in storage so existing
// orders keep their references, but are hidden from listing and editing.
type Catalog struct {
	repo   Repository
	stores StoreDirectory
	logger *slog.Logger
	now    func() time.Time
}

func NewCatalog(repo Repository, stores StoreDirectory, logger *slog.Logger) *Catalog {
	return &Catalog{repo: repo, stores: stores, logger: logger, now: time.Now}
}

// FindByID includes deleted menus; callers decide how to treat them.
func (c *Catalog) FindByID(ctx context.Context, id int64) (*domain.Menu, error) {
	return c.repo.FindByID(ctx, id)
}

func (c *Catalog) ListByStore(ctx context.Context, storeID int64) ([]domain.Menu, error) {
	if _, err := c.stores.OwnerOf(ctx, storeID); err != nil {
		return nil, err
	}
	return c.repo.ListByStore(ctx, storeID)
}

func (c *Catalog) Create(ctx context.Context, ownerID, storeID int64, req CreateRequest) (*domain.Menu, error) {
	if err := c.checkOwner(ctx, ownerID, storeID); err != nil {
		return nil, err
	}

	menu := &domain.Menu{
		StoreID:     storeID,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Description: req.Description,
		OptionText:  req.OptionText,
		Category:    req.Category,
		CreatedAt:   c.now().UTC(),
	}
	if err := validate(menu); err != nil {
		return nil, err
	}

	if err := c.repo.Create(ctx, menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	c.logger.Info("menu created", "menu_id", menu.ID, "store_id", storeID)
	return menu, nil
}

func (c *Catalog) Update(ctx context.Context, ownerID, menuID int64, req UpdateRequest) (*domain.Menu, error) {
	menu, err := c.loadOwned(ctx, ownerID, menuID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		menu.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		menu.Price = *req.Price
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.OptionText != nil {
		menu.OptionText = *req.OptionText
	}
	if req.Category != nil {
		menu.Category = *req.Category
	}
	if err := validate(menu); err != nil {
		return nil, err
	}

	ok, err := c.repo.Update(ctx, menu)
	if err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}
	if !ok {
		return nil, domain.ErrMenuNotFound
	}

	c.logger.Info("menu updated", "menu_id", menu.ID)
	return menu, nil
}

func (c *Catalog) Delete(ctx context.Context, ownerID, menuID int64) error {
	if _, err := c.loadOwned(ctx, ownerID, menuID); err != nil {
		return err
	}

	ok, err := c.repo.SoftDelete(ctx, menuID)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if !ok {
		return domain.ErrMenuNotFound
	}

	c.logger.Info("menu deleted", "menu_id", menuID)
	return nil
}

func (c *Catalog) loadOwned(ctx context.Context, ownerID, menuID int64) (*domain.Menu, error) {
	menu, err := c.repo.FindByID(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	if menu == nil || menu.IsDeleted {
		return nil, domain.ErrMenuNotFound
	}
	if err := c.checkOwner(ctx, ownerID, menu.StoreID); err != nil {
		return nil, err
	}
	return menu, nil
}

func (c *Catalog) checkOwner(ctx context.Context, ownerID, storeID int64) error {
	owner, err := c.stores.OwnerOf(ctx, storeID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

func validate(m *domain.Menu) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if m.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return nil
}
