package stores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, store *domain.Store) error
	// GetByID returns nil when the store does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	// GetByOwner returns nil when the owner has no store.
	GetByOwner(ctx context.Context, ownerID int64) (*domain.Store, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Store, error)
	// SetOpen reports false when the store does not exist.
	SetOpen(ctx context.Context, id int64, open bool) (bool, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create opens an owner's only store. New stores start closed.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateRequest) (*domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	existing, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner store: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateStore
	}

	store := &domain.Store{
		OwnerUserID: ownerID,
		Name:        name,
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, store); err != nil {
		if errors.Is(err, domain.ErrDuplicateStore) {
			return nil, err
		}
		return nil, fmt.Errorf("create store: %w", err)
	}

	s.logger.Info("store created", "store_id", store.ID, "owner_id", ownerID)
	return store, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Store, error) {
	store, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func (s *Service) Mine(ctx context.Context, ownerID int64) ([]domain.Store, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// OwnerOf returns the owning user of storeID, or ErrStoreNotFound.
func (s *Service) OwnerOf(ctx context.Context, storeID int64) (int64, error) {
	store, err := s.Get(ctx, storeID)
	if err != nil {
		return 0, err
	}
	return store.OwnerUserID, nil
}

func (s *Service) Open(ctx context.Context, ownerID int64) (*domain.Store, error) {
	return s.setOpen(ctx, ownerID, true)
}

func (s *Service) Close(ctx context.Context, ownerID int64) (*domain.Store, error) {
	return s.setOpen(ctx, ownerID, false)
}

func (s *Service) setOpen(ctx context.Context, ownerID int64, open bool) (*domain.Store, error) {
	store, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner store: %w", err)
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	ok, err := s.repo.SetOpen(ctx, store.ID, open)
	if err != nil {
		return nil, fmt.Errorf("set store open: %w", err)
	}
	if !ok {
		return nil, domain.ErrStoreNotFound
	}

	store.IsOpen = open
	s.logger.Info("store hours changed", "store_id", store.ID, "owner_id", ownerID, "open", open)
	return store, nil
}
