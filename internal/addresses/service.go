package addresses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/maejang/internal/domain"
)

var tracer = otel.Tracer("addresses")

// Tx is a unit of work holding the user's address lock.
type Tx interface {
	// Get returns nil when the address does not exist.
	Get(ctx context.Context, id int64) (*domain.Address, error)
	ClearDefault(ctx context.Context, userID int64) error
	SetDefault(ctx context.Context, id int64) error
	Insert(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, id int64) error
}

type Store interface {
	// WithUserLock runs fn with every other mutation of userID's addresses
	// excluded. fn's writes commit together or not at all.
	WithUserLock(ctx context.Context, userID int64, fn func(Tx) error) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Address, error)
}

type CreateRequest struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// UpdateRequest leaves nil fields unchanged.
type UpdateRequest struct {
	Label *string `json:"label"`
	Text  *string `json:"text"`
}

// Manager keeps at most one default address per user. Every mutation runs
// under the user's lock, so a clear followed by a set is never observed halfway.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger, now: time.Now}
}

// Create stores a new address as the user's default.
func (m *Manager) Create(ctx context.Context, userID int64, req CreateRequest) (_ *domain.Address, err error) {
	ctx, span := tracer.Start(ctx, "addresses.Create", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	address := &domain.Address{
		OwnerUserID: userID,
		Label:       strings.TrimSpace(req.Label),
		Text:        text,
		IsDefault:   true,
		CreatedAt:   m.now().UTC(),
	}

	err = m.store.WithUserLock(ctx, userID, func(tx Tx) error {
		if err := tx.ClearDefault(ctx, userID); err != nil {
			return err
		}
		return tx.Insert(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("address created", "address_id", address.ID, "user_id", userID)
	return address, nil
}

// Choose makes addressID the user's only default.
func (m *Manager) Choose(ctx context.Context, userID, addressID int64) (_ *domain.Address, err error) {
	ctx, span := tracer.Start(ctx, "addresses.Choose", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("address.id", addressID),
	))
	defer func() { endSpan(span, err) }()

	var chosen *domain.Address
	err = m.store.WithUserLock(ctx, userID, func(tx Tx) error {
		address, err := owned(ctx, tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := tx.ClearDefault(ctx, userID); err != nil {
			return err
		}
		if err := tx.SetDefault(ctx, addressID); err != nil {
			return err
		}
		address.IsDefault = true
		chosen = address
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("default address chosen", "address_id", addressID, "user_id", userID)
	return chosen, nil
}

// Update applies the supplied fields. The default flag is never touched.
func (m *Manager) Update(ctx context.Context, userID, addressID int64, req UpdateRequest) (_ *domain.Address, err error) {
	ctx, span := tracer.Start(ctx, "addresses.Update", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("address.id", addressID),
	))
	defer func() { endSpan(span, err) }()

	var updated *domain.Address
	err = m.store.WithUserLock(ctx, userID, func(tx Tx) error {
		address, err := owned(ctx, tx, userID, addressID)
		if err != nil {
			return err
		}
		if req.Label != nil {
			address.Label = strings.TrimSpace(*req.Label)
		}
		if req.Text != nil {
			text := strings.TrimSpace(*req.Text)
			if text == "" {
				return fmt.Errorf("%w: text must not be empty", domain.ErrValidation)
			}
			address.Text = text
		}
		if err := tx.Update(ctx, address); err != nil {
			return err
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("address updated", "address_id", addressID, "user_id", userID)
	return updated, nil
}

// Delete removes the address. Deleting the default leaves the user without
// one until Choose is called.
func (m *Manager) Delete(ctx context.Context, userID, addressID int64) (err error) {
	ctx, span := tracer.Start(ctx, "addresses.Delete", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("address.id", addressID),
	))
	defer func() { endSpan(span, err) }()

	err = m.store.WithUserLock(ctx, userID, func(tx Tx) error {
		if _, err := owned(ctx, tx, userID, addressID); err != nil {
			return err
		}
		return tx.Delete(ctx, addressID)
	})
	if err != nil {
		return err
	}

	m.logger.Info("address deleted", "address_id", addressID, "user_id", userID)
	return nil
}

// List returns the user's addresses, default first.
func (m *Manager) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	return m.store.ListByUser(ctx, userID)
}

func owned(ctx context.Context, tx Tx, userID, addressID int64) (*domain.Address, error) {
	address, err := tx.Get(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address == nil {
		return nil, domain.ErrAddressNotFound
	}
	if address.OwnerUserID != userID {
		return nil, domain.ErrForbidden
	}
	return address, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
