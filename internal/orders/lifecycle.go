package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/maejang/internal/domain"
)

var (
	tracer = otel.Tracer("orders")
	meter  = otel.Meter("orders")
)

type Repository interface {
	// Create stores the order and its lines atomically and assigns order.ID.
	Create(ctx context.Context, order *domain.Order) error
	// GetByID returns nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Order, error)
	// CompareAndSetStatus moves the order to `to` only while it is still in `from`.
	CompareAndSetStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
}

type MenuCatalog interface {
	// FindByID returns nil when the menu does not exist; soft-deleted menus are returned with IsDeleted set.
	FindByID(ctx context.Context, id int64) (*domain.Menu, error)
}

type StoreDirectory interface {
	OwnerOf(ctx context.Context, storeID int64) (int64, error)
}

type LineRequest struct {
	MenuID     int64
	OptionText string
	Quantity   *int
}

type CreateRequest struct {
	StoreID int64
	Note    string
	Lines   []LineRequest
}

// Lifecycle owns order creation, pricing and status transitions. Role gating
// happens in the access policy; Lifecycle only checks record ownership.
type Lifecycle struct {
	repo        Repository
	menus       MenuCatalog
	stores      StoreDirectory
	logger      *slog.Logger
	now         func() time.Time
	created     metric.Int64Counter
	transitions metric.Int64Counter
}

func NewLifecycle(repo Repository, menus MenuCatalog, stores StoreDirectory, logger *slog.Logger) (*Lifecycle, error) {
	created, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Orders created"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter("orders.transitions",
		metric.WithDescription("Order status transitions"),
	)
	if err != nil {
		return nil, err
	}

	return &Lifecycle{
		repo:        repo,
		menus:       menus,
		stores:      stores,
		logger:      logger,
		now:         time.Now,
		created:     created,
		transitions: transitions,
	}, nil
}

// Create prices every line from the current menu and persists the order with
// that total. The total is never recomputed afterwards.
func (l *Lifecycle) Create(ctx context.Context, customerID int64, req CreateRequest) (_ *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "orders.Create",
		trace.WithAttributes(
			attribute.Int64("customer.id", customerID),
			attribute.Int64("store.id", req.StoreID),
			attribute.Int("order.lines", len(req.Lines)),
		),
	)
	defer func() { endSpan(span, err) }()

	if req.StoreID <= 0 {
		return nil, fmt.Errorf("%w: store_id is required", domain.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}
	if _, err := l.stores.OwnerOf(ctx, req.StoreID); err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerUserID: customerID,
		StoreID:        req.StoreID,
		Note:           req.Note,
		Status:         domain.OrderStatusOrdered,
		Lines:          make([]domain.OrderLine, 0, len(req.Lines)),
		CreatedAt:      l.now().UTC(),
	}

	for _, line := range req.Lines {
		menu, err := l.menus.FindByID(ctx, line.MenuID)
		if err != nil {
			return nil, err
		}
		if menu == nil || menu.IsDeleted {
			return nil, fmt.Errorf("%w: %d", domain.ErrMenuNotFound, line.MenuID)
		}
		if menu.StoreID != req.StoreID {
			return nil, fmt.Errorf("%w: menu %d does not belong to store %d", domain.ErrValidation, menu.ID, req.StoreID)
		}

		quantity := 0
		if line.Quantity != nil {
			quantity = *line.Quantity
		}
		if quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
		}
		if quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity must be at most %d", domain.ErrValidation, MaxLineQuantity)
		}

		order.TotalPrice, err = addLine(order.TotalPrice, menu.Price, quantity)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			MenuID:     menu.ID,
			OptionText: line.OptionText,
			Quantity:   quantity,
			UnitPrice:  menu.Price,
		})
	}

	if err := l.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.created.Add(ctx, 1)
	l.logger.Info("order created", "order_id", order.ID, "customer_id", customerID, "store_id", order.StoreID, "total_price", order.TotalPrice)
	return order, nil
}

func (l *Lifecycle) Cancel(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	order, err := l.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerUserID != customerID {
		return nil, domain.ErrForbidden
	}
	return l.apply(ctx, order, EventCancel)
}

func (l *Lifecycle) Accept(ctx context.Context, ownerID, orderID int64) (*domain.Order, error) {
	return l.ownerAction(ctx, ownerID, orderID, EventAccept)
}

func (l *Lifecycle) Reject(ctx context.Context, ownerID, orderID int64) (*domain.Order, error) {
	return l.ownerAction(ctx, ownerID, orderID, EventReject)
}

func (l *Lifecycle) Complete(ctx context.Context, ownerID, orderID int64) (*domain.Order, error) {
	return l.ownerAction(ctx, ownerID, orderID, EventComplete)
}

func (l *Lifecycle) Deliver(ctx context.Context, ownerID, orderID int64) (*domain.Order, error) {
	return l.ownerAction(ctx, ownerID, orderID, EventDeliver)
}

// Read allows the ordering customer and the owner of the order's store.
func (l *Lifecycle) Read(ctx context.Context, caller domain.Principal, orderID int64) (*domain.Order, error) {
	order, err := l.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case domain.RoleCustomer:
		if order.CustomerUserID == caller.UserID {
			return order, nil
		}
	case domain.RoleOwner:
		err := l.checkStoreOwner(ctx, caller.UserID, order.StoreID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrForbidden) {
			return nil, err
		}
	}
	return nil, domain.ErrForbidden
}

func (l *Lifecycle) History(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return l.repo.ListByCustomer(ctx, customerID)
}

func (l *Lifecycle) OwnerQueue(ctx context.Context, ownerID int64) ([]domain.Order, error) {
	return l.repo.ListByOwner(ctx, ownerID)
}

func (l *Lifecycle) ownerAction(ctx context.Context, ownerID, orderID int64, ev Event) (*domain.Order, error) {
	order, err := l.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := l.checkStoreOwner(ctx, ownerID, order.StoreID); err != nil {
		return nil, err
	}
	return l.apply(ctx, order, ev)
}

func (l *Lifecycle) checkStoreOwner(ctx context.Context, ownerID, storeID int64) error {
	owner, err := l.stores.OwnerOf(ctx, storeID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

func (l *Lifecycle) load(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := l.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (l *Lifecycle) apply(ctx context.Context, order *domain.Order, ev Event) (_ *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "orders."+string(ev),
		trace.WithAttributes(
			attribute.Int64("order.id", order.ID),
			attribute.String("order.status", string(order.Status)),
		),
	)
	defer func() { endSpan(span, err) }()

	next, err := Next(order.Status, ev)
	if err != nil {
		return nil, err
	}

	ok, err := l.repo.CompareAndSetStatus(ctx, order.ID, order.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %d changed concurrently", domain.ErrInvalidTransition, order.ID)
	}

	from := order.Status
	order.Status = next
	l.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", string(ev)),
		attribute.String("to", string(next)),
	))
	l.logger.Info("order status updated", "order_id", order.ID, "from", from, "to", next)
	return order, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// MaxLineQuantity is the largest line quantity; it matches the INT quantity columns.
const MaxLineQuantity = math.MaxInt32

// addLine returns total + price*quantity, failing instead of wrapping around.
func addLine(total, price int64, quantity int) (int64, error) {
	q := int64(quantity)
	if q != 0 && price > math.MaxInt64/q {
		return 0, fmt.Errorf("%w: order total is too large", domain.ErrValidation)
	}
	sub := price * q
	if total > math.MaxInt64-sub {
		return 0, fmt.Errorf("%w: order total is too large", domain.ErrValidation)
	}
	return total + sub, nil
}
