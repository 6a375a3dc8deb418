package orders

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type memRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order
	// owners maps store id to owner id for ListByOwner.
	owners map[int64]int64
}

func newMemRepository(owners map[int64]int64) *memRepository {
	return &memRepository{orders: make(map[int64]domain.Order), owners: owners}
}

func (m *memRepository) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	order.ID = m.nextID
	stored := *order
	stored.Lines = append([]domain.OrderLine(nil), order.Lines...)
	m.orders[order.ID] = stored
	return nil
}

func (m *memRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	order.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &order, nil
}

func (m *memRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	return m.filter(func(o domain.Order) bool { return o.CustomerUserID == customerID }), nil
}

func (m *memRepository) ListByOwner(_ context.Context, ownerID int64) ([]domain.Order, error) {
	return m.filter(func(o domain.Order) bool { return m.owners[o.StoreID] == ownerID }), nil
}

func (m *memRepository) CompareAndSetStatus(_ context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	m.orders[id] = order
	return true, nil
}

func (m *memRepository) status(id int64) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

func (m *memRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memRepository) filter(keep func(domain.Order) bool) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type memMenus map[int64]domain.Menu

func (m memMenus) FindByID(_ context.Context, id int64) (*domain.Menu, error) {
	menu, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &menu, nil
}

type memStores map[int64]int64

func (m memStores) OwnerOf(_ context.Context, storeID int64) (int64, error) {
	owner, ok := m[storeID]
	if !ok {
		return 0, domain.ErrStoreNotFound
	}
	return owner, nil
}

const (
	storeA    int64 = 10
	storeB    int64 = 20
	ownerA    int64 = 100
	ownerB    int64 = 200
	customerX int64 = 1
	customerY int64 = 2
)

type fixture struct {
	lifecycle *Lifecycle
	repo      *memRepository
	menus     memMenus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stores := memStores{storeA: ownerA, storeB: ownerB}
	menus := memMenus{
		1: {ID: 1, StoreID: storeA, Name: "Bibimbap", Price: 8000},
		2: {ID: 2, StoreID: storeA, Name: "Dumplings", Price: 3000},
		3: {ID: 3, StoreID: storeA, Name: "Retired", Price: 5000, IsDeleted: true},
		4: {ID: 4, StoreID: storeB, Name: "Noodles", Price: 7000},
	}
	repo := newMemRepository(stores)

	lifecycle, err := NewLifecycle(repo, menus, stores, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return &fixture{lifecycle: lifecycle, repo: repo, menus: menus}
}

func qty(n int) *int { return &n }
