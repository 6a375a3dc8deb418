package menus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
)

type memRepository struct {
	mu    sync.Mutex
	menus map[int64]domain.Menu
}

func newMemRepository() *memRepository {
	return &memRepository{menus: make(map[int64]domain.Menu)}
}

func (m *memRepository) FindByID(_ context.Context, id int64) (*domain.Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	menu, ok := m.menus[id]
	if !ok {
		return nil, nil
	}
	return &menu, nil
}

func (m *memRepository) ListByStore(_ context.Context, storeID int64) ([]domain.Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Menu{}
	for id := int64(1); id <= int64(len(m.menus)); id++ {
		if menu := m.menus[id]; menu.StoreID == storeID && !menu.IsDeleted {
			out = append(out, menu)
		}
	}
	return out, nil
}

func (m *memRepository) Create(_ context.Context, menu *domain.Menu) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	menu.ID = int64(len(m.menus) + 1)
	m.menus[menu.ID] = *menu
	return nil
}

func (m *memRepository) Update(_ context.Context, menu *domain.Menu) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.menus[menu.ID]
	if !ok || current.IsDeleted {
		return false, nil
	}
	m.menus[menu.ID] = *menu
	return true, nil
}

func (m *memRepository) SoftDelete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.menus[id]
	if !ok || current.IsDeleted {
		return false, nil
	}
	current.IsDeleted = true
	m.menus[id] = current
	return true, nil
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
	store    int64 = 5
	owner    int64 = 50
	intruder int64 = 60
)

func newTestCatalog() *Catalog {
	return NewCatalog(newMemRepository(), memStores{store: owner}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCatalog_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("owner creates", func(t *testing.T) {
		c := newTestCatalog()
		menu, err := c.Create(ctx, owner, store, CreateRequest{Name: "Kimchi stew", Price: 9000})
		require.NoError(t, err)
		assert.Equal(t, store, menu.StoreID)
		assert.False(t, menu.IsDeleted)
	})

	tests := []struct {
		name    string
		ownerID int64
		storeID int64
		req     CreateRequest
		want    error
	}{
		{"not the owner", intruder, store, CreateRequest{Name: "x", Price: 1}, domain.ErrForbidden},
		{"unknown store", owner, 999, CreateRequest{Name: "x", Price: 1}, domain.ErrStoreNotFound},
		{"missing name", owner, store, CreateRequest{Price: 1}, domain.ErrValidation},
		{"negative price", owner, store, CreateRequest{Name: "x", Price: -1}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCatalog().Create(ctx, tt.ownerID, tt.storeID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalog_UpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog()

	menu, err := c.Create(ctx, owner, store, CreateRequest{Name: "Tteokbokki", Price: 6000, Category: "snack"})
	require.NoError(t, err)

	price := int64(6500)
	updated, err := c.Update(ctx, owner, menu.ID, UpdateRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(6500), updated.Price)
	assert.Equal(t, "Tteokbokki", updated.Name)
	assert.Equal(t, "snack", updated.Category)

	_, err = c.Update(ctx, intruder, menu.ID, UpdateRequest{Price: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCatalog_SoftDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog()

	keep, err := c.Create(ctx, owner, store, CreateRequest{Name: "Keep", Price: 1000})
	require.NoError(t, err)
	drop, err := c.Create(ctx, owner, store, CreateRequest{Name: "Drop", Price: 2000})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Delete(ctx, intruder, drop.ID), domain.ErrForbidden)
	require.NoError(t, c.Delete(ctx, owner, drop.ID))

	listed, err := c.ListByStore(ctx, store)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, keep.ID, listed[0].ID)

	found, err := c.FindByID(ctx, drop.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsDeleted)

	assert.ErrorIs(t, c.Delete(ctx, owner, drop.ID), domain.ErrMenuNotFound)
	name := "Back"
	_, err = c.Update(ctx, owner, drop.ID, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrMenuNotFound)
}

func TestHandler_Routes(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestCatalog(), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)

	withOwner := func(req *http.Request) *http.Request {
		return req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{UserID: owner, Role: domain.RoleOwner}))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withOwner(httptest.NewRequest(http.MethodPost, "/api/v1/stores/5/menus", strings.NewReader(`{"name":"Japchae","price":7000}`))))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withOwner(httptest.NewRequest(http.MethodPatch, "/api/v1/menus/1", strings.NewReader(`{"price":7500}`))))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":7500`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/5/menus", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Japchae")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/menus/1", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/5/menus", nil))
	assert.NotContains(t, rec.Body.String(), "Japchae")
}
