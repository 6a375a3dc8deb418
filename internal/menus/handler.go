package menus

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewHandler(catalog *Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stores/{storeId}/menus", h.HandleList)
	mux.HandleFunc("POST /api/v1/stores/{storeId}/menus", h.HandleCreate)
	mux.HandleFunc("PATCH /api/v1/menus/{menuId}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/menus/{menuId}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	storeID, err := response.PathID(r, "storeId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	menus, err := h.catalog.ListByStore(r.Context(), storeID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	h.logger.Info("menus listed", "store_id", storeID, "count", len(menus))
	response.JSON(w, h.logger, http.StatusOK, menus)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	storeID, err := response.PathID(r, "storeId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	var req CreateRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	menu, err := h.catalog.Create(r.Context(), principal.UserID, storeID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, menu)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	menuID, err := response.PathID(r, "menuId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	var req UpdateRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	menu, err := h.catalog.Update(r.Context(), principal.UserID, menuID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, menu)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	menuID, err := response.PathID(r, "menuId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), principal.UserID, menuID); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, nil)
}
