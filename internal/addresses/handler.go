package addresses

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/addresses", h.HandleList)
	mux.HandleFunc("POST /api/v1/addresses", h.HandleCreate)
	mux.HandleFunc("PATCH /api/v1/addresses/{addressId}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/addresses/{addressId}", h.HandleDelete)
	mux.HandleFunc("POST /api/v1/addresses/{addressId}/default", h.HandleChoose)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	addresses, err := h.manager.List(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, addresses)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	address, err := h.manager.Create(r.Context(), principal.UserID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, address)
}

func (h *Handler) HandleChoose(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := response.PathID(r, "addressId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	address, err := h.manager.Choose(r.Context(), principal.UserID, id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, address)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := response.PathID(r, "addressId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	var req UpdateRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	address, err := h.manager.Update(r.Context(), principal.UserID, id, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, address)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := response.PathID(r, "addressId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	if err := h.manager.Delete(r.Context(), principal.UserID, id); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, nil)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
	}
	return p, ok
}
