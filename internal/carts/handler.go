package carts

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/cart", h.HandleList)
	mux.HandleFunc("POST /api/v1/cart", h.HandleAdd)
	mux.HandleFunc("DELETE /api/v1/cart/{cartItemId}", h.HandleRemove)
	mux.HandleFunc("POST /api/v1/cart/checkout", h.HandleCheckout)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, items)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req AddRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	item, err := h.service.Add(r.Context(), principal.UserID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, item)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := response.PathID(r, "cartItemId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	if err := h.service.Remove(r.Context(), principal.UserID, id); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, nil)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	order, err := h.service.Checkout(r.Context(), principal.UserID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
	}
	return p, ok
}
