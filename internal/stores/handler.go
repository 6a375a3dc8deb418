package stores

import (
	"context"
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
	mux.HandleFunc("POST /api/v1/stores", h.HandleCreate)
	mux.HandleFunc("GET /api/v1/stores/mine", h.HandleMine)
	mux.HandleFunc("POST /api/v1/stores/mine/open", h.HandleOpen)
	mux.HandleFunc("POST /api/v1/stores/mine/close", h.HandleClose)
	mux.HandleFunc("GET /api/v1/stores/{storeId}", h.HandleGet)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req CreateRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	store, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, store)
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	stores, err := h.service.Mine(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, stores)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "storeId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	store, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, store)
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, h.service.Open)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, h.service.Close)
}

func (h *Handler) setOpen(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*domain.Store, error)) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	store, err := fn(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, store)
}
