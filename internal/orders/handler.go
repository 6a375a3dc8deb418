package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

type Handler struct {
	lifecycle *Lifecycle
	logger    *slog.Logger
}

func NewHandler(lifecycle *Lifecycle, logger *slog.Logger) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// Register mounts the order routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/orders", h.HandleCreate)
	mux.HandleFunc("GET /api/v1/orders", h.HandleHistory)
	mux.HandleFunc("GET /api/v1/orders/{orderId}", h.HandleGet)
	mux.HandleFunc("POST /api/v1/orders/{orderId}/cancel", h.HandleCancel)
	mux.HandleFunc("POST /api/v1/orders/{orderId}/accept", h.transition(h.lifecycle.Accept))
	mux.HandleFunc("POST /api/v1/orders/{orderId}/reject", h.transition(h.lifecycle.Reject))
	mux.HandleFunc("POST /api/v1/orders/{orderId}/complete", h.transition(h.lifecycle.Complete))
	mux.HandleFunc("POST /api/v1/orders/{orderId}/deliver", h.transition(h.lifecycle.Deliver))
	mux.HandleFunc("GET /api/v1/owner/orders", h.HandleOwnerQueue)
}

type createOrderItem struct {
	MenuID   int64  `json:"menu_id"`
	Option   string `json:"option"`
	Quantity *int   `json:"quantity"`
}

type createOrderRequest struct {
	StoreID int64             `json:"store_id"`
	Note    string            `json:"note"`
	Items   []createOrderItem `json:"items"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	lines := make([]LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, LineRequest{MenuID: item.MenuID, OptionText: item.Option, Quantity: item.Quantity})
	}

	order, err := h.lifecycle.Create(r.Context(), principal.UserID, CreateRequest{
		StoreID: req.StoreID,
		Note:    req.Note,
		Lines:   lines,
	})
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	orders, err := h.lifecycle.History(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	h.logger.Info("orders listed", "customer_id", principal.UserID, "count", len(orders))
	response.JSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleOwnerQueue(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	orders, err := h.lifecycle.OwnerQueue(r.Context(), principal.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	h.logger.Info("owner orders listed", "owner_id", principal.UserID, "count", len(orders))
	response.JSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := response.PathID(r, "orderId")
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	order, err := h.lifecycle.Read(r.Context(), principal, id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(h.lifecycle.Cancel)(w, r)
}

type transitionFunc func(ctx context.Context, actorID, orderID int64) (*domain.Order, error)

// transition adapts a lifecycle action on (actor, order) to a handler.
func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}

		id, err := response.PathID(r, "orderId")
		if err != nil {
			response.Error(w, h.logger, err)
			return
		}

		order, err := fn(r.Context(), principal.UserID, id)
		if err != nil {
			response.Error(w, h.logger, err)
			return
		}

		response.JSON(w, h.logger, http.StatusOK, order)
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
	}
	return p, ok
}
