// Package response writes the JSON envelope shared by every endpoint and maps
// domain errors onto HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type mapping struct {
	err     error
	status  int
	code    string
	message string
}

// Ordered from specific to generic: the first errors.Is match wins.
var mappings = []mapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "permission denied"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found"},
	{domain.ErrAddressNotFound, http.StatusNotFound, "ADDRESS_NOT_FOUND", "address not found"},
	{domain.ErrMenuNotFound, http.StatusNotFound, "MENU_NOT_FOUND", "menu not found"},
	{domain.ErrStoreNotFound, http.StatusNotFound, "STORE_NOT_FOUND", "store not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found"},
	{domain.ErrCartItemNotFound, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "cart item not found"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrInvalidTransition, http.StatusBadRequest, "INVALID_TRANSITION", ""},
	{domain.ErrValidation, http.StatusBadRequest, "INVALID_INPUT", ""},
	{domain.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_USER", "email already registered"},
	{domain.ErrDuplicateStore, http.StatusConflict, "DUPLICATE_STORE", "owner already has a store"},
}

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	write(w, logger, status, Envelope{Success: true, Code: "OK", Message: "success", Data: data})
}

func Fail(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	write(w, logger, status, Envelope{Success: false, Code: code, Message: message})
}

// Error writes the envelope for err. Unrecognised errors are logged and
// reported as a generic 500 so no internal detail reaches the client.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code, message := Classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	Fail(w, logger, status, code, message)
}

// Classify returns the status, code and client-safe message for err.
func Classify(err error) (int, string, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

func write(w http.ResponseWriter, logger *slog.Logger, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
