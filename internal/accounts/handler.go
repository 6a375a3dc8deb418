package accounts

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

type Handler struct {
	service      *Service
	cookieSecure bool
	logger       *slog.Logger
}

func NewHandler(service *Service, cookieSecure bool, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/signup", h.HandleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", h.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", h.HandleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", h.HandleMe)
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+session.Token)
	http.SetCookie(w, h.tokenCookie(session.Token, int(session.TTL.Seconds())))
	response.JSON(w, h.logger, http.StatusOK, loginResponse{AccessToken: session.Token, User: *session.User})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.tokenCookie("", -1))
	response.JSON(w, h.logger, http.StatusOK, nil)
}

// HandleMe answers from the verified claims alone.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		response.Error(w, h.logger, domain.ErrUnauthenticated)
		return
	}
	response.JSON(w, h.logger, http.StatusOK, principal)
}

// tokenCookie builds the credential cookie; a negative maxAge expires it.
func (h *Handler) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
