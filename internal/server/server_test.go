package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
)

type echoRoutes struct{}

func (echoRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())
		_, _ = io.WriteString(w, string(p.Role))
	})
}

func newTestServer(t *testing.T) (http.Handler, *auth.TokenCodec) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	codec, err := auth.NewTokenCodec([]byte("server-test-key-server-test-key-s"))
	require.NoError(t, err)
	policy, err := auth.DefaultAccessPolicy()
	require.NoError(t, err)
	pipeline, err := auth.NewPipeline(auth.NewPrincipalResolver(codec), policy, logger)
	require.NoError(t, err)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# metrics")
	})

	return New(Config{ServiceName: "test", Pipeline: pipeline, Metrics: metrics, Logger: logger}, echoRoutes{}), codec
}

func TestServer_PublicEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestServer_RequestID(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	supplied := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, supplied)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, supplied, rec.Header().Get(RequestIDHeader))
}

func TestServer_PipelineGuardsModules(t *testing.T) {
	handler, codec := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := codec.Issue(1, "o@example.com", domain.RoleOwner, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OWNER", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
