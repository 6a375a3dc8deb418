package addresses

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

func TestHandler_Routes(t *testing.T) {
	manager, store := newTestManager()
	mux := http.NewServeMux()
	NewHandler(manager, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)

	do := func(method, path, body string, userID int64) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req = req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{UserID: userID, Role: domain.RoleCustomer}))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/api/v1/addresses", `{"label":"home","text":"1 Main St"}`, userA); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(http.MethodPost, "/api/v1/addresses", `{"label":"work","text":"2 Side St"}`, userA); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	if rec := do(http.MethodPost, "/api/v1/addresses/1/default", "", userA); rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := store.defaults(userA); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected address 1 as default, got %v", got)
	}

	rec := do(http.MethodPost, "/api/v1/addresses/1/default", "", userB)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}

	if rec := do(http.MethodPatch, "/api/v1/addresses/2", `{"label":"office"}`, userA); rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	rec = do(http.MethodGet, "/api/v1/addresses", "", userA)
	var list struct {
		Data []domain.Address `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 2 || !list.Data[0].IsDefault || list.Data[1].Label != "office" {
		t.Errorf("unexpected list: %+v", list.Data)
	}

	rec = do(http.MethodDelete, "/api/v1/addresses/99", "", userA)
	var body response.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusNotFound || body.Code != "ADDRESS_NOT_FOUND" {
		t.Errorf("expected 404 ADDRESS_NOT_FOUND, got %d %s", rec.Code, body.Code)
	}
}
