package auth

import (
	"net/http"
	"strings"

	"github.com/joao-fontenele/maejang/internal/domain"
)

const CookieName = "ACCESS_TOKEN"

type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// PrincipalResolver turns request credentials into a Principal using only the
// signed claims. Roles are not re-read from storage, so a role change only
// takes effect once the caller obtains a new token; the staleness window is
// bounded by the token TTL.
type PrincipalResolver struct {
	verifier TokenVerifier
}

func NewPrincipalResolver(verifier TokenVerifier) *PrincipalResolver {
	return &PrincipalResolver{verifier: verifier}
}

// Resolve returns false for anonymous requests, including ones carrying a
// token that fails verification. Whether anonymous access is acceptable is
// decided by the AccessPolicy.
func (r *PrincipalResolver) Resolve(req *http.Request) (domain.Principal, bool) {
	token := bearerToken(req.Header.Get("Authorization"))
	if token == "" {
		token = cookieToken(req)
	}
	if token == "" {
		return domain.Principal{}, false
	}

	claims, err := r.verifier.Verify(token)
	if err != nil {
		return domain.Principal{}, false
	}
	return claims.Principal(), true
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func cookieToken(req *http.Request) string {
	c, err := req.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
