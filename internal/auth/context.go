package auth

import (
	"context"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type principalKey struct{}

// WithPrincipal attaches the resolved caller to the request context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by the request pipeline, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
