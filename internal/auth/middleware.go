package auth

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/maejang/internal/domain"
	"github.com/joao-fontenele/maejang/internal/response"
)

var meter = otel.Meter("auth")

// Pipeline resolves the caller and applies the AccessPolicy before any
// business handler runs.
type Pipeline struct {
	resolver *PrincipalResolver
	policy   *AccessPolicy
	logger   *slog.Logger
	denials  metric.Int64Counter
}

func NewPipeline(resolver *PrincipalResolver, policy *AccessPolicy, logger *slog.Logger) (*Pipeline, error) {
	denials, err := meter.Int64Counter("auth.denials",
		metric.WithDescription("Requests rejected by the access policy"),
	)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		resolver: resolver,
		policy:   policy,
		logger:   logger,
		denials:  denials,
	}, nil
}

func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := p.resolver.Resolve(r)

		var caller *domain.Principal
		if ok {
			caller = &principal
		}

		decision := p.policy.Authorize(caller, r.Method, r.URL.Path)
		if !decision.Allowed {
			p.reject(r.Context(), w, r, decision)
			return
		}

		if ok {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Pipeline) reject(ctx context.Context, w http.ResponseWriter, r *http.Request, d Decision) {
	p.denials.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", d.Reason.String())))
	p.logger.Info("request denied", "method", r.Method, "path", r.URL.Path, "reason", d.Reason.String())

	if d.Reason == DenyNoCredential {
		response.Fail(w, p.logger, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	response.Fail(w, p.logger, http.StatusForbidden, "FORBIDDEN", "permission denied")
}
