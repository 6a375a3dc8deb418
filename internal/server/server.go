// Package server assembles the HTTP surface: routes from every module behind
// the request pipeline, plus health and metrics endpoints.
package server

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/maejang/internal/auth"
	"github.com/joao-fontenele/maejang/internal/response"
	"github.com/joao-fontenele/maejang/internal/telemetry"
)

// Routes is implemented by each module's HTTP handler.
type Routes interface {
	Register(mux *http.ServeMux)
}

type Config struct {
	ServiceName string
	Pipeline    *auth.Pipeline
	// Metrics serves /metrics; nil leaves the route unmounted.
	Metrics http.Handler
	Logger  *slog.Logger
}

// New builds the root handler. Middleware order, outermost first: tracing,
// request id, access log, access policy, route tagging, mux.
func New(cfg Config, modules ...Routes) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, cfg.Logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	for _, m := range modules {
		m.Register(mux)
	}

	var handler http.Handler = telemetry.RouteTagger(mux)
	handler = cfg.Pipeline.Middleware(handler)
	handler = accessLog(cfg.Logger, handler)
	handler = requestID(handler)

	return otelhttp.NewHandler(handler, cfg.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	)
}
