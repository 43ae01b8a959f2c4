package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"receiptmint/internal/platform/metrics"
	"receiptmint/internal/platform/middleware"
	"receiptmint/pkg/platform/httputil"
)

const healthTimeout = 2 * time.Second

// RouteRegistrar mounts a domain's routes. The receipt handler implements it.
type RouteRegistrar interface {
	Register(r chi.Router, mintMiddleware ...func(http.Handler) http.Handler)
}

// HealthCheck reports whether an optional backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Deps collects what the router wires together.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Receipt RouteRegistrar
	// MintMiddleware wraps only POST /mint-receipt (idempotency).
	MintMiddleware []func(http.Handler) http.Handler
	// Checks are run by /health; a failing check makes it answer 503.
	Checks map[string]HealthCheck
}

// NewRouter builds the public HTTP surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.AccessLog(d.Logger, d.Metrics))

	r.Get("/health", health(d.Checks))
	r.Handle("/metrics", promhttp.Handler())

	d.Receipt.Register(r, d.MintMiddleware...)
	return r
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		failing := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failing[name] = err.Error()
			}
		}
		if len(failing) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": failing,
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
