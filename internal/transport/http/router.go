// Package httptransport assembles the public HTTP surface: the callable
// registration functions plus health and metrics endpoints.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"passgate/internal/platform/metrics"
	"passgate/internal/registration/handler"
	"passgate/pkg/platform/middleware/admin"
	"passgate/pkg/platform/middleware/metadata"
	"passgate/pkg/platform/middleware/request"
	"passgate/pkg/platform/middleware/requesttime"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Deps struct {
	Logger       *slog.Logger
	Registration *handler.Handler
	Guard        handler.RouteGuard
	// Operator is mounted under /admin only when AdminToken is set.
	Operator   *handler.OperatorHandler
	AdminToken string
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Checks     map[string]Check
}

// NewRouter wires the middleware chain and every route.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	d.Registration.Register(r, d.Guard)
	if d.Operator != nil && d.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
			d.Operator.Register(r)
		})
	}
	return r
}

func readiness(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, status, results)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
