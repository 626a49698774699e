// Package httptransport assembles the HTTP surface of the service. Handlers
// live with their domains; this package only mounts them and applies the
// shared middleware chain.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/httputil"
)

// Registrar is implemented by domain handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// AuditLister reads back the audit trail for a session.
type AuditLister interface {
	List(ctx context.Context, sessionID string) ([]audit.Event, error)
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Resolution     Registrar
	Registry       Registrar
	TokenValidator middleware.TokenValidator
	Audit          AuditLister
}

// NewRouter wires all endpoints and the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if deps.Registry != nil {
			deps.Registry.Register(r)
		}
		if deps.Resolution != nil {
			deps.Resolution.Register(r)
		}
	})

	if deps.TokenValidator != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.TokenValidator, deps.Logger))
			r.Get("/audit/sessions/{id}", handleAuditTrail(deps.Audit))
		})
	}

	return r
}

// handleAuditTrail serves the per-session audit trail for operators.
func handleAuditTrail(lister AuditLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit trail not available"))
			return
		}

		sessionID := chi.URLParam(r, "id")
		events, err := lister.List(r.Context(), sessionID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail"))
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		httputil.WriteJSON(w, http.StatusOK, events)
	}
}
