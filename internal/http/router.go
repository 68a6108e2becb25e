// Package httpapi composes the HTTP surface: public intake and auth routes,
// the authenticated recruiter API, and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "hireline/internal/account/handler"
	applicationhandler "hireline/internal/application/handler"
	candidatehandler "hireline/internal/candidate/handler"
	"hireline/internal/platform/metrics"
	"hireline/internal/platform/middleware"
	postinghandler "hireline/internal/posting/handler"
	"hireline/internal/transport/http/shared"
)

// HealthCheck probes one backing dependency for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router wires together.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Tokens       middleware.TokenValidator
	Accounts     *accounthandler.Handler
	Candidates   *candidatehandler.Handler
	Postings     *postinghandler.Handler
	Applications *applicationhandler.Handler

	RequestTimeout time.Duration
	HealthChecks   []HealthCheck
}

// NewRouter builds the full route tree with the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", healthHandler(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface: login and the careers-page intake form.
	deps.Accounts.Register(r)
	deps.Applications.RegisterPublic(r)

	// Recruiter dashboard API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))
		deps.Candidates.Register(r)
		deps.Postings.Register(r)
		deps.Applications.Register(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				resp.Checks[check.Name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[check.Name] = "ok"
		}

		shared.WriteJSON(w, status, resp)
	}
}
