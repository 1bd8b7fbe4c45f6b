package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Pinger is anything that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthChecker reports service and dependency health.
type HealthChecker struct {
	checks map[string]Pinger
}

// NewHealthChecker creates a health checker. Nil pingers are skipped, so
// optional backends (postgres, rabbitmq) can simply be absent.
func NewHealthChecker(checks map[string]Pinger) *HealthChecker {
	filtered := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			filtered[name] = p
		}
	}
	return &HealthChecker{checks: filtered}
}

// RegisterRoutes registers the health route.
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}

// HealthCheck handles GET /healthz. Basic mode only reports the process is
// up; ?mode=extended pings each configured backend.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string, len(h.checks))
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, p := range h.checks {
			if err := p.Ping(ctx); err != nil {
				response.Checks[name] = "unhealthy"
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				response.Checks[name] = "healthy"
			}
		}
	}

	respondJSON(w, status, response)
}
