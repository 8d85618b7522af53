package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler. db may be nil, in which case
// readiness only reports process liveness.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// healthResponse is the response body for health endpoints.
type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Liveness handles GET /health.
// Always returns 200 while the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, healthResponse{Status: "ok"})
}

// Readiness handles GET /health/ready.
// Returns 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status: "unavailable",
				Detail: "database unreachable",
			})
			return
		}
	}

	WriteJSONOK(w, healthResponse{Status: "ready"})
}
