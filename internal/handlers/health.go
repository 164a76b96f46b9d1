package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"assistant-ai/internal/contextutil"
)

// BackendPinger reports whether the index backend at a location is reachable.
type BackendPinger interface {
	Ping(ctx context.Context, location string) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	backend            BackendPinger
	location           string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(backend BackendPinger, location string) *HealthHandler {
	return &HealthHandler{
		backend:            backend,
		location:           location,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
//
// swagger:route GET /api/health healthCheck
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.checkBackend(checkCtx, logger) {
		checks["index_backend"] = "ok"
	} else {
		checks["index_backend"] = "error"
		issues = append(issues, "index_backend_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

func (h *HealthHandler) checkBackend(ctx context.Context, logger *slog.Logger) bool {
	if err := h.backend.Ping(ctx, h.location); err != nil {
		logger.WarnContext(ctx, "index backend health check failed", "location", h.location, "error", err)
		return false
	}
	return true
}
