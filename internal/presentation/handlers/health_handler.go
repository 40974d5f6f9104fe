package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name     string
	checker  HealthChecker
	required bool
}

// HealthHandler reports on the Solana upstream and the optional Redis cache
type HealthHandler struct {
	checks []namedCheck
}

// NewHealthHandler creates a new health handler. cache may be nil when Redis is disabled.
// A failing upstream makes the service unhealthy, a failing cache only degrades it.
func NewHealthHandler(upstream, cache HealthChecker) *HealthHandler {
	checks := []namedCheck{{name: "solana", checker: upstream, required: true}}
	if cache != nil {
		checks = append(checks, namedCheck{name: "cache", checker: cache})
	}
	return &HealthHandler{checks: checks}
}

// ServiceHealth is the result of one dependency check
type ServiceHealth struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
}

// run executes every check concurrently
func (h *HealthHandler) run(ctx context.Context, requiredOnly bool) map[string]ServiceHealth {
	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]ServiceHealth, len(h.checks))
	)

	for _, c := range h.checks {
		if requiredOnly && !c.required {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			err := c.checker.HealthCheck(ctx)
			result := ServiceHealth{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				result.Status = "unhealthy"
				result.Error = err.Error()
			}

			mu.Lock()
			results[c.name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  h.run(ctx, false),
	}

	for _, c := range h.checks {
		if response.Services[c.name].Status == "healthy" {
			continue
		}
		if c.required {
			response.Status = "unhealthy"
			break
		}
		response.Status = "degraded"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, result := range h.run(ctx, true) {
		if result.Status != "healthy" {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
