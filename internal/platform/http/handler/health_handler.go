// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultCheckTimeout bounds each dependency ping.
const defaultCheckTimeout = 2 * time.Second

// Check is one dependency probed by the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports whether the service and its dependencies are reachable.
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler. Checks with a nil Ping are skipped.
func NewHealthHandler(checks ...Check) *HealthHandler {
	active := make([]Check, 0, len(checks))
	for _, c := range checks {
		if c.Ping != nil {
			active = append(active, c)
		}
	}
	return &HealthHandler{checks: active, timeout: defaultCheckTimeout}
}

// Health serves /healthz. It never caches; any failing check answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	resp, ok := h.run(c.Request.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, resp)
}

func (h *HealthHandler) run(ctx context.Context) (HealthResponse, bool) {
	resp := HealthResponse{Status: "ok"}
	if len(h.checks) == 0 {
		return resp, true
	}

	ok := true
	resp.Checks = make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check.Ping(pingCtx)
		cancel()

		if err != nil {
			slog.Warn("health check failed", "check", check.Name, "error", err)
			resp.Checks[check.Name] = err.Error()
			ok = false
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	if !ok {
		resp.Status = "unavailable"
	}
	return resp, ok
}
