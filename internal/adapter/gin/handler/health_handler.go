package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the actuator-style health endpoint.
type HealthHandler struct {
	ping    PingFunc
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A nil ping always reports UP.
func NewHealthHandler(ping PingFunc, log *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, timeout: time.Second, log: log}
}

// Health handles GET /actuator/health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
