package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/internal/cache"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// handleHealth is GET /internal/health. Unauthenticated so load balancers
// can probe it.
func (s *Server) handleHealth(c *gin.Context) {
	cacheReport := s.cache.HealthCheck(c.Request.Context())
	resilienceHealthy := s.resilience.Healthy()
	modelAvailable := s.provider != nil

	status := StatusHealthy
	switch {
	case !modelAvailable || !resilienceHealthy:
		// Every operation degrades to failure when the model is gone or
		// breakers are shedding load.
		status = StatusUnhealthy
	case !cacheReport.Healthy:
		status = StatusDegraded
	case s.cache.Type() == cache.TypeMemory:
		// The memory tier works but the durable tier is absent or
		// unreachable, so responses are served without cross-instance reuse.
		status = StatusDegraded
	}

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":             status,
		"ai_model_available": modelAvailable,
		"resilience_healthy": resilienceHealthy,
		"cache_healthy":      cacheReport.Healthy,
		"cache_type":         s.cache.Type(),
		"timestamp":          time.Now().UTC(),
		"version":            Version,
	})
}
