// Package api exposes the gateway over HTTP: the text-processing endpoints,
// the resilience configuration API, and health.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/internal/auth"
	"github.com/meshworks/textgate/internal/cache"
	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/llm"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/processing"
	"github.com/meshworks/textgate/internal/resilience"
)

// Version is set via ldflags during build.
var Version = "dev"

// Server holds the wired gateway components behind the HTTP surface.
type Server struct {
	settings   *config.Settings
	auth       *auth.Service
	cache      *cache.TieredCache
	resilience *resilience.Service
	pipeline   *processing.Service
	batch      *processing.BatchOrchestrator
	provider   llm.Provider
	recorder   *observability.Recorder
	logger     observability.Logger
}

// NewServer wires the HTTP surface around the gateway components.
func NewServer(
	settings *config.Settings,
	authService *auth.Service,
	tiered *cache.TieredCache,
	engine *resilience.Service,
	pipeline *processing.Service,
	batch *processing.BatchOrchestrator,
	provider llm.Provider,
	recorder *observability.Recorder,
	logger observability.Logger,
) *Server {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	return &Server{
		settings:   settings,
		auth:       authService,
		cache:      tiered,
		resilience: engine,
		pipeline:   pipeline,
		batch:      batch,
		provider:   provider,
		recorder:   recorder,
		logger:     logger,
	}
}

// Router builds the gin engine with all routes registered. Health is the
// only unauthenticated endpoint.
func (s *Server) Router() *gin.Engine {
	if s.settings.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(s.requestLogger())

	router.GET("/internal/health", s.handleHealth)

	v1 := router.Group("/v1")
	v1.Use(s.auth.GinMiddleware())
	{
		tp := v1.Group("/text_processing")
		tp.POST("/process", s.handleProcess)
		tp.POST("/batch", s.handleBatch)
		tp.GET("/operations", s.handleOperations)

		v1.GET("/auth/status", s.handleAuthStatus)
	}

	internal := router.Group("/internal")
	internal.Use(s.auth.GinMiddleware())
	{
		rc := internal.Group("/resilience")
		rc.GET("/config/templates", s.handleListTemplates)
		rc.GET("/config/templates/:name", s.handleGetTemplate)
		rc.POST("/config/validate-template", s.handleValidateTemplate)
		rc.POST("/config/recommend-template", s.handleRecommendTemplate)
		rc.GET("/metrics", s.handleResilienceMetrics)
	}

	return router
}

// HTTPServer wraps the router in an http.Server bound to the configured
// address, with sane timeouts for an API that can wait on slow upstreams.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.settings.ListenAddress,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Batch requests ride multiple upstream calls; give them room.
		WriteTimeout: 5 * time.Minute,
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  RequestIDFromContext(c),
		})
	}
}
