package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/internal/resilience"
	"github.com/meshworks/textgate/pkg/models"
)

// handleListTemplates is GET /internal/resilience/config/templates.
func (s *Server) handleListTemplates(c *gin.Context) {
	templates := make([]resilience.Preset, 0, len(resilience.PresetNames()))
	for _, name := range resilience.PresetNames() {
		preset, err := resilience.GetPreset(name)
		if err != nil {
			continue
		}
		templates = append(templates, preset)
	}
	c.JSON(http.StatusOK, gin.H{
		"templates":     templates,
		"active_preset": s.resilience.Preset().Name,
	})
}

// handleGetTemplate is GET /internal/resilience/config/templates/:name.
func (s *Server) handleGetTemplate(c *gin.Context) {
	preset, err := resilience.GetPreset(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewErrorBody(err.Error(), map[string]interface{}{
			"available_templates": resilience.PresetNames(),
		}))
		return
	}
	c.JSON(http.StatusOK, preset)
}

// handleValidateTemplate is POST /internal/resilience/config/validate-template.
func (s *Server) handleValidateTemplate(c *gin.Context) {
	var preset resilience.Preset
	if err := c.ShouldBindJSON(&preset); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorBody("invalid template body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}
	c.JSON(http.StatusOK, resilience.ValidatePreset(preset))
}

// handleRecommendTemplate is POST /internal/resilience/config/recommend-template.
func (s *Server) handleRecommendTemplate(c *gin.Context) {
	var body struct {
		Environment string `json:"environment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorBody("invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}
	if body.Environment == "" {
		body.Environment = string(s.settings.Environment)
	}

	rec := resilience.RecommendPreset(body.Environment, s.settings.Features.SecurityEnforcement)
	c.JSON(http.StatusOK, gin.H{
		"suggested_template":   rec.PresetName,
		"confidence":           rec.Confidence,
		"reasoning":            rec.Reasoning,
		"environment_detected": rec.EnvironmentDetected,
		"available_templates":  resilience.PresetNames(),
	})
}

// handleResilienceMetrics is GET /internal/resilience/metrics: breaker
// snapshots plus the retained metric records summary.
func (s *Server) handleResilienceMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"preset":         s.resilience.Preset().Name,
		"breakers":       s.resilience.BreakerSnapshots(),
		"counts_by_type": s.recorder.CountsByType(),
		"records_kept":   s.recorder.Len(),
		"records_total":  s.recorder.Total(),
		"cache_stats":    s.cache.GetStats(),
		"cache_type":     s.cache.Type(),
	})
}
