package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/processing"
	"github.com/meshworks/textgate/internal/resilience"
	"github.com/meshworks/textgate/pkg/models"
)

// renderError maps the error taxonomy onto HTTP statuses and the structured
// error body. Unknown errors become opaque 500s carrying only the request ID.
func (s *Server) renderError(c *gin.Context, err error) {
	requestID := RequestIDFromContext(c)

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, models.NewErrorBody(ve.Message, map[string]interface{}{
			"field":      ve.Field,
			"request_id": requestID,
		}))
		return
	}

	// Upstream output the gateway refused to return. The client's request
	// was valid, so this is a gateway failure, not a 4xx.
	var rejected *processing.ResponseRejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusBadGateway, models.NewErrorBody("upstream response failed validation", map[string]interface{}{
			"reason":     rejected.Reason,
			"request_id": requestID,
		}))
		return
	}

	var open *resilience.CircuitOpenError
	if errors.As(err, &open) {
		c.Header("Retry-After", fmt.Sprintf("%d", int(open.RetryAfter().Seconds())+1))
		c.JSON(http.StatusServiceUnavailable, models.NewErrorBody("service temporarily unavailable", map[string]interface{}{
			"target":     open.Target,
			"request_id": requestID,
		}))
		return
	}

	var rl *resilience.RateLimitError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.RetryAfter.Seconds())))
		}
		c.JSON(http.StatusTooManyRequests, models.NewErrorBody("upstream rate limit exceeded", map[string]interface{}{
			"request_id": requestID,
		}))
		return
	}

	var exhausted *resilience.RetryExhaustedError
	if errors.As(err, &exhausted) {
		c.JSON(http.StatusBadGateway, models.NewErrorBody("upstream model unavailable after retries", map[string]interface{}{
			"attempts":   exhausted.Attempts,
			"request_id": requestID,
		}))
		return
	}

	var pe *resilience.PermanentError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadGateway, models.NewErrorBody("upstream model rejected the request", map[string]interface{}{
			"request_id": requestID,
		}))
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// 499-style client disconnect; gin has no constant for it.
		c.JSON(http.StatusRequestTimeout, models.NewErrorBody("request cancelled", map[string]interface{}{
			"request_id": requestID,
		}))
		return
	}

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		s.logger.Error("configuration error reached the request path", map[string]interface{}{
			"setting":    cfgErr.Setting,
			"request_id": requestID,
		})
	} else {
		s.logger.Error("unhandled error", map[string]interface{}{
			"error":      err.Error(),
			"request_id": requestID,
		})
	}

	c.JSON(http.StatusInternalServerError, models.NewErrorBody("internal server error", map[string]interface{}{
		"request_id": requestID,
	}))
}
