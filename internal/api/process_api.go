package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/internal/auth"
	"github.com/meshworks/textgate/pkg/models"
)

// handleProcess is POST /v1/text_processing/process.
func (s *Server) handleProcess(c *gin.Context) {
	var req models.TextProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorBody("invalid request body", map[string]interface{}{
			"error":      err.Error(),
			"request_id": RequestIDFromContext(c),
		}))
		return
	}

	resp, err := s.pipeline.Process(c.Request.Context(), &req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleBatch is POST /v1/text_processing/batch.
func (s *Server) handleBatch(c *gin.Context) {
	var req models.BatchTextProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorBody("invalid request body", map[string]interface{}{
			"error":      err.Error(),
			"request_id": RequestIDFromContext(c),
		}))
		return
	}

	resp, err := s.batch.Process(c.Request.Context(), &req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleOperations is GET /v1/text_processing/operations: the closed set of
// supported operations with their option hints.
func (s *Server) handleOperations(c *gin.Context) {
	type operationInfo struct {
		Name             string   `json:"name"`
		RequiresQuestion bool     `json:"requires_question"`
		Options          []string `json:"options,omitempty"`
	}

	optionHints := map[models.Operation][]string{
		models.OperationSummarize: {"max_length"},
		models.OperationKeyPoints: {"max_points"},
		models.OperationQuestions: {"num_questions"},
	}

	out := make([]operationInfo, 0, len(models.Operations))
	for _, op := range models.Operations {
		out = append(out, operationInfo{
			Name:             op.String(),
			RequiresQuestion: op.RequiresQuestion(),
			Options:          optionHints[op],
		})
	}
	c.JSON(http.StatusOK, gin.H{"operations": out})
}

// handleAuthStatus is GET /v1/auth/status.
func (s *Server) handleAuthStatus(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		// The auth middleware always sets a principal; reaching here means
		// a route was wired without it.
		c.JSON(http.StatusUnauthorized, models.NewErrorBody("not authenticated", nil))
		return
	}

	message := "authenticated"
	if principal.Permissive {
		message = "authenticated (permissive development mode)"
	}
	body := gin.H{
		"authenticated":  true,
		"api_key_prefix": principal.Display,
		"message":        message,
	}
	if s.auth.TracksUsers() {
		body["request_count"] = s.auth.UsageFor(principal.Display)
	}
	c.JSON(http.StatusOK, body)
}
