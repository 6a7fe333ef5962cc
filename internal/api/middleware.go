package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request-ID header and context key.
const (
	RequestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// RequestIDMiddleware assigns every request a correlation ID, honoring one
// supplied by the client.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the correlation ID assigned to the request.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
