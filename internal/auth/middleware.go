package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshworks/textgate/pkg/models"
)

// PrincipalContextKey is the gin context key for the authenticated principal.
const PrincipalContextKey = "auth_principal"

// GinMiddleware authenticates every request via Bearer token or X-API-Key.
// Failures render the structured 401 contract with WWW-Authenticate set.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ExtractKey(c.GetHeader("Authorization"), c.GetHeader("X-API-Key"))

		principal, err := s.Verify(key)
		if err != nil {
			message := "API key required"
			if errors.Is(err, ErrInvalidAPIKey) {
				message = "invalid API key"
			}

			if s.logRequests {
				s.logger.Warn("authentication failed", map[string]interface{}{
					"ip":   c.ClientIP(),
					"path": c.Request.URL.Path,
				})
			}

			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewErrorBody(message, map[string]interface{}{
				"auth_method":          "api_key",
				"environment":          string(s.environment),
				"credentials_provided": key != "",
			}))
			return
		}

		c.Set(PrincipalContextKey, principal)

		if s.logRequests {
			s.logger.Debug("authenticated", map[string]interface{}{
				"principal": principal.Display,
				"path":      c.Request.URL.Path,
			})
		}

		c.Next()
	}
}

// PrincipalFromContext extracts the authenticated principal set by the
// middleware.
func PrincipalFromContext(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(PrincipalContextKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}
