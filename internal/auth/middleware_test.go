package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/pkg/models"
)

func newTestRouter(s *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.GinMiddleware())
	r.GET("/protected", func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"principal": p.Display})
	})
	return r
}

func TestMiddlewareAcceptsBearer(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "bearer-key-12345"}, config.EnvDevelopment, config.FeatureContext{})
	r := newTestRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bearer-key-12345")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bearer-k...")
}

func TestMiddlewareAcceptsXAPIKey(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "header-key-12345"}, config.EnvDevelopment, config.FeatureContext{})
	r := newTestRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-API-Key", "header-key-12345")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareMissingCredentials(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "some-key-1234567"}, config.EnvStaging, config.FeatureContext{})
	r := newTestRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "API key required", body.Detail.Message)
	assert.Equal(t, "api_key", body.Detail.Context["auth_method"])
	assert.Equal(t, "staging", body.Detail.Context["environment"])
	assert.Equal(t, false, body.Detail.Context["credentials_provided"])
}

func TestMiddlewareInvalidKey(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "some-key-1234567"}, config.EnvDevelopment, config.FeatureContext{})
	r := newTestRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid API key", body.Detail.Message)
	assert.Equal(t, true, body.Detail.Context["credentials_provided"])
}

func TestMiddlewarePermissiveMode(t *testing.T) {
	s := newTestService(t, config.AuthConfig{}, config.EnvDevelopment, config.FeatureContext{})
	r := newTestRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "development")
}
