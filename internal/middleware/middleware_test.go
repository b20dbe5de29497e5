package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "timesaver/backend/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := gin.New()
	engine.Use(RequestLogger(zap.New(core)))
	engine.GET("/api/entries/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/entries/abc", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/api/entries/:id", fields["route"])
	assert.Equal(t, "/api/entries/abc", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}

func TestCORSAllowsDelete(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS([]string{"http://localhost:5173"}))
	engine.DELETE("/api/entries/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/api/entries/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Equal(t, "Content-Disposition", recorder.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(Auth(nil))
	engine.GET("/api/entries", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"missing authorization header"}}`, recorder.Body.String())
}

type fakeTokens map[string]string

func (f fakeTokens) ParseToken(token string) (string, *apperrors.APIError) {
	if userID, ok := f[token]; ok {
		return userID, nil
	}
	return "", apperrors.Unauthorized("invalid token")
}

func TestAuthBearerScheme(t *testing.T) {
	engine := gin.New()
	engine.Use(Auth(fakeTokens{"good": "u1"}))
	engine.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })

	tests := []struct {
		header string
		status int
		body   string
	}{
		{header: "Bearer good", status: http.StatusOK, body: "u1"},
		{header: "bearer   good ", status: http.StatusOK, body: "u1"},
		{header: "Basic good", status: http.StatusUnauthorized},
		{header: "Bearer ", status: http.StatusUnauthorized},
		{header: "Bearer bad", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", tt.header)
			recorder := httptest.NewRecorder()
			engine.ServeHTTP(recorder, req)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, recorder.Body.String())
			}
		})
	}
}
