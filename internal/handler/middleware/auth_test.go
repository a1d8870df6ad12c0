//go:build unit

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"rental-orchestrator/internal/handler/middleware"
	"rental-orchestrator/internal/pkg/jwt"
	"rental-orchestrator/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(svc *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := middleware.NewAuthMiddleware(svc)
	r.POST("/internal/ping", auth.RequireService(), func(c *gin.Context) {
		caller, _ := middleware.GetCallerService(c)
		c.JSON(http.StatusOK, gin.H{"caller": caller})
	})
	return r
}

func TestRequireService(t *testing.T) {
	svc := jwt.NewService("internal-secret", "scheduler", time.Minute)
	router := newProtectedRouter(svc)

	validToken, err := svc.GenerateToken()
	require.NoError(t, err)

	foreignToken, err := jwt.NewService("other-secret", "scheduler", time.Minute).GenerateToken()
	require.NoError(t, err)

	expiredToken, err := jwt.NewService("internal-secret", "scheduler", -time.Minute).GenerateToken()
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		expectCode int
		expectMsg  string
	}{
		{name: "valid token", token: validToken, expectCode: http.StatusOK},
		{name: "missing token", token: "", expectCode: http.StatusUnauthorized, expectMsg: "Service token required"},
		{name: "wrong secret", token: foreignToken, expectCode: http.StatusUnauthorized, expectMsg: "Invalid or expired"},
		{name: "expired token", token: expiredToken, expectCode: http.StatusUnauthorized, expectMsg: "Invalid or expired"},
		{name: "garbage token", token: "not.a.jwt", expectCode: http.StatusUnauthorized, expectMsg: "Invalid or expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.PerformRequest(t, router, http.MethodPost, "/internal/ping", nil, tt.token)

			if tt.expectCode != http.StatusOK {
				httptest.AssertErrorResponse(t, rec, tt.expectCode, tt.expectMsg)
				return
			}
			var body map[string]string
			httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
			assert.Equal(t, "scheduler", body["caller"])
		})
	}
}
