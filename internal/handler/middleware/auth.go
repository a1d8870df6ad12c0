package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"rental-orchestrator/internal/handler/httperr"
	"rental-orchestrator/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxServiceKey = "caller_service"

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// RequireService admits only callers presenting a valid internal service token.
func (m *AuthMiddleware) RequireService() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.Abort(c, http.StatusUnauthorized, "Service token required")
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Service token validation failed",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)
			httperr.Abort(c, http.StatusUnauthorized, "Invalid or expired service token")
			return
		}

		c.Set(ctxServiceKey, claims.Service)
		c.Next()
	}
}

func GetCallerService(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxServiceKey)
	if !exists {
		return "", false
	}
	svc, ok := v.(string)
	return svc, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}
