package middleware

import (
	"log/slog"
	"slices"

	"rental-orchestrator/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware serves the operator console. The correlation header is
// always allowed and exposed. A "*" origin disables credentials.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeader(cfg.AllowHeaders, RequestIDHeader),
		ExposeHeaders:    withHeader(cfg.ExposeHeaders, RequestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", cfg.AllowOrigins,
		"allow_credentials", corsCfg.AllowCredentials,
	)
	return cors.New(corsCfg)
}

func withHeader(headers []string, h string) []string {
	if slices.Contains(headers, h) {
		return headers
	}
	return append(slices.Clone(headers), h)
}
