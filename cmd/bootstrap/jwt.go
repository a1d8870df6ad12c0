package bootstrap

import (
	"rental-orchestrator/internal/handler/middleware"
	"rental-orchestrator/internal/infra/gateway"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		func(s *jwt.Service) gateway.TokenSource { return s },
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	if cfg.Internal.TokenTTL <= 0 {
		panic("invalid INTERNAL_TOKEN_TTL: must be positive")
	}
	return jwt.NewService(cfg.Internal.ServiceSecret, cfg.Internal.ServiceName, cfg.Internal.TokenTTL)
}
