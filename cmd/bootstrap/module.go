package bootstrap

import (
	"rental-orchestrator/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	TracingModule,
	MessagingModule,
	GatewayModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
