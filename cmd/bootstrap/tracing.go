package bootstrap

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/infra/tracing"
	"rental-orchestrator/internal/pkg/config"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var TracingModule = fx.Module("tracing",
	fx.Provide(
		NewTracerProvider,
		tracing.Tracer,
	),
)

func NewTracerProvider(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (trace.TracerProvider, error) {
	tp, shutdown, err := tracing.NewTracerProvider(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return tp, nil
}
