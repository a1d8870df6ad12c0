package bootstrap

import (
	"log/slog"

	"rental-orchestrator/internal/infra/gateway"
	"rental-orchestrator/internal/infra/repository"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config, pool *pgxpool.Pool, tokens gateway.TokenSource, logger *slog.Logger) (shared.PaymentGateway, error) {
	switch cfg.Gateway.Driver {
	case "omise":
		client, err := gateway.NewOmiseClient(cfg.Gateway.OmisePublicKey, cfg.Gateway.APIKey, cfg.Scheduler.CallTimeout)
		if err != nil {
			return nil, err
		}
		return gateway.NewOmiseGateway(client, repository.NewBookingRepository(pool), cfg.Gateway.Currency, cfg.App.BaseURL, logger), nil
	case "http":
		return gateway.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.Currency, cfg.Scheduler.CallTimeout, tokens, logger), nil
	default:
		return nil, errs.Newf("unknown GATEWAY_DRIVER %q", cfg.Gateway.Driver)
	}
}
