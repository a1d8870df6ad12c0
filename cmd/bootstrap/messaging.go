package bootstrap

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/handler/events"
	"rental-orchestrator/internal/infra/mq"
	"rental-orchestrator/internal/infra/notify"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/shared"

	"go.uber.org/fx"
)

// MessagingModule publishes notifications to RabbitMQ and consumes payment
// events. Without RABBIT_URL notifications go to the log and no consumer runs.
var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewNotifier,
	),
	fx.Invoke(StartPaymentConsumer),
)

func NewNotifier(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.Notifier, error) {
	if cfg.MQ.URL == "" {
		logger.Warn("RABBIT_URL not set, notifications will only be logged")
		return notify.NewLogNotifier(logger), nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return notify.NewAMQPNotifier(pub), nil
}

func StartPaymentConsumer(lc fx.Lifecycle, cfg config.Config, balance commands.BalanceCommands, logger *slog.Logger) {
	if cfg.MQ.URL == "" {
		return
	}

	var (
		cons   *mq.Consumer
		cancel context.CancelFunc
	)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			cons, err = mq.NewConsumer(mq.ConsumerConfig{
				URL:      cfg.MQ.URL,
				Exchange: cfg.MQ.Exchange,
				Queue:    cfg.MQ.PaymentQueue,
				Keys:     cfg.MQ.PaymentKeys,
				Prefetch: cfg.MQ.Prefetch,
			})
			if err != nil {
				return err
			}
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			logger.Info("payment consumer started", "queue", cfg.MQ.PaymentQueue)
			return events.NewPaymentConsumer(balance, cons, logger).Run(runCtx)
		},
		OnStop: func(_ context.Context) error {
			if cancel != nil {
				cancel()
			}
			if cons != nil {
				return cons.Close()
			}
			return nil
		},
	})
}
