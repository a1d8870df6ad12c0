package bootstrap

import (
	"log/slog"

	"rental-orchestrator/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logSchedule),
)

// logSchedule records the timing settings the dispatcher runs with.
func logSchedule(cfg config.Config) {
	s := cfg.Scheduler
	slog.Info("scheduler configuration",
		"gateway_driver", cfg.Gateway.Driver,
		"hold_lead_time", s.HoldLeadTime,
		"auto_cancel_grace", s.AutoCancelGrace,
		"reminder_lead_time", s.ReminderLeadTime,
		"release_delay", s.ReleaseDelay,
		"max_retries", s.MaxRetries,
		"retry_delay", s.RetryDelay,
		"concurrency", s.Concurrency,
		"verification_hold_cents", cfg.Holds.VerificationCents,
		"security_hold_cents", cfg.Holds.SecurityCents,
	)
}
