package notify

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/usecase/shared"
)

// LogNotifier writes notifications to the log. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(ctx context.Context, n shared.Notification) error {
	level := slog.LevelInfo
	if n.Priority == shared.PriorityHigh || n.Priority == shared.PriorityUrgent {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification",
		"audience", n.Audience,
		"kind", n.Kind,
		"booking_id", n.BookingID,
		"priority", n.Priority,
		"title", n.Title,
		"action_url", n.ActionURL)
	return nil
}
