package notify

import (
	"context"
	"time"

	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"
)

// Publisher is satisfied by *mq.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type message struct {
	Audience  string            `json:"audience"`
	Channel   string            `json:"channel"`
	Recipient string            `json:"recipient,omitempty"`
	BookingID string            `json:"booking_id"`
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Priority  string            `json:"priority"`
	ActionURL string            `json:"action_url,omitempty"`
	Deadline  *time.Time        `json:"deadline,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	SentAt    time.Time         `json:"sent_at"`
}

// AMQPNotifier hands notifications to the delivery service over RabbitMQ.
// Routing keys look like notification.<audience>.<kind>.
type AMQPNotifier struct {
	pub Publisher
	now func() time.Time
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub, now: time.Now}
}

func RoutingKey(n shared.Notification) string {
	return "notification." + string(n.Audience) + "." + n.Kind
}

func (a *AMQPNotifier) Send(ctx context.Context, n shared.Notification) error {
	msg := message{
		Audience:  string(n.Audience),
		Channel:   string(n.Channel),
		Recipient: n.Recipient,
		BookingID: n.BookingID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		ActionURL: n.ActionURL,
		Deadline:  n.Deadline,
		Metadata:  n.Metadata,
		SentAt:    a.now().UTC(),
	}
	if err := a.pub.PublishJSON(ctx, RoutingKey(n), msg); err != nil {
		return errs.Wrapf(err, "publish %s notification", n.Kind)
	}
	return nil
}
