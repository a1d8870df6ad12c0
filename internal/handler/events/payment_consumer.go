package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingPaymentPaid          = "payment.paid"
	RoutingPaymentStatusChanged = "payment.status_changed"
)

// PaymentEvent is published by the payments service whenever a gateway or
// manual payment changes state.
type PaymentEvent struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		PaymentID string `json:"payment_id"`
		BookingID string `json:"booking_id"`
		Source    string `json:"source"`
		Status    string `json:"status"`
	} `json:"data"`
}

type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type PaymentConsumer struct {
	balance commands.BalanceCommands
	source  DeliverySource
	logger  *slog.Logger
}

func NewPaymentConsumer(balance commands.BalanceCommands, source DeliverySource, logger *slog.Logger) *PaymentConsumer {
	return &PaymentConsumer{balance: balance, source: source, logger: logger}
}

// Run consumes until ctx is canceled or the channel closes.
func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.source.Deliveries(ctx)
	if err != nil {
		return errs.Wrap(err, "start payment deliveries")
	}
	go func() {
		for d := range msgs {
			pc.Handle(ctx, d)
		}
		pc.logger.Info("payment consumer stopped")
	}()
	return nil
}

func (pc *PaymentConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	req, ok := pc.decode(d)
	if !ok {
		_ = d.Nack(false, false)
		return
	}
	if req == nil {
		_ = d.Ack(false)
		return
	}

	log := pc.logger.With("payment_id", req.PaymentID, "source", req.Source, "status", req.Status)

	result, err := pc.balance.ApplyPaymentStatus(ctx, *req)
	if err != nil {
		if errs.Is(err, errs.ErrDomainValidation) || errs.Is(err, errs.ErrPaymentNotFound) {
			log.Warn("dropping payment event", "error", err)
			_ = d.Nack(false, false)
			return
		}
		log.Error("payment event failed, requeueing", "error", err)
		_ = d.Nack(false, true)
		return
	}

	// a redelivery finds the status already applied, so the crossing that
	// would have triggered reconciliation is no longer visible
	if d.Redelivered && !result.Recalculated {
		if _, err := pc.balance.Recalculate(ctx, result.BookingID); err != nil {
			log.Error("balance recalculation failed on redelivery", "booking_id", result.BookingID, "error", err)
			_ = d.Nack(false, true)
			return
		}
	}
	_ = d.Ack(false)
}

// decode returns ok=false for malformed messages and a nil request for
// routing keys this consumer ignores.
func (pc *PaymentConsumer) decode(d amqp.Delivery) (*commands.PaymentStatusRequest, bool) {
	switch d.RoutingKey {
	case RoutingPaymentPaid, RoutingPaymentStatusChanged:
	default:
		return nil, true
	}

	var evt PaymentEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		pc.logger.Warn("payment event unmarshal failed", "routing_key", d.RoutingKey, "error", err)
		return nil, false
	}
	paymentID, err := uuid.Parse(evt.Data.PaymentID)
	if err != nil {
		pc.logger.Warn("payment event has invalid payment id", "payment_id", evt.Data.PaymentID)
		return nil, false
	}

	source := ledger.Source(evt.Data.Source)
	if source == "" {
		source = ledger.SourceGateway
	}
	status := ledger.Status(evt.Data.Status)
	if d.RoutingKey == RoutingPaymentPaid && status == "" {
		status = ledger.StatusSucceeded
		if source == ledger.SourceManual {
			status = ledger.StatusCompleted
		}
	}

	return &commands.PaymentStatusRequest{
		Source:    source,
		PaymentID: paymentID,
		Status:    status,
	}, true
}
