//go:build unit

package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/handler/events"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	commandsmock "rental-orchestrator/tests/mock/commands"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordedAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (r *recordedAck) Ack(uint64, bool) error { r.acked = true; return nil }

func (r *recordedAck) Nack(_ uint64, _ bool, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

func (r *recordedAck) Reject(_ uint64, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

func delivery(t *testing.T, ack *recordedAck, key string, data map[string]string, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(map[string]any{"event": key, "version": 1, "data": data})
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, RoutingKey: key, Body: body, Redelivered: redelivered}
}

func TestPaymentConsumer_Handle(t *testing.T) {
	paymentID := uuid.New()
	bookingID := uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		key         string
		data        map[string]string
		raw         []byte
		redelivered bool
		setup       func(m *commandsmock.MockBalanceCommands)
		expect      recordedAck
	}{
		{
			name: "paid gateway event defaults to succeeded",
			key:  events.RoutingPaymentPaid,
			data: map[string]string{"payment_id": paymentID.String(), "booking_id": bookingID.String()},
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), commands.PaymentStatusRequest{
					Source: ledger.SourceGateway, PaymentID: paymentID, Status: ledger.StatusSucceeded,
				}).Return(&commands.PaymentStatusResult{BookingID: bookingID, Recalculated: true}, nil)
			},
			expect: recordedAck{acked: true},
		},
		{
			name: "paid manual event defaults to completed",
			key:  events.RoutingPaymentPaid,
			data: map[string]string{"payment_id": paymentID.String(), "source": "manual"},
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), commands.PaymentStatusRequest{
					Source: ledger.SourceManual, PaymentID: paymentID, Status: ledger.StatusCompleted,
				}).Return(&commands.PaymentStatusResult{BookingID: bookingID, Recalculated: true}, nil)
			},
			expect: recordedAck{acked: true},
		},
		{
			name: "status change carries explicit status",
			key:  events.RoutingPaymentStatusChanged,
			data: map[string]string{"payment_id": paymentID.String(), "source": "gateway", "status": "refunded"},
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), commands.PaymentStatusRequest{
					Source: ledger.SourceGateway, PaymentID: paymentID, Status: ledger.StatusRefunded,
				}).Return(&commands.PaymentStatusResult{BookingID: bookingID, Recalculated: true}, nil)
			},
			expect: recordedAck{acked: true},
		},
		{
			name:   "unrelated routing key is acked untouched",
			key:    "booking.confirmed",
			data:   map[string]string{},
			setup:  func(*commandsmock.MockBalanceCommands) {},
			expect: recordedAck{acked: true},
		},
		{
			name:   "malformed body is dropped",
			key:    events.RoutingPaymentPaid,
			raw:    []byte("{not json"),
			setup:  func(*commandsmock.MockBalanceCommands) {},
			expect: recordedAck{nacked: true},
		},
		{
			name:   "invalid payment id is dropped",
			key:    events.RoutingPaymentPaid,
			data:   map[string]string{"payment_id": "nope"},
			setup:  func(*commandsmock.MockBalanceCommands) {},
			expect: recordedAck{nacked: true},
		},
		{
			name: "unknown payment is dropped",
			key:  events.RoutingPaymentPaid,
			data: map[string]string{"payment_id": paymentID.String()},
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), gomock.Any()).
					Return(nil, errs.Wrap(errs.ErrPaymentNotFound, "update"))
			},
			expect: recordedAck{nacked: true},
		},
		{
			name: "transient failure is requeued",
			key:  events.RoutingPaymentPaid,
			data: map[string]string{"payment_id": paymentID.String()},
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("connection reset"))
			},
			expect: recordedAck{nacked: true, requeued: true},
		},
		{
			name:        "redelivery reconciles even without a boundary crossing",
			key:         events.RoutingPaymentPaid,
			data:        map[string]string{"payment_id": paymentID.String()},
			redelivered: true,
			setup: func(m *commandsmock.MockBalanceCommands) {
				gomock.InOrder(
					m.EXPECT().ApplyPaymentStatus(gomock.Any(), gomock.Any()).
						Return(&commands.PaymentStatusResult{BookingID: bookingID, Recalculated: false}, nil),
					m.EXPECT().Recalculate(gomock.Any(), bookingID).Return(int64(0), nil),
				)
			},
			expect: recordedAck{acked: true},
		},
		{
			name:        "redelivery requeues when reconciliation still fails",
			key:         events.RoutingPaymentPaid,
			data:        map[string]string{"payment_id": paymentID.String()},
			redelivered: true,
			setup: func(m *commandsmock.MockBalanceCommands) {
				m.EXPECT().ApplyPaymentStatus(gomock.Any(), gomock.Any()).
					Return(&commands.PaymentStatusResult{BookingID: bookingID}, nil)
				m.EXPECT().Recalculate(gomock.Any(), bookingID).
					Return(int64(0), errs.Mark(errors.New("persist"), commands.ErrBalanceUnknown))
			},
			expect: recordedAck{nacked: true, requeued: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			balance := commandsmock.NewMockBalanceCommands(ctrl)
			tt.setup(balance)

			ack := &recordedAck{}
			d := delivery(t, ack, tt.key, tt.data, tt.redelivered)
			if tt.raw != nil {
				d.Body = tt.raw
			}

			events.NewPaymentConsumer(balance, nil, logger).Handle(context.Background(), d)

			assert.Equal(t, tt.expect, *ack)
		})
	}
}

type chanSource struct {
	ch chan amqp.Delivery
}

func (s chanSource) Deliveries(context.Context) (<-chan amqp.Delivery, error) {
	return s.ch, nil
}

func TestPaymentConsumer_RunDrainsDeliveries(t *testing.T) {
	ctrl := gomock.NewController(t)
	balance := commandsmock.NewMockBalanceCommands(ctrl)
	paymentID := uuid.New()

	done := make(chan struct{})
	balance.EXPECT().ApplyPaymentStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, commands.PaymentStatusRequest) (*commands.PaymentStatusResult, error) {
			close(done)
			return &commands.PaymentStatusResult{Recalculated: true}, nil
		})

	src := chanSource{ch: make(chan amqp.Delivery, 1)}
	consumer := events.NewPaymentConsumer(balance, src, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, consumer.Run(context.Background()))

	ack := &recordedAck{}
	src.ch <- delivery(t, ack, events.RoutingPaymentPaid, map[string]string{"payment_id": paymentID.String()}, false)
	<-done
	close(src.ch)
}
