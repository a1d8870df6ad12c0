//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/tests/common/builder"
	"rental-orchestrator/tests/common/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BalanceTestSuite struct {
	suite.Suite
	f  *fixture
	bb *builder.BookingBuilder
}

func TestBalanceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceTestSuite))
}

func (s *BalanceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.bb = builder.NewBookingBuilder(baseTime).With(func(b *builder.BookingBuilder) {
		b.TotalCents = 120000
		b.BalanceCents = 120000
	})
	s.f.store.PutBooking(s.bb.BuildDomain())
}

func (s *BalanceTestSuite) TestRecalculate_MixedSources() {
	s.f.store.PutEntry(s.bb.Payment(ledger.SourceGateway, 40000))
	s.f.store.PutEntry(s.bb.Payment(ledger.SourceManual, 20000))

	balance, err := s.f.balance().Recalculate(context.Background(), s.bb.ID)

	s.Require().NoError(err)
	s.Equal(int64(60000), balance)
	s.Equal(int64(60000), s.f.store.Booking(s.bb.ID).BalanceCents)
}

func (s *BalanceTestSuite) TestRecalculate_IgnoresHoldsAndFailedPayments() {
	verify := ledger.PurposeVerification
	s.f.store.PutEntry(ledger.Entry{
		BookingID:   s.bb.ID,
		Source:      ledger.SourceGateway,
		AmountCents: 5000,
		Status:      ledger.StatusSucceeded,
		Type:        ledger.TypeDeposit,
		Purpose:     &verify,
	})
	failed := s.bb.Payment(ledger.SourceGateway, 30000)
	failed.Status = ledger.StatusFailed
	s.f.store.PutEntry(failed)

	balance, err := s.f.balance().Recalculate(context.Background(), s.bb.ID)

	s.Require().NoError(err)
	s.Equal(int64(120000), balance)
}

func (s *BalanceTestSuite) TestRecalculate_OverpaymentIsCapped() {
	s.f.store.PutEntry(s.bb.Payment(ledger.SourceManual, 150000))

	balance, err := s.f.balance().Recalculate(context.Background(), s.bb.ID)

	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *BalanceTestSuite) TestRecalculate_UnknownBalance() {
	tests := []struct {
		name string
		op   string
	}{
		{name: "booking lookup fails", op: memstore.OpFindBooking},
		{name: "ledger read fails", op: memstore.OpListLedger},
		{name: "balance write fails", op: memstore.OpUpdateBalance},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			f := newFixture(s.T())
			f.store.PutBooking(s.bb.BuildDomain())
			f.store.FailOn(tt.op, errors.New("connection refused"))

			_, err := f.balance().Recalculate(context.Background(), s.bb.ID)

			s.Require().Error(err)
			s.True(errs.Is(err, commands.ErrBalanceUnknown))
			s.Equal(int64(120000), f.store.Booking(s.bb.ID).BalanceCents)
		})
	}
}

func (s *BalanceTestSuite) TestApplyPaymentStatus() {
	tests := []struct {
		name        string
		from        ledger.Status
		to          ledger.Status
		recalculate bool
		balance     int64
	}{
		{name: "pending to succeeded collects", from: ledger.StatusPending, to: ledger.StatusSucceeded, recalculate: true, balance: 80000},
		{name: "succeeded to refunded releases", from: ledger.StatusSucceeded, to: ledger.StatusRefunded, recalculate: true, balance: 120000},
		{name: "pending to processing is ignored", from: ledger.StatusPending, to: ledger.StatusProcessing},
		{name: "completed to succeeded stays collected", from: ledger.StatusCompleted, to: ledger.StatusSucceeded},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			f := newFixture(s.T())
			f.store.PutBooking(s.bb.BuildDomain())
			payment := s.bb.Payment(ledger.SourceGateway, 40000)
			payment.Status = tt.from
			f.store.PutEntry(payment)

			result, err := f.balance().ApplyPaymentStatus(context.Background(), commands.PaymentStatusRequest{
				Source:    ledger.SourceGateway,
				PaymentID: payment.ID,
				Status:    tt.to,
			})

			s.Require().NoError(err)
			s.Equal(s.bb.ID, result.BookingID)
			s.Equal(tt.from, result.PreviousStatus)
			s.Equal(tt.recalculate, result.Recalculated)
			if tt.recalculate {
				s.Require().NotNil(result.BalanceCents)
				s.Equal(tt.balance, *result.BalanceCents)
			} else {
				s.Nil(result.BalanceCents)
			}
		})
	}
}

func TestApplyPaymentStatus_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.balance().ApplyPaymentStatus(context.Background(), commands.PaymentStatusRequest{
		Source: ledger.Source("wire"),
		Status: ledger.StatusSucceeded,
	})

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrDomainValidation))
}

func TestApplyPaymentStatus_UnknownPayment(t *testing.T) {
	f := newFixture(t)

	_, err := f.balance().ApplyPaymentStatus(context.Background(), commands.PaymentStatusRequest{
		Source: ledger.SourceManual,
		Status: ledger.StatusCompleted,
	})

	assert.ErrorIs(t, err, errs.ErrPaymentNotFound)
}
