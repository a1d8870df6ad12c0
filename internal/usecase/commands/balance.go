package commands

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=balance.go -destination=../../../tests/mock/commands/balance_mock.go -package=commandsmock

// ErrBalanceUnknown means the stored balance may be stale; callers must not assume it was updated.
var ErrBalanceUnknown = errs.New("booking balance unknown")

type BalanceCommands interface {
	Recalculate(ctx context.Context, bookingID uuid.UUID) (int64, error)
	ApplyPaymentStatus(ctx context.Context, req PaymentStatusRequest) (*PaymentStatusResult, error)
}

type PaymentStatusRequest struct {
	Source    ledger.Source
	PaymentID uuid.UUID
	Status    ledger.Status
}

type PaymentStatusResult struct {
	BookingID      uuid.UUID
	PreviousStatus ledger.Status
	Status         ledger.Status
	Recalculated   bool
	BalanceCents   *int64
}

type balanceUseCaseImpl struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewBalanceUseCase(uow shared.UnitOfWork, logger *slog.Logger) BalanceCommands {
	return &balanceUseCaseImpl{uow: uow, logger: logger}
}

func (uc *balanceUseCaseImpl) Recalculate(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	b, err := uc.uow.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "balance recalculation could not load booking",
			"booking_id", bookingID, "error", err)
		return 0, errs.Mark(errs.Wrap(err, "load booking"), ErrBalanceUnknown)
	}

	entries, err := uc.uow.Ledger().ListByBooking(ctx, bookingID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "balance recalculation could not load ledger",
			"booking_id", bookingID, "error", err)
		return 0, errs.Mark(errs.Wrap(err, "load ledger"), ErrBalanceUnknown)
	}

	result := ledger.Reconcile(b.TotalCents, entries)
	if result.Capped {
		uc.logger.WarnContext(ctx, "computed balance exceeded booking total, capped",
			"booking_id", bookingID,
			"total_cents", result.TotalCents,
			"collected_cents", result.CollectedCents)
	}

	if err := uc.uow.Bookings().UpdateBalance(ctx, bookingID, result.BalanceCents); err != nil {
		uc.logger.ErrorContext(ctx, "failed to persist recalculated balance",
			"booking_id", bookingID, "balance_cents", result.BalanceCents, "error", err)
		return 0, errs.Mark(errs.Wrap(err, "persist balance"), ErrBalanceUnknown)
	}

	uc.logger.InfoContext(ctx, "balance recalculated",
		"booking_id", bookingID,
		"total_cents", result.TotalCents,
		"collected_cents", result.CollectedCents,
		"balance_cents", result.BalanceCents)
	return result.BalanceCents, nil
}

// ApplyPaymentStatus records a payment status change and reconciles the
// balance when the change moves money into or out of the collected set.
func (uc *balanceUseCaseImpl) ApplyPaymentStatus(ctx context.Context, req PaymentStatusRequest) (*PaymentStatusResult, error) {
	if !req.Source.IsValid() || !req.Status.IsValid() {
		return nil, errs.Mark(errs.Newf("invalid payment status update %s/%s", req.Source, req.Status), errs.ErrDomainValidation)
	}

	bookingID, prev, err := uc.uow.Ledger().UpdatePaymentStatus(ctx, req.Source, req.PaymentID, req.Status)
	if err != nil {
		return nil, err
	}

	result := &PaymentStatusResult{
		BookingID:      bookingID,
		PreviousStatus: prev,
		Status:         req.Status,
	}
	if !ledger.CrossesCollectedBoundary(prev, req.Status) {
		return result, nil
	}

	balance, err := uc.Recalculate(ctx, bookingID)
	if err != nil {
		return result, err
	}
	result.Recalculated = true
	result.BalanceCents = &balance
	return result, nil
}
