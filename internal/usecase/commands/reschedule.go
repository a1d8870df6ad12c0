package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/hold"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/keylock"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=reschedule.go -destination=../../../tests/mock/commands/reschedule_mock.go -package=commandsmock

var ErrInvalidReschedule = errs.New("invalid reschedule request")

type RescheduleRequest struct {
	BookingID uuid.UUID
	OldStart  time.Time
	NewStart  time.Time
}

type RescheduleResult struct {
	Success               bool
	Error                 string
	ImmediateHoldRequired bool
	NewJobID              *uuid.UUID
	HoldReleased          bool
	CanceledJobs          int64
	// PlaceHoldInFlight reports a place_hold for the old dates that was already
	// running. It occupies the booking's single active slot, so no job was
	// scheduled for the new dates.
	PlaceHoldInFlight bool
	InFlightJobID     *uuid.UUID
}

type RescheduleCommands interface {
	HandleReschedule(ctx context.Context, req RescheduleRequest) (*RescheduleResult, error)
}

type rescheduleUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	notifier shared.Notifier
	locks    *keylock.Locker
	clock    clock.Clock
	cfg      config.Config
	logger   *slog.Logger
}

func NewRescheduleUseCase(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	notifier shared.Notifier,
	locks *keylock.Locker,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) RescheduleCommands {
	return &rescheduleUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		notifier: notifier,
		locks:    locks,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
	}
}

type rescheduleTxResult struct {
	newJobID  *uuid.UUID
	inFlight  *uuid.UUID
	immediate bool
	canceled  int64
}

// HandleReschedule resets the hold workflow for new booking dates. Any error
// before notifications leaves the result unsuccessful.
func (uc *rescheduleUseCaseImpl) HandleReschedule(ctx context.Context, req RescheduleRequest) (*RescheduleResult, error) {
	if req.NewStart.IsZero() {
		return rescheduleFailed(errs.Wrap(ErrInvalidReschedule, "new start date is required"))
	}

	unlock := uc.locks.Lock(req.BookingID.String())
	defer unlock()

	logger := uc.logger.With("booking_id", req.BookingID)

	b, err := uc.uow.Bookings().FindByID(ctx, req.BookingID)
	if err != nil {
		return rescheduleFailed(err)
	}
	if b.Status.IsTerminal() {
		return rescheduleFailed(errs.Wrapf(ErrInvalidReschedule, "booking is %s", b.Status))
	}

	var releasedIntent string
	if b.HasLiveHold() {
		releasedIntent = *b.SecurityHoldIntentID
		if err := uc.gateway.CancelHold(ctx, releasedIntent); err != nil {
			logger.ErrorContext(ctx, "failed to cancel hold for reschedule", "intent_id", releasedIntent, "error", err)
			return rescheduleFailed(errs.Wrap(err, "cancel hold"))
		}
	}

	now := uc.clock.Now()
	txResult, err := shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (rescheduleTxResult, error) {
		var out rescheduleTxResult

		if releasedIntent != "" {
			if err := tx.Bookings().UpdateHold(ctx, b.ID, booking.StatusVerifyHoldOK, nil); err != nil {
				return out, err
			}
			oldStart, newStart := req.OldStart, req.NewStart
			if oldStart.IsZero() {
				oldStart = b.StartDate
			}
			if err := tx.Ledger().AppendHoldRelease(ctx, ledger.HoldRelease{
				BookingID:    b.ID,
				Reason:       ledger.ReasonBookingRescheduled,
				IntentID:     releasedIntent,
				OldStartDate: &oldStart,
				NewStartDate: &newStart,
			}); err != nil {
				return out, err
			}
		}

		active, err := tx.Jobs().FindActive(ctx, b.ID, job.TypePlaceHold)
		if err != nil {
			return out, err
		}
		for _, j := range active {
			if j.Status == job.StatusProcessing {
				logger.InfoContext(ctx, "place_hold job already running, leaving it to finish", "job_id", j.ID)
				id := j.ID
				out.inFlight = &id
			}
		}

		out.canceled, err = tx.Jobs().CancelPending(ctx, b.ID, now, job.TypePlaceHold)
		if err != nil {
			return out, err
		}

		if hold.IsSecurityHoldDue(req.NewStart, now, uc.cfg.Scheduler.HoldLeadTime) {
			out.immediate = true
			return out, nil
		}

		j, err := job.New(b.ID, job.PlaceHoldPayload{
			Purpose:     job.PurposeSecurity,
			AmountCents: uc.cfg.Holds.SecurityCents,
			PickupAt:    req.NewStart,
		}, hold.SecurityHoldAt(req.NewStart, uc.cfg.Scheduler.HoldLeadTime),
			uc.cfg.Scheduler.MaxRetries,
			job.IdempotencyKey(b.ID, job.TypePlaceHold, req.NewStart))
		if err != nil {
			return out, err
		}
		id, created, err := tx.Jobs().Schedule(ctx, j)
		if err != nil {
			return out, err
		}
		switch {
		case created:
			out.newJobID = &id
		case out.inFlight != nil:
			logger.WarnContext(ctx, "running place_hold blocks scheduling for the new dates",
				"in_flight_job_id", *out.inFlight, "idempotency_key", j.IdempotencyKey)
		default:
			logger.InfoContext(ctx, "place_hold for new dates already scheduled", "idempotency_key", j.IdempotencyKey)
		}
		return out, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "reschedule transaction failed", "error", err)
		return rescheduleFailed(err)
	}

	if txResult.immediate {
		logger.WarnContext(ctx, "new pickup is inside the hold lead time, security hold must be placed immediately",
			"new_start", req.NewStart)
	}

	result := &RescheduleResult{
		Success:               true,
		ImmediateHoldRequired: txResult.immediate,
		NewJobID:              txResult.newJobID,
		HoldReleased:          releasedIntent != "",
		CanceledJobs:          txResult.canceled,
		PlaceHoldInFlight:     txResult.inFlight != nil && txResult.newJobID == nil,
	}
	if result.PlaceHoldInFlight {
		result.InFlightJobID = txResult.inFlight
	}
	uc.notifyRescheduled(ctx, b, req, result)

	return result, nil
}

func rescheduleFailed(err error) (*RescheduleResult, error) {
	return &RescheduleResult{Success: false, Error: err.Error()}, err
}

func (uc *rescheduleUseCaseImpl) notifyRescheduled(ctx context.Context, b *booking.Booking, req RescheduleRequest, res *RescheduleResult) {
	notes := []shared.Notification{
		{
			Audience:  shared.AudienceCustomer,
			Channel:   shared.ChannelEmail,
			Recipient: b.CustomerID.String(),
			BookingID: b.ID,
			Kind:      shared.KindBookingRescheduled,
			Title:     "Your rental dates changed",
			Message:   fmt.Sprintf("Your pickup is now %s.", req.NewStart.Format(time.RFC1123)),
			Priority:  shared.PriorityNormal,
		},
		{
			Audience:  shared.AudienceAdmin,
			Channel:   shared.ChannelInApp,
			BookingID: b.ID,
			Kind:      shared.KindHoldWorkflowReset,
			Title:     "Hold workflow reset",
			Message:   fmt.Sprintf("Booking %s moved from %s to %s.", b.ID, req.OldStart.Format(time.RFC3339), req.NewStart.Format(time.RFC3339)),
			Priority:  shared.PriorityNormal,
			Metadata: map[string]string{
				"hold_released":        fmt.Sprint(res.HoldReleased),
				"place_hold_in_flight": fmt.Sprint(res.PlaceHoldInFlight),
			},
		},
	}
	for _, n := range notes {
		n = addressCustomer(ctx, uc.uow.Bookings(), uc.logger, n)
		if err := uc.notifier.Send(ctx, n); err != nil {
			uc.logger.WarnContext(ctx, "reschedule notification failed",
				"booking_id", b.ID, "audience", n.Audience, "error", err)
		}
	}
}
