package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/hold"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=hold_lifecycle.go -destination=../../../tests/mock/commands/hold_lifecycle_mock.go -package=commandsmock

var ErrHoldReentryNotAllowed = errs.New("hold workflow cannot restart from current booking state")

type HoldOutcome string

const (
	HoldOutcomeScheduled          HoldOutcome = "security_hold_scheduled"
	HoldOutcomePlaced             HoldOutcome = "security_hold_placed"
	HoldOutcomeRequiresAction     HoldOutcome = "requires_action"
	HoldOutcomeVerificationFailed HoldOutcome = "verification_failed"
	HoldOutcomeSecurityHoldFailed HoldOutcome = "security_hold_failed"
)

// LifecycleResult describes where the hold workflow ended for a booking.
type LifecycleResult struct {
	Outcome            HoldOutcome
	Status             booking.Status
	IntentID           *string
	PlaceHoldJobID     *uuid.UUID
	ContinuationSecret string
	ReturnURL          string
	BalanceCents       *int64
}

type HoldCommands interface {
	OnBookingCreated(ctx context.Context, bookingID uuid.UUID) (*LifecycleResult, error)
	OnPaymentMethodUpdated(ctx context.Context, bookingID uuid.UUID) (*LifecycleResult, error)
	HandleSecurityHoldFailure(ctx context.Context, bookingID uuid.UUID, cause error) error
}

type holdLifecycleImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	notifier shared.Notifier
	balance  BalanceCommands
	clock    clock.Clock
	cfg      config.Config
	logger   *slog.Logger
}

func NewHoldLifecycle(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	notifier shared.Notifier,
	balance BalanceCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) HoldCommands {
	return newHoldLifecycle(uow, gateway, notifier, balance, clk, cfg, logger)
}

func newHoldLifecycle(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	notifier shared.Notifier,
	balance BalanceCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *holdLifecycleImpl {
	return &holdLifecycleImpl{
		uow:      uow,
		gateway:  gateway,
		notifier: notifier,
		balance:  balance,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
	}
}

func (uc *holdLifecycleImpl) OnBookingCreated(ctx context.Context, bookingID uuid.UUID) (*LifecycleResult, error) {
	b, err := uc.uow.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != booking.StatusPending {
		return nil, errs.Wrapf(ErrHoldReentryNotAllowed, "booking status %s", b.Status)
	}

	var balance *int64
	if bal, berr := uc.balance.Recalculate(ctx, bookingID); berr == nil {
		balance = &bal
	} else {
		uc.logger.WarnContext(ctx, "initial balance unknown", "booking_id", bookingID, "error", berr)
	}

	result, err := uc.verifyAndSecure(ctx, b)
	if err != nil {
		return nil, err
	}
	result.BalanceCents = balance
	return result, nil
}

// OnPaymentMethodUpdated restarts the workflow for a booking whose
// verification or security hold previously failed.
func (uc *holdLifecycleImpl) OnPaymentMethodUpdated(ctx context.Context, bookingID uuid.UUID) (*LifecycleResult, error) {
	b, err := uc.uow.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	active, err := uc.uow.Jobs().FindActive(ctx, bookingID, job.TypePlaceHold)
	if err != nil {
		return nil, err
	}
	state := hold.StateOf(b, len(active) > 0)
	if !state.CanTransitionTo(hold.StateVerifyHoldPending) {
		return nil, errs.Wrapf(ErrHoldReentryNotAllowed, "hold state %s", state)
	}

	return uc.verifyAndSecure(ctx, b)
}

func (uc *holdLifecycleImpl) verifyAndSecure(ctx context.Context, b *booking.Booking) (*LifecycleResult, error) {
	now := uc.clock.Now()
	failedBefore := b.Status == booking.StatusSecurityHoldFailed

	result, verified, err := uc.placeVerificationHold(ctx, b)
	if err != nil || !verified {
		return result, err
	}

	if hold.IsSecurityHoldDue(b.StartDate, now, uc.cfg.Scheduler.HoldLeadTime) {
		return uc.secureInline(ctx, b, failedBefore, now)
	}
	return uc.scheduleSecurityHold(ctx, b, now)
}

func (uc *holdLifecycleImpl) placeVerificationHold(ctx context.Context, b *booking.Booking) (*LifecycleResult, bool, error) {
	amount := uc.cfg.Holds.VerificationCents
	if err := hold.ValidateAmount(job.PurposeVerification, amount); err != nil {
		return nil, false, err
	}

	res, err := uc.gateway.PlaceHold(ctx, b.ID, job.PurposeVerification, amount)
	if err == nil && !res.RequiresAction {
		return nil, true, nil
	}

	if err == nil {
		returnURL := hold.ReturnLink(uc.cfg.App.BaseURL, res.ContinuationSecret, b.ID)
		uc.notifyAuthenticationRequired(ctx, b, returnURL, job.PurposeVerification)
		return &LifecycleResult{
			Outcome:            HoldOutcomeRequiresAction,
			Status:             b.Status,
			ContinuationSecret: res.ContinuationSecret,
			ReturnURL:          returnURL,
		}, false, nil
	}

	uc.logger.WarnContext(ctx, "verification hold failed",
		"booking_id", b.ID, "amount_cents", amount, "error", err)
	uc.notify(ctx, shared.Notification{
		Audience:  shared.AudienceCustomer,
		Channel:   shared.ChannelEmail,
		Recipient: b.CustomerID.String(),
		BookingID: b.ID,
		Kind:      shared.KindVerificationHoldFailed,
		Title:     "We couldn't verify your card",
		Message:   "Please update your payment method to keep your booking.",
		Priority:  shared.PriorityHigh,
		ActionURL: hold.PaymentMethodLink(uc.cfg.App.BaseURL, b.ID),
	})
	return &LifecycleResult{Outcome: HoldOutcomeVerificationFailed, Status: b.Status}, false, nil
}

func (uc *holdLifecycleImpl) secureInline(ctx context.Context, b *booking.Booking, failedBefore bool, now time.Time) (*LifecycleResult, error) {
	if !failedBefore {
		if err := uc.uow.Bookings().UpdateStatus(ctx, b.ID, booking.StatusVerifyHoldOK); err != nil {
			return nil, err
		}
		b.Status = booking.StatusVerifyHoldOK
	}

	res, err := uc.placeSecurityHold(ctx, b, uc.cfg.Holds.SecurityCents)
	if err != nil {
		uc.logger.WarnContext(ctx, "inline security hold failed", "booking_id", b.ID, "error", err)
		if !failedBefore {
			if ferr := uc.HandleSecurityHoldFailure(ctx, b.ID, err); ferr != nil {
				return nil, ferr
			}
		}
		return &LifecycleResult{Outcome: HoldOutcomeSecurityHoldFailed, Status: booking.StatusSecurityHoldFailed}, nil
	}

	if err := uc.scheduleCompanions(ctx, uc.uow, b, now); err != nil {
		uc.logger.WarnContext(ctx, "failed to schedule follow-up jobs", "booking_id", b.ID, "error", err)
	}

	if res.RequiresAction {
		return &LifecycleResult{
			Outcome:            HoldOutcomeRequiresAction,
			Status:             b.Status,
			ContinuationSecret: res.ContinuationSecret,
			ReturnURL:          hold.ReturnLink(uc.cfg.App.BaseURL, res.ContinuationSecret, b.ID),
		}, nil
	}
	intent := res.IntentID
	return &LifecycleResult{
		Outcome:  HoldOutcomePlaced,
		Status:   booking.StatusSecurityHoldOK,
		IntentID: &intent,
	}, nil
}

func (uc *holdLifecycleImpl) scheduleSecurityHold(ctx context.Context, b *booking.Booking, now time.Time) (*LifecycleResult, error) {
	j, err := uc.newPlaceHoldJob(b.ID, b.StartDate)
	if err != nil {
		return nil, err
	}

	jobID, err := shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (uuid.UUID, error) {
		if err := tx.Bookings().UpdateStatus(ctx, b.ID, booking.StatusVerifyHoldOK); err != nil {
			return uuid.Nil, err
		}
		id, created, err := tx.Jobs().Schedule(ctx, j)
		if err != nil {
			return uuid.Nil, err
		}
		if !created {
			uc.logger.InfoContext(ctx, "security hold already scheduled", "booking_id", b.ID, "idempotency_key", j.IdempotencyKey)
		}
		return id, uc.scheduleCompanions(ctx, tx, b, now)
	})
	if err != nil {
		return nil, err
	}

	result := &LifecycleResult{Outcome: HoldOutcomeScheduled, Status: booking.StatusVerifyHoldOK}
	if jobID != uuid.Nil {
		result.PlaceHoldJobID = &jobID
	}
	return result, nil
}

func (uc *holdLifecycleImpl) newPlaceHoldJob(bookingID uuid.UUID, pickup time.Time) (*job.Job, error) {
	payload := job.PlaceHoldPayload{
		Purpose:     job.PurposeSecurity,
		AmountCents: uc.cfg.Holds.SecurityCents,
		PickupAt:    pickup,
	}
	return job.New(bookingID, payload,
		hold.SecurityHoldAt(pickup, uc.cfg.Scheduler.HoldLeadTime),
		uc.cfg.Scheduler.MaxRetries,
		job.IdempotencyKey(bookingID, job.TypePlaceHold, pickup))
}

// scheduleCompanions queues the reminder, insurance check and hold release
// that accompany every verified booking. Duplicate keys are no-ops.
func (uc *holdLifecycleImpl) scheduleCompanions(ctx context.Context, stores shared.Stores, b *booking.Booking, now time.Time) error {
	sc := uc.cfg.Scheduler
	var jobs []*job.Job

	if at := b.StartDate.Add(-sc.ReminderLeadTime); at.After(now) {
		j, err := job.New(b.ID, job.ReminderPayload{Kind: job.ReminderPickup}, at, sc.MaxRetries,
			job.IdempotencyKey(b.ID, job.TypeSendReminder, b.StartDate))
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
	}

	insuranceAt := hold.SecurityHoldAt(b.StartDate, sc.HoldLeadTime)
	if insuranceAt.Before(now) {
		insuranceAt = now
	}
	insurance, err := job.New(b.ID, job.InsuranceCheckPayload{PickupAt: b.StartDate}, insuranceAt, sc.MaxRetries,
		job.IdempotencyKey(b.ID, job.TypeCheckInsurance, b.StartDate))
	if err != nil {
		return err
	}
	release, err := job.New(b.ID, job.ReleaseHoldPayload{ReturnDueAt: b.EndDate}, b.EndDate.Add(sc.ReleaseDelay), sc.MaxRetries,
		job.IdempotencyKey(b.ID, job.TypeReleaseHold, b.EndDate))
	if err != nil {
		return err
	}
	jobs = append(jobs, insurance, release)

	for _, j := range jobs {
		if _, _, err := stores.Jobs().Schedule(ctx, j); err != nil {
			return errs.Wrapf(err, "schedule %s", j.Type)
		}
	}
	return nil
}

// placeSecurityHold calls the gateway and persists the live intent. An
// authentication challenge leaves the booking untouched and notifies the customer.
func (uc *holdLifecycleImpl) placeSecurityHold(ctx context.Context, b *booking.Booking, amount int64) (shared.HoldResult, error) {
	if err := hold.ValidateAmount(job.PurposeSecurity, amount); err != nil {
		return shared.HoldResult{}, permanent(err)
	}

	res, err := uc.gateway.PlaceHold(ctx, b.ID, job.PurposeSecurity, amount)
	if err != nil {
		if errs.Is(err, shared.ErrHoldDeclined) {
			return shared.HoldResult{}, permanent(err)
		}
		return shared.HoldResult{}, errs.Wrap(err, "place security hold")
	}

	if res.RequiresAction {
		returnURL := hold.ReturnLink(uc.cfg.App.BaseURL, res.ContinuationSecret, b.ID)
		uc.notifyAuthenticationRequired(ctx, b, returnURL, job.PurposeSecurity)
		return res, nil
	}

	intent := res.IntentID
	if err := uc.uow.Bookings().UpdateHold(ctx, b.ID, booking.StatusSecurityHoldOK, &intent); err != nil {
		// an unrecorded hold would never be released
		if cerr := uc.gateway.CancelHold(ctx, intent); cerr != nil {
			uc.logger.ErrorContext(ctx, "failed to cancel unrecorded security hold",
				"booking_id", b.ID, "intent_id", intent, "error", cerr)
		}
		return shared.HoldResult{}, errs.Wrap(err, "record security hold")
	}
	b.Status = booking.StatusSecurityHoldOK
	b.SecurityHoldIntentID = &intent

	uc.logger.InfoContext(ctx, "security hold placed",
		"booking_id", b.ID, "intent_id", intent, "amount_cents", amount)
	return res, nil
}

// HandleSecurityHoldFailure marks the booking failed and arms exactly one
// auto-cancel job, then alerts the customer and admins.
func (uc *holdLifecycleImpl) HandleSecurityHoldFailure(ctx context.Context, bookingID uuid.UUID, cause error) error {
	b, err := uc.uow.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	deadline := now.Add(uc.cfg.Scheduler.AutoCancelGrace)
	reason := "security hold failed"
	if cause != nil {
		reason = cause.Error()
	}

	autoCancel, err := job.New(bookingID, job.AutoCancelPayload{FailedAt: now, Reason: reason}, deadline,
		uc.cfg.Scheduler.MaxRetries,
		job.IdempotencyKey(bookingID, job.TypeAutoCancelOnHoldFailure, b.StartDate))
	if err != nil {
		return err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().UpdateStatus(ctx, bookingID, booking.StatusSecurityHoldFailed); err != nil {
			return err
		}
		_, created, err := tx.Jobs().Schedule(ctx, autoCancel)
		if err != nil {
			return err
		}
		if !created {
			uc.logger.InfoContext(ctx, "auto-cancel already armed", "booking_id", bookingID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.ErrorContext(ctx, "security hold failed, auto-cancel armed",
		"booking_id", bookingID, "deadline", deadline, "error", reason)

	uc.notify(ctx, shared.Notification{
		Audience:  shared.AudienceCustomer,
		Channel:   shared.ChannelEmail,
		Recipient: b.CustomerID.String(),
		BookingID: bookingID,
		Kind:      shared.KindSecurityHoldFailed,
		Title:     "Action required: update your payment method",
		Message: fmt.Sprintf("We could not place the security hold for your rental. Update your payment method before %s or the booking will be canceled.",
			deadline.Format(time.RFC1123)),
		Priority:  shared.PriorityUrgent,
		ActionURL: hold.PaymentMethodLink(uc.cfg.App.BaseURL, bookingID),
		Deadline:  &deadline,
	})
	uc.notify(ctx, shared.Notification{
		Audience:  shared.AudienceAdmin,
		Channel:   shared.ChannelInApp,
		BookingID: bookingID,
		Kind:      shared.KindSecurityHoldFailed,
		Title:     "Manual intervention needed: security hold failed",
		Message:   fmt.Sprintf("Security hold for booking %s failed: %s. Auto-cancel at %s.", bookingID, reason, deadline.Format(time.RFC3339)),
		Priority:  shared.PriorityUrgent,
		Deadline:  &deadline,
		Metadata: map[string]string{
			"booking_id": bookingID.String(),
			"job_type":   job.TypePlaceHold.String(),
			"error":      reason,
		},
	})
	return nil
}

func (uc *holdLifecycleImpl) notifyAuthenticationRequired(ctx context.Context, b *booking.Booking, returnURL string, purpose job.HoldPurpose) {
	uc.notify(ctx, shared.Notification{
		Audience:  shared.AudienceCustomer,
		Channel:   shared.ChannelEmail,
		Recipient: b.CustomerID.String(),
		BookingID: b.ID,
		Kind:      shared.KindAuthenticationRequired,
		Title:     "Confirm your card with your bank",
		Message:   "Your bank needs you to approve the hold for your rental.",
		Priority:  shared.PriorityHigh,
		ActionURL: returnURL,
		Metadata:  map[string]string{"purpose": string(purpose)},
	})
}

// notify is best effort; delivery failures never undo committed state.
func (uc *holdLifecycleImpl) notify(ctx context.Context, n shared.Notification) {
	n = addressCustomer(ctx, uc.uow.Bookings(), uc.logger, n)
	if err := uc.notifier.Send(ctx, n); err != nil {
		uc.logger.WarnContext(ctx, "notification delivery failed",
			"booking_id", n.BookingID, "kind", n.Kind, "audience", n.Audience, "error", err)
	}
}
