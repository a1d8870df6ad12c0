package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"
)

const (
	noteBookingCanceled   = "booking canceled"
	noteHoldAlreadyPlaced = "hold already placed"
	noteNotReady          = "not ready"
	noteNothingToRelease  = "nothing to release"
	noteNoContactEmail    = "no contact email"
	noteResolved          = "resolved"
	reasonRentalReturned  = "rental_returned"
)

// NewJobHandlers wires one handler per job type.
func NewJobHandlers(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	notifier shared.Notifier,
	balance BalanceCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) JobHandlers {
	lc := newHoldLifecycle(uow, gateway, notifier, balance, clk, cfg, logger)
	return JobHandlers{
		job.TypePlaceHold:               &placeHoldHandler{lc: lc},
		job.TypeReleaseHold:             &releaseHoldHandler{uow: uow, gateway: gateway, logger: logger},
		job.TypeSendReminder:            &reminderHandler{uow: uow, notifier: notifier},
		job.TypeCheckInsurance:          &insuranceHandler{uow: uow, notifier: notifier, clock: clk, horizon: cfg.Scheduler.InsuranceHorizon},
		job.TypeAutoCancelOnHoldFailure: &autoCancelHandler{uow: uow, notifier: notifier, clock: clk, logger: logger},
	}
}

func loadBooking(ctx context.Context, uow shared.UnitOfWork, j *job.Job) (*booking.Booking, error) {
	b, err := uow.Bookings().FindByID(ctx, j.BookingID)
	if err != nil {
		if errs.Is(err, errs.ErrBookingNotFound) {
			return nil, permanent(err)
		}
		return nil, errs.Wrap(err, "load booking")
	}
	return b, nil
}

func payloadAs[T job.Payload](p job.Payload) (T, error) {
	v, ok := p.(T)
	if !ok {
		var zero T
		return zero, permanent(errs.Mark(errs.Newf("unexpected payload %T", p), job.ErrInvalidPayload))
	}
	return v, nil
}

type placeHoldHandler struct {
	lc *holdLifecycleImpl
}

func (h *placeHoldHandler) Handle(ctx context.Context, j *job.Job, p job.Payload) (job.Outcome, error) {
	payload, err := payloadAs[job.PlaceHoldPayload](p)
	if err != nil {
		return job.Outcome{}, err
	}
	b, err := loadBooking(ctx, h.lc.uow, j)
	if err != nil {
		return job.Outcome{}, err
	}
	if b.Status == booking.StatusCanceled {
		return job.Skipped(noteBookingCanceled), nil
	}
	if b.HasLiveHold() {
		return job.Skipped(noteHoldAlreadyPlaced), nil
	}

	amount := payload.AmountCents
	if amount == 0 {
		amount = h.lc.cfg.Holds.SecurityCents
	}
	res, err := h.lc.placeSecurityHold(ctx, b, amount)
	if err != nil {
		return job.Outcome{}, err
	}
	if res.RequiresAction {
		return job.RequiresAction("customer authentication required"), nil
	}
	return job.Done(), nil
}

func (h *placeHoldHandler) OnTerminalFailure(ctx context.Context, j *job.Job, cause error) error {
	return h.lc.HandleSecurityHoldFailure(ctx, j.BookingID, cause)
}

type releaseHoldHandler struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	logger  *slog.Logger
}

// Handle checks the live intent before calling the gateway, so a retry after a
// failed booking write is a no-op.
func (h *releaseHoldHandler) Handle(ctx context.Context, j *job.Job, p job.Payload) (job.Outcome, error) {
	if _, err := payloadAs[job.ReleaseHoldPayload](p); err != nil {
		return job.Outcome{}, err
	}
	b, err := loadBooking(ctx, h.uow, j)
	if err != nil {
		return job.Outcome{}, err
	}
	if !b.Status.IsReleasable() {
		return job.Skipped(noteNotReady), nil
	}
	if !b.HasLiveHold() {
		return job.Skipped(noteNothingToRelease), nil
	}

	intent := *b.SecurityHoldIntentID
	released, err := h.gateway.ReleaseHold(ctx, b.ID)
	switch {
	case errs.Is(err, shared.ErrNoLiveHold):
		h.logger.InfoContext(ctx, "gateway reports no live hold, clearing local intent",
			"booking_id", b.ID, "intent_id", intent)
	case err != nil:
		return job.Outcome{}, errs.Wrap(err, "release hold")
	case released != "":
		intent = released
	}

	err = h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().UpdateHold(ctx, b.ID, b.Status, nil); err != nil {
			return err
		}
		return tx.Ledger().AppendHoldRelease(ctx, ledger.HoldRelease{
			BookingID: b.ID,
			Reason:    reasonRentalReturned,
			IntentID:  intent,
		})
	})
	if err != nil {
		return job.Outcome{}, errs.Wrap(err, "clear released hold")
	}
	return job.Done(), nil
}

type reminderHandler struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
}

func (h *reminderHandler) Handle(ctx context.Context, j *job.Job, p job.Payload) (job.Outcome, error) {
	payload, err := payloadAs[job.ReminderPayload](p)
	if err != nil {
		return job.Outcome{}, err
	}
	b, err := loadBooking(ctx, h.uow, j)
	if err != nil {
		return job.Outcome{}, err
	}
	if b.Status == booking.StatusCanceled {
		return job.Skipped(noteBookingCanceled), nil
	}

	contact, err := h.uow.Bookings().FindContact(ctx, b.ID)
	if err != nil && !errs.Is(err, errs.ErrBookingNotFound) {
		return job.Outcome{}, errs.Wrap(err, "load contact")
	}
	if !contact.HasEmail() {
		return job.Skipped(noteNoContactEmail), nil
	}

	kind := payload.Kind
	if kind == "" {
		kind = job.ReminderPickup
	}
	err = h.notifier.Send(ctx, shared.Notification{
		Audience:  shared.AudienceCustomer,
		Channel:   shared.ChannelEmail,
		Recipient: *contact.Email,
		BookingID: b.ID,
		Kind:      shared.KindReminder,
		Title:     fmt.Sprintf("Your rental %s is coming up", kind),
		Message:   fmt.Sprintf("Hi %s, this is a reminder about your rental on %s.", contact.Name, b.StartDate.Format("Mon Jan 2 15:04 MST")),
		Priority:  shared.PriorityNormal,
		Metadata:  map[string]string{"reminder_kind": string(kind)},
	})
	if err != nil {
		return job.Outcome{}, errs.Wrap(err, "send reminder")
	}
	return job.Done(), nil
}

type insuranceHandler struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
	clock    clock.Clock
	horizon  time.Duration
}

// Handle raises notifications only; it never writes booking state.
func (h *insuranceHandler) Handle(ctx context.Context, j *job.Job, p job.Payload) (job.Outcome, error) {
	if _, err := payloadAs[job.InsuranceCheckPayload](p); err != nil {
		return job.Outcome{}, err
	}
	b, err := loadBooking(ctx, h.uow, j)
	if err != nil {
		return job.Outcome{}, err
	}
	if b.Status == booking.StatusCanceled {
		return job.Skipped(noteBookingCanceled), nil
	}

	docs, err := h.uow.Bookings().ListInsuranceDocuments(ctx, b.CustomerID)
	if err != nil {
		return job.Outcome{}, errs.Wrap(err, "load insurance documents")
	}
	assessment := booking.AssessInsurance(docs, h.clock.Now(), h.horizon)

	if assessment.HasExpired() {
		err := h.notifier.Send(ctx, shared.Notification{
			Audience:  shared.AudienceAdmin,
			Channel:   shared.ChannelInApp,
			BookingID: b.ID,
			Kind:      shared.KindInsuranceExpired,
			Title:     "Customer insurance expired",
			Message:   fmt.Sprintf("%d approved insurance document(s) for booking %s have expired.", len(assessment.Expired), b.ID),
			Priority:  shared.PriorityHigh,
			Metadata: map[string]string{
				"customer_id":   b.CustomerID.String(),
				"expired_count": strconv.Itoa(len(assessment.Expired)),
			},
		})
		if err != nil {
			return job.Outcome{}, errs.Wrap(err, "notify expired insurance")
		}
	}

	if assessment.ShouldWarnExpiringSoon() {
		err := h.notifier.Send(ctx, shared.Notification{
			Audience:  shared.AudienceAdmin,
			Channel:   shared.ChannelInApp,
			BookingID: b.ID,
			Kind:      shared.KindInsuranceExpiringSoon,
			Title:     "Customer insurance expiring soon",
			Message:   fmt.Sprintf("%d insurance document(s) for booking %s expire soon.", len(assessment.ExpiringSoon), b.ID),
			Priority:  shared.PriorityLow,
			Metadata:  map[string]string{"customer_id": b.CustomerID.String()},
		})
		if err != nil {
			return job.Outcome{}, errs.Wrap(err, "notify expiring insurance")
		}
	}
	return job.Done(), nil
}

type autoCancelHandler struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

// Handle re-reads the booking; a fixed payment method makes the job a no-op.
func (h *autoCancelHandler) Handle(ctx context.Context, j *job.Job, p job.Payload) (job.Outcome, error) {
	payload, err := payloadAs[job.AutoCancelPayload](p)
	if err != nil {
		return job.Outcome{}, err
	}
	b, err := loadBooking(ctx, h.uow, j)
	if err != nil {
		return job.Outcome{}, err
	}
	if b.Status != booking.StatusSecurityHoldFailed || b.HasLiveHold() {
		return job.Skipped(noteResolved), nil
	}

	var canceled int64
	err = h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().UpdateStatus(ctx, b.ID, booking.StatusCanceled); err != nil {
			return err
		}
		n, err := tx.Jobs().CancelPending(ctx, b.ID, h.clock.Now())
		canceled = n
		return err
	})
	if err != nil {
		return job.Outcome{}, errs.Wrap(err, "auto-cancel booking")
	}
	h.logger.WarnContext(ctx, "booking auto-canceled after security hold failure",
		"booking_id", b.ID, "canceled_jobs", canceled, "failed_at", payload.FailedAt, "reason", payload.Reason)

	for _, n := range []shared.Notification{
		{
			Audience:  shared.AudienceCustomer,
			Channel:   shared.ChannelEmail,
			Recipient: b.CustomerID.String(),
			BookingID: b.ID,
			Kind:      shared.KindBookingAutoCanceled,
			Title:     "Your booking was canceled",
			Message:   "We could not secure a hold on your card in time, so the booking has been canceled.",
			Priority:  shared.PriorityHigh,
		},
		{
			Audience:  shared.AudienceAdmin,
			Channel:   shared.ChannelInApp,
			BookingID: b.ID,
			Kind:      shared.KindBookingAutoCanceled,
			Title:     "Booking auto-canceled",
			Message:   fmt.Sprintf("Booking %s was canceled after its security hold failed: %s", b.ID, payload.Reason),
			Priority:  shared.PriorityHigh,
			Metadata:  map[string]string{"job_type": j.Type.String(), "error": payload.Reason},
		},
	} {
		n = addressCustomer(ctx, h.uow.Bookings(), h.logger, n)
		if err := h.notifier.Send(ctx, n); err != nil {
			h.logger.WarnContext(ctx, "auto-cancel notification failed",
				"booking_id", b.ID, "audience", n.Audience, "error", err)
		}
	}
	return job.Done(), nil
}
