package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// BookingLookup resolves the card-on-file and live intent of a booking.
type BookingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

const (
	chargeFailed     = "failed"
	chargePending    = "pending"
	chargeSuccessful = "successful"
)

// OmiseGateway places holds as authorize-only charges against the
// customer's saved card and releases them by reversing the charge.
type OmiseGateway struct {
	client   *omise.Client
	bookings BookingLookup
	currency string
	baseURL  string
	logger   *slog.Logger
}

func NewOmiseGateway(client *omise.Client, bookings BookingLookup, currency, baseURL string, logger *slog.Logger) *OmiseGateway {
	return &OmiseGateway{
		client:   client,
		bookings: bookings,
		currency: currency,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// NewOmiseClient bounds every request by timeout at the transport level.
func NewOmiseClient(publicKey, secretKey string, timeout time.Duration) (*omise.Client, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	c.Client.Timeout = timeout
	return c, nil
}

// do runs call and returns as soon as ctx ends. The abandoned request is still
// bounded by the client timeout.
func (g *OmiseGateway) do(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return errs.Mark(errs.Wrap(err, "omise"), shared.ErrGatewayUnavailable)
	}
	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		if err != nil {
			return classifyOmiseError(err)
		}
		return nil
	case <-ctx.Done():
		return errs.Mark(errs.Wrap(ctx.Err(), "omise call abandoned"), shared.ErrGatewayUnavailable)
	}
}

func (g *OmiseGateway) PlaceHold(ctx context.Context, bookingID uuid.UUID, purpose job.HoldPurpose, amountCents int64) (shared.HoldResult, error) {
	b, err := g.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return shared.HoldResult{}, errs.Wrap(err, "load booking for hold")
	}
	if b.GatewayCustomerID == nil || *b.GatewayCustomerID == "" {
		return shared.HoldResult{}, errs.Wrapf(shared.ErrHoldDeclined, "booking %s has no card on file", bookingID)
	}

	charge := &omise.Charge{}
	create := &operations.CreateCharge{
		Customer:    *b.GatewayCustomerID,
		Amount:      amountCents,
		Currency:    g.currency,
		DontCapture: true,
		ReturnURI:   g.baseURL + "/bookings/" + bookingID.String() + "/manage",
		Description: string(purpose) + " hold",
		Metadata: map[string]interface{}{
			"booking_id": bookingID.String(),
			"purpose":    string(purpose),
		},
	}
	err = g.do(ctx, func() error { return g.client.Do(charge, create) })
	if err != nil {
		return shared.HoldResult{}, err
	}

	switch string(charge.Status) {
	case chargeFailed:
		code, msg := "", ""
		if charge.FailureCode != nil {
			code = *charge.FailureCode
		}
		if charge.FailureMessage != nil {
			msg = *charge.FailureMessage
		}
		g.logger.WarnContext(ctx, "hold declined by gateway",
			"booking_id", bookingID, "charge_id", charge.ID, "failure_code", code)
		return shared.HoldResult{}, errs.Wrapf(shared.ErrHoldDeclined, "%s: %s", code, msg)
	case chargePending:
		if !charge.Authorized && charge.AuthorizeURI != "" {
			return shared.HoldResult{
				IntentID:           charge.ID,
				RequiresAction:     true,
				ContinuationSecret: charge.ID,
			}, nil
		}
	case chargeSuccessful:
		// captured despite DontCapture; treat as placed so it gets released
		g.logger.WarnContext(ctx, "hold charge was captured", "booking_id", bookingID, "charge_id", charge.ID)
	}

	return shared.HoldResult{IntentID: charge.ID}, nil
}

func (g *OmiseGateway) CancelHold(ctx context.Context, intentID string) error {
	charge := &omise.Charge{}
	reverse := &operations.ReverseCharge{ChargeID: intentID}
	if err := g.do(ctx, func() error { return g.client.Do(charge, reverse) }); err != nil {
		return err
	}
	g.logger.InfoContext(ctx, "hold reversed", "charge_id", intentID)
	return nil
}

func (g *OmiseGateway) ReleaseHold(ctx context.Context, bookingID uuid.UUID) (string, error) {
	b, err := g.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return "", errs.Wrap(err, "load booking for release")
	}
	if !b.HasLiveHold() {
		return "", shared.ErrNoLiveHold
	}
	intent := *b.SecurityHoldIntentID
	if err := g.CancelHold(ctx, intent); err != nil {
		return "", err
	}
	return intent, nil
}

// classifyOmiseError separates card-side rejections from transport trouble.
func classifyOmiseError(err error) error {
	var apiErr *omise.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError:
			return errs.Mark(errs.Wrap(err, "omise"), shared.ErrGatewayUnavailable)
		case apiErr.StatusCode == http.StatusNotFound && apiErr.Code == "not_found":
			return errs.Mark(errs.Wrap(err, "omise"), shared.ErrNoLiveHold)
		case apiErr.StatusCode >= http.StatusBadRequest:
			return errs.Mark(errs.Wrap(err, "omise"), shared.ErrHoldDeclined)
		}
	}
	return errs.Mark(errs.Wrap(err, "omise"), shared.ErrGatewayUnavailable)
}
