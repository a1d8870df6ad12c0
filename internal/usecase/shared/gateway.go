package shared

import (
	"context"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=gateway.go -destination=../../../tests/mock/shared/gateway_mock.go -package=sharedmock

var (
	// ErrGatewayUnavailable marks transient gateway failures that may be retried.
	ErrGatewayUnavailable = errs.New("payment gateway unavailable")
	// ErrHoldDeclined marks an unrecoverable gateway answer such as a declined card.
	ErrHoldDeclined = errs.New("payment gateway declined hold")
	ErrNoLiveHold   = errs.New("no live hold to release")
)

// HoldResult carries either a placed hold or an authentication challenge.
type HoldResult struct {
	IntentID           string
	RequiresAction     bool
	ContinuationSecret string
}

type PaymentGateway interface {
	PlaceHold(ctx context.Context, bookingID uuid.UUID, purpose job.HoldPurpose, amountCents int64) (HoldResult, error)
	CancelHold(ctx context.Context, intentID string) error
	// ReleaseHold releases the live security hold of a booking and returns its intent id.
	ReleaseHold(ctx context.Context, bookingID uuid.UUID) (string, error)
}
