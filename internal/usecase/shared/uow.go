package shared

import (
	"context"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/domain/ledger"

	"github.com/google/uuid"
)

// Stores is the set of stores available both inside and outside a transaction.
type Stores interface {
	Jobs() JobStore
	Bookings() BookingStore
	Ledger() LedgerStore
}

type UnitOfWork interface {
	// Stores outside Within run each statement in its own implicit transaction
	Stores
	// Within: full transaction with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Stores
}

// JobStore exposes only the narrow transitions a job may take.
type JobStore interface {
	// Schedule inserts a pending job. A live job with the same idempotency key
	// makes it a no-op reported as created=false.
	Schedule(ctx context.Context, j *job.Job) (id uuid.UUID, created bool, err error)
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*job.Job, error)
	// Claim moves a pending job to processing. False means another worker won.
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	// ReclaimStale returns jobs stuck in processing since before staleBefore to
	// pending, due at now, counting the lost attempt.
	ReclaimStale(ctx context.Context, staleBefore, now time.Time) (int64, error)
	Complete(ctx context.Context, id uuid.UUID, outcome job.Outcome, now time.Time) error
	Retry(ctx context.Context, id uuid.UUID, retryCount int, runAt time.Time, errMsg string, now time.Time) error
	Fail(ctx context.Context, id uuid.UUID, retryCount int, errMsg string, now time.Time) error
	// CancelPending cancels pending jobs of the booking, restricted to types when given.
	CancelPending(ctx context.Context, bookingID uuid.UUID, now time.Time, types ...job.Type) (int64, error)
	FindActive(ctx context.Context, bookingID uuid.UUID, t job.Type) ([]*job.Job, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*job.Job, error)
}

type BookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error
	// UpdateHold writes status and intent together; a nil intent clears it.
	UpdateHold(ctx context.Context, id uuid.UUID, status booking.Status, intentID *string) error
	UpdateBalance(ctx context.Context, id uuid.UUID, balanceCents int64) error
	FindContact(ctx context.Context, bookingID uuid.UUID) (*booking.Contact, error)
	ListInsuranceDocuments(ctx context.Context, customerID uuid.UUID) ([]booking.InsuranceDocument, error)
}

type LedgerStore interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]ledger.Entry, error)
	AppendHoldRelease(ctx context.Context, rec ledger.HoldRelease) error
	// UpdatePaymentStatus returns the owning booking and the status it replaced.
	UpdatePaymentStatus(ctx context.Context, source ledger.Source, paymentID uuid.UUID, status ledger.Status) (uuid.UUID, ledger.Status, error)
}
