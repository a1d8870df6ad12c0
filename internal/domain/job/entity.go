package job

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMaxRetries = errors.New("max retries must be positive")

// Job is a durable, retryable unit of deferred financial work.
type Job struct {
	ID             uuid.UUID
	BookingID      uuid.UUID
	Type           Type
	RunAt          time.Time
	Status         Status
	RetryCount     int
	MaxRetries     int
	IdempotencyKey string
	ErrorMessage   *string
	ResultNote     *string
	CompletedAt    *time.Time
	Metadata       []byte // JSON-encoded Payload
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IdempotencyKey derives the dedupe key for a job anchored on a booking moment,
// e.g. "<booking>:place_hold:<pickup unix>".
func IdempotencyKey(bookingID uuid.UUID, t Type, anchor time.Time) string {
	return fmt.Sprintf("%s:%s:%d", bookingID, t, anchor.Unix())
}

// New builds a pending job whose type is taken from its payload.
func New(bookingID uuid.UUID, payload Payload, runAt time.Time, maxRetries int, key string) (*Job, error) {
	if payload == nil {
		return nil, ErrInvalidPayload
	}
	if !payload.JobType().IsValid() {
		return nil, ErrUnknownType
	}
	if maxRetries <= 0 {
		return nil, ErrInvalidMaxRetries
	}
	metadata, err := EncodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &Job{
		BookingID:      bookingID,
		Type:           payload.JobType(),
		RunAt:          runAt.UTC(),
		Status:         StatusPending,
		MaxRetries:     maxRetries,
		IdempotencyKey: key,
		Metadata:       metadata,
	}, nil
}

// RetryPlan is the next state of a job after a failed attempt.
type RetryPlan struct {
	Exhausted  bool
	RetryCount int
	RunAt      time.Time
}

// PlanRetry applies the fixed-delay policy: attempt n = RetryCount+1 goes back
// to pending while n < MaxRetries, otherwise the job is exhausted with
// RetryCount == MaxRetries.
func (j *Job) PlanRetry(now time.Time, delay time.Duration) RetryPlan {
	attempt := j.RetryCount + 1
	if attempt < j.MaxRetries {
		return RetryPlan{RetryCount: attempt, RunAt: now.Add(delay)}
	}
	return RetryPlan{Exhausted: true, RetryCount: j.MaxRetries}
}

// Payload decodes the job metadata into the payload registered for its type.
func (j *Job) Payload() (Payload, error) {
	return DecodePayload(j.Type, j.Metadata)
}

func (j *Job) IsDue(now time.Time) bool {
	return j.Status == StatusPending && !j.RunAt.After(now)
}
