//go:build unit || e2e

package builder

import (
	"time"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/usecase/queries"

	"github.com/google/uuid"
)

type JobBuilder struct {
	BookingID  uuid.UUID
	Payload    job.Payload
	RunAt      time.Time
	Status     job.Status
	RetryCount int
	MaxRetries int
	Key        string
}

func NewJobBuilder(bookingID uuid.UUID, runAt time.Time) *JobBuilder {
	return &JobBuilder{
		BookingID:  bookingID,
		Payload:    job.PlaceHoldPayload{Purpose: job.PurposeSecurity, AmountCents: 50000, PickupAt: runAt.Add(48 * time.Hour)},
		RunAt:      runAt,
		Status:     job.StatusPending,
		MaxRetries: 3,
	}
}

func (b *JobBuilder) With(mutate func(*JobBuilder)) *JobBuilder {
	mutate(b)
	return b
}

func (b *JobBuilder) WithPayload(p job.Payload) *JobBuilder {
	b.Payload = p
	return b
}

func (b *JobBuilder) BuildDomain() *job.Job {
	key := b.Key
	if key == "" {
		key = job.IdempotencyKey(b.BookingID, b.Payload.JobType(), b.RunAt) + ":" + uuid.NewString()[:8]
	}
	j, err := job.New(b.BookingID, b.Payload, b.RunAt, b.MaxRetries, key)
	if err != nil {
		panic(err)
	}
	j.Status = b.Status
	j.RetryCount = b.RetryCount
	return j
}

func (b *JobBuilder) BuildView() *queries.JobView {
	j := b.BuildDomain()
	return &queries.JobView{
		ID:             uuid.New(),
		BookingID:      j.BookingID,
		JobType:        string(j.Type),
		Status:         string(j.Status),
		RunAt:          j.RunAt,
		RetryCount:     j.RetryCount,
		MaxRetries:     j.MaxRetries,
		IdempotencyKey: j.IdempotencyKey,
		CreatedAt:      j.RunAt.Add(-72 * time.Hour),
		UpdatedAt:      j.RunAt.Add(-72 * time.Hour),
	}
}
