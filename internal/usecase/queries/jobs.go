package queries

import (
	"context"
	"time"

	"rental-orchestrator/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=jobs.go -destination=../../../tests/mock/queries/jobs_mock.go -package=queriesmock

// JobView is the admin-facing projection of a scheduled job.
type JobView struct {
	ID             uuid.UUID  `json:"id"`
	BookingID      uuid.UUID  `json:"booking_id"`
	JobType        string     `json:"job_type"`
	Status         string     `json:"status"`
	RunAt          time.Time  `json:"run_at"`
	RetryCount     int        `json:"retry_count"`
	MaxRetries     int        `json:"max_retries"`
	IdempotencyKey string     `json:"idempotency_key"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	ResultNote     *string    `json:"result_note,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type JobStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type JobReadStore interface {
	BookingExists(ctx context.Context, bookingID uuid.UUID) (bool, error)
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*JobView, error)
	CountByStatus(ctx context.Context) ([]JobStatusCount, error)
}

type JobQueries interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*JobView, error)
	StatusCounts(ctx context.Context) ([]JobStatusCount, error)
}

type jobQueriesImpl struct {
	repo JobReadStore
}

func NewJobQueries(repo JobReadStore) JobQueries {
	return &jobQueriesImpl{repo: repo}
}

func (q *jobQueriesImpl) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*JobView, error) {
	exists, err := q.repo.BookingExists(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.ErrBookingNotFound
	}

	views, err := q.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []*JobView{}
	}
	return views, nil
}

func (q *jobQueriesImpl) StatusCounts(ctx context.Context) ([]JobStatusCount, error) {
	return q.repo.CountByStatus(ctx)
}
