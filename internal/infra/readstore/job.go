package readstore

import (
	"context"

	"rental-orchestrator/internal/infra"
	"rental-orchestrator/internal/infra/db"
	"rental-orchestrator/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type JobReadStore struct {
	db db.DBTX
}

func NewJobReadStore(db db.DBTX) *JobReadStore {
	return &JobReadStore{db: db}
}

func (r *JobReadStore) BookingExists(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, bookingID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check booking", err)
	}
	return exists, nil
}

func (r *JobReadStore) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*queries.JobView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, booking_id, job_type, status, run_at_utc, retry_count, max_retries,
		       idempotency_key, error_message, result_note, completed_at, created_at, updated_at
		FROM scheduled_jobs
		WHERE booking_id = $1
		ORDER BY run_at_utc ASC, created_at ASC`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find jobs by booking", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.JobView, error) {
		var v queries.JobView
		err := row.Scan(&v.ID, &v.BookingID, &v.JobType, &v.Status, &v.RunAt, &v.RetryCount,
			&v.MaxRetries, &v.IdempotencyKey, &v.ErrorMessage, &v.ResultNote, &v.CompletedAt,
			&v.CreatedAt, &v.UpdatedAt)
		return &v, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan jobs", err)
	}
	return views, nil
}

func (r *JobReadStore) CountByStatus(ctx context.Context) ([]queries.JobStatusCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, count(*)
		FROM scheduled_jobs
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count jobs by status", err)
	}
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[queries.JobStatusCount])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan job counts", err)
	}
	return counts, nil
}
