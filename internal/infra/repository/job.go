package repository

import (
	"context"
	"time"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/infra"
	"rental-orchestrator/internal/infra/db"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const jobColumns = `id, booking_id, job_type, run_at_utc, status, retry_count, max_retries,
	idempotency_key, error_message, result_note, completed_at, metadata, created_at, updated_at`

type JobRepository struct {
	db db.DBTX
}

func NewJobRepository(db db.DBTX) *JobRepository {
	return &JobRepository{db: db}
}

// Schedule inserts j unless an active job already holds its idempotency key
// or, for place_hold, the booking's single active slot.
func (r *JobRepository) Schedule(ctx context.Context, j *job.Job) (uuid.UUID, bool, error) {
	id := j.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	metadata := j.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	var inserted uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO scheduled_jobs (id, booking_id, job_type, run_at_utc, status, retry_count,
			max_retries, idempotency_key, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		id, j.BookingID, string(j.Type), j.RunAt.UTC(), string(job.StatusPending), j.RetryCount,
		j.MaxRetries, j.IdempotencyKey, metadata,
	).Scan(&inserted)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, infra.WrapRepoErr("failed to schedule job", err)
	}
	return inserted, true, nil
}

func (r *JobRepository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*job.Job, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM scheduled_jobs
		WHERE status = 'pending' AND run_at_utc <= $1
		ORDER BY run_at_utc ASC
		LIMIT $2`, now.UTC(), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch due jobs", err)
	}
	return collectJobs(rows, "failed to scan due jobs")
}

// Claim moves a pending job to processing. A false result means another
// dispatcher got there first.
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE scheduled_jobs
		SET status = 'processing', updated_at = $2
		WHERE id = $1 AND status = 'pending'`, id, now.UTC())
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim job", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReclaimStale hands back claims whose worker never recorded an outcome.
func (r *JobRepository) ReclaimStale(ctx context.Context, staleBefore, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE scheduled_jobs
		SET status = 'pending', run_at_utc = $2, retry_count = retry_count + 1,
		    error_message = 'claim expired before an outcome was recorded', updated_at = $2
		WHERE status = 'processing' AND updated_at < $1`, staleBefore.UTC(), now.UTC())
	if err != nil {
		return 0, infra.WrapRepoErr("failed to reclaim stale jobs", err)
	}
	return tag.RowsAffected(), nil
}

func (r *JobRepository) Complete(ctx context.Context, id uuid.UUID, outcome job.Outcome, now time.Time) error {
	return r.exec(ctx, "failed to complete job", id, `
		UPDATE scheduled_jobs
		SET status = 'completed', completed_at = $2, updated_at = $2, result_note = $3
		WHERE id = $1`, id, now.UTC(), pgconv.NullText(outcome.Note))
}

func (r *JobRepository) Retry(ctx context.Context, id uuid.UUID, retryCount int, runAt time.Time, errMsg string, now time.Time) error {
	return r.exec(ctx, "failed to reschedule job", id, `
		UPDATE scheduled_jobs
		SET status = 'pending', retry_count = $2, run_at_utc = $3, error_message = $4, updated_at = $5
		WHERE id = $1`, id, retryCount, runAt.UTC(), errMsg, now.UTC())
}

func (r *JobRepository) Fail(ctx context.Context, id uuid.UUID, retryCount int, errMsg string, now time.Time) error {
	return r.exec(ctx, "failed to mark job failed", id, `
		UPDATE scheduled_jobs
		SET status = 'failed', retry_count = $2, error_message = $3, updated_at = $4
		WHERE id = $1`, id, retryCount, errMsg, now.UTC())
}

// CancelPending cancels the booking's pending jobs, restricted to types when given.
func (r *JobRepository) CancelPending(ctx context.Context, bookingID uuid.UUID, now time.Time, types ...job.Type) (int64, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE scheduled_jobs
		SET status = 'canceled', updated_at = $2
		WHERE booking_id = $1 AND status = 'pending'
		  AND (cardinality($3::text[]) = 0 OR job_type = ANY($3::text[]))`,
		bookingID, now.UTC(), names)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to cancel pending jobs", err)
	}
	return tag.RowsAffected(), nil
}

func (r *JobRepository) FindActive(ctx context.Context, bookingID uuid.UUID, t job.Type) ([]*job.Job, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM scheduled_jobs
		WHERE booking_id = $1 AND job_type = $2 AND status IN ('pending', 'processing')
		ORDER BY run_at_utc ASC`, bookingID, string(t))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active jobs", err)
	}
	return collectJobs(rows, "failed to scan active jobs")
}

func (r *JobRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*job.Job, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM scheduled_jobs
		WHERE booking_id = $1
		ORDER BY run_at_utc ASC, created_at ASC`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list jobs", err)
	}
	return collectJobs(rows, "failed to scan jobs")
}

func (r *JobRepository) exec(ctx context.Context, msg string, id uuid.UUID, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return infra.WrapRepoErr(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(msg, errs.Wrapf(errs.ErrJobNotFound, "job %s", id), infra.KindNotFound)
	}
	return nil
}

func collectJobs(rows pgx.Rows, msg string) ([]*job.Job, error) {
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	return jobs, nil
}

func scanJob(row pgx.CollectableRow) (*job.Job, error) {
	var (
		j           job.Job
		jobType     string
		status      string
		errMsg      pgtype.Text
		resultNote  pgtype.Text
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&j.ID, &j.BookingID, &jobType, &j.RunAt, &status, &j.RetryCount, &j.MaxRetries,
		&j.IdempotencyKey, &errMsg, &resultNote, &completedAt, &j.Metadata, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Type = job.Type(jobType)
	j.Status = job.Status(status)
	j.RunAt = j.RunAt.UTC()
	j.ErrorMessage = pgconv.TextPtr(errMsg)
	j.ResultNote = pgconv.TextPtr(resultNote)
	j.CompletedAt = pgconv.TimeUTC(completedAt)
	return &j, nil
}
