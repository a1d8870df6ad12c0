//go:build unit

package job_test

import (
	"testing"
	"time"

	"rental-orchestrator/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_PlanRetry(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	delay := 5 * time.Minute

	testCases := []struct {
		name          string
		retryCount    int
		maxRetries    int
		wantExhausted bool
		wantCount     int
	}{
		{name: "first failure retries", retryCount: 0, maxRetries: 3, wantCount: 1},
		{name: "second failure retries", retryCount: 1, maxRetries: 3, wantCount: 2},
		{name: "third failure exhausts", retryCount: 2, maxRetries: 3, wantExhausted: true, wantCount: 3},
		{name: "single attempt budget exhausts immediately", retryCount: 0, maxRetries: 1, wantExhausted: true, wantCount: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			j := &job.Job{RetryCount: tc.retryCount, MaxRetries: tc.maxRetries}

			plan := j.PlanRetry(now, delay)

			assert.Equal(t, tc.wantExhausted, plan.Exhausted)
			assert.Equal(t, tc.wantCount, plan.RetryCount)
			if tc.wantExhausted {
				assert.True(t, plan.RunAt.IsZero())
			} else {
				assert.Equal(t, now.Add(delay), plan.RunAt)
			}
		})
	}
}

func TestJob_ThreeFailuresEndFailed(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	j := &job.Job{MaxRetries: 3}

	var plan job.RetryPlan
	for i := 0; i < 3; i++ {
		plan = j.PlanRetry(now, time.Minute)
		j.RetryCount = plan.RetryCount
	}

	assert.True(t, plan.Exhausted)
	assert.Equal(t, 3, j.RetryCount)
}

func TestIdempotencyKey(t *testing.T) {
	id := uuid.MustParse("6f1c2f0e-3b7a-4c43-9d1e-0c7d3b6a9e11")
	pickup := time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)

	key := job.IdempotencyKey(id, job.TypePlaceHold, pickup)

	assert.Equal(t, "6f1c2f0e-3b7a-4c43-9d1e-0c7d3b6a9e11:place_hold:1752141600", key)
	assert.NotEqual(t, key, job.IdempotencyKey(id, job.TypePlaceHold, pickup.Add(24*time.Hour)))
}

func TestNew(t *testing.T) {
	bookingID := uuid.New()
	runAt := time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC)

	t.Run("type comes from payload", func(t *testing.T) {
		j, err := job.New(bookingID, job.ReminderPayload{Kind: job.ReminderPickup}, runAt, 3, "k")

		require.NoError(t, err)
		assert.Equal(t, job.TypeSendReminder, j.Type)
		assert.Equal(t, job.StatusPending, j.Status)
		assert.Equal(t, 0, j.RetryCount)

		p, err := j.Payload()
		require.NoError(t, err)
		assert.Equal(t, job.ReminderPayload{Kind: job.ReminderPickup}, p)
	})

	t.Run("nil payload rejected", func(t *testing.T) {
		_, err := job.New(bookingID, nil, runAt, 3, "k")

		assert.ErrorIs(t, err, job.ErrInvalidPayload)
	})

	t.Run("non-positive retry budget rejected", func(t *testing.T) {
		_, err := job.New(bookingID, job.ReleaseHoldPayload{}, runAt, 0, "k")

		assert.ErrorIs(t, err, job.ErrInvalidMaxRetries)
	})
}
