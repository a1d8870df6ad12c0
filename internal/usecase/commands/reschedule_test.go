//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/shared"
	"rental-orchestrator/tests/common/builder"
	"rental-orchestrator/tests/common/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandleReschedule_ReleasesLiveHoldAndRearms(t *testing.T) {
	f := newFixture(t)
	box := f.collectNotifications()

	b := builder.NewBookingBuilder(baseTime).
		WithPickupIn(baseTime, 36*time.Hour).
		WithStatus(booking.StatusSecurityHoldOK).
		WithLiveHold("chrg_live").
		BuildDomain()
	f.store.PutBooking(b)
	newStart := baseTime.Add(10 * 24 * time.Hour)

	f.gateway.EXPECT().CancelHold(gomock.Any(), "chrg_live").Return(nil)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  newStart,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.HoldReleased)
	assert.False(t, result.ImmediateHoldRequired)

	stored := f.store.Booking(b.ID)
	assert.Equal(t, booking.StatusVerifyHoldOK, stored.Status)
	assert.Nil(t, stored.SecurityHoldIntentID)

	releases := f.store.HoldReleases()
	require.Len(t, releases, 1)
	assert.Equal(t, ledger.ReasonBookingRescheduled, releases[0].Reason)
	assert.Equal(t, "chrg_live", releases[0].IntentID)
	require.NotNil(t, releases[0].NewStartDate)
	assert.Equal(t, newStart, *releases[0].NewStartDate)

	holds := f.store.JobsFor(b.ID, job.TypePlaceHold)
	require.Len(t, holds, 1)
	require.NotNil(t, result.NewJobID)
	assert.Equal(t, holds[0].ID, *result.NewJobID)
	assert.Equal(t, newStart.Add(-48*time.Hour), holds[0].RunAt)
	assert.Equal(t, job.IdempotencyKey(b.ID, job.TypePlaceHold, newStart), holds[0].IdempotencyKey)

	reset := box.ofKind(shared.AudienceAdmin, shared.KindHoldWorkflowReset)
	require.Len(t, reset, 1)
	assert.Equal(t, "true", reset[0].Metadata["hold_released"])
	assert.Len(t, box.ofKind(shared.AudienceCustomer, shared.KindBookingRescheduled), 1)
}

func TestHandleReschedule_CancelsPendingPlaceHold(t *testing.T) {
	f := newFixture(t)
	f.collectNotifications()

	bb := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK)
	b := bb.BuildDomain()
	f.store.PutBooking(b)
	old := f.store.PutJob(builder.NewJobBuilder(b.ID, b.StartDate.Add(-48*time.Hour)).BuildDomain())
	reminder := f.store.PutJob(builder.NewJobBuilder(b.ID, b.StartDate.Add(-24*time.Hour)).
		WithPayload(job.ReminderPayload{Kind: job.ReminderPickup}).BuildDomain())
	newStart := b.StartDate.Add(5 * 24 * time.Hour)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  newStart,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.HoldReleased)
	assert.Equal(t, int64(1), result.CanceledJobs)
	assert.Equal(t, job.StatusCanceled, f.store.Job(old).Status)
	assert.Equal(t, job.StatusPending, f.store.Job(reminder).Status)
	assert.Empty(t, f.store.HoldReleases())

	require.NotNil(t, result.NewJobID)
	assert.Equal(t, newStart.Add(-48*time.Hour), f.store.Job(*result.NewJobID).RunAt)
}

func TestHandleReschedule_NewDatesInsideLeadTime(t *testing.T) {
	f := newFixture(t)
	f.collectNotifications()

	b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK).BuildDomain()
	f.store.PutBooking(b)
	old := f.store.PutJob(builder.NewJobBuilder(b.ID, b.StartDate.Add(-48*time.Hour)).BuildDomain())

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  baseTime.Add(24 * time.Hour),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.ImmediateHoldRequired)
	assert.Nil(t, result.NewJobID)
	assert.Equal(t, job.StatusCanceled, f.store.Job(old).Status)

	for _, j := range f.store.JobsFor(b.ID, job.TypePlaceHold) {
		assert.NotEqual(t, job.StatusPending, j.Status)
	}
}

func TestHandleReschedule_GatewayCancelFailure(t *testing.T) {
	f := newFixture(t)

	b := builder.NewBookingBuilder(baseTime).
		WithStatus(booking.StatusSecurityHoldOK).
		WithLiveHold("chrg_live").
		BuildDomain()
	f.store.PutBooking(b)

	f.gateway.EXPECT().CancelHold(gomock.Any(), "chrg_live").Return(shared.ErrGatewayUnavailable)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  b.StartDate.Add(72 * time.Hour),
	})

	require.ErrorIs(t, err, shared.ErrGatewayUnavailable)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	stored := f.store.Booking(b.ID)
	assert.Equal(t, booking.StatusSecurityHoldOK, stored.Status)
	require.NotNil(t, stored.SecurityHoldIntentID)
	assert.Empty(t, f.store.JobsFor(b.ID, job.TypePlaceHold))
}

func TestHandleReschedule_TransactionFailureRollsBack(t *testing.T) {
	f := newFixture(t)

	b := builder.NewBookingBuilder(baseTime).
		WithStatus(booking.StatusSecurityHoldOK).
		WithLiveHold("chrg_live").
		BuildDomain()
	f.store.PutBooking(b)
	f.store.FailOn(memstore.OpAppendRelease, errors.New("disk full"))

	f.gateway.EXPECT().CancelHold(gomock.Any(), "chrg_live").Return(nil)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  b.StartDate.Add(72 * time.Hour),
	})

	require.Error(t, err)
	assert.False(t, result.Success)

	stored := f.store.Booking(b.ID)
	assert.Equal(t, booking.StatusSecurityHoldOK, stored.Status)
	require.NotNil(t, stored.SecurityHoldIntentID)
	assert.Empty(t, f.store.HoldReleases())
	assert.Empty(t, f.store.JobsFor(b.ID, job.TypePlaceHold))
}

func TestHandleReschedule_NotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)

	b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK).BuildDomain()
	f.store.PutBooking(b)

	f.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down")).Times(2)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  b.StartDate.Add(72 * time.Hour),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotNil(t, result.NewJobID)
}

func TestHandleReschedule_LeavesProcessingJobAlone(t *testing.T) {
	f := newFixture(t)
	box := f.collectNotifications()

	b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK).BuildDomain()
	f.store.PutBooking(b)
	running := f.store.PutJob(builder.NewJobBuilder(b.ID, baseTime.Add(-time.Minute)).
		With(func(jb *builder.JobBuilder) { jb.Status = job.StatusProcessing }).
		BuildDomain())

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  b.StartDate.Add(72 * time.Hour),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.CanceledJobs)
	assert.Equal(t, job.StatusProcessing, f.store.Job(running).Status)

	assert.Nil(t, result.NewJobID)
	assert.True(t, result.PlaceHoldInFlight)
	require.NotNil(t, result.InFlightJobID)
	assert.Equal(t, running, *result.InFlightJobID)
	assert.Len(t, f.store.JobsFor(b.ID, job.TypePlaceHold), 1)

	resets := box.ofKind(shared.AudienceAdmin, shared.KindHoldWorkflowReset)
	require.Len(t, resets, 1)
	assert.Equal(t, "true", resets[0].Metadata["place_hold_in_flight"])
}

func TestHandleReschedule_RejectsTerminalBooking(t *testing.T) {
	f := newFixture(t)

	b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusCanceled).BuildDomain()
	f.store.PutBooking(b)

	result, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		NewStart:  b.StartDate.Add(72 * time.Hour),
	})

	assert.ErrorIs(t, err, commands.ErrInvalidReschedule)
	assert.False(t, result.Success)
}
