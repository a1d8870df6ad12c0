//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/queries"
	queriesmock "rental-orchestrator/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestJobQueries_ListByBooking(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()
	runAt := time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC)
	errDB := errors.New("database connection lost")

	testCases := []struct {
		name      string
		setupMock func(*queriesmock.MockJobReadStore)
		wantErr   error
		wantLen   int
	}{
		{
			name: "success: jobs returned in order",
			setupMock: func(m *queriesmock.MockJobReadStore) {
				m.EXPECT().BookingExists(ctx, bookingID).Return(true, nil)
				m.EXPECT().FindByBooking(ctx, bookingID).Return([]*queries.JobView{
					{ID: uuid.New(), BookingID: bookingID, JobType: "place_hold", Status: "pending", RunAt: runAt},
					{ID: uuid.New(), BookingID: bookingID, JobType: "release_hold", Status: "pending", RunAt: runAt.Add(96 * time.Hour)},
				}, nil)
			},
			wantLen: 2,
		},
		{
			name: "success: booking without jobs yields empty list",
			setupMock: func(m *queriesmock.MockJobReadStore) {
				m.EXPECT().BookingExists(ctx, bookingID).Return(true, nil)
				m.EXPECT().FindByBooking(ctx, bookingID).Return(nil, nil)
			},
			wantLen: 0,
		},
		{
			name: "error: booking not found",
			setupMock: func(m *queriesmock.MockJobReadStore) {
				m.EXPECT().BookingExists(ctx, bookingID).Return(false, nil)
			},
			wantErr: errs.ErrBookingNotFound,
		},
		{
			name: "error: database failure",
			setupMock: func(m *queriesmock.MockJobReadStore) {
				m.EXPECT().BookingExists(ctx, bookingID).Return(true, nil)
				m.EXPECT().FindByBooking(ctx, bookingID).Return(nil, errDB)
			},
			wantErr: errDB,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := queriesmock.NewMockJobReadStore(ctrl)
			tc.setupMock(repo)

			views, err := queries.NewJobQueries(repo).ListByBooking(ctx, bookingID)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, views)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, views)
			assert.Len(t, views, tc.wantLen)
		})
	}
}

func TestJobQueries_StatusCounts(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := queriesmock.NewMockJobReadStore(ctrl)

	want := []queries.JobStatusCount{{Status: "pending", Count: 4}, {Status: "failed", Count: 1}}
	repo.EXPECT().CountByStatus(ctx).Return(want, nil)

	got, err := queries.NewJobQueries(repo).StatusCounts(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
