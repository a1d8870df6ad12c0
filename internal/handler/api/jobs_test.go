//go:build unit

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"rental-orchestrator/internal/handler/api"
	resdto "rental-orchestrator/internal/handler/dto/response"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/queries"
	"rental-orchestrator/tests/common/builder"
	"rental-orchestrator/tests/common/httptest"
	commandsmock "rental-orchestrator/tests/mock/commands"
	queriesmock "rental-orchestrator/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type JobHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockJobCommands
	mockQueries  *queriesmock.MockJobQueries
	handler      *api.JobHandler
}

func (s *JobHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockJobCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockJobQueries(s.mockCtrl)
	s.handler = api.NewJobHandler(s.mockCommands, s.mockQueries, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.router.POST("/internal/jobs/dispatch", s.handler.Dispatch)
	s.router.GET("/internal/jobs/stats", s.handler.StatusCounts)
	s.router.GET("/internal/bookings/:id/jobs", s.handler.ListByBooking)
}

func (s *JobHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestJobHandlerSuite(t *testing.T) {
	suite.Run(t, new(JobHandlerTestSuite))
}

// ================================================================================
// TestDispatch
// ================================================================================

func (s *JobHandlerTestSuite) TestDispatch() {
	url := "/internal/jobs/dispatch"

	s.Run("success: returns the batch summary", func() {
		s.mockCommands.EXPECT().ProcessDueJobs(gomock.Any()).
			Return(&commands.DispatchSummary{Processed: 5, Successes: 4, Failures: 1}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var body resdto.DispatchResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(resdto.DispatchResponse{Success: true, Processed: 5, Successes: 4, Failures: 1}, body)
	})

	s.Run("success: dispatch context survives caller cancellation", func() {
		s.mockCommands.EXPECT().ProcessDueJobs(gomock.Any()).
			DoAndReturn(func(ctx context.Context) (*commands.DispatchSummary, error) {
				s.Nil(ctx.Done(), "dispatch must not inherit request cancellation")
				return &commands.DispatchSummary{}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: store failure reports success=false", func() {
		s.mockCommands.EXPECT().ProcessDueJobs(gomock.Any()).
			Return(nil, errors.New("fetch due jobs: connection refused")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		s.Equal(http.StatusInternalServerError, rec.Code)
		var body resdto.DispatchResponse
		s.Require().NoError(decodeJSON(rec.Body.Bytes(), &body))
		s.False(body.Success)
		s.Contains(body.Error, "connection refused")
	})
}

// ================================================================================
// TestListByBooking
// ================================================================================

func (s *JobHandlerTestSuite) TestListByBooking() {
	bookingID := uuid.New()
	runAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	view := builder.NewJobBuilder(bookingID, runAt).BuildView()
	note := "resolved"
	view.ResultNote = &note

	testCases := []struct {
		name       string
		path       string
		setupMock  func()
		expectCode int
		expectMsg  string
	}{
		{
			name: "success: maps job views",
			path: "/internal/bookings/" + bookingID.String() + "/jobs",
			setupMock: func() {
				s.mockQueries.EXPECT().ListByBooking(gomock.Any(), bookingID).
					Return([]*queries.JobView{view}, nil).Times(1)
			},
			expectCode: http.StatusOK,
		},
		{
			name:       "error: invalid booking id",
			path:       "/internal/bookings/not-a-uuid/jobs",
			setupMock:  func() {},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid booking id",
		},
		{
			name: "error: booking not found",
			path: "/internal/bookings/" + bookingID.String() + "/jobs",
			setupMock: func() {
				s.mockQueries.EXPECT().ListByBooking(gomock.Any(), bookingID).
					Return(nil, errs.Wrap(errs.ErrBookingNotFound, "list jobs")).Times(1)
			},
			expectCode: http.StatusNotFound,
			expectMsg:  "Booking not found",
		},
		{
			name: "error: read store failure",
			path: "/internal/bookings/" + bookingID.String() + "/jobs",
			setupMock: func() {
				s.mockQueries.EXPECT().ListByBooking(gomock.Any(), bookingID).
					Return(nil, errors.New("boom")).Times(1)
			},
			expectCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			tc.setupMock()
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, tc.path, nil, "")

			if tc.expectCode != http.StatusOK {
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
				return
			}
			var body []resdto.JobResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Require().Len(body, 1)
			s.Equal(view.ID.String(), body[0].ID)
			s.Equal(bookingID.String(), body[0].BookingID)
			s.Equal("place_hold", body[0].JobType)
			s.True(runAt.Equal(body[0].RunAt))
			s.Require().NotNil(body[0].ResultNote)
			s.Equal("resolved", *body[0].ResultNote)
		})
	}
}

func (s *JobHandlerTestSuite) TestStatusCounts() {
	s.mockQueries.EXPECT().StatusCounts(gomock.Any()).
		Return([]queries.JobStatusCount{{Status: "pending", Count: 3}, {Status: "failed", Count: 1}}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/internal/jobs/stats", nil, "")

	var body resdto.JobStatusCountResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal(int64(4), body.Total)
	s.Equal(map[string]int64{"pending": 3, "failed": 1}, body.Counts)
}
