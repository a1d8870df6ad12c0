package api

import (
	"context"
	"log/slog"
	"net/http"

	resdto "rental-orchestrator/internal/handler/dto/response"
	"rental-orchestrator/internal/handler/httperr"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobHandler struct {
	cmds   commands.JobCommands
	q      queries.JobQueries
	logger *slog.Logger
}

func NewJobHandler(cmds commands.JobCommands, q queries.JobQueries, logger *slog.Logger) *JobHandler {
	return &JobHandler{cmds: cmds, q: q, logger: logger}
}

// @Summary Dispatch due jobs
// @Description Claims and runs every scheduled job whose run time has passed
// @Tags jobs
// @Produce json
// @Security ServiceToken
// @Success 200 {object} resdto.DispatchResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} resdto.DispatchResponse
// @Router /internal/jobs/dispatch [post]
func (h *JobHandler) Dispatch(c *gin.Context) {
	// a trigger that disconnects must not strand claimed jobs in processing
	ctx := context.WithoutCancel(c.Request.Context())

	summary, err := h.cmds.ProcessDueJobs(ctx)
	if err != nil {
		h.logger.Error("job dispatch failed", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, resdto.DispatchResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resdto.FromDispatchSummary(summary))
}

// @Summary List booking jobs
// @Description List every scheduled job recorded for a booking
// @Tags jobs
// @Produce json
// @Security ServiceToken
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.JobResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /internal/bookings/{id}/jobs [get]
func (h *JobHandler) ListByBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	views, err := h.q.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load jobs", nil)
		}
		return
	}

	res, err := resdto.FromJobViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to map jobs", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Job status counts
// @Description Count scheduled jobs per status
// @Tags jobs
// @Produce json
// @Security ServiceToken
// @Success 200 {object} resdto.JobStatusCountResponse
// @Router /internal/jobs/stats [get]
func (h *JobHandler) StatusCounts(c *gin.Context) {
	counts, err := h.q.StatusCounts(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to count jobs", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStatusCounts(counts))
}
