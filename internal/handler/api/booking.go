package api

import (
	"net/http"

	reqdto "rental-orchestrator/internal/handler/dto/request"
	resdto "rental-orchestrator/internal/handler/dto/response"
	"rental-orchestrator/internal/handler/httperr"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	holds      commands.HoldCommands
	reschedule commands.RescheduleCommands
}

func NewBookingHandler(holds commands.HoldCommands, reschedule commands.RescheduleCommands) *BookingHandler {
	return &BookingHandler{holds: holds, reschedule: reschedule}
}

// @Summary Booking created
// @Description Starts the hold workflow for a newly created booking
// @Tags bookings
// @Produce json
// @Security ServiceToken
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.LifecycleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /internal/bookings/{id}/created [post]
func (h *BookingHandler) Created(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	result, err := h.holds.OnBookingCreated(c.Request.Context(), bookingID)
	if err != nil {
		abortLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLifecycleResult(result))
}

// @Summary Payment method updated
// @Description Re-enters the hold workflow after the customer replaced a failed card
// @Tags bookings
// @Produce json
// @Security ServiceToken
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.LifecycleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /internal/bookings/{id}/payment-method-updated [post]
func (h *BookingHandler) PaymentMethodUpdated(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	result, err := h.holds.OnPaymentMethodUpdated(c.Request.Context(), bookingID)
	if err != nil {
		abortLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLifecycleResult(result))
}

// @Summary Reschedule booking
// @Description Re-anchors the hold workflow to a new start date
// @Tags bookings
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param id path string true "Booking ID"
// @Param request body reqdto.RescheduleRequest true "Reschedule request"
// @Success 200 {object} resdto.RescheduleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} resdto.RescheduleResponse
// @Router /internal/bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var req reqdto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.reschedule.HandleReschedule(c.Request.Context(), req.ToCommand(bookingID))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errs.Is(err, commands.ErrInvalidReschedule):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reschedule", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Reschedule failed", nil)
		}
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadGateway, resdto.FromRescheduleResult(result))
		return
	}
	c.JSON(http.StatusOK, resdto.FromRescheduleResult(result))
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func abortLifecycleError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.Is(err, commands.ErrHoldReentryNotAllowed):
		httperr.AbortWithError(c, http.StatusConflict, err, "Hold workflow cannot start from the current booking state", nil)
	case errs.Is(err, shared.ErrGatewayUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Payment gateway unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Hold workflow failed", nil)
	}
}
