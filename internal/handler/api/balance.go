package api

import (
	"net/http"

	"rental-orchestrator/internal/domain/ledger"
	reqdto "rental-orchestrator/internal/handler/dto/request"
	resdto "rental-orchestrator/internal/handler/dto/response"
	"rental-orchestrator/internal/handler/httperr"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BalanceHandler struct {
	cmds commands.BalanceCommands
}

func NewBalanceHandler(cmds commands.BalanceCommands) *BalanceHandler {
	return &BalanceHandler{cmds: cmds}
}

// @Summary Recalculate balance
// @Description Recomputes the outstanding balance of a booking from its ledger
// @Tags balance
// @Produce json
// @Security ServiceToken
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BalanceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /internal/bookings/{id}/balance/recalculate [post]
func (h *BalanceHandler) Recalculate(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	balance, err := h.cmds.Recalculate(c.Request.Context(), bookingID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Balance unknown", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.BalanceResponse{BookingID: bookingID.String(), BalanceCents: balance})
}

// @Summary Update payment status
// @Description Records a payment status change and recalculates the balance when the payment crosses the completed boundary
// @Tags balance
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param source path string true "Payment source (gateway or manual)"
// @Param id path string true "Payment ID"
// @Param request body reqdto.PaymentStatusRequest true "New status"
// @Success 200 {object} resdto.PaymentStatusResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /internal/payments/{source}/{id}/status [put]
func (h *BalanceHandler) UpdatePaymentStatus(c *gin.Context) {
	source := ledger.Source(c.Param("source"))
	if !source.IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.ErrDomainValidation, "Invalid payment source", nil)
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment id", nil)
		return
	}
	var req reqdto.PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.ApplyPaymentStatus(c.Request.Context(), req.ToCommand(source, paymentID))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment status", nil)
		case errs.Is(err, errs.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Payment status update failed", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentStatusResult(result))
}
