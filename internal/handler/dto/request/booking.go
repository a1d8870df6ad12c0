package request

import (
	"time"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/usecase/commands"

	"github.com/google/uuid"
)

type RescheduleRequest struct {
	OldStartDate time.Time `json:"old_start_date" binding:"required"`
	NewStartDate time.Time `json:"new_start_date" binding:"required"`
}

func (r *RescheduleRequest) ToCommand(bookingID uuid.UUID) commands.RescheduleRequest {
	return commands.RescheduleRequest{
		BookingID: bookingID,
		OldStart:  r.OldStartDate,
		NewStart:  r.NewStartDate,
	}
}

type PaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r *PaymentStatusRequest) ToCommand(source ledger.Source, paymentID uuid.UUID) commands.PaymentStatusRequest {
	return commands.PaymentStatusRequest{
		Source:    source,
		PaymentID: paymentID,
		Status:    ledger.Status(r.Status),
	}
}
