package response

import (
	"rental-orchestrator/internal/usecase/commands"
)

type LifecycleResponse struct {
	Outcome        string  `json:"outcome"`
	Status         string  `json:"status"`
	IntentID       *string `json:"intent_id,omitempty"`
	PlaceHoldJobID *string `json:"place_hold_job_id,omitempty"`
	ClientSecret   string  `json:"client_secret,omitempty"`
	ReturnURL      string  `json:"return_url,omitempty"`
	BalanceCents   *int64  `json:"balance_cents,omitempty"`
}

func FromLifecycleResult(r *commands.LifecycleResult) *LifecycleResponse {
	resp := &LifecycleResponse{
		Outcome:      string(r.Outcome),
		Status:       string(r.Status),
		IntentID:     r.IntentID,
		ClientSecret: r.ContinuationSecret,
		ReturnURL:    r.ReturnURL,
		BalanceCents: r.BalanceCents,
	}
	if r.PlaceHoldJobID != nil {
		id := r.PlaceHoldJobID.String()
		resp.PlaceHoldJobID = &id
	}
	return resp
}

type RescheduleResponse struct {
	Success               bool    `json:"success"`
	Error                 string  `json:"error,omitempty"`
	ImmediateHoldRequired bool    `json:"immediate_hold_required"`
	NewJobID              *string `json:"new_job_id"`
	HoldReleased          bool    `json:"hold_released"`
	CanceledJobs          int64   `json:"canceled_jobs"`
	PlaceHoldInFlight     bool    `json:"place_hold_in_flight"`
	InFlightJobID         *string `json:"in_flight_job_id,omitempty"`
}

func FromRescheduleResult(r *commands.RescheduleResult) *RescheduleResponse {
	resp := &RescheduleResponse{
		Success:               r.Success,
		Error:                 r.Error,
		ImmediateHoldRequired: r.ImmediateHoldRequired,
		HoldReleased:          r.HoldReleased,
		CanceledJobs:          r.CanceledJobs,
		PlaceHoldInFlight:     r.PlaceHoldInFlight,
	}
	if r.NewJobID != nil {
		id := r.NewJobID.String()
		resp.NewJobID = &id
	}
	if r.InFlightJobID != nil {
		id := r.InFlightJobID.String()
		resp.InFlightJobID = &id
	}
	return resp
}

type BalanceResponse struct {
	BookingID    string `json:"booking_id"`
	BalanceCents int64  `json:"balance_cents"`
}

type PaymentStatusResponse struct {
	BookingID      string `json:"booking_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	Recalculated   bool   `json:"recalculated"`
	BalanceCents   *int64 `json:"balance_cents,omitempty"`
}

func FromPaymentStatusResult(r *commands.PaymentStatusResult) *PaymentStatusResponse {
	return &PaymentStatusResponse{
		BookingID:      r.BookingID.String(),
		PreviousStatus: string(r.PreviousStatus),
		Status:         string(r.Status),
		Recalculated:   r.Recalculated,
		BalanceCents:   r.BalanceCents,
	}
}
