package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=notifier.go -destination=../../../tests/mock/shared/notifier_mock.go -package=sharedmock

type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceAdmin    Audience = "admin"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification kinds understood by downstream renderers.
const (
	KindVerificationHoldFailed = "verification_hold_failed"
	KindSecurityHoldFailed     = "security_hold_failed"
	KindAuthenticationRequired = "authentication_required"
	KindReminder               = "reminder"
	KindInsuranceExpired       = "insurance_expired"
	KindInsuranceExpiringSoon  = "insurance_expiring_soon"
	KindBookingAutoCanceled    = "booking_auto_canceled"
	KindBookingRescheduled     = "booking_rescheduled"
	KindHoldWorkflowReset      = "hold_workflow_reset"
	KindJobFailed              = "job_failed"
)

type Notification struct {
	Audience  Audience
	Channel   Channel
	Recipient string
	BookingID uuid.UUID
	Kind      string
	Title     string
	Message   string
	Priority  Priority
	ActionURL string
	Deadline  *time.Time
	Metadata  map[string]string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
