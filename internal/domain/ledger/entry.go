package ledger

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceGateway Source = "gateway"
	SourceManual  Source = "manual"
)

func (s Source) IsValid() bool {
	return s == SourceGateway || s == SourceManual
}

type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusCompleted         Status = "completed"
	StatusSucceeded         Status = "succeeded"
	StatusFailed            Status = "failed"
	StatusCanceled          Status = "canceled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusSucceeded, StatusFailed,
		StatusCanceled, StatusRefunded, StatusPartiallyRefunded:
		return true
	default:
		return false
	}
}

// IsCollected reports whether money in this status counts toward the balance.
func (s Status) IsCollected() bool {
	return s == StatusCompleted || s == StatusSucceeded
}

type EntryType string

const (
	TypeDeposit          EntryType = "deposit"
	TypePayment          EntryType = "payment"
	TypeRefund           EntryType = "refund"
	TypeAdditionalCharge EntryType = "additional_charge"
)

type Purpose string

const (
	PurposeVerification Purpose = "verification"
	PurposeSecurity     Purpose = "security"
	PurposeRental       Purpose = "rental"
	PurposeRelease      Purpose = "release"
)

// IsHold reports whether the purpose describes a card authorization rather than collected money.
func (p Purpose) IsHold() bool {
	return p == PurposeVerification || p == PurposeSecurity || p == PurposeRelease
}

// Entry is one row of the unified payment ledger (gateway and manual payments).
type Entry struct {
	ID                  uuid.UUID
	BookingID           uuid.UUID
	Source              Source
	AmountCents         int64
	AmountRefundedCents int64
	Status              Status
	Type                EntryType
	Purpose             *Purpose
	DeletedAt           *time.Time
	CreatedAt           time.Time
}

// Counts reports whether the entry contributes collected money to the balance.
func (e Entry) Counts() bool {
	if e.DeletedAt != nil || !e.Status.IsCollected() {
		return false
	}
	if e.Type == TypeDeposit || e.Type == TypeRefund {
		return false
	}
	if e.Purpose != nil && e.Purpose.IsHold() {
		return false
	}
	return true
}

func (e Entry) NetCents() int64 {
	return e.AmountCents - e.AmountRefundedCents
}

// CrossesCollectedBoundary reports whether moving from prev to next changes collected money.
func CrossesCollectedBoundary(prev, next Status) bool {
	return prev.IsCollected() != next.IsCollected()
}

// HoldRelease is the audit row appended when a live hold is released or canceled.
type HoldRelease struct {
	BookingID    uuid.UUID
	Reason       string
	IntentID     string
	OldStartDate *time.Time
	NewStartDate *time.Time
}

const ReasonBookingRescheduled = "booking_rescheduled"
