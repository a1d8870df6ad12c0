package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPeriod = errors.New("booking end must be after start")
	ErrNegativeMoney = errors.New("amount cannot be negative")
)

// Booking is the orchestrator's view of a rental booking. The booking
// subsystem owns the row; only status, hold intent and balance are written here.
type Booking struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	Status               Status
	TotalCents           int64
	BalanceCents         int64
	DepositCents         int64
	SecurityHoldIntentID *string
	GatewayCustomerID    *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (b *Booking) Validate() error {
	if !b.EndDate.After(b.StartDate) {
		return ErrInvalidPeriod
	}
	if b.TotalCents < 0 || b.DepositCents < 0 {
		return ErrNegativeMoney
	}
	return nil
}

func (b *Booking) HasLiveHold() bool {
	return b.SecurityHoldIntentID != nil && *b.SecurityHoldIntentID != ""
}

// Contact is what reminder delivery needs to reach the customer.
type Contact struct {
	CustomerID uuid.UUID
	Name       string
	Email      *string
}

func (c *Contact) HasEmail() bool {
	return c != nil && c.Email != nil && *c.Email != ""
}
