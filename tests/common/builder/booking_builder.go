//go:build unit || e2e

package builder

import (
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/ledger"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	Status               booking.Status
	TotalCents           int64
	BalanceCents         int64
	DepositCents         int64
	SecurityHoldIntentID *string
	GatewayCustomerID    *string
}

// NewBookingBuilder returns a pending three-day booking picking up a week after now.
func NewBookingBuilder(now time.Time) *BookingBuilder {
	start := now.Add(7 * 24 * time.Hour)
	gatewayCustomer := "cust_test_default"
	return &BookingBuilder{
		ID:                uuid.New(),
		CustomerID:        uuid.New(),
		StartDate:         start,
		EndDate:           start.Add(72 * time.Hour),
		Status:            booking.StatusPending,
		TotalCents:        120000,
		BalanceCents:      120000,
		DepositCents:      20000,
		GatewayCustomerID: &gatewayCustomer,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithPickupIn(now time.Time, d time.Duration) *BookingBuilder {
	length := b.EndDate.Sub(b.StartDate)
	b.StartDate = now.Add(d)
	b.EndDate = b.StartDate.Add(length)
	return b
}

func (b *BookingBuilder) WithLiveHold(intentID string) *BookingBuilder {
	b.SecurityHoldIntentID = &intentID
	return b
}

func (b *BookingBuilder) BuildDomain() *booking.Booking {
	return &booking.Booking{
		ID:                   b.ID,
		CustomerID:           b.CustomerID,
		StartDate:            b.StartDate,
		EndDate:              b.EndDate,
		Status:               b.Status,
		TotalCents:           b.TotalCents,
		BalanceCents:         b.BalanceCents,
		DepositCents:         b.DepositCents,
		SecurityHoldIntentID: b.SecurityHoldIntentID,
		GatewayCustomerID:    b.GatewayCustomerID,
	}
}

// Payment returns a collected rental payment of amount cents for the booking.
func (b *BookingBuilder) Payment(source ledger.Source, amount int64) ledger.Entry {
	e := ledger.Entry{
		ID:          uuid.New(),
		BookingID:   b.ID,
		Source:      source,
		AmountCents: amount,
		Status:      ledger.StatusCompleted,
		Type:        ledger.TypePayment,
	}
	if source == ledger.SourceGateway {
		purpose := ledger.PurposeRental
		e.Status = ledger.StatusSucceeded
		e.Purpose = &purpose
	}
	return e
}
