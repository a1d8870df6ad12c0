package repository

import (
	"context"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/infra"
	"rental-orchestrator/internal/infra/db"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(db db.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var (
		b               booking.Booking
		status          string
		intentID        pgtype.Text
		gatewayCustomer pgtype.Text
	)
	err := r.db.QueryRow(ctx, `
		SELECT b.id, b.customer_id, b.start_date, b.end_date, b.status, b.total_cents,
		       b.balance_cents, b.deposit_cents, b.security_hold_intent_id, c.gateway_customer_id,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`, id,
	).Scan(&b.ID, &b.CustomerID, &b.StartDate, &b.EndDate, &status, &b.TotalCents,
		&b.BalanceCents, &b.DepositCents, &intentID, &gatewayCustomer, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", errs.Mark(err, errs.ErrBookingNotFound), infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	b.Status = booking.Status(status)
	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()
	b.SecurityHoldIntentID = pgconv.TextPtr(intentID)
	b.GatewayCustomerID = pgconv.TextPtr(gatewayCustomer)
	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	return r.exec(ctx, "failed to update booking status", id, `
		UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

// UpdateHold writes status and intent together; a nil intent clears the live hold.
func (r *BookingRepository) UpdateHold(ctx context.Context, id uuid.UUID, status booking.Status, intentID *string) error {
	return r.exec(ctx, "failed to update booking hold", id, `
		UPDATE bookings
		SET status = $2, security_hold_intent_id = $3, updated_at = now()
		WHERE id = $1`, id, string(status), intentID)
}

func (r *BookingRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balanceCents int64) error {
	return r.exec(ctx, "failed to update booking balance", id, `
		UPDATE bookings SET balance_cents = $2, updated_at = now() WHERE id = $1`, id, balanceCents)
}

// FindContact returns nil when the booking has no customer record.
func (r *BookingRepository) FindContact(ctx context.Context, bookingID uuid.UUID) (*booking.Contact, error) {
	var (
		c     booking.Contact
		email pgtype.Text
	)
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.name, c.email
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`, bookingID,
	).Scan(&c.CustomerID, &c.Name, &email)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find customer contact", err)
	}
	c.Email = pgconv.TextPtr(email)
	return &c, nil
}

func (r *BookingRepository) ListInsuranceDocuments(ctx context.Context, customerID uuid.UUID) ([]booking.InsuranceDocument, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, status, expires_at
		FROM insurance_documents
		WHERE customer_id = $1
		ORDER BY expires_at ASC`, customerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list insurance documents", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.InsuranceDocument, error) {
		var (
			d      booking.InsuranceDocument
			status string
		)
		if err := row.Scan(&d.ID, &d.CustomerID, &status, &d.ExpiresAt); err != nil {
			return d, err
		}
		d.Status = booking.DocumentStatus(status)
		return d, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan insurance documents", err)
	}
	return docs, nil
}

func (r *BookingRepository) exec(ctx context.Context, msg string, id uuid.UUID, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return infra.WrapRepoErr(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(msg, errs.Wrapf(errs.ErrBookingNotFound, "booking %s", id), infra.KindNotFound)
	}
	return nil
}
