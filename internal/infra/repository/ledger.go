package repository

import (
	"context"
	"encoding/json"
	"time"

	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/infra"
	"rental-orchestrator/internal/infra/db"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type LedgerRepository struct {
	db db.DBTX
}

func NewLedgerRepository(db db.DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ListByBooking reads the unified gateway and manual ledger, soft-deleted rows included.
func (r *LedgerRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]ledger.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, booking_id, source, amount_cents, amount_refunded_cents, status,
		       payment_type, purpose, deleted_at, created_at
		FROM payment_ledger
		WHERE booking_id = $1
		ORDER BY created_at ASC`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list ledger entries", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan ledger entries", err)
	}
	return entries, nil
}

type holdReleaseMetadata struct {
	Reason       string     `json:"reason"`
	IntentID     string     `json:"intent_id"`
	OldStartDate *time.Time `json:"old_start_date,omitempty"`
	NewStartDate *time.Time `json:"new_start_date,omitempty"`
}

// AppendHoldRelease records a zero-amount canceled gateway row so the
// release is auditable without touching the balance.
func (r *LedgerRepository) AppendHoldRelease(ctx context.Context, rec ledger.HoldRelease) error {
	metadata, err := json.Marshal(holdReleaseMetadata{
		Reason:       rec.Reason,
		IntentID:     rec.IntentID,
		OldStartDate: rec.OldStartDate,
		NewStartDate: rec.NewStartDate,
	})
	if err != nil {
		return errs.Wrap(err, "encode hold release metadata")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO payments (id, booking_id, amount_cents, amount_refunded_cents, status,
			payment_type, purpose, intent_id, metadata)
		VALUES ($1, $2, 0, 0, $3, $4, $5, $6, $7)`,
		uuid.New(), rec.BookingID, string(ledger.StatusCanceled), string(ledger.TypeDeposit),
		string(ledger.PurposeRelease), rec.IntentID, metadata)
	if err != nil {
		return infra.WrapRepoErr("failed to append hold release", err)
	}
	return nil
}

var paymentTables = map[ledger.Source]string{
	ledger.SourceGateway: "payments",
	ledger.SourceManual:  "manual_payments",
}

// UpdatePaymentStatus sets a payment's status and returns its booking and previous status.
func (r *LedgerRepository) UpdatePaymentStatus(ctx context.Context, source ledger.Source, paymentID uuid.UUID, status ledger.Status) (uuid.UUID, ledger.Status, error) {
	table, ok := paymentTables[source]
	if !ok {
		return uuid.Nil, "", errs.Mark(errs.Newf("unknown payment source %q", source), errs.ErrDomainValidation)
	}

	var (
		bookingID uuid.UUID
		prev      string
	)
	err := r.db.QueryRow(ctx, `
		WITH prev AS (
			SELECT id, booking_id, status FROM `+table+` WHERE id = $1 AND deleted_at IS NULL FOR UPDATE
		)
		UPDATE `+table+` t
		SET status = $2
		FROM prev
		WHERE t.id = prev.id
		RETURNING prev.booking_id, prev.status`, paymentID, string(status),
	).Scan(&bookingID, &prev)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return uuid.Nil, "", infra.WrapRepoErr("payment not found", errs.Mark(err, errs.ErrPaymentNotFound), infra.KindNotFound)
		}
		return uuid.Nil, "", infra.WrapRepoErr("failed to update payment status", err)
	}
	return bookingID, ledger.Status(prev), nil
}

func scanEntry(row pgx.CollectableRow) (ledger.Entry, error) {
	var (
		e         ledger.Entry
		source    string
		status    string
		entryType string
		purpose   pgtype.Text
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(&e.ID, &e.BookingID, &source, &e.AmountCents, &e.AmountRefundedCents,
		&status, &entryType, &purpose, &deletedAt, &e.CreatedAt)
	if err != nil {
		return e, err
	}
	e.Source = ledger.Source(source)
	e.Status = ledger.Status(status)
	e.Type = ledger.EntryType(entryType)
	e.Purpose = pgconv.Enum[ledger.Purpose](purpose)
	e.DeletedAt = pgconv.TimeUTC(deletedAt)
	return e, nil
}
