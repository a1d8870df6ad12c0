//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/ledger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Seeder is satisfied by a pool, a single connection or an open transaction,
// so fixtures can be written inside a test's own unit of work.
type Seeder interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateCustomer inserts a customer with an optional gateway customer reference.
func CreateCustomer(t *testing.T, db Seeder, email string, gatewayCustomerID *string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	var emailArg *string
	if email != "" {
		emailArg = &email
	}
	_, err := db.Exec(context.Background(),
		"INSERT INTO customers (id, name, email, gateway_customer_id) VALUES ($1, $2, $3, $4)",
		id, "Test Customer", emailArg, gatewayCustomerID)
	require.NoError(t, err)
	return id
}

// CreateBooking persists b, creating its customer first so the FK holds.
func CreateBooking(t *testing.T, db Seeder, b *booking.Booking, email string) {
	t.Helper()

	b.CustomerID = CreateCustomer(t, db, email, b.GatewayCustomerID)
	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (id, customer_id, start_date, end_date, status, total_cents,
		                      balance_cents, deposit_cents, security_hold_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.CustomerID, b.StartDate, b.EndDate, string(b.Status), b.TotalCents,
		b.BalanceCents, b.DepositCents, b.SecurityHoldIntentID)
	require.NoError(t, err)
}

// CreatePayment inserts e into the table backing its source.
func CreatePayment(t *testing.T, db Seeder, e ledger.Entry) {
	t.Helper()

	ctx := context.Background()
	var err error
	switch e.Source {
	case ledger.SourceManual:
		_, err = db.Exec(ctx, `
			INSERT INTO manual_payments (id, booking_id, amount_cents, amount_refunded_cents, status, payment_type)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.BookingID, e.AmountCents, e.AmountRefundedCents, string(e.Status), string(e.Type))
	default:
		var purpose *string
		if e.Purpose != nil {
			p := string(*e.Purpose)
			purpose = &p
		}
		_, err = db.Exec(ctx, `
			INSERT INTO payments (id, booking_id, amount_cents, amount_refunded_cents, status, payment_type, purpose)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.BookingID, e.AmountCents, e.AmountRefundedCents, string(e.Status), string(e.Type), purpose)
	}
	require.NoError(t, err)
}

// BookingState reads back the mutable columns of a booking.
func BookingState(t *testing.T, db Seeder, id uuid.UUID) (status string, balance int64, intentID *string) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT status, balance_cents, security_hold_intent_id FROM bookings WHERE id = $1", id).
		Scan(&status, &balance, &intentID)
	require.NoError(t, err)
	return status, balance, intentID
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
