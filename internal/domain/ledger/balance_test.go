//go:build unit

package ledger_test

import (
	"testing"
	"time"

	"rental-orchestrator/internal/domain/ledger"

	"github.com/stretchr/testify/assert"
)

func purpose(p ledger.Purpose) *ledger.Purpose {
	return &p
}

func TestReconcile(t *testing.T) {
	deleted := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		total       int64
		entries     []ledger.Entry
		wantBalance int64
		wantCapped  bool
	}{
		{
			name:        "no payments",
			total:       30000,
			wantBalance: 30000,
		},
		{
			name:  "completed and succeeded payments are summed net of refunds",
			total: 30000,
			entries: []ledger.Entry{
				{Source: ledger.SourceManual, AmountCents: 10000, Status: ledger.StatusCompleted, Type: ledger.TypePayment},
				{Source: ledger.SourceGateway, AmountCents: 12000, AmountRefundedCents: 2000, Status: ledger.StatusSucceeded, Type: ledger.TypePayment, Purpose: purpose(ledger.PurposeRental)},
			},
			wantBalance: 10000,
		},
		{
			name:  "holds are not collected money",
			total: 30000,
			entries: []ledger.Entry{
				{Source: ledger.SourceGateway, AmountCents: 5000, Status: ledger.StatusSucceeded, Type: ledger.TypePayment, Purpose: purpose(ledger.PurposeVerification)},
				{Source: ledger.SourceGateway, AmountCents: 50000, Status: ledger.StatusSucceeded, Type: ledger.TypePayment, Purpose: purpose(ledger.PurposeSecurity)},
				{Source: ledger.SourceGateway, AmountCents: 0, Status: ledger.StatusCanceled, Type: ledger.TypePayment, Purpose: purpose(ledger.PurposeRelease)},
			},
			wantBalance: 30000,
		},
		{
			name:  "deposits refunds pending and deleted entries are excluded",
			total: 30000,
			entries: []ledger.Entry{
				{Source: ledger.SourceManual, AmountCents: 5000, Status: ledger.StatusCompleted, Type: ledger.TypeDeposit},
				{Source: ledger.SourceManual, AmountCents: 5000, Status: ledger.StatusCompleted, Type: ledger.TypeRefund},
				{Source: ledger.SourceManual, AmountCents: 5000, Status: ledger.StatusPending, Type: ledger.TypePayment},
				{Source: ledger.SourceManual, AmountCents: 5000, Status: ledger.StatusCompleted, Type: ledger.TypePayment, DeletedAt: &deleted},
			},
			wantBalance: 30000,
		},
		{
			name:  "overpayment floors at zero",
			total: 30000,
			entries: []ledger.Entry{
				{Source: ledger.SourceManual, AmountCents: 40000, Status: ledger.StatusCompleted, Type: ledger.TypeAdditionalCharge},
			},
			wantBalance: 0,
		},
		{
			name:  "net negative collection is capped at total",
			total: 30000,
			entries: []ledger.Entry{
				{Source: ledger.SourceGateway, AmountCents: 1000, AmountRefundedCents: 3000, Status: ledger.StatusSucceeded, Type: ledger.TypePayment, Purpose: purpose(ledger.PurposeRental)},
			},
			wantBalance: 30000,
			wantCapped:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.Reconcile(tc.total, tc.entries)

			assert.Equal(t, tc.wantBalance, got.BalanceCents)
			assert.Equal(t, tc.wantCapped, got.Capped)
			assert.GreaterOrEqual(t, got.BalanceCents, int64(0))
			assert.LessOrEqual(t, got.BalanceCents, tc.total)
		})
	}
}

func TestCrossesCollectedBoundary(t *testing.T) {
	assert.True(t, ledger.CrossesCollectedBoundary(ledger.StatusPending, ledger.StatusCompleted))
	assert.True(t, ledger.CrossesCollectedBoundary(ledger.StatusSucceeded, ledger.StatusRefunded))
	assert.False(t, ledger.CrossesCollectedBoundary(ledger.StatusCompleted, ledger.StatusSucceeded))
	assert.False(t, ledger.CrossesCollectedBoundary(ledger.StatusPending, ledger.StatusFailed))
}
