//go:build unit

package booking_test

import (
	"testing"
	"time"

	"rental-orchestrator/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAssessInsurance(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	horizon := 30 * 24 * time.Hour

	doc := func(status booking.DocumentStatus, expires time.Time) booking.InsuranceDocument {
		return booking.InsuranceDocument{ID: uuid.New(), Status: status, ExpiresAt: expires}
	}

	testCases := []struct {
		name         string
		docs         []booking.InsuranceDocument
		wantExpired  int
		wantSoonWarn bool
	}{
		{
			name: "no documents",
		},
		{
			name:        "approved document already expired",
			docs:        []booking.InsuranceDocument{doc(booking.DocumentApproved, now.Add(-time.Hour))},
			wantExpired: 1,
		},
		{
			name:        "expiry exactly now counts as expired",
			docs:        []booking.InsuranceDocument{doc(booking.DocumentApproved, now)},
			wantExpired: 1,
		},
		{
			name:         "valid document expiring inside horizon",
			docs:         []booking.InsuranceDocument{doc(booking.DocumentApproved, now.Add(10*24*time.Hour))},
			wantSoonWarn: true,
		},
		{
			name: "valid document expiring after horizon",
			docs: []booking.InsuranceDocument{doc(booking.DocumentApproved, now.Add(90*24*time.Hour))},
		},
		{
			name: "rejected and pending documents are ignored",
			docs: []booking.InsuranceDocument{
				doc(booking.DocumentRejected, now.Add(-time.Hour)),
				doc(booking.DocumentPending, now.Add(24*time.Hour)),
			},
		},
		{
			name: "expired and expiring soon together",
			docs: []booking.InsuranceDocument{
				doc(booking.DocumentApproved, now.Add(-48*time.Hour)),
				doc(booking.DocumentApproved, now.Add(5*24*time.Hour)),
			},
			wantExpired:  1,
			wantSoonWarn: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := booking.AssessInsurance(tc.docs, now, horizon)

			assert.Len(t, got.Expired, tc.wantExpired)
			assert.Equal(t, tc.wantExpired > 0, got.HasExpired())
			assert.Equal(t, tc.wantSoonWarn, got.ShouldWarnExpiringSoon())
		})
	}
}
