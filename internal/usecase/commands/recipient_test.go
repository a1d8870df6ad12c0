//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/shared"
	"rental-orchestrator/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCustomerNotificationsUseContactAddress(t *testing.T) {
	email := "robin@example.com"
	blank := ""

	testCases := []struct {
		name          string
		contact       *booking.Contact
		wantChannel   shared.Channel
		wantRecipient func(b *booking.Booking) string
	}{
		{
			name:          "contact email is used",
			contact:       &booking.Contact{Name: "Robin", Email: &email},
			wantChannel:   shared.ChannelEmail,
			wantRecipient: func(*booking.Booking) string { return email },
		},
		{
			name:          "blank email falls back to in-app",
			contact:       &booking.Contact{Name: "Robin", Email: &blank},
			wantChannel:   shared.ChannelInApp,
			wantRecipient: func(b *booking.Booking) string { return b.CustomerID.String() },
		},
		{
			name:          "missing contact falls back to in-app",
			wantChannel:   shared.ChannelInApp,
			wantRecipient: func(b *booking.Booking) string { return b.CustomerID.String() },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			box := f.collectNotifications()

			b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK).BuildDomain()
			f.store.PutBooking(b)
			if tc.contact != nil {
				c := *tc.contact
				c.CustomerID = b.CustomerID
				f.store.PutContact(b.ID, c)
			}
			f.store.PutJob(placeHoldJob(b, baseTime))
			f.gateway.EXPECT().
				PlaceHold(gomock.Any(), b.ID, job.PurposeSecurity, int64(50000)).
				Return(shared.HoldResult{}, errs.Wrap(shared.ErrHoldDeclined, "card_declined"))

			_, err := f.dispatcher().ProcessDueJobs(context.Background())
			require.NoError(t, err)

			sent := box.ofKind(shared.AudienceCustomer, shared.KindSecurityHoldFailed)
			require.Len(t, sent, 1)
			assert.Equal(t, tc.wantChannel, sent[0].Channel)
			assert.Equal(t, tc.wantRecipient(b), sent[0].Recipient)

			admin := box.ofKind(shared.AudienceAdmin, shared.KindSecurityHoldFailed)
			require.Len(t, admin, 1)
			assert.Equal(t, shared.ChannelInApp, admin[0].Channel)
			assert.Empty(t, admin[0].Recipient)
		})
	}
}

func TestRescheduleNotifiesCustomerAtContactAddress(t *testing.T) {
	f := newFixture(t)
	box := f.collectNotifications()
	email := "sam@example.com"

	b := builder.NewBookingBuilder(baseTime).WithStatus(booking.StatusVerifyHoldOK).BuildDomain()
	f.store.PutBooking(b)
	f.store.PutContact(b.ID, booking.Contact{CustomerID: b.CustomerID, Name: "Sam", Email: &email})

	_, err := f.reschedule().HandleReschedule(context.Background(), commands.RescheduleRequest{
		BookingID: b.ID,
		OldStart:  b.StartDate,
		NewStart:  b.StartDate.Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)

	sent := box.ofKind(shared.AudienceCustomer, shared.KindBookingRescheduled)
	require.Len(t, sent, 1)
	assert.Equal(t, shared.ChannelEmail, sent[0].Channel)
	assert.Equal(t, email, sent[0].Recipient)
}
