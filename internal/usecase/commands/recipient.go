package commands

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/usecase/shared"
)

// addressCustomer points a customer email at the booking contact's address.
// Without a usable address the message goes to the customer's in-app inbox,
// keyed by customer id. Other notifications pass through unchanged.
func addressCustomer(ctx context.Context, bookings shared.BookingStore, logger *slog.Logger, n shared.Notification) shared.Notification {
	if n.Audience != shared.AudienceCustomer || n.Channel != shared.ChannelEmail {
		return n
	}

	contact, err := bookings.FindContact(ctx, n.BookingID)
	if err != nil {
		logger.WarnContext(ctx, "contact lookup failed, using in-app delivery",
			"booking_id", n.BookingID, "kind", n.Kind, "error", err)
	}
	if err == nil && contact.HasEmail() {
		n.Recipient = *contact.Email
		return n
	}

	n.Channel = shared.ChannelInApp
	if contact != nil {
		n.Recipient = contact.CustomerID.String()
	}
	return n
}
