package hold

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ReturnLink builds the URL a customer is sent through to finish an
// authentication challenge and land back on the booking management page.
func ReturnLink(baseURL, continuationSecret string, bookingID uuid.UUID) string {
	q := url.Values{}
	q.Set("booking_id", bookingID.String())
	q.Set("redirect_status", "authentication_required")
	if continuationSecret != "" {
		q.Set("payment_intent_client_secret", continuationSecret)
	}
	return strings.TrimRight(baseURL, "/") + "/bookings/" + bookingID.String() + "/manage?" + q.Encode()
}

// PaymentMethodLink is where a customer updates the card used for holds.
func PaymentMethodLink(baseURL string, bookingID uuid.UUID) string {
	return strings.TrimRight(baseURL, "/") + "/bookings/" + bookingID.String() + "/payment-method"
}
