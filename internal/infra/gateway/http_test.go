//go:build unit

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/infra/gateway"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/jwt"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, h http.HandlerFunc) (*gateway.HTTPGateway, *jwt.Service) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tokens := jwt.NewService("test-secret", "orchestrator-test", time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gateway.NewHTTPGateway(srv.URL, "usd", 2*time.Second, tokens, logger), tokens
}

func TestHTTPGateway_PlaceHold(t *testing.T) {
	bookingID := uuid.New()
	var validator *jwt.Service

	g, tokens := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := validator.ValidateToken(token); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/holds", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, bookingID.String(), body["booking_id"])
		assert.Equal(t, "security", body["purpose"])
		assert.EqualValues(t, 50000, body["amount_cents"])

		_ = json.NewEncoder(w).Encode(map[string]any{"intent_id": "pi_123"})
	})
	validator = tokens

	res, err := g.PlaceHold(context.Background(), bookingID, job.PurposeSecurity, 50000)

	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.IntentID)
	assert.False(t, res.RequiresAction)
}

func TestHTTPGateway_PlaceHoldRequiresAction(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"requires_action": true, "client_secret": "pi_1_secret_x"})
	})

	res, err := g.PlaceHold(context.Background(), uuid.New(), job.PurposeSecurity, 50000)

	require.NoError(t, err)
	assert.True(t, res.RequiresAction)
	assert.Equal(t, "pi_1_secret_x", res.ContinuationSecret)
}

func TestHTTPGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "card declined", status: http.StatusPaymentRequired, want: shared.ErrHoldDeclined},
		{name: "no hold", status: http.StatusNotFound, want: shared.ErrNoLiveHold},
		{name: "rate limited", status: http.StatusTooManyRequests, want: shared.ErrGatewayUnavailable},
		{name: "server error", status: http.StatusBadGateway, want: shared.ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"x","message":"y"}`))
			})

			_, err := g.ReleaseHold(context.Background(), uuid.New())

			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestHTTPGateway_CancelHold(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/holds/pi_live", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, g.CancelHold(context.Background(), "pi_live"))
}
