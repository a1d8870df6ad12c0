package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

// TokenSource mints the short-lived service credential sent on every call.
type TokenSource interface {
	GenerateToken() (string, error)
}

// HTTPGateway talks to the internal hold service that fronts the payment provider.
type HTTPGateway struct {
	baseURL  string
	currency string
	client   *http.Client
	tokens   TokenSource
	logger   *slog.Logger
}

func NewHTTPGateway(baseURL, currency string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: currency,
		client:   &http.Client{Timeout: timeout},
		tokens:   tokens,
		logger:   logger,
	}
}

type placeHoldRequest struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Purpose     string    `json:"purpose"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
}

type holdResponse struct {
	IntentID       string `json:"intent_id"`
	RequiresAction bool   `json:"requires_action"`
	ClientSecret   string `json:"client_secret"`
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *HTTPGateway) PlaceHold(ctx context.Context, bookingID uuid.UUID, purpose job.HoldPurpose, amountCents int64) (shared.HoldResult, error) {
	var out holdResponse
	err := g.do(ctx, http.MethodPost, "/holds", placeHoldRequest{
		BookingID:   bookingID,
		Purpose:     string(purpose),
		AmountCents: amountCents,
		Currency:    g.currency,
	}, &out)
	if err != nil {
		return shared.HoldResult{}, err
	}
	return shared.HoldResult{
		IntentID:           out.IntentID,
		RequiresAction:     out.RequiresAction,
		ContinuationSecret: out.ClientSecret,
	}, nil
}

func (g *HTTPGateway) CancelHold(ctx context.Context, intentID string) error {
	return g.do(ctx, http.MethodDelete, "/holds/"+url.PathEscape(intentID), nil, nil)
}

func (g *HTTPGateway) ReleaseHold(ctx context.Context, bookingID uuid.UUID) (string, error) {
	var out holdResponse
	if err := g.do(ctx, http.MethodPost, "/bookings/"+bookingID.String()+"/hold/release", nil, &out); err != nil {
		return "", err
	}
	return out.IntentID, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errs.Wrap(err, "encode gateway request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return errs.Wrap(err, "build gateway request")
	}
	token, err := g.tokens.GenerateToken()
	if err != nil {
		return errs.Wrap(err, "mint service token")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrapf(err, "%s %s", method, path), shared.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return g.statusError(ctx, method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Mark(errs.Wrap(err, "decode gateway response"), shared.ErrGatewayUnavailable)
	}
	return nil
}

func (g *HTTPGateway) statusError(ctx context.Context, method, path string, resp *http.Response) error {
	var ge gatewayError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&ge)
	err := errs.Newf("%s %s: status %d %s %s", method, path, resp.StatusCode, ge.Code, ge.Message)

	g.logger.WarnContext(ctx, "gateway call rejected",
		"method", method, "path", path, "status", resp.StatusCode, "code", ge.Code)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errs.Mark(err, shared.ErrNoLiveHold)
	case resp.StatusCode == http.StatusPaymentRequired, resp.StatusCode == http.StatusUnprocessableEntity:
		return errs.Mark(err, shared.ErrHoldDeclined)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return errs.Mark(err, shared.ErrGatewayUnavailable)
	default:
		return errs.Mark(err, shared.ErrHoldDeclined)
	}
}

var (
	_ shared.PaymentGateway = (*HTTPGateway)(nil)
	_ shared.PaymentGateway = (*OmiseGateway)(nil)
)
