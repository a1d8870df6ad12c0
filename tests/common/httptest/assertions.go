//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"rental-orchestrator/internal/handler/httperr"

	"github.com/stretchr/testify/assert"
)

// AssertSuccessResponse checks the status and, for 2xx responses, decodes the body into target.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	if !assert.Equalf(t, expectedStatus, w.Code, "unexpected status, body: %s", w.Body.String()) {
		return
	}
	if target == nil || expectedStatus < 200 || expectedStatus >= 300 {
		return
	}
	assert.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), target), "undecodable body: %s", w.Body.String())
}

// AssertErrorResponse checks the status, the error code derived from it and,
// when given, a fragment of the message. The decoded body is returned for
// further checks.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, msgFragment string) httperr.Response {
	t.Helper()

	assert.Equalf(t, expectedStatus, w.Code, "unexpected status, body: %s", w.Body.String())

	var body httperr.Response
	if !assert.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), &body), "undecodable error body: %s", w.Body.String()) {
		return body
	}
	assert.Equal(t, httperr.Code(expectedStatus), body.Error.Code)
	if msgFragment != "" {
		assert.Contains(t, body.Error.Message, msgFragment)
	}
	return body
}
