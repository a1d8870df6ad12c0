//go:build unit || e2e

package httptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// PerformRequest sends body as JSON, authenticated with serviceToken when it is non-empty.
func PerformRequest(t *testing.T, router *gin.Engine, method, path string, body any, serviceToken string) *httptest.ResponseRecorder {
	t.Helper()

	headers := map[string]string{}
	if serviceToken != "" {
		headers["Authorization"] = "Bearer " + serviceToken
	}
	return PerformRequestWithHeaders(t, router, method, path, body, headers)
}

// PerformRequestWithHeaders sends body as JSON with the given headers. Empty header values are skipped.
func PerformRequestWithHeaders(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "request body must encode to JSON")
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
