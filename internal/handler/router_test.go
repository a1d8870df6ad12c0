//go:build unit

package handler_test

import (
	"net/http"
	"testing"
	"time"

	"rental-orchestrator/internal/handler"
	"rental-orchestrator/internal/handler/api"
	"rental-orchestrator/internal/handler/middleware"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/jwt"
	"rental-orchestrator/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	auth := middleware.NewAuthMiddleware(jwt.NewService("router-secret", "scheduler", time.Minute))
	handler.NewRouter(engine, config.NewTestConfig(), handler.Handlers{
		Jobs:     &api.JobHandler{},
		Bookings: &api.BookingHandler{},
		Balance:  &api.BalanceHandler{},
	}, auth)
	return engine
}

func TestNewRouter_RegistersInternalRoutes(t *testing.T) {
	engine := newTestRouter()

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /internal/jobs/dispatch",
		"GET /internal/jobs/stats",
		"POST /internal/bookings/:id/created",
		"POST /internal/bookings/:id/payment-method-updated",
		"POST /internal/bookings/:id/reschedule",
		"POST /internal/bookings/:id/balance/recalculate",
		"GET /internal/bookings/:id/jobs",
		"PUT /internal/payments/:source/:id/status",
	} {
		assert.True(t, registered[want], "route %s not registered", want)
	}
}

func TestNewRouter_InternalRoutesRejectAnonymousCalls(t *testing.T) {
	engine := newTestRouter()

	rec := httptest.PerformRequest(t, engine, http.MethodPost, "/internal/jobs/dispatch", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Service token required")

	rec = httptest.PerformRequest(t, engine, http.MethodGet, "/health", nil, "")
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
}
