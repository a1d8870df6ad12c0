package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rental-orchestrator/internal/handler/api"
	"rental-orchestrator/internal/handler/middleware"
	"rental-orchestrator/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

type Handlers struct {
	Jobs     *api.JobHandler
	Bookings *api.BookingHandler
	Balance  *api.BalanceHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	internal := engine.Group("/internal")
	internal.Use(authMiddleware.RequireService())
	{
		jobs := internal.Group("/jobs")
		addRoutes(jobs, []route{
			{Method: http.MethodPost, Path: "/dispatch", Handler: h.Jobs.Dispatch},
			{Method: http.MethodGet, Path: "/stats", Handler: h.Jobs.StatusCounts},
		})

		bookings := internal.Group("/bookings/:id")
		addRoutes(bookings, []route{
			{Method: http.MethodPost, Path: "/created", Handler: h.Bookings.Created},
			{Method: http.MethodPost, Path: "/payment-method-updated", Handler: h.Bookings.PaymentMethodUpdated},
			{Method: http.MethodPost, Path: "/reschedule", Handler: h.Bookings.Reschedule},
			{Method: http.MethodPost, Path: "/balance/recalculate", Handler: h.Balance.Recalculate},
			{Method: http.MethodGet, Path: "/jobs", Handler: h.Jobs.ListByBooking},
		})

		payments := internal.Group("/payments")
		addRoutes(payments, []route{
			{Method: http.MethodPut, Path: "/:source/:id/status", Handler: h.Balance.UpdatePaymentStatus},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		g.Handle(r.Method, r.Path, r.Handler)
	}
}
