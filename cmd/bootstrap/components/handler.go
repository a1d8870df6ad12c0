package components

import (
	"rental-orchestrator/internal/handler"
	"rental-orchestrator/internal/handler/api"
	"rental-orchestrator/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewJobHandler,
		api.NewBookingHandler,
		api.NewBalanceHandler,
		middleware.NewAuthMiddleware,
		func(jobs *api.JobHandler, bookings *api.BookingHandler, balance *api.BalanceHandler) handler.Handlers {
			return handler.Handlers{Jobs: jobs, Bookings: bookings, Balance: balance}
		},
	),
	fx.Invoke(handler.NewRouter),
)
