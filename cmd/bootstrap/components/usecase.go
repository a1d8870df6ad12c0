package components

import (
	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/keylock"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	keylock.New,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBalanceUseCase,
		commands.NewJobHandlers,
		commands.NewDispatcher,
		commands.NewHoldLifecycle,
		commands.NewRescheduleUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewJobQueries,
	),
)
