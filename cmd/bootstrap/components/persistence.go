package components

import (
	"rental-orchestrator/internal/infra/readstore"
	"rental-orchestrator/internal/infra/uow"
	"rental-orchestrator/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	readstoreModule,
	repositoryModule,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			NewJobReadStore,
			fx.As(new(queries.JobReadStore)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewJobReadStore(pool *pgxpool.Pool) *readstore.JobReadStore {
	return readstore.NewJobReadStore(pool)
}
