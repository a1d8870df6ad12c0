package bootstrap

import (
	"context"
	"log/slog"

	"rental-orchestrator/internal/infra/db"
	"rental-orchestrator/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB opens the job store pool and closes it on shutdown.
func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("job store connected",
		"host", cfg.DB.Host,
		"database", cfg.DB.DBName,
		"max_conns", pool.Config().MaxConns,
	)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			stat := pool.Stat()
			logger.Info("closing job store",
				"acquired_conns", stat.AcquiredConns(),
				"total_conns", stat.TotalConns(),
			)
			pool.Close()
			return nil
		},
	})

	return pool, nil
}
