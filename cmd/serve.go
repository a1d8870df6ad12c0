package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rental-orchestrator/cmd/bootstrap"
	"rental-orchestrator/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// @title           rental-orchestrator
// @version         1.0
// @description     Internal API driving booking hold, reminder and reconciliation jobs.

// @BasePath  /
// @schemes http https
// @securityDefinitions.apikey ServiceToken
// @in header
// @name Authorization
func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return srv.Shutdown(ctx)
		},
	})
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the internal API and the payment event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(
				bootstrap.Module,
				fx.Provide(
					func() *gin.Engine {
						return gin.New()
					},
				),
				fx.Invoke(
					startServer,
				),
			)

			if err := app.Start(cmd.Context()); err != nil {
				return err
			}

			<-app.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := app.Stop(stopCtx); err != nil {
				slog.Error("application stop failed", "error", err)
			}

			slog.Info("application stopped")
			return nil
		},
	}
}
