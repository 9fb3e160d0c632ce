package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wichananm65/carehub-backend/internal/database"
	"github.com/wichananm65/carehub-backend/internal/metrics"
	"github.com/wichananm65/carehub-backend/internal/server"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if migrate {
				if err := database.Migrate(ctx, e.db); err != nil {
					return err
				}
			}

			c := e.cache(ctx)

			app, err := server.New(server.Deps{
				Config:  e.cfg,
				DB:      e.db,
				Cache:   c,
				Metrics: metrics.New(),
				Log:     e.log,
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				e.log.Info("listening", zap.String("addr", e.cfg.Addr))
				errCh <- app.Listen(e.cfg.Addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			e.log.Info("shutting down")
			return app.ShutdownWithTimeout(10 * time.Second)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}
