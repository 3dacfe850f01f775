package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/protodocs/internal/health"
	"github.com/p-blackswan/protodocs/internal/site"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documentation pages over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.HTTPAddr
			}
			logger := c.logger

			a, err := wireApp(c.cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			checker := health.NewChecker(logger)
			checker.Register("manifest", func(ctx context.Context) health.Status {
				vs, err := a.versions.Versions(ctx)
				if err != nil || len(vs) == 0 {
					return health.StatusDown
				}
				return health.StatusOK
			})
			if a.store != nil {
				checker.Register("index_store", health.PingCheck(a.store))
				if ids, err := a.store.IndexedProtocols(cmd.Context()); err == nil {
					logger.Info().Str("path", a.store.Path()).Strs("protocols", ids).Msg("stored indexes")
				}
			}

			logger.Info().
				Str("environment", c.cfg.Environment).
				Str("addr", addr).
				Str("root", c.cfg.ProtocolRoot).
				Bool("index_db", c.cfg.IndexDBEnabled()).
				Msg("starting protodocs")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := site.NewServer(a.docs, checker, a.metrics, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info().Msg("shutting down gracefully")
			}

			if err := srv.Shutdown(); err != nil {
				logger.Error().Err(err).Msg("HTTP server shutdown error")
				return err
			}
			logger.Info().Msg("protodocs stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}
