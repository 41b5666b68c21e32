package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if listen != "" {
				a.cfg.Listen = listen
			}

			a.logger.Info("starting pokedex",
				zap.String("config", *configPath),
				zap.String("upstream", a.cfg.Upstream.BaseURL),
				zap.String("cache_backend", a.cfg.Cache.Backend),
			)
			return server.New(a.cfg, a.service, a.logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides config")
	return cmd
}
