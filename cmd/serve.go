package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ghostrun/internal/adapters/http/api"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

const defaultServeAddr = "127.0.0.1:9480"

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /healthz, /stats and /ghosts until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = opts.cfg.MetricsAddr
			}
			if addr == "" {
				addr = defaultServeAddr
			}

			svc, stop, err := opts.startService(cmd)
			if err != nil {
				return err
			}
			defer stop()

			go metrics.Global().RunSystemCollector(ctx)

			log := logger.Get()
			log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
			if err := api.NewServer(svc, svc).ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("HTTP server failed: %w", err)
			}
			log.Info(ctx, "server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default metrics_addr or "+defaultServeAddr+")")
	return cmd
}
