package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/teamflow/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the team over HTTP",
		Long:  `Starts the HTTP API: POST /api/chat/stream streams runs as server-sent events, GET /api/team lists the workers and GET /metrics exposes Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := buildTeam(a.cfg, a.logger)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			handler := server.NewHandler(t.flow.Runner(), func(o *server.Options) {
				o.TeamMembers = t.members
				o.MemberConfigs = t.configs
				o.Metrics = t.metrics.Handler()
				o.Logger = a.logger
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, addr, handler, a.cfg.Server.ReadHeaderTimeout, a.cfg.Server.ShutdownTimeout, a.logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to server.addr)")

	return cmd
}
