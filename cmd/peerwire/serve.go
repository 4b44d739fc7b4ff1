package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/peerwire/internal/debugserver"
	"github.com/vango-dev/peerwire/internal/errors"
)

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the debug HTTP server",
		Long: `Serve starts an HTTP server exposing the codec:

  GET  /metrics      Prometheus metrics
  GET  /v1/ops       opcode registry
  POST /v1/encode    JSON description to frame (?compressed=1)
  POST /v1/inspect   frame summary

The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.log.Sync()

			if addr == "" {
				addr = e.cfg.Debug.Address
			}

			e.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			srv := debugserver.New(debugserver.Options{
				Codec:    e.codec,
				Gatherer: prometheus.Gatherers{e.registry},
				Logger:   e.log.Named("debug"),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return errors.New("PW030").WithDetail("Debug server on " + addr + " failed").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: debug.address)")

	return cmd
}
