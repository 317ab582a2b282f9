package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// shutdownGrace bounds how long serve waits for an in-flight scrape to
// finish before forcing the metrics server closed.
const shutdownGrace = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the Prometheus metrics scrape endpoint until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ensureApp()
			if err != nil {
				return err
			}

			srv := a.metrics.Serve(addr, logrus.New())
			fmt.Fprintf(cmd.OutOrStdout(), "metrics listening on %s\n", addr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return a.metrics.Shutdown(shutdownCtx, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics on")
	return cmd
}
