package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrendEdge/internal/api"
	"TrendEdge/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scans over HTTP",
	Long: `Serve starts the HTTP API:

  POST /api/v1/scans   run a scan, returns JSON rows
  GET  /api/v1/scans   recorded runs (?limit=N)
  GET  /healthz
  GET  /metrics        Prometheus metrics

Ctrl+C stops the server gracefully.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	a, err := newApp(ctx, cfg, m, true)
	if err != nil {
		return err
	}
	defer a.Close()

	h := api.NewHandler(a.scanner, a.recorder, cfg.Scan.Params)
	srv := api.NewServer(h, m, api.ServerConfig{
		Addr:         cfg.Server.Addr,
		APIKeys:      cfg.Server.APIKeys,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	return srv.Run(ctx)
}
