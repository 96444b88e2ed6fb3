package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/hydrodiff/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the hydrodiff comparison engine.

Endpoints:
  GET  /health         Health check
  POST /api/compare    Compare server and client HTML
  POST /api/normalize  Normalize one HTML document`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:6143", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return api.New(cfg.Addr).ListenAndServe(ctx)
}
