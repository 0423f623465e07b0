package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/payment-advice-converter/internal/api"
	"github.com/insightdelivered/payment-advice-converter/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and optional web UI)",
	Long: `Run the HTTP API.

Routes:
  GET  /api/health    liveness
  POST /api/convert   multipart: file or extractedText, ledger, stateMap, account, format
  GET  /metrics       Prometheus metrics

With --static (or server.static_dir) the directory is served at / with
index.html as the fallback for client-side routes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from server.port)")
	serveCmd.Flags().String("static", "", "Directory with the built web UI (default from server.static_dir)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if dir, _ := cmd.Flags().GetString("static"); dir != "" {
		cfg.Server.StaticDir = dir
	}

	app := api.NewHandler(cfg, version).NewApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("static_dir", cfg.Server.StaticDir).
		Bool("account_check", cfg.Account.Expected != "").
		Str("version", version).
		Msg("Payment advice API listening")

	return app.Listen(addr)
}
