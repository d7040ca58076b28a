package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/limitup/internal/api"
	"github.com/wonny/limitup/internal/api/handlers"
	"github.com/wonny/limitup/internal/api/ws"
	"github.com/wonny/limitup/pkg/redis"
)

// apiCmd starts the HTTP API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API and WebSocket push server.

Endpoints:
  GET  /health                          - health check
  GET  /api/markets                     - configured markets
  GET  /api/markets/{market}/snapshot   - full snapshot (latest or ?date=)
  GET  /api/markets/{market}/board      - classified board rows
  GET  /api/markets/{market}/sectors    - sector rollups
  GET  /api/markets/{market}/watchlist  - surge watchlist
  GET  /api/markets/{market}/peers      - same-sector peers
  POST /api/markets/{market}/classify   - rebuild the snapshot now
  GET  /ws                              - snapshot push subscription

Example:
  go run ./cmd/limitup api
  go run ./cmd/limitup api --port 8097`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	var cache *redis.Cache
	if app.rdb != nil && app.rdb.Enabled() {
		cache = redis.NewCache(app.rdb, "limitup")
	}

	hub := ws.NewHub(app.log)
	defer hub.Close()

	router := api.NewRouter(
		handlers.NewSnapshotHandler(app.snapshots, app.runner, cache, app.log),
		handlers.NewMarketHandler(app.registry),
		hub,
		app.log,
	)
	server := api.New(app.cfg, app.log, router)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		app.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
