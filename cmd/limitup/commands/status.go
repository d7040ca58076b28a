package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/limitup/internal/store"
)

// statusCmd reports system health and the latest snapshot per market.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Long: `Check database and redis connectivity and report the latest
classified snapshot for each configured market.

Example:
  go run ./cmd/limitup status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	fmt.Println("=== Limit-Up Engine Status ===")

	health, err := app.db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("Database: DOWN (%s)\n", health.Error)
	} else {
		fmt.Printf("Database: OK (ping %s, conns %d/%d)\n",
			health.ResponseTime.Round(time.Millisecond),
			health.Stats.TotalConns, health.Stats.MaxConns)
	}

	if app.rdb != nil && app.rdb.Enabled() {
		fmt.Println("Redis:    OK")
	} else {
		fmt.Println("Redis:    disabled")
	}

	fmt.Printf("Markets:  %v\n", app.registry.Codes())
	fmt.Println()

	for _, code := range app.cfg.Engine.Markets {
		snap, err := app.snapshots.Latest(ctx, code)
		switch {
		case errors.Is(err, store.ErrSnapshotNotFound):
			fmt.Printf("%s: no snapshot yet\n", code)
		case err != nil:
			fmt.Printf("%s: error (%v)\n", code, err)
		default:
			fmt.Printf("%s: %s  locked=%d touched=%d watchlist=%d symbols=%d\n",
				code, snap.Date.Format("2006-01-02"),
				snap.Stats.LockedCount, snap.Stats.TouchCount,
				snap.Stats.WatchlistCount, snap.Stats.TotalSymbols)
		}
	}

	return nil
}
