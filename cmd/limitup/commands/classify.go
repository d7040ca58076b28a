package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// classifyCmd runs the pipeline once for one or more markets.
var classifyCmd = &cobra.Command{
	Use:   "classify [market...]",
	Short: "Build snapshots for the given markets",
	Long: `Run the classification pipeline once and persist the snapshots.

Without arguments the configured MARKETS list is used.

Example:
  go run ./cmd/limitup classify
  go run ./cmd/limitup classify TW KR
  go run ./cmd/limitup classify TW --date 2025-07-14`,
	RunE: runClassify,
}

var classifyDate string

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyDate, "date", "", "evaluation date (YYYY-MM-DD, default today)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	asOf := time.Now()
	if classifyDate != "" {
		asOf, err = time.Parse("2006-01-02", classifyDate)
		if err != nil {
			return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
		}
	}

	markets := args
	if len(markets) == 0 {
		markets = app.cfg.Engine.Markets
	}

	ctx := context.Background()
	for _, market := range markets {
		snap, err := app.runner.Run(ctx, market, asOf)
		if err != nil {
			return fmt.Errorf("classify %s: %w", market, err)
		}
		fmt.Printf("%s %s: %d classified, %d locked, %d touched, %d watchlist\n",
			snap.Market, snap.Date.Format("2006-01-02"),
			snap.Stats.ClassifiedRows, snap.Stats.LockedCount,
			snap.Stats.TouchCount, snap.Stats.WatchlistCount)
	}
	return nil
}
