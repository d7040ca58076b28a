package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/limitup/internal/universe"
)

var universeURL string

// universeCmd refreshes the symbol universe from the exchange listing page.
var universeCmd = &cobra.Command{
	Use:   "universe [market]",
	Short: "Refresh the symbol universe for a market",
	Long: `Fetch the exchange listing page, parse the instrument table and
upsert the symbols. Defaults to the TW ISIN listing.

Example:
  go run ./cmd/limitup universe TW
  go run ./cmd/limitup universe TW --url https://isin.twse.com.tw/isin/C_public.jsp?strMode=2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.Flags().StringVar(&universeURL, "url", "", "listing page URL (defaults to UNIVERSE_ISIN_URL)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	market := "TW"
	if len(args) > 0 {
		market = args[0]
	}
	url := universeURL
	if url == "" {
		url = app.cfg.Universe.ISINListURL
	}

	refresher := universe.NewRefresher(
		app.fetchClient(),
		app.symbols,
		app.cfg.Universe.RequestsPerSecond,
		app.log,
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	count, err := refresher.Refresh(ctx, market, url)
	if err != nil {
		return fmt.Errorf("universe refresh failed: %w", err)
	}

	fmt.Printf("Universe refreshed: market=%s symbols=%d\n", market, count)
	return nil
}
