package universe

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/pkg/httputil"
	"github.com/wonny/limitup/pkg/logger"
)

// Refresher pulls the exchange listing and refreshes the symbol table.
// Fetches are throttled with a local token bucket on top of whatever
// shared rate limit the HTTP client carries, because the listing
// endpoint bans aggressive crawlers.
type Refresher struct {
	client  *httputil.Client
	symbols contracts.SymbolRepository
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewRefresher creates a refresher throttled to rps requests per second.
func NewRefresher(client *httputil.Client, symbols contracts.SymbolRepository, rps float64, log *logger.Logger) *Refresher {
	if rps <= 0 {
		rps = 1
	}
	return &Refresher{
		client:  client,
		symbols: symbols,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}
}

// Refresh fetches the listing page for one market and upserts every
// parsed symbol. Returns the number of symbols written.
func (r *Refresher) Refresh(ctx context.Context, market, url string) (int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("universe: throttle wait: %w", err)
	}

	resp, err := r.client.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("universe: fetch listing for %s: %w", market, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("universe: listing for %s returned status %d", market, resp.StatusCode)
	}

	metas, err := ParseISINTable(resp.Body, market)
	if err != nil {
		return 0, err
	}

	if err := r.symbols.UpsertBatch(ctx, metas); err != nil {
		return 0, fmt.Errorf("universe: upsert symbols for %s: %w", market, err)
	}

	r.log.WithFields(map[string]interface{}{
		"market":  market,
		"symbols": len(metas),
	}).Info("universe refreshed")

	return len(metas), nil
}
