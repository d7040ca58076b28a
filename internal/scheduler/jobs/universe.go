package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/limitup/internal/universe"
	"github.com/wonny/limitup/pkg/logger"
)

// UniverseSource names one listing page to refresh.
type UniverseSource struct {
	Market string
	URL    string
}

// UniverseJob refreshes the symbol tables from the exchange listings.
// Listings churn slowly, so this runs weekly before the Monday session.
type UniverseJob struct {
	refresher *universe.Refresher
	sources   []UniverseSource
	logger    *logger.Logger
}

func NewUniverseJob(refresher *universe.Refresher, sources []UniverseSource, log *logger.Logger) *UniverseJob {
	return &UniverseJob{
		refresher: refresher,
		sources:   sources,
		logger:    log,
	}
}

func (j *UniverseJob) Name() string { return "universe_refresh" }

func (j *UniverseJob) Schedule() string { return "0 0 6 * * 1" }

// Run refreshes every configured source, stopping at the first failure
// so the scheduler's retry covers the remainder.
func (j *UniverseJob) Run(ctx context.Context) error {
	for _, src := range j.sources {
		n, err := j.refresher.Refresh(ctx, src.Market, src.URL)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", src.Market, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"market":  src.Market,
			"symbols": n,
		}).Info("Universe source refreshed")
	}
	return nil
}
