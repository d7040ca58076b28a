package commands

import (
	"fmt"

	"github.com/wonny/limitup/internal/market"
	"github.com/wonny/limitup/internal/pipeline"
	"github.com/wonny/limitup/internal/store"
	"github.com/wonny/limitup/pkg/config"
	"github.com/wonny/limitup/pkg/database"
	"github.com/wonny/limitup/pkg/httputil"
	"github.com/wonny/limitup/pkg/logger"
	"github.com/wonny/limitup/pkg/redis"
)

// app bundles the shared wiring every command needs: config, logger,
// database, optional redis, the market registry, and the pipeline.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	rdb       *redis.Client
	registry  *market.Registry
	bars      *store.BarRepository
	symbols   *store.SymbolRepository
	snapshots *store.SnapshotRepository
	runner    *pipeline.Runner
}

// buildApp constructs the shared dependency graph. The returned cleanup
// closes the database and redis connections.
func buildApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// redis is optional: a nil-enabled client degrades to no caching
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
	}

	registry := market.NewDefaultRegistry()
	if cfg.Engine.MarketsFile != "" {
		if err := market.LoadFile(registry, cfg.Engine.MarketsFile); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("load markets file: %w", err)
		}
		log.WithField("file", cfg.Engine.MarketsFile).Info("Market overrides applied")
	}

	bars := store.NewBarRepository(db.Pool)
	symbols := store.NewSymbolRepository(db.Pool)
	snapshots := store.NewSnapshotRepository(db.Pool)
	runner := pipeline.New(bars, symbols, snapshots, registry, cfg.Engine, log)

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		db.Close()
	}

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		rdb:       rdb,
		registry:  registry,
		bars:      bars,
		symbols:   symbols,
		snapshots: snapshots,
		runner:    runner,
	}, cleanup, nil
}

// fetchClient builds the HTTP client for exchange fetches. With redis
// available the cross-process sliding-window limiter is attached so
// parallel deployments share the fetch budget.
func (a *app) fetchClient() *httputil.Client {
	client := httputil.New(a.log)
	if a.rdb != nil && a.rdb.Enabled() {
		client = client.WithRateLimiter(redis.NewRateLimiter(a.rdb, "limitup"), redis.UniverseRateLimit)
	}
	return client
}
