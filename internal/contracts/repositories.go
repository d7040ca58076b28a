package contracts

import (
	"context"
	"time"
)

// BarRepository provides read access to the daily bar warehouse.
// ⭐ SSOT: bar access contracts are defined only here
type BarRepository interface {
	// GetWindow returns all bars for the market's symbols within
	// [end − days, end], ordered by (symbol, date) ascending.
	GetWindow(ctx context.Context, market string, end time.Time, days int) ([]Bar, error)

	// LatestDate returns the most recent trading date with bars on or
	// before the given date for the market.
	LatestDate(ctx context.Context, market string, onOrBefore time.Time) (time.Time, error)
}

// SymbolRepository provides access to the per-symbol metadata table.
type SymbolRepository interface {
	ListByMarket(ctx context.Context, market string) ([]SymbolMeta, error)
	UpsertBatch(ctx context.Context, symbols []SymbolMeta) error
}

// SnapshotRepository persists and serves classified market-day snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Latest(ctx context.Context, market string) (*Snapshot, error)
	Get(ctx context.Context, market string, date time.Time) (*Snapshot, error)
}
