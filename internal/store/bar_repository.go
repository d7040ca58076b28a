// Package store implements the persistence contracts on PostgreSQL.
// ⭐ SSOT: all SQL lives in this package
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/limitup/internal/contracts"
)

// ErrNoTradingDate is returned when a market has no bars on or before
// the requested date.
var ErrNoTradingDate = errors.New("store: no trading date with bars")

// BarRepository implements contracts.BarRepository on the daily bar
// warehouse.
type BarRepository struct {
	pool *pgxpool.Pool
}

func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// GetWindow returns all bars for the market within [end − days, end],
// ordered by (symbol, date) ascending.
func (r *BarRepository) GetWindow(ctx context.Context, market string, end time.Time, days int) ([]contracts.Bar, error) {
	query := `
		SELECT b.symbol, b.trade_date, b.open_price, b.high_price, b.low_price, b.close_price, b.volume
		FROM data.daily_bars b
		JOIN data.symbols s ON s.symbol = b.symbol
		WHERE s.market = $1 AND b.trade_date BETWEEN $2 AND $3
		ORDER BY b.symbol ASC, b.trade_date ASC
	`
	from := end.AddDate(0, 0, -days)

	rows, err := r.pool.Query(ctx, query, market, from, end)
	if err != nil {
		return nil, fmt.Errorf("store: query bar window: %w", err)
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("store: scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LatestDate returns the most recent trading date with bars on or
// before the given date for the market.
func (r *BarRepository) LatestDate(ctx context.Context, market string, onOrBefore time.Time) (time.Time, error) {
	query := `
		SELECT MAX(b.trade_date)
		FROM data.daily_bars b
		JOIN data.symbols s ON s.symbol = b.symbol
		WHERE s.market = $1 AND b.trade_date <= $2
	`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, market, onOrBefore).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("store: query latest trading date: %w", err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("%w: market %s on or before %s", ErrNoTradingDate, market, onOrBefore.Format("2006-01-02"))
	}
	return *latest, nil
}

// SaveBatch upserts bars keyed by (symbol, trade_date). Bars are
// immutable in practice; the upsert makes vendor re-delivery harmless.
func (r *BarRepository) SaveBatch(ctx context.Context, bars []contracts.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.daily_bars (symbol, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`
	for _, b := range bars {
		batch.Queue(query, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: upsert bar: %w", err)
		}
	}
	return nil
}
