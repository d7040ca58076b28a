package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/limitup/internal/contracts"
)

// SymbolRepository implements contracts.SymbolRepository on the symbol
// metadata table.
type SymbolRepository struct {
	pool *pgxpool.Pool
}

func NewSymbolRepository(pool *pgxpool.Pool) *SymbolRepository {
	return &SymbolRepository{pool: pool}
}

// ListByMarket returns the market's symbols ordered by symbol code.
func (r *SymbolRepository) ListByMarket(ctx context.Context, market string) ([]contracts.SymbolMeta, error) {
	query := `
		SELECT symbol, name, sector, market, market_detail, limit_type, limit_ratio, listed_date
		FROM data.symbols
		WHERE market = $1
		ORDER BY symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, market)
	if err != nil {
		return nil, fmt.Errorf("store: query symbols: %w", err)
	}
	defer rows.Close()

	var metas []contracts.SymbolMeta
	for rows.Next() {
		var m contracts.SymbolMeta
		if err := rows.Scan(&m.Symbol, &m.Name, &m.Sector, &m.Market, &m.MarketDetail, &m.LimitType, &m.LimitRatio, &m.ListedDate); err != nil {
			return nil, fmt.Errorf("store: scan symbol: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// UpsertBatch writes symbol metadata keyed by symbol code. Used by the
// universe refresher after parsing the exchange listing.
func (r *SymbolRepository) UpsertBatch(ctx context.Context, symbols []contracts.SymbolMeta) error {
	if len(symbols) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.symbols (symbol, name, sector, market, market_detail, limit_type, limit_ratio, listed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			market = EXCLUDED.market,
			market_detail = EXCLUDED.market_detail,
			limit_type = EXCLUDED.limit_type,
			limit_ratio = EXCLUDED.limit_ratio,
			listed_date = EXCLUDED.listed_date,
			updated_at = NOW()
	`
	for _, m := range symbols {
		batch.Queue(query, m.Symbol, m.Name, m.Sector, m.Market, m.MarketDetail, m.LimitType, m.LimitRatio, m.ListedDate)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range symbols {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: upsert symbol: %w", err)
		}
	}
	return nil
}
