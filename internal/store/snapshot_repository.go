package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/limitup/internal/contracts"
)

// ErrSnapshotNotFound is returned when no snapshot exists for the
// requested market/date.
var ErrSnapshotNotFound = errors.New("store: snapshot not found")

// SnapshotRepository implements contracts.SnapshotRepository. The whole
// snapshot is stored as one JSONB payload per (market, date): it is
// written and read atomically and only ever consumed whole.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save upserts the snapshot for its (market, date). Reruns of the same
// day replace the previous payload.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *contracts.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO analytics.limitup_snapshots (market, trade_date, payload, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (market, trade_date) DO UPDATE SET
			payload = EXCLUDED.payload,
			created_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, snapshot.Market, snapshot.Date, payload); err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a market.
func (r *SnapshotRepository) Latest(ctx context.Context, market string) (*contracts.Snapshot, error) {
	query := `
		SELECT payload
		FROM analytics.limitup_snapshots
		WHERE market = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, market)
}

// Get returns the snapshot for a specific market/date.
func (r *SnapshotRepository) Get(ctx context.Context, market string, date time.Time) (*contracts.Snapshot, error) {
	query := `
		SELECT payload
		FROM analytics.limitup_snapshots
		WHERE market = $1 AND trade_date = $2
	`
	return r.queryOne(ctx, query, market, date)
}

func (r *SnapshotRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*contracts.Snapshot, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, query, args...).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: query snapshot: %w", err)
	}

	var snap contracts.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("store: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
