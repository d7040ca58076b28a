package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/contracts"
)

// testPool connects to the database named by TEST_DATABASE_URL. These
// are integration tests; they need the migrated schema in place.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping store integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestBarRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	symbols := NewSymbolRepository(pool)
	bars := NewBarRepository(pool)

	date := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	px := 13000.0

	require.NoError(t, symbols.UpsertBatch(ctx, []contracts.SymbolMeta{
		{Symbol: "TEST.KR", Name: "Store Test", Sector: "Test", Market: "ZZ"},
	}))
	require.NoError(t, bars.SaveBatch(ctx, []contracts.Bar{
		{Symbol: "TEST.KR", Date: date, Open: 10000, High: 13000, Low: 9900, Close: &px, Volume: 42},
	}))

	latest, err := bars.LatestDate(ctx, "ZZ", date)
	require.NoError(t, err)
	assert.Equal(t, date.Format("2006-01-02"), latest.Format("2006-01-02"))

	window, err := bars.GetWindow(ctx, "ZZ", date, 5)
	require.NoError(t, err)
	require.NotEmpty(t, window)
	assert.Equal(t, "TEST.KR", window[0].Symbol)
	require.NotNil(t, window[0].Close)
	assert.Equal(t, px, *window[0].Close)
}

func TestLatestDateEmptyMarket(t *testing.T) {
	pool := testPool(t)

	bars := NewBarRepository(pool)
	_, err := bars.LatestDate(context.Background(), "NO_SUCH_MARKET", time.Now())
	assert.ErrorIs(t, err, ErrNoTradingDate)
}

func TestSnapshotRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	repo := NewSnapshotRepository(pool)
	date := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	snap := &contracts.Snapshot{
		Market: "ZZ",
		Date:   date,
		Stats:  contracts.SnapshotStats{TotalSymbols: 1},
	}
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Get(ctx, "ZZ", date)
	require.NoError(t, err)
	assert.Equal(t, snap.Stats, got.Stats)

	latest, err := repo.Latest(ctx, "ZZ")
	require.NoError(t, err)
	assert.Equal(t, "ZZ", latest.Market)

	_, err = repo.Get(ctx, "ZZ", date.AddDate(10, 0, 0))
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
