package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
	"github.com/wonny/limitup/pkg/config"
	"github.com/wonny/limitup/pkg/logger"
)

type fakeBarRepo struct {
	bars []contracts.Bar
}

func (f *fakeBarRepo) GetWindow(_ context.Context, _ string, end time.Time, _ int) ([]contracts.Bar, error) {
	var out []contracts.Bar
	for _, b := range f.bars {
		if !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBarRepo) LatestDate(_ context.Context, _ string, onOrBefore time.Time) (time.Time, error) {
	var latest time.Time
	for _, b := range f.bars {
		if !b.Date.After(onOrBefore) && b.Date.After(latest) {
			latest = b.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, errors.New("no bars")
	}
	return latest, nil
}

type fakeSymbolRepo struct {
	metas []contracts.SymbolMeta
}

func (f *fakeSymbolRepo) ListByMarket(context.Context, string) ([]contracts.SymbolMeta, error) {
	return f.metas, nil
}

func (f *fakeSymbolRepo) UpsertBatch(context.Context, []contracts.SymbolMeta) error { return nil }

type fakeSnapshotRepo struct {
	saved *contracts.Snapshot
}

func (f *fakeSnapshotRepo) Save(_ context.Context, s *contracts.Snapshot) error {
	f.saved = s
	return nil
}

func (f *fakeSnapshotRepo) Latest(context.Context, string) (*contracts.Snapshot, error) {
	return f.saved, nil
}

func (f *fakeSnapshotRepo) Get(context.Context, string, time.Time) (*contracts.Snapshot, error) {
	return f.saved, nil
}

func day(d int) time.Time {
	return time.Date(2025, 7, 10+d, 0, 0, 0, 0, time.UTC)
}

func krBar(symbol string, d int, high, last float64) contracts.Bar {
	return contracts.Bar{
		Symbol: symbol,
		Date:   day(d),
		Open:   last,
		High:   high,
		Low:    last * 0.95,
		Close:  &last,
		Volume: 100,
	}
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		StreakWindowDays:  30,
		CandidateRet:      0.10,
		ThemeRet:          0.10,
		PeersPerSectorCap: 50,
	}
}

func TestRunnerBuildsSnapshot(t *testing.T) {
	bars := &fakeBarRepo{bars: []contracts.Bar{
		// LCK locks two sessions in a row (10000 -> 13000 -> 16900)
		krBar("LCK", 0, 10000, 10000),
		krBar("LCK", 1, 13000, 13000),
		krBar("LCK", 4, 16900, 16900),

		// OPN trades uncapped and surges +15% on the last day
		krBar("OPN", 0, 1000, 1000),
		krBar("OPN", 1, 1005, 1000),
		krBar("OPN", 4, 1160, 1150),

		// PEER stays well below its ceiling
		krBar("PEER", 0, 10100, 10000),
		krBar("PEER", 1, 10100, 10000),
		krBar("PEER", 4, 10600, 10500),

		// HLT has no bar on the evaluation date
		krBar("HLT", 0, 5000, 5000),
		krBar("HLT", 1, 5100, 5050),
	}}

	symbols := &fakeSymbolRepo{metas: []contracts.SymbolMeta{
		{Symbol: "LCK", Name: "Locker", Sector: "Semis", Market: "KR"},
		{Symbol: "OPN", Name: "Opener", Sector: "Bio", Market: "KR", LimitType: "unlimited"},
		{Symbol: "PEER", Name: "Peer", Sector: "Semis", Market: "KR"},
		{Symbol: "HLT", Name: "Halted", Sector: "Semis", Market: "KR"},
	}}

	snaps := &fakeSnapshotRepo{}
	r := New(bars, symbols, snaps, market.NewDefaultRegistry(), testEngineConfig(), logger.NewWithWriter(io.Discard))

	snap, err := r.Run(context.Background(), "kr", day(5))
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Same(t, snap, snaps.saved)

	// asOf lands on a weekend; the run resolves to the last session
	assert.Equal(t, day(4), snap.Date)
	assert.Equal(t, "KR", snap.Market)

	assert.Equal(t, 4, snap.Stats.TotalSymbols)
	assert.Equal(t, 3, snap.Stats.ClassifiedRows) // HLT absent on the day
	assert.Equal(t, 1, snap.Stats.LockedCount)
	assert.Equal(t, 1, snap.Stats.TouchCount)
	assert.Equal(t, 1, snap.Stats.WatchlistCount)

	// board: the locked name first, then the theme mover
	require.Len(t, snap.Rows, 2)
	lck := snap.Rows[0]
	assert.Equal(t, "LCK", lck.Symbol)
	assert.True(t, lck.IsLocked)
	assert.Equal(t, 2, lck.Streak)
	assert.Equal(t, 1, lck.StreakPrev)
	assert.True(t, lck.HitPrev)
	assert.Equal(t, "Locked 2d", lck.StatusText)
	assert.Equal(t, 16900.0, lck.LimitPrice)

	opn := snap.Rows[1]
	assert.Equal(t, "OPN", opn.Symbol)
	assert.Equal(t, contracts.StatusTheme, opn.Status)
	assert.Equal(t, 1, opn.SurgeStreak)

	require.Len(t, snap.Watchlist, 1)
	assert.Equal(t, "OPN", snap.Watchlist[0].Symbol)
	assert.True(t, snap.Watchlist[0].SurgeLocked)

	// peers: same-sector standard names that never reached the ceiling
	require.Contains(t, snap.PeersBySector, "Semis")
	require.Len(t, snap.PeersBySector["Semis"], 1)
	assert.Equal(t, "PEER", snap.PeersBySector["Semis"][0].Symbol)

	require.NotEmpty(t, snap.Sectors)
	assert.Equal(t, 1, len(snap.WatchlistSectors))
	assert.Equal(t, "Bio", snap.WatchlistSectors[0].Sector)
}

func TestRunnerUnknownMarket(t *testing.T) {
	r := New(&fakeBarRepo{}, &fakeSymbolRepo{}, &fakeSnapshotRepo{}, market.NewDefaultRegistry(), testEngineConfig(), logger.NewWithWriter(io.Discard))
	_, err := r.Run(context.Background(), "XX", day(0))
	assert.Error(t, err)
}

func TestRunnerNoBars(t *testing.T) {
	r := New(&fakeBarRepo{}, &fakeSymbolRepo{}, &fakeSnapshotRepo{}, market.NewDefaultRegistry(), testEngineConfig(), logger.NewWithWriter(io.Discard))
	_, err := r.Run(context.Background(), "KR", day(0))
	assert.Error(t, err)
}

func TestRunnerRerunIsIdempotent(t *testing.T) {
	bars := &fakeBarRepo{bars: []contracts.Bar{
		krBar("LCK", 0, 10000, 10000),
		krBar("LCK", 1, 13000, 13000),
	}}
	symbols := &fakeSymbolRepo{metas: []contracts.SymbolMeta{
		{Symbol: "LCK", Name: "Locker", Sector: "Semis", Market: "KR"},
	}}

	r := New(bars, symbols, &fakeSnapshotRepo{}, market.NewDefaultRegistry(), testEngineConfig(), logger.NewWithWriter(io.Discard))

	first, err := r.Run(context.Background(), "KR", day(1))
	require.NoError(t, err)
	second, err := r.Run(context.Background(), "KR", day(1))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
