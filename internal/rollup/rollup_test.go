package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/classify"
	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
)

func row(symbol, sector string, ret float64, mut ...func(*contracts.ClassifiedRow)) contracts.ClassifiedRow {
	r := contracts.ClassifiedRow{
		Symbol:    symbol,
		Name:      symbol,
		Sector:    sector,
		Market:    "TW",
		LimitType: contracts.LimitStandard,
		Ret:       ret,
		RetHigh:   ret,
	}
	for _, m := range mut {
		m(&r)
	}
	return r
}

func locked(r *contracts.ClassifiedRow) {
	r.IsTouch = true
	r.IsLocked = true
	r.Status = contracts.StatusLocked
}

func touched(r *contracts.ClassifiedRow) {
	r.IsTouch = true
	r.Status = contracts.StatusTouchOnly
}

func open(r *contracts.ClassifiedRow) {
	r.LimitType = contracts.LimitOpen
}

func theme(r *contracts.ClassifiedRow) {
	r.LimitType = contracts.LimitNone
	r.Status = contracts.StatusTheme
}

func TestSectorSummaries(t *testing.T) {
	rows := []contracts.ClassifiedRow{
		row("A1", "Alpha", 0.05),
		row("A2", "Alpha", 0.15, locked),
		row("B1", "Beta", 0.20, touched),
	}

	got := SectorSummaries(rows)
	require.Len(t, got, 2)

	// Alpha has more members, so it sorts first despite Beta's higher
	// average return
	alpha := got[0]
	assert.Equal(t, "Alpha", alpha.Sector)
	assert.Equal(t, 2, alpha.Count)
	assert.InDelta(t, 0.10, alpha.AvgRet, 1e-12)
	assert.InDelta(t, 0.15, alpha.MaxRet, 1e-12)
	assert.Equal(t, 1, alpha.LockedCount)
	assert.Equal(t, 1, alpha.TouchCount)

	beta := got[1]
	assert.Equal(t, "Beta", beta.Sector)
	assert.Equal(t, 1, beta.Count)
	assert.InDelta(t, 0.20, beta.AvgRet, 1e-12)
	assert.Equal(t, 1, beta.TouchCount)
	assert.Equal(t, 0, beta.LockedCount)
}

func TestSectorSummariesBlankSector(t *testing.T) {
	got := SectorSummaries([]contracts.ClassifiedRow{row("X", "  ", 0.01)})
	require.Len(t, got, 1)
	assert.Equal(t, contracts.SectorUnclassified, got[0].Sector)
}

func TestWatchlistThresholdIsExact(t *testing.T) {
	rows := []contracts.ClassifiedRow{
		row("IN", "T", 0.10, open),
		row("OUT", "T", 0.0999999, open),
		row("STD", "T", 0.50), // standard regime never enters the watchlist
	}

	wl, kept := Watchlist(rows, 0.10)
	require.Len(t, wl, 1)
	assert.Equal(t, "IN", wl[0].Symbol)
	assert.True(t, wl[0].SurgeLocked)
	assert.False(t, wl[0].SurgeOpened)
	require.Len(t, kept, 1)
	assert.Equal(t, "IN", kept[0].Symbol)
}

func TestWatchlistOpenedVsLocked(t *testing.T) {
	spiked := row("SPIKE", "T", 0.04, open)
	spiked.RetHigh = 0.15 // touched the threshold intraday, faded by close

	held := row("HOLD", "T", 0.12, open)

	wl, _ := Watchlist([]contracts.ClassifiedRow{spiked, held}, 0.10)
	require.Len(t, wl, 2)

	// holders sort ahead of openers
	assert.Equal(t, "HOLD", wl[0].Symbol)
	assert.True(t, wl[0].SurgeLocked)
	assert.Equal(t, "SPIKE", wl[1].Symbol)
	assert.True(t, wl[1].SurgeTouch)
	assert.True(t, wl[1].SurgeOpened)
	assert.False(t, wl[1].SurgeLocked)
}

func TestWatchlistSchemaFullyPopulated(t *testing.T) {
	r := row("FULL", "Semis", 0.12, open)
	r.PrevClose = 100
	r.Open = 104
	r.High = 113
	r.Low = 103
	r.Close = 112
	r.Volume = 9000

	wl, _ := Watchlist([]contracts.ClassifiedRow{r}, 0.10)
	require.Len(t, wl, 1)

	w := wl[0]
	assert.Equal(t, "Semis", w.Sector)
	assert.Equal(t, 100.0, w.PrevClose)
	assert.Equal(t, int64(9000), w.Volume)
	assert.InDelta(t, 12.0, w.RetPct, 1e-9)
	assert.InDelta(t, 12.0, w.RetHighPct, 1e-9)
	assert.Equal(t, contracts.LimitOpen, w.LimitType)
}

func TestBoardOrdering(t *testing.T) {
	l1 := row("L1", "T", 0.10, locked)
	l1.Streak = 1
	l3 := row("L3", "T", 0.10, locked)
	l3.Streak = 3
	tch := row("TCH", "T", 0.09, touched)

	got := Board([]contracts.ClassifiedRow{
		row("THEME", "T", 0.25, theme), tch, l1, l3, row("PLAIN", "T", 0.01),
	})

	syms := make([]string, len(got))
	for i, r := range got {
		syms[i] = r.Symbol
	}
	assert.Equal(t, []string{"L3", "L1", "TCH", "THEME"}, syms)
}

func TestBoardExcludesOpenPoolMovers(t *testing.T) {
	spec, err := market.NewDefaultRegistry().Get("KR")
	require.NoError(t, err)
	c := classify.New(spec, classify.Options{ThemeRet: 0.10, SurgeRet: 0.10})

	sym := contracts.ResolvedSymbol{
		SymbolMeta: contracts.SymbolMeta{Symbol: "123456", Sector: "T", Market: "KR"},
		Resolved:   contracts.LimitOpen,
	}
	px := 11200.0
	day := c.Day(sym, contracts.Bar{Symbol: "123456", High: 11300, Close: &px}, 10000)

	// a +12% open-pool mover reaches the watchlist but never the board
	board := Board([]contracts.ClassifiedRow{day})
	assert.Empty(t, board)

	wl, _ := Watchlist([]contracts.ClassifiedRow{day}, 0.10)
	require.Len(t, wl, 1)
	assert.Equal(t, "123456", wl[0].Symbol)
}

func TestPeersBySector(t *testing.T) {
	board := []contracts.ClassifiedRow{row("LOCK", "Semis", 0.10, locked)}
	all := []contracts.ClassifiedRow{
		row("LOCK", "Semis", 0.10, locked), // on the board, excluded from peers
		row("P1", "Semis", 0.03),
		row("P2", "Semis", 0.07),
		row("OTHER", "Food", 0.09), // sector not on the board
		row("OPEN", "Semis", 0.08, open),
	}

	peers := PeersBySector(board, all, 50)
	require.Contains(t, peers, "Semis")
	require.NotContains(t, peers, "Food")

	semis := peers["Semis"]
	require.Len(t, semis, 2)
	assert.Equal(t, "P2", semis[0].Symbol) // return desc
	assert.Equal(t, "P1", semis[1].Symbol)
}

func TestPeersBySectorCap(t *testing.T) {
	board := []contracts.ClassifiedRow{row("LOCK", "Semis", 0.10, locked)}
	all := []contracts.ClassifiedRow{
		row("P1", "Semis", 0.01),
		row("P2", "Semis", 0.02),
		row("P3", "Semis", 0.03),
	}

	peers := PeersBySector(board, all, 2)
	require.Len(t, peers["Semis"], 2)
	assert.Equal(t, "P3", peers["Semis"][0].Symbol)
}

func TestRollupsAreIdempotent(t *testing.T) {
	rows := []contracts.ClassifiedRow{
		row("A", "S1", 0.10, locked),
		row("B", "S1", 0.10, locked), // exact tie, broken by symbol
		row("C", "S2", 0.12, open),
		row("D", "S2", 0.12, open),
		row("E", "S1", 0.02),
	}

	first := SectorSummaries(rows)
	second := SectorSummaries(rows)
	assert.Equal(t, first, second)

	wl1, _ := Watchlist(rows, 0.10)
	wl2, _ := Watchlist(rows, 0.10)
	assert.Equal(t, wl1, wl2)

	b1 := Board(rows)
	b2 := Board(rows)
	assert.Equal(t, b1, b2)
	assert.Equal(t, "A", b1[0].Symbol)
	assert.Equal(t, "B", b1[1].Symbol)
}
