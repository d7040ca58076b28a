// Package pipeline orchestrates one market-day run: load symbols and
// bars, resolve regimes, classify each day in the rolling window, fold
// the per-day flags into streaks, roll everything up into a snapshot and
// persist it.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/limitup/internal/classify"
	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
	"github.com/wonny/limitup/internal/regime"
	"github.com/wonny/limitup/internal/rollup"
	"github.com/wonny/limitup/internal/streak"
	"github.com/wonny/limitup/pkg/config"
	"github.com/wonny/limitup/pkg/logger"
)

// Runner builds limit-up snapshots for configured markets.
type Runner struct {
	bars      contracts.BarRepository
	symbols   contracts.SymbolRepository
	snapshots contracts.SnapshotRepository
	registry  *market.Registry
	cfg       config.EngineConfig
	log       *logger.Logger
}

func New(
	bars contracts.BarRepository,
	symbols contracts.SymbolRepository,
	snapshots contracts.SnapshotRepository,
	registry *market.Registry,
	cfg config.EngineConfig,
	log *logger.Logger,
) *Runner {
	return &Runner{
		bars:      bars,
		symbols:   symbols,
		snapshots: snapshots,
		registry:  registry,
		cfg:       cfg,
		log:       log,
	}
}

// Run builds and persists the snapshot for one market as of the given
// date. asOf is resolved to the latest trading date with data on or
// before it, so weekend and pre-open invocations land on the last
// session.
func (r *Runner) Run(ctx context.Context, marketCode string, asOf time.Time) (*contracts.Snapshot, error) {
	started := time.Now()

	spec, err := r.registry.Get(marketCode)
	if err != nil {
		return nil, err
	}

	date, err := r.bars.LatestDate(ctx, spec.Code, asOf)
	if err != nil {
		return nil, fmt.Errorf("pipeline: resolve trading date for %s: %w", spec.Code, err)
	}

	metas, err := r.symbols.ListByMarket(ctx, spec.Code)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load symbols for %s: %w", spec.Code, err)
	}
	resolved := regime.ResolveAll(spec, metas, r.cfg.NoLimitSymbols)

	window, err := r.bars.GetWindow(ctx, spec.Code, date, r.cfg.StreakWindowDays)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load bar window for %s: %w", spec.Code, err)
	}

	snap := r.build(spec, resolved, window, date)

	if r.snapshots != nil {
		if err := r.snapshots.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("pipeline: save snapshot %s/%s: %w", spec.Code, date.Format("2006-01-02"), err)
		}
	}

	r.log.WithFields(map[string]interface{}{
		"market":     spec.Code,
		"date":       date.Format("2006-01-02"),
		"symbols":    snap.Stats.TotalSymbols,
		"classified": snap.Stats.ClassifiedRows,
		"locked":     snap.Stats.LockedCount,
		"touched":    snap.Stats.TouchCount,
		"watchlist":  snap.Stats.WatchlistCount,
		"elapsed":    time.Since(started).String(),
	}).Info("snapshot built")

	return snap, nil
}

// build is the pure aggregation over already-loaded inputs. Split out so
// tests can exercise the full fold without repositories.
func (r *Runner) build(spec *market.Spec, symbols []contracts.ResolvedSymbol, window []contracts.Bar, date time.Time) *contracts.Snapshot {
	classifier := classify.New(spec, classify.Options{
		ThemeRet:               r.cfg.ThemeRet,
		SurgeRet:               r.cfg.CandidateRet,
		UseOvershootLock:       r.cfg.UseOvershootLock,
		AutoNoLimitFromPrice:   r.cfg.AutoNoLimitFromPrice,
		AutoNoLimitExceedTicks: r.cfg.AutoNoLimitExceedTicks,
		AutoNoLimitMinRet:      r.cfg.AutoNoLimitMinRet,
	})

	bySymbol := groupBars(window)
	calendar := tradingCalendar(window)
	dateKey := date.Format("2006-01-02")

	rows := make([]contracts.ClassifiedRow, 0, len(symbols))
	for _, sym := range symbols {
		bars := bySymbol[sym.Symbol]
		if len(bars) == 0 {
			continue
		}

		row, days, present := classifySeries(classifier, sym, bars, calendar, dateKey)
		if !present {
			// no bar on the evaluation date: halted or delisted today
			continue
		}

		st := streak.Evaluate(days)
		row.Streak = st.Streak
		row.StreakPrev = st.StreakPrev
		row.HitPrev = st.HitPrev
		row.TouchPrev = st.TouchPrev
		row.SurgeStreak = st.SurgeStreak
		row.SurgeStreakPrev = st.SurgeStreakPrev
		row.SurgeHitPrev = st.SurgeHitPrev
		row.StatusText = classify.StatusText(&row)

		rows = append(rows, row)
	}

	board := rollup.Board(rows)
	watchlist, watchRows := rollup.Watchlist(rows, r.cfg.CandidateRet)

	snap := &contracts.Snapshot{
		Market:           spec.Code,
		Date:             date,
		Rows:             board,
		Sectors:          rollup.SectorSummaries(board),
		Watchlist:        watchlist,
		WatchlistSectors: rollup.SectorSummaries(watchRows),
		PeersBySector:    rollup.PeersBySector(board, rows, r.cfg.PeersPerSectorCap),
	}
	snap.Stats = contracts.SnapshotStats{
		TotalSymbols:   len(symbols),
		ClassifiedRows: len(rows),
		WatchlistCount: len(watchlist),
	}
	for _, row := range rows {
		if row.IsLocked {
			snap.Stats.LockedCount++
		}
		if row.IsTouch {
			snap.Stats.TouchCount++
		}
	}
	return snap
}

// classifySeries walks one symbol's bars over the window calendar,
// classifying every day and collecting the per-day streak flags. The
// returned row is the classification of the evaluation date; present is
// false when the symbol has no bar on that date.
func classifySeries(c *classify.Classifier, sym contracts.ResolvedSymbol, bars []contracts.Bar, calendar []string, dateKey string) (contracts.ClassifiedRow, []streak.Day, bool) {
	byDate := make(map[string]contracts.Bar, len(bars))
	for _, b := range bars {
		byDate[b.YMD()] = b
	}

	var (
		final     contracts.ClassifiedRow
		present   bool
		prevClose float64
		days      = make([]streak.Day, 0, len(calendar))
	)

	for _, key := range calendar {
		if key > dateKey {
			break
		}

		b, ok := byDate[key]
		if !ok {
			days = append(days, streak.Day{})
			continue
		}

		row := c.Day(sym, b, prevClose)
		days = append(days, streak.Day{
			Present: true,
			Locked:  row.IsLocked,
			Touch:   row.IsTouch,
			Surge:   row.LimitType != contracts.LimitStandard && c.Surge(row.Ret),
		})
		if b.HasClose() {
			prevClose = row.Close
		}

		if key == dateKey {
			final = row
			present = true
		}
	}

	return final, days, present
}

// groupBars splits bars by symbol, preserving the repository's
// (symbol, date) ordering inside each group.
func groupBars(window []contracts.Bar) map[string][]contracts.Bar {
	out := make(map[string][]contracts.Bar)
	for _, b := range window {
		out[b.Symbol] = append(out[b.Symbol], b)
	}
	return out
}

// tradingCalendar derives the market's trading dates from the union of
// bar dates in the window. A symbol missing one of these dates was not
// trading while the market was, which breaks its streaks.
func tradingCalendar(window []contracts.Bar) []string {
	seen := make(map[string]struct{})
	for _, b := range window {
		seen[b.YMD()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out) // ISO dates sort correctly as strings
	return out
}
