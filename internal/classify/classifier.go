// Package classify turns one (symbol, day) bar into a limit-up
// classification row under the market's rules and the symbol's resolved
// regime. Classification is pure per day; streak state is merged in by
// the pipeline afterwards.
package classify

import (
	"fmt"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
	"github.com/wonny/limitup/internal/rules"
)

// eps absorbs float drift on threshold comparisons (surge, theme, auto
// no-limit minimum return). Exact price comparisons never use it.
const eps = 1e-9

// Options tunes the classifier. Zero thresholds disable the feature.
type Options struct {
	// ThemeRet marks an open/no-limit row as a theme mover.
	ThemeRet float64

	// SurgeRet is the daily return that counts as a surge hit for
	// streak purposes on open/no-limit pools.
	SurgeRet float64

	// UseOvershootLock accepts closes at or above the limit as locked,
	// for vendors whose prints can nominally exceed the ceiling.
	UseOvershootLock bool

	// AutoNoLimitFromPrice reclassifies a standard row as no_limit when
	// the high clears the theoretical ceiling by ExceedTicks ticks and
	// the return is at least MinRet. Catches stale regime metadata.
	AutoNoLimitFromPrice   bool
	AutoNoLimitExceedTicks int
	AutoNoLimitMinRet      float64
}

// Classifier evaluates bars for one market.
type Classifier struct {
	spec *market.Spec
	opts Options
}

func New(spec *market.Spec, opts Options) *Classifier {
	return &Classifier{spec: spec, opts: opts}
}

// Day classifies a single bar against the previous close. prevClose <= 0
// means unknown; the row is still emitted with zero returns and no limit
// flags so the symbol stays visible downstream.
func (c *Classifier) Day(sym contracts.ResolvedSymbol, bar contracts.Bar, prevClose float64) contracts.ClassifiedRow {
	row := contracts.ClassifiedRow{
		Symbol:       sym.Symbol,
		Name:         sym.Name,
		Sector:       contracts.NormalizeSector(sym.Sector),
		Market:       sym.Market,
		MarketDetail: sym.MarketDetail,
		LimitType:    sym.Resolved,
		Date:         bar.Date,
		PrevClose:    prevClose,
		Open:         bar.Open,
		High:         bar.High,
		Low:          bar.Low,
		Close:        bar.CloseOrZero(),
		Volume:       bar.Volume,
	}

	if sym.Resolved == contracts.LimitStandard {
		// vendor prints can sit off-grid; re-align every price column
		// to the tick schedule before any comparison
		row.Open = c.spec.Ticks.RoundToTick(row.Open)
		row.High = c.spec.Ticks.RoundToTick(row.High)
		row.Low = c.spec.Ticks.RoundToTick(row.Low)
		if bar.HasClose() {
			row.Close = c.spec.Ticks.RoundToTick(row.Close)
		}
	}

	if prevClose > 0 {
		if bar.HasClose() {
			row.Ret = row.Close/prevClose - 1.0
		}
		if row.High > 0 {
			row.RetHigh = row.High/prevClose - 1.0
		}
	}

	if sym.Resolved == contracts.LimitStandard && prevClose > 0 {
		c.applyLimitFlags(&row, sym)
	}

	row.Status = c.status(&row)
	return row
}

func (c *Classifier) applyLimitFlags(row *contracts.ClassifiedRow, sym contracts.ResolvedSymbol) {
	lu, err := c.spec.LimitPriceFor(sym.SymbolMeta, row.PrevClose)
	if err != nil || lu <= 0 {
		return
	}
	row.LimitPrice = lu

	if c.opts.AutoNoLimitFromPrice && c.highBreaksCeiling(row.High, lu) && row.Ret >= c.opts.AutoNoLimitMinRet-eps {
		// price action is incompatible with a capped board: the regime
		// metadata is stale, treat the symbol as uncapped today
		row.LimitType = contracts.LimitNone
		row.LimitPrice = 0
		return
	}

	row.IsTouch = rules.IsTouch(row.High, lu)
	if c.opts.UseOvershootLock {
		row.IsLocked = rules.IsLockedOvershoot(row.Close, lu, c.spec.Ticks)
	} else {
		row.IsLocked = rules.IsLocked(row.Close, lu, c.spec.Ticks)
	}
}

// highBreaksCeiling reports whether the high sits strictly more than the
// configured number of ticks above the theoretical limit.
func (c *Classifier) highBreaksCeiling(high, lu float64) bool {
	n := c.opts.AutoNoLimitExceedTicks
	if n <= 0 {
		n = 1
	}
	return high > lu+float64(n)*c.spec.Ticks.TickSize(lu)
}

func (c *Classifier) status(row *contracts.ClassifiedRow) contracts.BoardStatus {
	switch {
	case row.IsLocked:
		return contracts.StatusLocked
	case row.IsTouch:
		return contracts.StatusTouchOnly
	// only no-limit symbols enter the board as theme rows; open pools
	// are served by the watchlist, never the main board
	case row.LimitType == contracts.LimitNone && c.opts.ThemeRet > 0 && row.Ret >= c.opts.ThemeRet-eps:
		return contracts.StatusTheme
	default:
		return ""
	}
}

// Surge reports whether a return counts as a surge hit.
func (c *Classifier) Surge(ret float64) bool {
	return c.opts.SurgeRet > 0 && ret >= c.opts.SurgeRet-eps
}

// StatusText renders the board status with streak context, for display
// consumers that show plain labels instead of flags.
func StatusText(row *contracts.ClassifiedRow) string {
	switch row.Status {
	case contracts.StatusLocked:
		if row.Streak > 1 {
			return fmt.Sprintf("Locked %dd", row.Streak)
		}
		return "Locked"
	case contracts.StatusTouchOnly:
		if row.StreakPrev > 0 {
			return fmt.Sprintf("Touched, run %d", row.StreakPrev)
		}
		return "Touched, no run"
	case contracts.StatusTheme:
		if row.SurgeStreak > 1 {
			return fmt.Sprintf("Theme %dd +%.1f%%", row.SurgeStreak, row.RetPct())
		}
		return fmt.Sprintf("Theme +%.1f%%", row.RetPct())
	default:
		return ""
	}
}
