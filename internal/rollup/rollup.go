// Package rollup derives the presentation aggregates from a day's
// classified rows: the limit-up board, per-sector summaries, the surge
// watchlist for open pools, and same-sector peer lists. Every function
// is pure and deterministic: identical input yields identical output,
// element order included, so a rerun never produces a different board.
package rollup

import (
	"sort"

	"github.com/wonny/limitup/internal/classify"
	"github.com/wonny/limitup/internal/contracts"
)

// statusRank orders board rows: locked before touch-only before theme.
var statusRank = map[contracts.BoardStatus]int{
	contracts.StatusLocked:    0,
	contracts.StatusTouchOnly: 1,
	contracts.StatusTheme:     2,
}

// Board selects the rows with a board status and orders them for
// display: status rank, then streak, then return, then symbol.
func Board(rows []contracts.ClassifiedRow) []contracts.ClassifiedRow {
	out := make([]contracts.ClassifiedRow, 0, len(rows))
	for _, r := range rows {
		if r.Status != "" {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if a.Ret != b.Ret {
			return a.Ret > b.Ret
		}
		return a.Symbol < b.Symbol
	})
	return out
}

// SectorSummaries groups rows by sector and aggregates counts and
// returns. Blank sectors were normalized upstream, so every row lands
// in a named group. Order: count desc, avg return desc, sector asc.
func SectorSummaries(rows []contracts.ClassifiedRow) []contracts.SectorSummary {
	groups := make(map[string]*contracts.SectorSummary)
	sums := make(map[string]float64)

	for _, r := range rows {
		sec := contracts.NormalizeSector(r.Sector)
		g, ok := groups[sec]
		if !ok {
			g = &contracts.SectorSummary{Sector: sec}
			groups[sec] = g
		}
		g.Count++
		sums[sec] += r.Ret
		if g.Count == 1 || r.Ret > g.MaxRet {
			g.MaxRet = r.Ret
		}
		if r.IsLocked {
			g.LockedCount++
		}
		if r.IsTouch {
			g.TouchCount++
		}
		switch r.LimitType {
		case contracts.LimitNone:
			g.ThemeCount++
		case contracts.LimitOpen:
			g.OpenCount++
		}
	}

	out := make([]contracts.SectorSummary, 0, len(groups))
	for sec, g := range groups {
		g.AvgRet = sums[sec] / float64(g.Count)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].AvgRet != out[j].AvgRet {
			return out[i].AvgRet > out[j].AvgRet
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

// Watchlist builds the surge watchlist from the open and no-limit
// pools. Inclusion is exact: the intraday high return must reach the
// threshold, no epsilon, so 0.0999999 stays out at 0.10. The second
// return value is the classified rows behind the watchlist, for sector
// rollups over the same population.
func Watchlist(rows []contracts.ClassifiedRow, threshold float64) ([]contracts.WatchlistRow, []contracts.ClassifiedRow) {
	var out []contracts.WatchlistRow
	var kept []contracts.ClassifiedRow

	for _, r := range rows {
		if r.LimitType == contracts.LimitStandard {
			continue
		}
		touch := r.RetHigh >= threshold
		if !touch {
			continue
		}
		locked := r.Ret >= threshold

		out = append(out, contracts.WatchlistRow{
			Symbol:       r.Symbol,
			Name:         r.Name,
			Sector:       r.Sector,
			Market:       r.Market,
			MarketDetail: r.MarketDetail,
			Date:         r.Date,
			PrevClose:    r.PrevClose,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			Ret:          r.Ret,
			RetPct:       r.RetPct(),
			RetHigh:      r.RetHigh,
			RetHighPct:   r.RetHigh * 100.0,
			LimitType:    r.LimitType,
			SurgeTouch:   touch,
			SurgeLocked:  locked,
			SurgeOpened:  touch && !locked,
			StatusText:   classify.StatusText(&r),
		})
		kept = append(kept, r)
	}

	idx := sortedWatchlistIndex(out)
	sorted := make([]contracts.WatchlistRow, len(out))
	sortedKept := make([]contracts.ClassifiedRow, len(kept))
	for i, j := range idx {
		sorted[i] = out[j]
		sortedKept[i] = kept[j]
	}
	return sorted, sortedKept
}

// sortedWatchlistIndex orders watchlist entries: holders first, then
// openers, then by return and symbol. Returned as an index permutation
// so the parallel classified slice stays aligned.
func sortedWatchlistIndex(rows []contracts.WatchlistRow) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, b := &rows[idx[x]], &rows[idx[y]]
		if a.SurgeLocked != b.SurgeLocked {
			return a.SurgeLocked
		}
		if a.SurgeOpened != b.SurgeOpened {
			return a.SurgeOpened
		}
		if a.Ret != b.Ret {
			return a.Ret > b.Ret
		}
		return a.Symbol < b.Symbol
	})
	return idx
}

// PeersBySector lists, for every sector present on the board, the
// standard-regime symbols in that sector that did NOT touch or lock,
// ordered by return. maxPer bounds each sector list; maxPer <= 0 means
// unlimited.
func PeersBySector(board, all []contracts.ClassifiedRow, maxPer int) map[string][]contracts.ClassifiedRow {
	onBoard := make(map[string]struct{})
	for _, r := range board {
		onBoard[contracts.NormalizeSector(r.Sector)] = struct{}{}
	}
	if len(onBoard) == 0 {
		return map[string][]contracts.ClassifiedRow{}
	}

	peers := make(map[string][]contracts.ClassifiedRow, len(onBoard))
	for _, r := range all {
		sec := contracts.NormalizeSector(r.Sector)
		if _, ok := onBoard[sec]; !ok {
			continue
		}
		if r.LimitType != contracts.LimitStandard || r.IsTouch || r.IsLocked {
			continue
		}
		peers[sec] = append(peers[sec], r)
	}

	for sec, list := range peers {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Ret != list[j].Ret {
				return list[i].Ret > list[j].Ret
			}
			return list[i].Symbol < list[j].Symbol
		})
		if maxPer > 0 && len(list) > maxPer {
			list = list[:maxPer]
		}
		peers[sec] = list
	}
	return peers
}
