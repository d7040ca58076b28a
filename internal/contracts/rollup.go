package contracts

import "time"

// SectorSummary is one aggregated row per sector group.
// Derived fresh each run; never persisted across days as its own entity.
type SectorSummary struct {
	Sector      string  `json:"sector"`
	Count       int     `json:"count"`
	AvgRet      float64 `json:"avg_ret"`
	MaxRet      float64 `json:"max_ret"`
	LockedCount int     `json:"locked_cnt"`
	TouchCount  int     `json:"touch_cnt"`
	ThemeCount  int     `json:"no_limit_cnt"`
	OpenCount   int     `json:"open_limit_cnt"`
}

// WatchlistRow is one fixed-schema row of the open/candidate watchlist.
// Every declared column is always present: consumers may serialize it
// directly without checking for missing fields. Touch/locked here carry
// threshold semantics (ret ≥ threshold), not limit-price semantics.
type WatchlistRow struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	Market       string    `json:"market"`
	MarketDetail string    `json:"market_detail"`
	Date         time.Time `json:"date"`
	PrevClose    float64   `json:"prev_close"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
	Ret          float64   `json:"ret"`
	RetPct       float64   `json:"ret_pct"`
	RetHigh      float64   `json:"ret_high"`
	RetHighPct   float64   `json:"ret_high_pct"`
	LimitType    LimitType `json:"limit_type"`
	SurgeTouch   bool      `json:"is_surge_touch"`  // high reached the threshold intraday
	SurgeLocked  bool      `json:"is_surge_locked"` // close held the threshold
	SurgeOpened  bool      `json:"is_surge_opened"` // touched but did not hold
	StatusText   string    `json:"status_text"`
}

// SnapshotStats summarizes one market-day snapshot.
type SnapshotStats struct {
	TotalSymbols   int `json:"total_symbols"`
	ClassifiedRows int `json:"classified_rows"`
	LockedCount    int `json:"locked_count"`
	TouchCount     int `json:"touch_count"`
	WatchlistCount int `json:"watchlist_count"`
}

// Snapshot bundles everything the pipeline produces for one (market, day):
// the classified board, sector rollups, the candidate watchlist, and
// same-sector peers, ready for the API / dashboard / export consumers.
type Snapshot struct {
	Market string    `json:"market"`
	Date   time.Time `json:"date"`

	Rows             []ClassifiedRow            `json:"rows"`
	Sectors          []SectorSummary            `json:"sector_summary"`
	Watchlist        []WatchlistRow             `json:"watchlist"`
	WatchlistSectors []SectorSummary            `json:"watchlist_sector_summary"`
	PeersBySector    map[string][]ClassifiedRow `json:"peers_by_sector"`

	Stats SnapshotStats `json:"stats"`
}
