package contracts

import "time"

// BoardStatus is the limit-up board status of a classified row.
type BoardStatus string

const (
	StatusLocked    BoardStatus = "locked"
	StatusTouchOnly BoardStatus = "touch_only"
	StatusTheme     BoardStatus = "no_limit_theme"
)

// ClassifiedRow is one (symbol, date-under-evaluation) output row: the
// symbol metadata merged with the limit classification and streak state.
// Every field is always populated; consumers may rely on the full schema.
type ClassifiedRow struct {
	// Identity (from SymbolMeta)
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	Market       string    `json:"market"`
	MarketDetail string    `json:"market_detail"`
	LimitType    LimitType `json:"limit_type"`

	// Bar under evaluation
	Date      time.Time `json:"date"`
	PrevClose float64   `json:"prev_close"` // 0 when unknown
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"` // 0 when the vendor reported none
	Volume    int64     `json:"volume"`

	// Returns relative to prev close (0 when prev close unknown)
	Ret     float64 `json:"ret"`      // close/prev − 1
	RetHigh float64 `json:"ret_high"` // high/prev − 1

	// Limit classification (meaningful only for LimitStandard)
	LimitPrice float64 `json:"limit_price"` // 0 when no limit is defined
	IsTouch    bool    `json:"is_limitup_touch"`
	IsLocked   bool    `json:"is_limitup_locked"`

	// Streak state (limit-up semantics)
	Streak     int  `json:"streak"`
	StreakPrev int  `json:"streak_prev"`
	HitPrev    bool `json:"prev_is_locked"`
	TouchPrev  bool `json:"prev_is_touch"`

	// Surge state (threshold semantics, open/no-limit pools)
	SurgeStreak     int  `json:"surge_streak"`
	SurgeStreakPrev int  `json:"surge_streak_prev"`
	SurgeHitPrev    bool `json:"prev_is_surge"`

	// Board presentation
	Status     BoardStatus `json:"limitup_status,omitempty"`
	StatusText string      `json:"status_text"`
}

// RetPct returns Ret in percent, for display consumers.
func (r *ClassifiedRow) RetPct() float64 {
	return r.Ret * 100.0
}
