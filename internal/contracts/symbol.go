package contracts

import (
	"strings"
	"time"
)

// LimitType identifies which price-ceiling regime applies to a symbol.
// ⭐ SSOT: the allowed regime values are defined only here
type LimitType string

const (
	// LimitStandard: a fixed move ceiling applies; a limit price can be
	// computed and touch/locked tests are meaningful.
	LimitStandard LimitType = "standard"

	// LimitNone: no move ceiling (fresh listing window, special regimes,
	// manual overrides). Scored on raw return thresholds only.
	LimitNone LimitType = "no_limit"

	// LimitOpen: open venue without a tracked ceiling (e.g. an emerging
	// OTC board). Scored on raw return thresholds only.
	LimitOpen LimitType = "open_limit"
)

// Valid reports whether lt is one of the three allowed regimes.
func (lt LimitType) Valid() bool {
	switch lt {
	case LimitStandard, LimitNone, LimitOpen:
		return true
	}
	return false
}

// SectorUnclassified is the sentinel used for blank/unknown sector labels
// so that rollups never silently drop symbols.
const SectorUnclassified = "Unclassified"

// NormalizeSector coerces blank sector labels to the sentinel.
func NormalizeSector(sector string) string {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return SectorUnclassified
	}
	return sector
}

// SymbolMeta is the static-ish per-symbol descriptive record.
// The classification core treats it as read-only input; the resolved
// regime is carried on ResolvedSymbol, never written back.
type SymbolMeta struct {
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Sector       string     `json:"sector"`
	Market       string     `json:"market"`        // country/exchange code, e.g. "TW"
	MarketDetail string     `json:"market_detail"` // listed / otc / emerging / ...
	LimitType    string     `json:"limit_type,omitempty"` // optional explicit/legacy override
	LimitRatio   *float64   `json:"limit_ratio,omitempty"` // per-symbol circuit band (IN style)
	ListedDate   *time.Time `json:"listed_date,omitempty"`
}

// ResolvedSymbol is a SymbolMeta annotated with the authoritative regime.
// Produced by the regime resolver; downstream stages consult Resolved
// before deciding whether to run the limit-price pipeline.
type ResolvedSymbol struct {
	SymbolMeta
	Resolved LimitType `json:"resolved_limit_type"`
}
