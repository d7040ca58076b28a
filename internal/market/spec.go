// Package market holds the per-market configuration table: tick
// schedule, default move-limit ratio, board-level regime rules. One
// generic engine parameterized by these specs replaces per-market code.
package market

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/rules"
)

// RatioFunc returns the move-limit ratio for a symbol, for markets where
// the ratio depends on board or symbol naming (e.g. CN boards).
type RatioFunc func(meta contracts.SymbolMeta) float64

// AmountFunc returns the absolute limit move amount for a base price,
// for markets with tiered amount tables instead of ratios (e.g. JP).
type AmountFunc func(prevClose float64) float64

// Spec describes one market's limit regime parameters.
type Spec struct {
	Code string
	Name string

	// Ticks is the market's tick schedule.
	Ticks rules.TickTable

	// DefaultUpRate is the standard move-limit ratio (0.10 == 10%).
	DefaultUpRate float64

	// DefaultLimitType is the regime assumed when nothing else applies.
	// Markets without a tracked ceiling (US) use LimitOpen.
	DefaultLimitType contracts.LimitType

	// OpenBoards lists market_detail values that put a symbol on an open
	// venue without a tracked ceiling (e.g. TW "emerging").
	OpenBoards []string

	// RatioOverride, when set, supersedes DefaultUpRate per symbol.
	RatioOverride RatioFunc

	// MoveAmount, when set, replaces ratio math entirely: the limit price
	// is prevClose + MoveAmount(prevClose), floored to the tick.
	MoveAmount AmountFunc
}

// IsOpenBoard reports whether the market_detail value names an open venue.
func (s *Spec) IsOpenBoard(marketDetail string) bool {
	md := strings.ToLower(strings.TrimSpace(marketDetail))
	for _, b := range s.OpenBoards {
		if md == b {
			return true
		}
	}
	return false
}

// UpRateFor resolves the move-limit ratio for one symbol. Precedence:
// per-symbol circuit band (metadata) > board/name rule > market default.
func (s *Spec) UpRateFor(meta contracts.SymbolMeta) float64 {
	if meta.LimitRatio != nil && *meta.LimitRatio > 0 {
		return *meta.LimitRatio
	}
	if s.RatioOverride != nil {
		return s.RatioOverride(meta)
	}
	return s.DefaultUpRate
}

// LimitPriceFor computes the symbol's theoretical limit price from the
// previous close under this market's rules.
func (s *Spec) LimitPriceFor(meta contracts.SymbolMeta, prevClose float64) (float64, error) {
	if s.MoveAmount != nil {
		if prevClose <= 0 {
			return 0, rules.ErrInvalidPrevClose
		}
		raw := prevClose + s.MoveAmount(prevClose)
		return s.Ticks.FloorToTick(raw), nil
	}
	return rules.LimitPrice(prevClose, s.UpRateFor(meta), s.Ticks)
}

// Registry holds all configured markets.
// ⭐ SSOT: market lookup goes through the registry only
type Registry struct {
	specs map[string]*Spec
}

// NewRegistry builds a registry from the given specs.
func NewRegistry(specs ...*Spec) *Registry {
	r := &Registry{specs: make(map[string]*Spec, len(specs))}
	for _, s := range specs {
		r.specs[s.Code] = s
	}
	return r
}

// Get returns the spec for a market code.
func (r *Registry) Get(code string) (*Spec, error) {
	s, ok := r.specs[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("market: unknown market %q", code)
	}
	return s, nil
}

// Codes returns all market codes in deterministic order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.specs))
	for code := range r.specs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// put registers or replaces a spec (used by the YAML loader).
func (r *Registry) put(s *Spec) {
	r.specs[s.Code] = s
}
