// Package regime decides which price-limit regime governs a symbol on a
// given day. Resolution is a pure function over the symbol metadata and
// the market spec; callers receive annotated copies and the inputs are
// never mutated.
package regime

import (
	"strings"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/market"
)

// synonyms maps legacy limit-type labels found in upstream symbol files
// onto the canonical three-value regime.
var synonyms = map[string]contracts.LimitType{
	"emerging_no_limit": contracts.LimitOpen,
	"emerging":          contracts.LimitOpen,
	"open_limit":        contracts.LimitOpen,
	"unlimited":         contracts.LimitNone,
	"no_limit_theme":    contracts.LimitNone,
	"no_limit":          contracts.LimitNone,
	"standard":          contracts.LimitStandard,
}

// Resolve returns the regime for one symbol. Precedence, highest first:
//
//  1. the symbol trades on an open board (emerging/ROTC style segments
//     named by the market spec), which always means open_limit
//  2. the symbol appears in the manual no-limit override set
//  3. the legacy limit-type label on the metadata, normalized through
//     the synonym table
//  4. the market default, with standard demoted to no_limit when the
//     market has no usable up-rate for this symbol
//
// Anything unrecognized clamps to standard.
func Resolve(spec *market.Spec, meta contracts.SymbolMeta, noLimit map[string]struct{}) contracts.LimitType {
	if spec != nil && spec.IsOpenBoard(meta.MarketDetail) {
		return contracts.LimitOpen
	}
	if _, ok := noLimit[meta.Symbol]; ok {
		return contracts.LimitNone
	}

	label := strings.ToLower(strings.TrimSpace(meta.LimitType))
	if lt, ok := synonyms[label]; ok {
		if lt == contracts.LimitStandard {
			return demoteIfRateless(spec, meta)
		}
		return lt
	}
	if label != "" {
		// corrupted override data clamps to the conservative regime
		return demoteIfRateless(spec, meta)
	}

	if spec != nil {
		if spec.DefaultLimitType == contracts.LimitStandard {
			return demoteIfRateless(spec, meta)
		}
		if spec.DefaultLimitType.Valid() {
			return spec.DefaultLimitType
		}
	}
	return contracts.LimitStandard
}

// demoteIfRateless keeps the standard regime only when the market can
// actually produce a limit price for the symbol. Markets that carry the
// band per symbol (India circuit limits) yield no_limit for symbols
// without one.
func demoteIfRateless(spec *market.Spec, meta contracts.SymbolMeta) contracts.LimitType {
	if spec == nil {
		return contracts.LimitStandard
	}
	if spec.MoveAmount == nil && spec.UpRateFor(meta) <= 0 {
		return contracts.LimitNone
	}
	return contracts.LimitStandard
}

// ResolveAll annotates every symbol with its resolved regime. The
// returned slice preserves input order.
func ResolveAll(spec *market.Spec, metas []contracts.SymbolMeta, noLimit map[string]struct{}) []contracts.ResolvedSymbol {
	out := make([]contracts.ResolvedSymbol, len(metas))
	for i, m := range metas {
		out[i] = contracts.ResolvedSymbol{
			SymbolMeta: m,
			Resolved:   Resolve(spec, m, noLimit),
		}
	}
	return out
}
