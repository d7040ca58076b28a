package market

import (
	"math"
	"regexp"
	"strings"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/internal/rules"
)

// stRe matches CN special-treatment names (ST / *ST), which trade under
// a tighter 5% ceiling.
var stRe = regexp.MustCompile(`(?i)(^|\s)\*?ST`)

// NewDefaultRegistry returns the built-in market table. A YAML markets
// file can override or extend it at startup.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		taiwanSpec(),
		chinaSpec(),
		koreaSpec(),
		japanSpec(),
		thailandSpec(),
		indiaSpec(),
		usSpec(),
	)
}

// taiwanSpec: 10% ceiling on listed/OTC boards, emerging board is open.
func taiwanSpec() *Spec {
	return &Spec{
		Code:             "TW",
		Name:             "Taiwan",
		Ticks:            rules.TWTicks,
		DefaultUpRate:    0.10,
		DefaultLimitType: contracts.LimitStandard,
		OpenBoards:       []string{"emerging", "rotc", "otc_emerging"},
	}
}

// chinaSpec: flat 0.01 tick; ratio depends on board and ST flag:
// ST names 5%, ChiNext (30x) / STAR (68x) 20%, Beijing (8x/4x) 30%,
// main boards 10%.
func chinaSpec() *Spec {
	return &Spec{
		Code:             "CN",
		Name:             "China A-shares",
		Ticks:            flatTick(0.01),
		DefaultUpRate:    0.10,
		DefaultLimitType: contracts.LimitStandard,
		RatioOverride: func(meta contracts.SymbolMeta) float64 {
			if stRe.MatchString(meta.Name) {
				return 0.05
			}
			code := digitsPrefix(meta.Symbol)
			switch {
			case strings.HasPrefix(code, "30"), strings.HasPrefix(code, "68"):
				return 0.20
			case strings.HasPrefix(code, "8"), strings.HasPrefix(code, "4"):
				return 0.30
			}
			return 0.10
		},
	}
}

// koreaSpec: KRX 30% ceiling with the KRX tick schedule.
func koreaSpec() *Spec {
	return &Spec{
		Code:             "KR",
		Name:             "Korea",
		DefaultUpRate:    0.30,
		DefaultLimitType: contracts.LimitStandard,
		Ticks: rules.TickTable{
			{Upper: 2000, Tick: 1},
			{Upper: 5000, Tick: 5},
			{Upper: 20000, Tick: 10},
			{Upper: 50000, Tick: 50},
			{Upper: 200000, Tick: 100},
			{Upper: 500000, Tick: 500},
			{Upper: math.Inf(1), Tick: 1000},
		},
	}
}

// japanSpec: tiered absolute move-amount table (daily price limits by
// base price); standard cases only, expanded-limit measures excluded.
func japanSpec() *Spec {
	return &Spec{
		Code:             "JP",
		Name:             "Japan",
		Ticks:            flatTick(1),
		DefaultLimitType: contracts.LimitStandard,
		MoveAmount:       jpMoveAmount,
	}
}

// thailandSpec: SET 30% ceiling with the SET tick schedule.
func thailandSpec() *Spec {
	return &Spec{
		Code:             "TH",
		Name:             "Thailand",
		DefaultUpRate:    0.30,
		DefaultLimitType: contracts.LimitStandard,
		Ticks: rules.TickTable{
			{Upper: 2, Tick: 0.01},
			{Upper: 5, Tick: 0.02},
			{Upper: 10, Tick: 0.05},
			{Upper: 25, Tick: 0.1},
			{Upper: 100, Tick: 0.25},
			{Upper: 200, Tick: 0.5},
			{Upper: 400, Tick: 1},
			{Upper: math.Inf(1), Tick: 2},
		},
	}
}

// indiaSpec: the circuit band is carried per symbol on the metadata;
// symbols without a band (F&O names without circuit limits) are demoted
// to the no-limit regime by the resolver, so the market default stays 0.
func indiaSpec() *Spec {
	return &Spec{
		Code:             "IN",
		Name:             "India",
		Ticks:            flatTick(0.05),
		DefaultUpRate:    0,
		DefaultLimitType: contracts.LimitStandard,
	}
}

// usSpec: no daily price ceiling; everything is scored on raw return
// thresholds (movers style).
func usSpec() *Spec {
	return &Spec{
		Code:             "US",
		Name:             "United States",
		Ticks:            flatTick(0.01),
		DefaultLimitType: contracts.LimitOpen,
	}
}

func flatTick(tick float64) rules.TickTable {
	return rules.TickTable{{Upper: math.Inf(1), Tick: tick}}
}

// digitsPrefix strips exchange suffixes like ".SZ" and returns the
// leading numeric part of a symbol.
func digitsPrefix(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		symbol = symbol[:i]
	}
	return symbol
}

// jpMoveAmount is the standard TSE tiered price-limit table: base price
// to upper limit move in JPY.
func jpMoveAmount(prevClose float64) float64 {
	p := prevClose
	switch {
	case p <= 0:
		return 0
	case p < 100:
		return 30
	case p < 200:
		return 50
	case p < 500:
		return 80
	case p < 700:
		return 100
	case p < 1000:
		return 150
	case p < 1500:
		return 300
	case p < 2000:
		return 400
	case p < 3000:
		return 500
	case p < 5000:
		return 700
	case p < 7000:
		return 1000
	case p < 10000:
		return 1500
	case p < 15000:
		return 3000
	case p < 20000:
		return 4000
	case p < 30000:
		return 5000
	case p < 50000:
		return 7000
	case p < 70000:
		return 10000
	case p < 100000:
		return 15000
	case p < 150000:
		return 30000
	case p < 200000:
		return 40000
	case p < 300000:
		return 50000
	case p < 500000:
		return 70000
	case p < 700000:
		return 100000
	case p < 1000000:
		return 150000
	case p < 1500000:
		return 300000
	case p < 2000000:
		return 400000
	case p < 3000000:
		return 500000
	case p < 5000000:
		return 700000
	case p < 7000000:
		return 1000000
	case p < 10000000:
		return 1500000
	case p < 15000000:
		return 3000000
	case p < 20000000:
		return 4000000
	case p < 30000000:
		return 5000000
	case p < 50000000:
		return 7000000
	default:
		return 10000000
	}
}
