// Package rules implements the tick-size tables and the limit-price
// touch/lock tests. Everything here is a pure function over numeric
// inputs: no I/O, no shared state, safe to call from any stage.
//
// The limit-price math is a conservative, reproducible approximation of
// the statutory rules, not a legal-grade implementation: the limit price
// is floored to the tick so a genuinely locked bar is never misread as
// "not locked" because of a half-tick rounding difference.
package rules

import "math"

// TickBand is one band of a piecewise tick schedule: prices strictly
// below Upper move in increments of Tick.
type TickBand struct {
	Upper float64 `yaml:"upper"`
	Tick  float64 `yaml:"tick"`
}

// TickTable maps a price to its exchange tick increment. Bands must be
// ordered by ascending Upper; the final band should use math.Inf(1) as
// its Upper to act as the catch-all.
type TickTable []TickBand

// TWTicks is the Taiwan main-board tick schedule.
var TWTicks = TickTable{
	{Upper: 10, Tick: 0.01},
	{Upper: 50, Tick: 0.05},
	{Upper: 100, Tick: 0.1},
	{Upper: 500, Tick: 0.5},
	{Upper: 1000, Tick: 1.0},
	{Upper: math.Inf(1), Tick: 5.0},
}

// TickSize returns the tick increment for the given price. Total over
// all inputs: zero and negative prices fall into the smallest band.
func (t TickTable) TickSize(price float64) float64 {
	if len(t) == 0 {
		return 0.01
	}
	if price <= 0 || math.IsNaN(price) {
		return t[0].Tick
	}
	for _, band := range t {
		if price < band.Upper {
			return band.Tick
		}
	}
	return t[len(t)-1].Tick
}

// RoundToTick rounds price to the nearest multiple of its own tick.
// Used to re-align vendor prices to the quote grid before comparisons.
func (t TickTable) RoundToTick(price float64) float64 {
	tick := t.TickSize(price)
	return math.Round(price/tick) * tick
}

// FloorToTick returns the largest tick multiple not exceeding price.
func (t TickTable) FloorToTick(price float64) float64 {
	tick := t.TickSize(price)
	return math.Floor(price/tick) * tick
}
