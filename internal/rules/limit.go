package rules

import (
	"errors"
	"math"
)

// ErrInvalidPrevClose is returned when a limit price is requested without
// a valid previous close. This is an upstream data-quality bug and must
// not be masked: a wrong limit price corrupts every downstream touch/lock
// decision for that symbol-day.
var ErrInvalidPrevClose = errors.New("rules: prev close must be > 0")

// LimitPrice computes the theoretical limit-up price from the previous
// close and the move-limit ratio, floored to the tick. Flooring (rather
// than rounding) avoids a limit price one tick too high, which would make
// genuinely locked bars appear "not locked".
func LimitPrice(prevClose, upRate float64, ticks TickTable) (float64, error) {
	if math.IsNaN(prevClose) || prevClose <= 0 {
		return 0, ErrInvalidPrevClose
	}
	raw := prevClose * (1.0 + upRate)
	return ticks.FloorToTick(raw), nil
}

// IsTouch reports whether the intraday high reached or exceeded the limit
// price. Non-positive/NaN inputs yield false: "cannot determine" is the
// safe default for a monitoring system.
func IsTouch(high, limitPrice float64) bool {
	if !validPrice(high) || !validPrice(limitPrice) {
		return false
	}
	return high >= limitPrice
}

// IsLocked reports whether the last price sits at the limit price within
// half a tick. The last price is first re-aligned to its own tick to
// tolerate rounding noise from the data source. The tolerance is derived
// from the tick band of the LIMIT price, not of the last price; near band
// boundaries this can be asymmetric, which matches the market rules this
// engine approximates.
func IsLocked(last, limitPrice float64, ticks TickTable) bool {
	if !validPrice(last) || !validPrice(limitPrice) {
		return false
	}
	rounded := ticks.RoundToTick(last)
	tick := ticks.TickSize(limitPrice)
	return math.Abs(rounded-limitPrice) <= tick/2.0
}

// IsLockedOvershoot is the looser variant: it also accepts last prices at
// or above the limit, tolerating vendor anomalies where a reported price
// nominally exceeds the theoretical ceiling. Opt-in per data source; not
// the default test.
func IsLockedOvershoot(last, limitPrice float64, ticks TickTable) bool {
	if !validPrice(last) || !validPrice(limitPrice) {
		return false
	}
	tick := ticks.TickSize(limitPrice)
	return last >= limitPrice-tick/2.0
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}
