// Package streak tracks consecutive-day runs of lock and surge events
// over a bounded trading window. Counters follow the trading calendar
// of the market, not the symbol: a day the symbol did not trade breaks
// every run, because halted or unlisted days carry no signal.
package streak

// Day is one market trading day aligned to the calendar. Present is
// false when the symbol has no bar for that date.
type Day struct {
	Present bool
	Locked  bool
	Touch   bool
	Surge   bool
}

// Result is the streak state as of the final day of the window.
type Result struct {
	Streak     int
	StreakPrev int
	HitPrev    bool
	TouchPrev  bool

	SurgeStreak     int
	SurgeStreakPrev int
	SurgeHitPrev    bool
}

// Evaluate walks the window in order and returns the state at its last
// day. The *Prev fields reflect the second-to-last calendar day; an
// absent second-to-last day yields zeroes, same as a miss.
func Evaluate(days []Day) Result {
	var res Result
	if len(days) == 0 {
		return res
	}

	lock, surge := 0, 0
	for i, d := range days {
		if i == len(days)-1 {
			res.StreakPrev = lock
			res.SurgeStreakPrev = surge
			if i > 0 && days[i-1].Present {
				res.HitPrev = days[i-1].Locked
				res.TouchPrev = days[i-1].Touch
				res.SurgeHitPrev = days[i-1].Surge
			}
		}
		lock = advance(lock, d.Present && d.Locked)
		surge = advance(surge, d.Present && d.Surge)
	}

	res.Streak = lock
	res.SurgeStreak = surge
	return res
}

func advance(run int, hit bool) int {
	if hit {
		return run + 1
	}
	return 0
}

// Counts returns the running consecutive-true count at each position:
// a hit extends the run by one, a miss resets it to zero.
func Counts(hits []bool) []int {
	out := make([]int, len(hits))
	run := 0
	for i, h := range hits {
		run = advance(run, h)
		out[i] = run
	}
	return out
}
