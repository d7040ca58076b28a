package contracts

import "time"

// Bar is one symbol's OHLCV observation for one trading date.
// (symbol, date) is the primary key; bars are immutable once stored.
// Close is a pointer because vendors report null closes on non-trading
// days; a nil Close means "no usable end-of-day price".
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  *float64  `json:"close"`
	Volume int64     `json:"volume"`
}

// HasClose reports whether the bar carries a usable close price.
func (b *Bar) HasClose() bool {
	return b.Close != nil && *b.Close > 0
}

// CloseOrZero returns the close price, or 0 when absent.
func (b *Bar) CloseOrZero() float64 {
	if b.Close == nil {
		return 0
	}
	return *b.Close
}

// YMD returns the trading date as a calendar-day key.
func (b *Bar) YMD() string {
	return b.Date.Format("2006-01-02")
}
