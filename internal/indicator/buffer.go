// Package indicator implements the incremental OHLCV indicator library:
// trend (SMA, EMA, MACD, ADX), momentum (RSI, Stochastic, Williams %R,
// CCI), volatility (ATR, Bollinger Bands, Keltner Channels), and volume
// (OBV, VWAP, MFI) indicators, plus the candle ring buffer and aggregate
// IndicatorState a strategy owns exclusively (spec.md §4.7, §3).
package indicator

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV bar.
type Candle struct {
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Timestamp time.Time
}

// Buffer is a fixed-capacity ring of candles that evicts the oldest entry
// on overflow — "no unbounded history" (spec.md §4.7).
type Buffer struct {
	items    []Candle
	capacity int
}

// NewBuffer creates an empty Buffer holding at most capacity candles.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{items: make([]Candle, 0, capacity), capacity: capacity}
}

// Push appends candle, evicting and returning the oldest one if the
// buffer was already at capacity.
func (b *Buffer) Push(c Candle) (evicted Candle, didEvict bool) {
	if len(b.items) >= b.capacity {
		evicted = b.items[0]
		b.items = append(b.items[:0], b.items[1:]...)
		didEvict = true
	}
	b.items = append(b.items, c)
	return evicted, didEvict
}

func (b *Buffer) Len() int { return len(b.items) }

func (b *Buffer) IsFull() bool { return len(b.items) >= b.capacity }

// LastN returns up to the n most recent candles, oldest first.
func (b *Buffer) LastN(n int) []Candle {
	if n > len(b.items) {
		n = len(b.items)
	}
	return b.items[len(b.items)-n:]
}

// Latest returns the most recently pushed candle.
func (b *Buffer) Latest() (Candle, bool) {
	if len(b.items) == 0 {
		return Candle{}, false
	}
	return b.items[len(b.items)-1], true
}
