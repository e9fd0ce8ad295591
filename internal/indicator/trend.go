package indicator

import (
	"math"

	"github.com/shopspring/decimal"
)

// SMA is the simple moving average over period prices.
type SMA struct {
	period  int
	w       *window
	current Value
	ready   bool
}

func NewSMA(period int) *SMA {
	return &SMA{period: period, w: newWindow(period)}
}

func (s *SMA) Name() string { return "sma" }

func (s *SMA) Update(price decimal.Decimal) Value {
	s.w.push(decToF64(price))
	s.ready = s.w.full()
	s.current = Value{Value: dec(s.w.mean())}
	return s.current
}

func (s *SMA) UpdateOHLCV(c Candle) Value { return s.Update(c.Close) }

func (s *SMA) Current() (Value, bool) { return s.current, s.ready }

func (s *SMA) WarmupPeriod() int { return s.period }

func (s *SMA) IsReady() bool { return s.ready }

// EMA is the exponential moving average. It seeds with the SMA of the
// first `period` prices, then recurses with alpha = 2/(period+1).
type EMA struct {
	period  int
	alpha   float64
	seed    *window
	value   float64
	seeded  bool
	current Value
}

func NewEMA(period int) *EMA {
	return &EMA{period: period, alpha: 2.0 / float64(period+1), seed: newWindow(period)}
}

func (e *EMA) Name() string { return "ema" }

func (e *EMA) Update(price decimal.Decimal) Value {
	p := decToF64(price)
	if !e.seeded {
		e.seed.push(p)
		if e.seed.full() {
			e.value = e.seed.mean()
			e.seeded = true
		}
	} else {
		e.value = e.alpha*p + (1-e.alpha)*e.value
	}
	if e.seeded {
		e.current = Value{Value: dec(e.value)}
	}
	return e.current
}

func (e *EMA) UpdateOHLCV(c Candle) Value { return e.Update(c.Close) }

func (e *EMA) Current() (Value, bool) { return e.current, e.seeded }

func (e *EMA) WarmupPeriod() int { return e.period }

func (e *EMA) IsReady() bool { return e.seeded }

// MACD is the moving-average-convergence-divergence oscillator: the
// difference between a fast and slow EMA (the MACD line) and an EMA of
// that line (the signal line).
type MACD struct {
	fast, slow, signalEMA *EMA
	current                Value
	ready                  bool
}

func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:      NewEMA(fastPeriod),
		slow:      NewEMA(slowPeriod),
		signalEMA: NewEMA(signalPeriod),
	}
}

func (m *MACD) Name() string { return "macd" }

func (m *MACD) Update(price decimal.Decimal) Value {
	fastVal := m.fast.Update(price)
	slowVal := m.slow.Update(price)
	if !m.fast.IsReady() || !m.slow.IsReady() {
		return m.current
	}

	macdLine := fastVal.Value.Sub(slowVal.Value)
	signalVal := m.signalEMA.Update(macdLine)
	if !m.signalEMA.IsReady() {
		m.current = Value{Value: macdLine}
		return m.current
	}

	m.ready = true
	hist := signalVal.Value
	m.current = Value{Value: macdLine, Signal: &hist}
	return m.current
}

func (m *MACD) UpdateOHLCV(c Candle) Value { return m.Update(c.Close) }

func (m *MACD) Current() (Value, bool) { return m.current, m.ready }

func (m *MACD) WarmupPeriod() int { return m.slow.period + m.signalEMA.period - 1 }

func (m *MACD) IsReady() bool { return m.ready }

// ADX is the average directional index, Wilder-smoothed over period.
type ADX struct {
	period int

	haveLast bool
	lastHigh, lastLow, lastClose float64

	trSum, plusDMSum, minusDMSum float64
	dxWindow                     *window
	adx                          float64
	count                        int
	current                      Value
	ready                        bool
}

func NewADX(period int) *ADX {
	return &ADX{period: period, dxWindow: newWindow(period)}
}

func (a *ADX) Name() string { return "adx" }

// Update feeds price through UpdateOHLCV as a degenerate candle with
// high = low = close = price, so it carries no true high/low range.
func (a *ADX) Update(price decimal.Decimal) Value {
	return a.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (a *ADX) UpdateOHLCV(c Candle) Value {
	high, low, closeP := decToF64(c.High), decToF64(c.Low), decToF64(c.Close)

	if !a.haveLast {
		a.lastHigh, a.lastLow, a.lastClose = high, low, closeP
		a.haveLast = true
		return a.current
	}

	upMove := high - a.lastHigh
	downMove := a.lastLow - low

	var plusDM, minusDM float64
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}

	tr := math.Max(high-low, math.Max(math.Abs(high-a.lastClose), math.Abs(low-a.lastClose)))

	a.count++
	if a.count <= a.period {
		a.trSum += tr
		a.plusDMSum += plusDM
		a.minusDMSum += minusDM
	} else {
		a.trSum = a.trSum - a.trSum/float64(a.period) + tr
		a.plusDMSum = a.plusDMSum - a.plusDMSum/float64(a.period) + plusDM
		a.minusDMSum = a.minusDMSum - a.minusDMSum/float64(a.period) + minusDM
	}

	a.lastHigh, a.lastLow, a.lastClose = high, low, closeP

	if a.count < a.period || a.trSum == 0 {
		return a.current
	}

	plusDI := 100 * (a.plusDMSum / a.trSum)
	minusDI := 100 * (a.minusDMSum / a.trSum)
	dx := 0.0
	if plusDI+minusDI > 0 {
		dx = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	a.dxWindow.push(dx)
	if !a.dxWindow.full() {
		return a.current
	}
	a.adx = a.dxWindow.mean()
	a.ready = true
	a.current = Value{Value: dec(a.adx)}
	return a.current
}

func (a *ADX) Current() (Value, bool) { return a.current, a.ready }

func (a *ADX) WarmupPeriod() int { return a.period * 2 }

func (a *ADX) IsReady() bool { return a.ready }
