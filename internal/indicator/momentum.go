package indicator

import (
	"github.com/shopspring/decimal"
)

// RSI is the relative strength index, smoothed with Wilder's method.
type RSI struct {
	period int

	haveLast  bool
	lastPrice float64

	avgGain, avgLoss float64
	count            int
	current          Value
	ready            bool
}

func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string { return "rsi" }

func (r *RSI) Update(price decimal.Decimal) Value {
	p := decToF64(price)
	if !r.haveLast {
		r.lastPrice = p
		r.haveLast = true
		return r.current
	}

	change := p - r.lastPrice
	r.lastPrice = p

	var gain, loss float64
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	r.count++
	if r.count <= r.period {
		r.avgGain += gain / float64(r.period)
		r.avgLoss += loss / float64(r.period)
	} else {
		r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}

	if r.count < r.period {
		return r.current
	}

	r.ready = true
	if r.avgLoss == 0 {
		r.current = Value{Value: decimal.NewFromInt(100)}
		return r.current
	}
	rs := r.avgGain / r.avgLoss
	rsi := 100 - (100 / (1 + rs))
	r.current = Value{Value: dec(rsi)}
	return r.current
}

func (r *RSI) UpdateOHLCV(c Candle) Value { return r.Update(c.Close) }

func (r *RSI) Current() (Value, bool) { return r.current, r.ready }

func (r *RSI) WarmupPeriod() int { return r.period + 1 }

func (r *RSI) IsReady() bool { return r.ready }

// Stochastic is the %K/%D stochastic oscillator over period, with %D
// smoothed over dPeriod.
type Stochastic struct {
	period, dPeriod int
	highs, lows     *window
	dWindow         *window
	current         Value
	ready           bool
}

func NewStochastic(period, dPeriod int) *Stochastic {
	return &Stochastic{
		period:  period,
		dPeriod: dPeriod,
		highs:   newWindow(period),
		lows:    newWindow(period),
		dWindow: newWindow(dPeriod),
	}
}

func (s *Stochastic) Name() string { return "stochastic" }

func (s *Stochastic) Update(price decimal.Decimal) Value {
	return s.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (s *Stochastic) UpdateOHLCV(c Candle) Value {
	s.highs.push(decToF64(c.High))
	s.lows.push(decToF64(c.Low))
	if !s.highs.full() {
		return s.current
	}

	highest := s.highs.max()
	lowest := s.lows.min()
	closeP := decToF64(c.Close)

	var k float64
	if highest != lowest {
		k = 100 * (closeP - lowest) / (highest - lowest)
	}

	s.dWindow.push(k)
	if !s.dWindow.full() {
		s.current = Value{Value: dec(k)}
		return s.current
	}

	s.ready = true
	d := s.dWindow.mean()
	dVal := dec(d)
	s.current = Value{Value: dec(k), Signal: &dVal}
	return s.current
}

func (s *Stochastic) Current() (Value, bool) { return s.current, s.ready }

func (s *Stochastic) WarmupPeriod() int { return s.period + s.dPeriod - 1 }

func (s *Stochastic) IsReady() bool { return s.ready }

// WilliamsR is Williams %R over period.
type WilliamsR struct {
	period      int
	highs, lows *window
	current     Value
	ready       bool
}

func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{period: period, highs: newWindow(period), lows: newWindow(period)}
}

func (w *WilliamsR) Name() string { return "williams_r" }

func (w *WilliamsR) Update(price decimal.Decimal) Value {
	return w.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (w *WilliamsR) UpdateOHLCV(c Candle) Value {
	w.highs.push(decToF64(c.High))
	w.lows.push(decToF64(c.Low))
	if !w.highs.full() {
		return w.current
	}

	highest := w.highs.max()
	lowest := w.lows.min()
	closeP := decToF64(c.Close)

	var r float64
	if highest != lowest {
		r = -100 * (highest - closeP) / (highest - lowest)
	}

	w.ready = true
	w.current = Value{Value: dec(r)}
	return w.current
}

func (w *WilliamsR) Current() (Value, bool) { return w.current, w.ready }

func (w *WilliamsR) WarmupPeriod() int { return w.period }

func (w *WilliamsR) IsReady() bool { return w.ready }

// CCI is the commodity channel index over period, using the constant
// 0.015 mean-deviation scaling factor from the original formula.
type CCI struct {
	period      int
	typicalW    *window
	current     Value
	ready       bool
}

func NewCCI(period int) *CCI {
	return &CCI{period: period, typicalW: newWindow(period)}
}

func (c *CCI) Name() string { return "cci" }

func (c *CCI) Update(price decimal.Decimal) Value {
	return c.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (c *CCI) UpdateOHLCV(candle Candle) Value {
	typical := (decToF64(candle.High) + decToF64(candle.Low) + decToF64(candle.Close)) / 3
	c.typicalW.push(typical)
	if !c.typicalW.full() {
		return c.current
	}

	mean := c.typicalW.mean()
	var meanDev float64
	for _, v := range c.typicalW.samples {
		if v > mean {
			meanDev += v - mean
		} else {
			meanDev += mean - v
		}
	}
	meanDev /= float64(c.typicalW.len())

	var cci float64
	if meanDev != 0 {
		cci = (typical - mean) / (0.015 * meanDev)
	}

	c.ready = true
	c.current = Value{Value: dec(cci)}
	return c.current
}

func (c *CCI) Current() (Value, bool) { return c.current, c.ready }

func (c *CCI) WarmupPeriod() int { return c.period }

func (c *CCI) IsReady() bool { return c.ready }
