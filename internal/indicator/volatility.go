package indicator

import (
	"math"

	"github.com/shopspring/decimal"
)

// ATR is the average true range, Wilder-smoothed over period.
type ATR struct {
	period int

	haveLast  bool
	lastClose float64

	avgTR   float64
	count   int
	current Value
	ready   bool
}

func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string { return "atr" }

func (a *ATR) Update(price decimal.Decimal) Value {
	return a.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (a *ATR) UpdateOHLCV(c Candle) Value {
	high, low, closeP := decToF64(c.High), decToF64(c.Low), decToF64(c.Close)

	var tr float64
	if !a.haveLast {
		tr = high - low
	} else {
		tr = math.Max(high-low, math.Max(math.Abs(high-a.lastClose), math.Abs(low-a.lastClose)))
	}
	a.lastClose = closeP
	a.haveLast = true

	a.count++
	if a.count <= a.period {
		a.avgTR += tr / float64(a.period)
	} else {
		a.avgTR = (a.avgTR*float64(a.period-1) + tr) / float64(a.period)
	}

	if a.count < a.period {
		return a.current
	}

	a.ready = true
	a.current = Value{Value: dec(a.avgTR)}
	return a.current
}

func (a *ATR) Current() (Value, bool) { return a.current, a.ready }

func (a *ATR) WarmupPeriod() int { return a.period }

func (a *ATR) IsReady() bool { return a.ready }

// BollingerBands is a moving average band set at numStdDev standard
// deviations above and below an SMA(period) middle band. Value holds the
// upper band; Signal holds the lower band. The middle band (the plain
// SMA) is available via Middle.
type BollingerBands struct {
	period    int
	numStdDev float64
	w         *window
	middle    decimal.Decimal
	current   Value
	ready     bool
}

func NewBollingerBands(period int, numStdDev float64) *BollingerBands {
	return &BollingerBands{period: period, numStdDev: numStdDev, w: newWindow(period)}
}

func (b *BollingerBands) Name() string { return "bollinger_bands" }

func (b *BollingerBands) Update(price decimal.Decimal) Value {
	b.w.push(decToF64(price))
	if !b.w.full() {
		return b.current
	}

	mean := b.w.mean()
	var variance float64
	for _, v := range b.w.samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(b.w.len())
	stdDev := math.Sqrt(variance)

	upper := mean + b.numStdDev*stdDev
	lower := mean - b.numStdDev*stdDev

	b.ready = true
	b.middle = dec(mean)
	lowerDec := dec(lower)
	b.current = Value{Value: dec(upper), Signal: &lowerDec}
	return b.current
}

func (b *BollingerBands) UpdateOHLCV(c Candle) Value { return b.Update(c.Close) }

func (b *BollingerBands) Current() (Value, bool) { return b.current, b.ready }

func (b *BollingerBands) Middle() decimal.Decimal { return b.middle }

func (b *BollingerBands) WarmupPeriod() int { return b.period }

func (b *BollingerBands) IsReady() bool { return b.ready }

// KeltnerChannels bands an EMA(period) middle line by a multiple of
// ATR(period). Value holds the upper channel; Signal holds the lower
// channel.
type KeltnerChannels struct {
	period     int
	multiplier float64
	ema        *EMA
	atr        *ATR
	middle     decimal.Decimal
	current    Value
	ready      bool
}

func NewKeltnerChannels(period int, multiplier float64) *KeltnerChannels {
	return &KeltnerChannels{period: period, multiplier: multiplier, ema: NewEMA(period), atr: NewATR(period)}
}

func (k *KeltnerChannels) Name() string { return "keltner_channels" }

func (k *KeltnerChannels) Update(price decimal.Decimal) Value {
	return k.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (k *KeltnerChannels) UpdateOHLCV(c Candle) Value {
	emaVal := k.ema.Update(c.Close)
	atrVal := k.atr.UpdateOHLCV(c)
	if !k.ema.IsReady() || !k.atr.IsReady() {
		return k.current
	}

	mid := decToF64(emaVal.Value)
	atr := decToF64(atrVal.Value)
	upper := mid + k.multiplier*atr
	lower := mid - k.multiplier*atr

	k.ready = true
	k.middle = emaVal.Value
	lowerDec := dec(lower)
	k.current = Value{Value: dec(upper), Signal: &lowerDec}
	return k.current
}

func (k *KeltnerChannels) Current() (Value, bool) { return k.current, k.ready }

func (k *KeltnerChannels) Middle() decimal.Decimal { return k.middle }

func (k *KeltnerChannels) WarmupPeriod() int { return k.period }

func (k *KeltnerChannels) IsReady() bool { return k.ready }
