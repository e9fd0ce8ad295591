package indicator

import "github.com/shopspring/decimal"

// OBV is the on-balance volume running total: volume is added on an
// up close, subtracted on a down close, and ignored on a flat close.
type OBV struct {
	haveLast  bool
	lastClose float64
	total     float64
	current   Value
	ready     bool
}

func NewOBV() *OBV { return &OBV{} }

func (o *OBV) Name() string { return "obv" }

func (o *OBV) Update(price decimal.Decimal) Value {
	return o.UpdateOHLCV(Candle{Close: price})
}

func (o *OBV) UpdateOHLCV(c Candle) Value {
	closeP := decToF64(c.Close)
	volume := decToF64(c.Volume)

	if o.haveLast {
		switch {
		case closeP > o.lastClose:
			o.total += volume
		case closeP < o.lastClose:
			o.total -= volume
		}
	}
	o.lastClose = closeP
	o.haveLast = true
	o.ready = true
	o.current = Value{Value: dec(o.total)}
	return o.current
}

func (o *OBV) Current() (Value, bool) { return o.current, o.ready }

func (o *OBV) WarmupPeriod() int { return 1 }

func (o *OBV) IsReady() bool { return o.ready }

// VWAP is the volume-weighted average price accumulated over the
// current session. Reset starts a new session (e.g. on a session/day
// boundary), matching how the original tracks VWAP per trading day.
type VWAP struct {
	cumPV     float64
	cumVolume float64
	current   Value
	ready     bool
}

func NewVWAP() *VWAP { return &VWAP{} }

func (v *VWAP) Name() string { return "vwap" }

func (v *VWAP) Update(price decimal.Decimal) Value {
	return v.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (v *VWAP) UpdateOHLCV(c Candle) Value {
	typical := (decToF64(c.High) + decToF64(c.Low) + decToF64(c.Close)) / 3
	volume := decToF64(c.Volume)

	v.cumPV += typical * volume
	v.cumVolume += volume

	if v.cumVolume == 0 {
		return v.current
	}

	v.ready = true
	v.current = Value{Value: dec(v.cumPV / v.cumVolume)}
	return v.current
}

func (v *VWAP) Current() (Value, bool) { return v.current, v.ready }

func (v *VWAP) WarmupPeriod() int { return 1 }

func (v *VWAP) IsReady() bool { return v.ready }

// Reset clears the accumulated session totals, starting a new VWAP
// session.
func (v *VWAP) Reset() {
	v.cumPV = 0
	v.cumVolume = 0
	v.ready = false
	v.current = Value{}
}

// MFI is the money flow index over period, the volume-weighted
// counterpart to RSI.
type MFI struct {
	period int

	haveLast    bool
	lastTypical float64

	posFlow, negFlow *window
	current          Value
	ready            bool
}

func NewMFI(period int) *MFI {
	return &MFI{period: period, posFlow: newWindow(period), negFlow: newWindow(period)}
}

func (m *MFI) Name() string { return "mfi" }

func (m *MFI) Update(price decimal.Decimal) Value {
	return m.UpdateOHLCV(Candle{High: price, Low: price, Close: price})
}

func (m *MFI) UpdateOHLCV(c Candle) Value {
	typical := (decToF64(c.High) + decToF64(c.Low) + decToF64(c.Close)) / 3
	volume := decToF64(c.Volume)
	rawFlow := typical * volume

	if !m.haveLast {
		m.lastTypical = typical
		m.haveLast = true
		return m.current
	}

	var pos, neg float64
	if typical > m.lastTypical {
		pos = rawFlow
	} else if typical < m.lastTypical {
		neg = rawFlow
	}
	m.lastTypical = typical

	m.posFlow.push(pos)
	m.negFlow.push(neg)
	if !m.posFlow.full() {
		return m.current
	}

	posSum := m.posFlow.sum()
	negSum := m.negFlow.sum()

	m.ready = true
	if negSum == 0 {
		m.current = Value{Value: decimal.NewFromInt(100)}
		return m.current
	}
	ratio := posSum / negSum
	mfi := 100 - (100 / (1 + ratio))
	m.current = Value{Value: dec(mfi)}
	return m.current
}

func (m *MFI) Current() (Value, bool) { return m.current, m.ready }

func (m *MFI) WarmupPeriod() int { return m.period + 1 }

func (m *MFI) IsReady() bool { return m.ready }
