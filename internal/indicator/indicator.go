package indicator

import "github.com/shopspring/decimal"

// Value is an indicator's output: its primary value plus an optional
// secondary signal line (e.g. MACD's signal EMA, Stochastic's %D).
type Value struct {
	Value  decimal.Decimal
	Signal *decimal.Decimal
}

// Indicator is the shared contract every incremental indicator
// implements: update on a raw price or a full candle, read the current
// value without mutating state, and report warm-up status. All
// indicators are incremental — they hold no unbounded history. Inputs
// and outputs are decimal.Decimal, but every indicator converts its
// inputs to float64 and does all of its arithmetic in float64,
// converting back to decimal only for the returned Value.
type Indicator interface {
	Name() string
	Update(price decimal.Decimal) Value
	UpdateOHLCV(c Candle) Value
	Current() (Value, bool)
	WarmupPeriod() int
	IsReady() bool
}

// decToF64 and f64ToDec are the conversions every indicator uses at its
// input and output boundary.
func decToF64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func f64ToDec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
