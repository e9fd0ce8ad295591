package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRSIAllGainsSaturatesAtHundred(t *testing.T) {
	t.Parallel()
	rsi := NewRSI(5)

	var last Value
	for i := 0; i < 10; i++ {
		last = rsi.Update(price(int64(100 + i)))
	}

	if !rsi.IsReady() {
		t.Fatal("RSI should be ready after 10 updates with period 5")
	}
	if !last.Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("RSI on an unbroken up-trend = %s, want 100", last.Value)
	}
}

func TestRSINotReadyBeforeWarmup(t *testing.T) {
	t.Parallel()
	rsi := NewRSI(5)

	for i := 0; i < 4; i++ {
		rsi.Update(price(int64(100 + i)))
		if rsi.IsReady() {
			t.Errorf("update %d: IsReady() = true before warmup", i)
		}
	}
}

func TestStochasticBoundedZeroToHundred(t *testing.T) {
	t.Parallel()
	stoch := NewStochastic(5, 3)

	var last Value
	for i := 0; i < 12; i++ {
		base := decimal.NewFromInt(int64(100 + i))
		last = stoch.UpdateOHLCV(Candle{
			High:  base.Add(decimal.NewFromInt(1)),
			Low:   base.Sub(decimal.NewFromInt(1)),
			Close: base,
		})
	}

	if !stoch.IsReady() {
		t.Fatal("Stochastic should be ready after enough candles for %K and %D windows")
	}
	if last.Value.LessThan(decimal.Zero) || last.Value.GreaterThan(decimal.NewFromInt(100)) {
		t.Errorf("%%K = %s, want value in [0,100]", last.Value)
	}
	if last.Signal == nil {
		t.Fatal("ready Stochastic should expose %D as Signal")
	}
}

func TestWilliamsRNegativeRange(t *testing.T) {
	t.Parallel()
	wr := NewWilliamsR(5)

	var last Value
	for i := 0; i < 6; i++ {
		base := decimal.NewFromInt(int64(100 + i))
		last = wr.UpdateOHLCV(Candle{
			High:  base.Add(decimal.NewFromInt(1)),
			Low:   base.Sub(decimal.NewFromInt(1)),
			Close: base,
		})
	}

	if last.Value.GreaterThan(decimal.Zero) || last.Value.LessThan(decimal.NewFromInt(-100)) {
		t.Errorf("Williams %%R = %s, want value in [-100,0]", last.Value)
	}
}

func TestCCINotReadyBeforeWindowFull(t *testing.T) {
	t.Parallel()
	cci := NewCCI(4)

	for i := 0; i < 3; i++ {
		base := decimal.NewFromInt(int64(100 + i))
		cci.UpdateOHLCV(Candle{High: base, Low: base, Close: base})
		if cci.IsReady() {
			t.Errorf("update %d: IsReady() = true before window of 4 is full", i)
		}
	}

	base := decimal.NewFromInt(103)
	cci.UpdateOHLCV(Candle{High: base, Low: base, Close: base})
	if !cci.IsReady() {
		t.Fatal("CCI should be ready once the window is full")
	}
}
