package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSMAWarmup(t *testing.T) {
	t.Parallel()
	sma := NewSMA(3)

	for i, p := range []int64{1, 2} {
		sma.Update(price(p))
		if sma.IsReady() {
			t.Errorf("update %d: IsReady() = true, want false before warmup", i)
		}
	}

	sma.Update(price(3))
	if !sma.IsReady() {
		t.Fatal("IsReady() = false after warmup period of updates")
	}

	v, ok := sma.Current()
	if !ok {
		t.Fatal("Current() ok = false after warmup")
	}
	if !v.Value.Equal(decimal.NewFromInt(2)) {
		t.Errorf("SMA(1,2,3) = %s, want 2", v.Value)
	}
}

func TestSMASlidesWindow(t *testing.T) {
	t.Parallel()
	sma := NewSMA(2)

	sma.Update(price(10))
	sma.Update(price(20))
	sma.Update(price(30))

	v, _ := sma.Current()
	if !v.Value.Equal(decimal.NewFromInt(25)) {
		t.Errorf("SMA(20,30) = %s, want 25", v.Value)
	}
}

func TestEMAWarmupMatchesPeriod(t *testing.T) {
	t.Parallel()
	ema := NewEMA(5)

	for i := 0; i < 4; i++ {
		ema.Update(price(int64(100 + i)))
		if ema.IsReady() {
			t.Errorf("update %d: IsReady() = true before warmup of 5", i)
		}
	}

	ema.Update(price(104))
	if !ema.IsReady() {
		t.Fatal("IsReady() = false after 5 updates")
	}
}

func TestEMATracksTrendUpward(t *testing.T) {
	t.Parallel()
	ema := NewEMA(3)

	var last Value
	for _, p := range []int64{100, 101, 102, 110, 120} {
		last = ema.Update(price(p))
	}

	if last.Value.LessThan(decimal.NewFromInt(100)) {
		t.Errorf("EMA = %s, want it to have tracked the upward trend above 100", last.Value)
	}
}

func TestMACDNotReadyUntilSlowAndSignalWarm(t *testing.T) {
	t.Parallel()
	macd := NewMACD(3, 6, 3)

	for i := 0; i < 40; i++ {
		macd.Update(price(int64(100 + i%5)))
	}

	if !macd.IsReady() {
		t.Fatal("MACD should be ready after 40 updates with fast=3 slow=6 signal=3")
	}
	v, ok := macd.Current()
	if !ok || v.Signal == nil {
		t.Fatal("ready MACD should expose a non-nil signal line")
	}
}

func TestADXRequiresFullCandles(t *testing.T) {
	t.Parallel()
	adx := NewADX(4)

	for i := 0; i < 20; i++ {
		base := decimal.NewFromInt(int64(100 + i))
		adx.UpdateOHLCV(Candle{
			High:  base.Add(decimal.NewFromInt(2)),
			Low:   base.Sub(decimal.NewFromInt(2)),
			Close: base,
		})
	}

	if !adx.IsReady() {
		t.Fatal("ADX should be ready after enough candles to fill both smoothing windows")
	}
}
