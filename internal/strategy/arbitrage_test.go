package strategy

import (
	"testing"

	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

// TestArbitrageDetectionMatchesScenario mirrors spec.md §8 scenario 2:
// exchange A quotes {bid=99,ask=100}, exchange B quotes {bid=102,ask=103}
// for BTC-USD; the detector should report buying on A at 100 and selling
// on B at 102 for a spread of 2 and ~1.8% net profit.
func TestArbitrageDetectionMatchesScenario(t *testing.T) {
	t.Parallel()

	detector := NewArbitrageDetector(DefaultArbitrageConfig())

	detector.UpdatePrice(types.Coinbase, types.MarketTick{
		Symbol: "BTC-USD",
		Bid:    decimal.NewFromInt(99),
		Ask:    decimal.NewFromInt(100),
	})

	opp, ok := detector.DetectForSymbol("BTC-USD")
	if ok {
		t.Fatalf("unexpected opportunity with only one exchange quoting: %+v", opp)
	}

	detector.UpdatePrice(types.Kraken, types.MarketTick{
		Symbol: "BTC-USD",
		Bid:    decimal.NewFromInt(102),
		Ask:    decimal.NewFromInt(103),
	})

	opp, ok = detector.DetectForSymbol("BTC-USD")
	if !ok {
		t.Fatal("expected an opportunity once both exchanges are quoting")
	}

	if opp.BuyExchange != types.Coinbase {
		t.Errorf("BuyExchange = %v, want coinbase (lowest ask)", opp.BuyExchange)
	}
	if opp.SellExchange != types.Kraken {
		t.Errorf("SellExchange = %v, want kraken (highest bid)", opp.SellExchange)
	}
	if !opp.Spread.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Spread = %s, want 2", opp.Spread)
	}
	if opp.ProfitPct < 1.7 || opp.ProfitPct > 1.9 {
		t.Errorf("ProfitPct = %v, want ~1.8", opp.ProfitPct)
	}
}

func TestArbitrageSameExchangeNoOpportunity(t *testing.T) {
	t.Parallel()

	detector := NewArbitrageDetector(DefaultArbitrageConfig())
	detector.UpdatePrice(types.Coinbase, types.MarketTick{Symbol: "ETH-USD", Bid: decimal.NewFromInt(10), Ask: decimal.NewFromInt(11)})

	event := types.MarketEvent{
		Kind:     types.MarketEventTick,
		Exchange: types.Coinbase,
		Tick:     types.MarketTick{Symbol: "ETH-USD", Bid: decimal.NewFromInt(12), Ask: decimal.NewFromInt(13)},
	}
	if _, ok := detector.HandleMarketEvent(event); ok {
		t.Error("a single exchange quoting itself twice should never produce an opportunity")
	}
}

func TestArbitrageBelowMinProfitIgnored(t *testing.T) {
	t.Parallel()

	cfg := ArbitrageConfig{MinProfitPct: 5.0, FeePct: defaultFeePct}
	detector := NewArbitrageDetector(cfg)

	detector.UpdatePrice(types.Coinbase, types.MarketTick{Symbol: "BTC-USD", Bid: decimal.NewFromInt(99), Ask: decimal.NewFromInt(100)})
	detector.UpdatePrice(types.Kraken, types.MarketTick{Symbol: "BTC-USD", Bid: decimal.NewFromInt(102), Ask: decimal.NewFromInt(103)})

	if _, ok := detector.DetectForSymbol("BTC-USD"); ok {
		t.Error("a 1.8% opportunity should be rejected under a 5% minimum profit threshold")
	}
}

func TestArbitrageHandleMarketEventIgnoresNonTick(t *testing.T) {
	t.Parallel()

	detector := NewArbitrageDetector(DefaultArbitrageConfig())
	event := types.MarketEvent{Kind: types.MarketEventBookSnapshot, Exchange: types.Coinbase}
	if _, ok := detector.HandleMarketEvent(event); ok {
		t.Error("non-tick events should never produce an opportunity")
	}
}
