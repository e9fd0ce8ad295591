package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTradingPairEqual(t *testing.T) {
	t.Parallel()

	a := TradingPair{Base: "BTC", Quote: "USD", Symbol: "BTC-USD"}
	b := TradingPair{Base: "BTC", Quote: "USD", Symbol: "BTC-USD"}
	c := TradingPair{Base: "ETH", Quote: "USD", Symbol: "ETH-USD"}

	if !a.Equal(b) {
		t.Error("identical pairs should be equal")
	}
	if a.Equal(c) {
		t.Error("distinct pairs should not be equal")
	}
}

func TestTradingPairString(t *testing.T) {
	t.Parallel()

	p := TradingPair{Base: "BTC", Quote: "USD", Symbol: "BTC-USD"}
	if got := p.String(); got != "BTC-USD" {
		t.Errorf("String() = %q, want %q", got, "BTC-USD")
	}
}

func TestEventMetadataParentSeqIsOptional(t *testing.T) {
	t.Parallel()

	withoutParent := EventMetadata{Sequence: 1}
	if withoutParent.ParentSeq != nil {
		t.Error("ParentSeq should be nil when no parent event exists")
	}

	parent := uint64(41)
	withParent := EventMetadata{Sequence: 42, ParentSeq: &parent}
	if withParent.ParentSeq == nil || *withParent.ParentSeq != 41 {
		t.Error("ParentSeq should carry the triggering event's sequence")
	}
}

func TestStrategySignalExchangePreferenceIsOptional(t *testing.T) {
	t.Parallel()

	noPreference := StrategySignal{Symbol: "BTC-USD", Side: Buy, Quantity: decimal.NewFromInt(1)}
	if noPreference.Exchange != nil {
		t.Error("Exchange should be nil when a strategy has no venue preference")
	}

	preferred := Kraken
	withPreference := StrategySignal{Symbol: "BTC-USD", Side: Sell, Exchange: &preferred}
	if withPreference.Exchange == nil || *withPreference.Exchange != Kraken {
		t.Error("Exchange should carry the preferred venue when set")
	}
}

func TestMarketEventKindDiscriminatesPayload(t *testing.T) {
	t.Parallel()

	tick := MarketEvent{
		Kind: MarketEventTick,
		Tick: MarketTick{Symbol: "BTC-USD", Bid: decimal.NewFromInt(100), Ask: decimal.NewFromInt(101)},
	}
	if tick.Kind != MarketEventTick {
		t.Fatalf("Kind = %v, want %v", tick.Kind, MarketEventTick)
	}
	if !tick.Tick.Bid.Equal(decimal.NewFromInt(100)) {
		t.Error("tick payload should round-trip through the envelope unchanged")
	}

	trade := MarketEvent{
		Kind:      MarketEventTrade,
		Price:     decimal.NewFromInt(50),
		Quantity:  decimal.NewFromInt(2),
		TradeSide: Sell,
	}
	if trade.Kind != MarketEventTrade || trade.TradeSide != Sell {
		t.Error("trade payload should round-trip through the envelope unchanged")
	}
}
