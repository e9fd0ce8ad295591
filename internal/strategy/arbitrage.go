package strategy

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

// defaultFeePct is the conservative round-trip fee estimate the original
// detector subtracts from the gross spread (0.1% per side, 0.2% total).
const defaultFeePct = 0.002

// ArbitrageConfig configures ArbitrageDetector.
type ArbitrageConfig struct {
	MinProfitPct float64 // e.g. 1.0 = 1%
	FeePct       float64 // total round-trip fee estimate, e.g. 0.002 = 0.2%
}

// DefaultArbitrageConfig uses the original's conservative defaults.
func DefaultArbitrageConfig() ArbitrageConfig {
	return ArbitrageConfig{MinProfitPct: 0.5, FeePct: defaultFeePct}
}

// Opportunity is one detected cross-exchange arbitrage opportunity:
// buying on BuyExchange at its ask and selling on SellExchange at its
// (higher) bid nets ProfitPct after fees (spec.md §8 scenario 2).
type Opportunity struct {
	ID            uuid.UUID
	Symbol        string
	BuyExchange   types.ExchangeID
	BuyPrice      decimal.Decimal
	SellExchange  types.ExchangeID
	SellPrice     decimal.Decimal
	Spread        decimal.Decimal
	ProfitPct     float64
	DetectedAt    time.Time
}

// ArbitrageDetector is a second consumer of market events alongside the
// strategy runner, fed through HandleMarketEvent rather than a receiver of
// its own: it never resolves into an order, only a detection event on
// top of the same market channel (grounded on
// crates/arbitrage-engine/src/opportunity_detector.rs, simplified by
// dropping its optional ML confidence scoring, which is out of scope
// here). It maintains a per-symbol cache of the latest tick from each
// exchange and reports the best cross-exchange spread once two or more
// exchanges are quoting the same symbol.
type ArbitrageDetector struct {
	mu     sync.Mutex
	cfg    ArbitrageConfig
	prices map[string]map[types.ExchangeID]types.MarketTick
}

// NewArbitrageDetector creates an ArbitrageDetector with cfg.
func NewArbitrageDetector(cfg ArbitrageConfig) *ArbitrageDetector {
	return &ArbitrageDetector{
		cfg:    cfg,
		prices: make(map[string]map[types.ExchangeID]types.MarketTick),
	}
}

// UpdatePrice records exchange's latest tick for its symbol.
func (d *ArbitrageDetector) UpdatePrice(exchange types.ExchangeID, tick types.MarketTick) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byExchange, ok := d.prices[tick.Symbol]
	if !ok {
		byExchange = make(map[types.ExchangeID]types.MarketTick)
		d.prices[tick.Symbol] = byExchange
	}
	byExchange[exchange] = tick
}

// HandleMarketEvent feeds a tick-kind MarketEvent into the detector and
// returns any opportunity immediately detected across the event's
// symbol. Non-tick events are ignored.
func (d *ArbitrageDetector) HandleMarketEvent(event types.MarketEvent) (Opportunity, bool) {
	if event.Kind != types.MarketEventTick {
		return Opportunity{}, false
	}
	d.UpdatePrice(event.Exchange, event.Tick)
	return d.DetectForSymbol(event.Tick.Symbol)
}

// DetectForSymbol looks for the single best cross-exchange opportunity
// on symbol: the highest bid (best place to sell) against the lowest
// ask (best place to buy), on two distinct exchanges, profitable net of
// the configured fee estimate.
func (d *ArbitrageDetector) DetectForSymbol(symbol string) (Opportunity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byExchange, ok := d.prices[symbol]
	if !ok || len(byExchange) < 2 {
		return Opportunity{}, false
	}

	var bestBidEx, bestAskEx types.ExchangeID
	var bestBid, bestAsk types.MarketTick
	haveBid, haveAsk := false, false

	for exchange, tick := range byExchange {
		if !haveBid || tick.Bid.GreaterThan(bestBid.Bid) {
			bestBid = tick
			bestBidEx = exchange
			haveBid = true
		}
		if !haveAsk || tick.Ask.LessThan(bestAsk.Ask) {
			bestAsk = tick
			bestAskEx = exchange
			haveAsk = true
		}
	}

	if bestBidEx == bestAskEx {
		return Opportunity{}, false
	}

	spread := bestBid.Bid.Sub(bestAsk.Ask)
	if !spread.GreaterThan(decimal.Zero) {
		return Opportunity{}, false
	}

	grossPct, _ := spread.Div(bestAsk.Ask).Float64()
	netPct := grossPct - d.cfg.FeePct

	if netPct < d.cfg.MinProfitPct/100.0 {
		return Opportunity{}, false
	}

	return Opportunity{
		ID:           uuid.New(),
		Symbol:       symbol,
		BuyExchange:  bestAskEx,
		BuyPrice:     bestAsk.Ask,
		SellExchange: bestBidEx,
		SellPrice:    bestBid.Bid,
		Spread:       spread,
		ProfitPct:    netPct * 100.0,
		DetectedAt:   time.Now(),
	}, true
}
