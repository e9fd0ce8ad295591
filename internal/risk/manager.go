// Package risk enforces portfolio-level risk limits across all symbols
// a strategy runtime trades.
//
// The manager derives PositionReports from market ticks and checks them
// against configured limits:
//
//   - Per-symbol exposure: caps exposure in any single symbol
//   - Global exposure:     caps total exposure across all symbols
//   - Daily loss:          flags a critical risk event if realized+unrealized
//     PnL exceeds the configured threshold
//   - Rapid price movement: flags a risk event if mid-price moves more than
//     KillSwitchDropPct within KillSwitchWindowSec seconds
//
// The bus's market channel fans out by clone, not broadcast: each message
// is delivered to exactly one receiver (spec.md §4.4). A Manager therefore
// does not open its own MarketReceiver — doing so would race the strategy
// runner for the same ticks, each seeing only a gappy subset. Instead
// HandleMarketEvent is fed every tick by whichever single consumer already
// owns the market receiver (see cmd/coreengine's dispatch loop), and Run
// only owns the periodic kill-switch-cooldown sweep.
//
// Breaches are published as types.RiskEvent onto the bus's risk channel
// rather than a bespoke kill channel, so any subscriber of that channel
// can react to them; the orchestrator does not subscribe to it.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"coreengine/internal/bus"
	"coreengine/internal/seq"
	"coreengine/pkg/types"
)

// Config mirrors the teacher's RiskConfig shape, translated to exact
// decimals for the USD-denominated limits.
type Config struct {
	MaxExposurePerSymbol decimal.Decimal
	MaxGlobalExposure    decimal.Decimal
	MaxSymbolsActive     int
	KillSwitchDropPct    decimal.Decimal
	KillSwitchWindowSec  int
	MaxDailyLoss         decimal.Decimal
	CooldownAfterKill    time.Duration
}

// PositionReport is derived from a market tick for risk evaluation.
type PositionReport struct {
	Symbol        string
	MidPrice      decimal.Decimal
	ExposureUSD   decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	Timestamp     time.Time
}

type priceAnchor struct {
	price     decimal.Decimal
	timestamp time.Time
}

// Manager enforces risk limits across all active symbols, fed market
// ticks via HandleMarketEvent and publishing RiskEvents on breach.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu               sync.RWMutex
	positions        map[string]PositionReport
	totalExposure    decimal.Decimal
	totalRealizedPnL decimal.Decimal
	killSwitchActive bool
	killSwitchUntil  time.Time
	priceAnchors     map[string]priceAnchor

	risk bus.Sender[types.RiskEvent]
}

// NewManager creates a risk manager wired to b's risk sender. Market
// events are not consumed from the bus directly — see HandleMarketEvent.
func NewManager(cfg Config, b *bus.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:          cfg,
		logger:       logger.With("component", "risk"),
		positions:    make(map[string]PositionReport),
		priceAnchors: make(map[string]priceAnchor),
		risk:         b.RiskSender(),
	}
}

// Run owns only the periodic kill-switch-cooldown sweep: it clears an
// expired kill switch even during a lull with no incoming ticks. Market
// events reach the manager through HandleMarketEvent instead, called by
// whichever single consumer already owns the bus's market receiver.
func (rm *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rm.clearExpiredKillSwitch()
		}
	}
}

// HandleMarketEvent converts a Tick event into a PositionReport and
// checks it against configured limits. Non-tick events are ignored.
func (rm *Manager) HandleMarketEvent(event types.MarketEvent) {
	if event.Kind != types.MarketEventTick {
		return
	}
	rm.processReport(reportFromTick(event))
}

func reportFromTick(event types.MarketEvent) PositionReport {
	mid := event.Tick.Bid.Add(event.Tick.Ask).Div(decimal.NewFromInt(2))
	return PositionReport{
		Symbol:    event.Tick.Symbol,
		MidPrice:  mid,
		Timestamp: event.Tick.Timestamp,
	}
}

// Report submits a report directly, bypassing the market-event
// derivation — used when a caller already has exposure/PnL figures
// (e.g. from the order bridge after a fill).
func (rm *Manager) Report(report PositionReport) {
	rm.processReport(report)
}

// IsKillSwitchActive returns whether the kill switch is engaged.
func (rm *Manager) IsKillSwitchActive() bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if !rm.killSwitchActive {
		return false
	}
	if time.Now().After(rm.killSwitchUntil) {
		rm.killSwitchActive = false
		rm.logger.Info("kill switch cooldown expired")
		return false
	}
	return true
}

// RemainingBudget returns how much additional USD exposure is allowed
// for symbol: the minimum of its per-symbol headroom and the remaining
// global headroom. Returns zero if either limit is already exceeded.
func (rm *Manager) RemainingBudget(symbol string) decimal.Decimal {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	currentExposure := decimal.Zero
	if pos, ok := rm.positions[symbol]; ok {
		currentExposure = pos.ExposureUSD
	}

	perSymbol := rm.cfg.MaxExposurePerSymbol.Sub(currentExposure)
	global := rm.cfg.MaxGlobalExposure.Sub(rm.totalExposure)

	remaining := perSymbol
	if global.LessThan(remaining) {
		remaining = global
	}
	if remaining.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return remaining
}

func (rm *Manager) processReport(report PositionReport) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.positions[report.Symbol] = report

	rm.totalExposure = decimal.Zero
	rm.totalRealizedPnL = decimal.Zero
	totalUnrealizedPnL := decimal.Zero
	for _, pos := range rm.positions {
		rm.totalExposure = rm.totalExposure.Add(pos.ExposureUSD)
		rm.totalRealizedPnL = rm.totalRealizedPnL.Add(pos.RealizedPnL)
		totalUnrealizedPnL = totalUnrealizedPnL.Add(pos.UnrealizedPnL)
	}

	if report.ExposureUSD.GreaterThan(rm.cfg.MaxExposurePerSymbol) {
		rm.emitRiskEvent(types.RiskCritical, "per_symbol_limit", report.Symbol, "per-symbol exposure limit breached")
	}
	if rm.totalExposure.GreaterThan(rm.cfg.MaxGlobalExposure) {
		rm.emitRiskEvent(types.RiskCritical, "global_limit", "", "global exposure limit breached")
	}

	totalPnL := rm.totalRealizedPnL.Add(totalUnrealizedPnL)
	if totalPnL.LessThan(rm.cfg.MaxDailyLoss.Neg()) {
		rm.emitRiskEvent(types.RiskCritical, "daily_loss", "", "max daily loss breached")
	}

	rm.checkPriceMovement(report)
}

func (rm *Manager) checkPriceMovement(report PositionReport) {
	if rm.cfg.KillSwitchWindowSec <= 0 {
		return
	}
	window := time.Duration(rm.cfg.KillSwitchWindowSec) * time.Second

	anchor, ok := rm.priceAnchors[report.Symbol]
	if !ok || report.Timestamp.Sub(anchor.timestamp) > window {
		rm.priceAnchors[report.Symbol] = priceAnchor{price: report.MidPrice, timestamp: report.Timestamp}
		return
	}

	if anchor.price.IsZero() {
		return
	}

	pctChange := report.MidPrice.Sub(anchor.price).Div(anchor.price).Abs()
	if pctChange.GreaterThan(rm.cfg.KillSwitchDropPct) {
		msg := fmt.Sprintf("rapid price movement: %s in %ds", pctChange.Mul(decimal.NewFromInt(100)).StringFixed(1), rm.cfg.KillSwitchWindowSec)
		rm.emitRiskEvent(types.RiskCritical, "price_movement", report.Symbol, msg)
	}
}

func (rm *Manager) clearExpiredKillSwitch() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.killSwitchActive && time.Now().After(rm.killSwitchUntil) {
		rm.killSwitchActive = false
		rm.logger.Info("kill switch cooldown expired")
	}
}

// emitRiskEvent activates the kill switch, starts the cooldown timer,
// and Try-publishes a RiskEvent describing the breach.
func (rm *Manager) emitRiskEvent(severity types.RiskSeverity, kind, symbol, message string) {
	rm.killSwitchActive = true
	rm.killSwitchUntil = time.Now().Add(rm.cfg.CooldownAfterKill)

	rm.logger.Error("risk limit breached", "kind", kind, "symbol", symbol, "message", message, "cooldown_until", rm.killSwitchUntil)

	event := types.RiskEvent{
		Metadata: types.EventMetadata{
			Sequence:  seq.Next(),
			Source:    "risk_manager",
			Priority:  types.PriorityCritical,
			CreatedAt: time.Now(),
		},
		Severity: severity,
		Kind:     kind,
		Message:  message,
		Detail:   map[string]string{"symbol": symbol},
		OpenedAt: time.Now(),
	}

	if err := rm.risk.Publish(event, bus.Try); err != nil {
		rm.logger.Error("failed to publish risk event", "error", err)
	}
}
