// Core engine — the event bus, market data pipeline, and strategy
// runtime for an autonomous multi-exchange trading platform.
//
// Architecture:
//
//	main.go                    — entry point: loads config, wires every
//	                              component, waits for SIGINT/SIGTERM
//	internal/bus               — bounded, typed, five-channel event bus
//	internal/connector         — per-exchange WebSocket connector
//	internal/ingestion         — one task per exchange, forwards raw
//	                              stream messages
//	internal/normalizer        — canonicalizes raw messages into
//	                              MarketEvents, maintains L2 books
//	internal/distributor       — relays normalized events onto the bus
//	internal/pipeline          — builds and supervises the above chain
//	internal/strategy          — strategy runner, built-in Momentum
//	                              strategy, cross-exchange
//	                              ArbitrageDetector
//	internal/indicator         — incremental OHLCV indicator library
//	internal/bridge            — resolves signals into orders and
//	                              executions
//	internal/risk              — portfolio-level risk limits
//	internal/orchestrator      — engage/wind-down/emergency-halt state
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"coreengine/internal/bridge"
	"coreengine/internal/bus"
	"coreengine/internal/config"
	"coreengine/internal/connector"
	"coreengine/internal/ingestion"
	"coreengine/internal/indicator"
	"coreengine/internal/orchestrator"
	"coreengine/internal/pipeline"
	"coreengine/internal/risk"
	"coreengine/internal/strategy"
	"coreengine/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("CORE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	busBuilder := bus.NewBuilder().
		MarketCapacity(orDefault(cfg.Bus.MarketCapacity, 4096)).
		SignalCapacity(orDefault(cfg.Bus.SignalCapacity, 2048)).
		OrderCapacity(orDefault(cfg.Bus.OrderCapacity, 2048)).
		ExecutionCapacity(orDefault(cfg.Bus.ExecutionCapacity, 4096)).
		RiskCapacity(orDefault(cfg.Bus.RiskCapacity, 256))
	if cfg.Bus.PublishTimeout > 0 {
		busBuilder.PublishTimeoutDefault(cfg.Bus.PublishTimeout)
	}
	eventBus := busBuilder.Build()

	orch := orchestrator.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipelineBuilder := pipeline.NewBuilder(eventBus, logger)
	for _, exCfg := range cfg.Exchanges {
		conn := connector.NewWebSocket(exCfg.URL, logger)
		pipelineBuilder = pipelineBuilder.WithExchange(ingestion.Config{
			Exchange:  types.ExchangeID(exCfg.Exchange),
			Connector: conn,
			Symbols:   exCfg.Symbols,
			Heartbeat: exCfg.Heartbeat,
		})
	}
	pipelineHandle := pipelineBuilder.Build(ctx)

	indicatorState := indicator.NewState(orDefault(cfg.Strategy.IndicatorBufferLen, 256)).
		Add(indicator.NewSMA(cfg.Strategy.LookbackPeriods)).
		Add(indicator.NewEMA(cfg.Strategy.LookbackPeriods)).
		Add(indicator.NewRSI(14))
	momentumCfg := strategy.MomentumConfig{
		LookbackPeriods:   cfg.Strategy.LookbackPeriods,
		MomentumThreshold: decimalFromFloat(cfg.Strategy.MomentumThreshold),
		BaseSize:          decimalFromFloat(cfg.Strategy.BaseSize),
		TargetExchange:    types.ExchangeID(cfg.Strategy.TargetExchange),
	}
	momentum := strategy.NewMomentum("momentum", momentumCfg)
	runner := strategy.NewRunner(momentum, eventBus.SignalSender(), cfg.Strategy.AccountID, indicatorState, logger)

	arbCfg := strategy.ArbitrageConfig{
		MinProfitPct: orDefaultFloat(cfg.Strategy.ArbitrageMinProfitPct, 0.5),
		FeePct:       orDefaultFloat(cfg.Strategy.ArbitrageFeePct, 0.002),
	}
	detector := strategy.NewArbitrageDetector(arbCfg)

	riskCfg := risk.Config{
		MaxExposurePerSymbol: decimalFromFloat(cfg.Risk.MaxExposurePerSymbol),
		MaxGlobalExposure:    decimalFromFloat(cfg.Risk.MaxGlobalExposure),
		MaxSymbolsActive:     cfg.Risk.MaxSymbolsActive,
		KillSwitchDropPct:    decimalFromFloat(cfg.Risk.KillSwitchDropPct),
		KillSwitchWindowSec:  cfg.Risk.KillSwitchWindowSec,
		MaxDailyLoss:         decimalFromFloat(cfg.Risk.MaxDailyLoss),
		CooldownAfterKill:    cfg.Risk.CooldownAfterKill,
	}
	riskManager := risk.NewManager(riskCfg, eventBus, logger)

	orderBridge := bridge.New(eventBus, bridge.NewMockClient(), orch, logger)

	orch.Engage()

	go runMarketDispatch(ctx, eventBus, runner, detector, riskManager, logger)
	go func() {
		if err := riskManager.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("risk manager stopped", "error", err)
		}
	}()
	go func() {
		if err := orderBridge.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("order bridge stopped", "error", err)
		}
	}()

	logger.Info("core engine started", "exchanges", len(cfg.Exchanges), "account", cfg.Strategy.AccountID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	cancel()
	if err := pipelineHandle.Shutdown(); err != nil {
		logger.Error("pipeline shutdown error", "error", err)
	}
}

// runMarketDispatch is the single owner of the bus's market receiver. The
// channel fans out by clone, not broadcast (spec.md §4.4: "each sent
// message is consumed by exactly one receiver"), so every other consumer
// of market events — the strategy runner, the arbitrage detector, and the
// risk manager — is fed in-process from this one loop instead of opening
// an independent MarketReceiver of its own, which would silently split
// the tick stream between them.
func runMarketDispatch(ctx context.Context, b *bus.Bus, runner *strategy.Runner, detector *strategy.ArbitrageDetector, riskManager *risk.Manager, logger *slog.Logger) {
	receiver := b.MarketReceiver()
	for {
		event, err := receiver.RecvAsync(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("market receive failed", "error", err)
			return
		}
		runner.Handle(event)
		riskManager.HandleMarketEvent(event)
		if opportunity, ok := detector.HandleMarketEvent(event); ok {
			logger.Info("arbitrage opportunity detected",
				"symbol", opportunity.Symbol,
				"buy_exchange", opportunity.BuyExchange,
				"sell_exchange", opportunity.SellExchange,
				"profit_pct", opportunity.ProfitPct,
			)
		}
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDefaultFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
