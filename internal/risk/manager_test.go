package risk

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"coreengine/internal/bus"
	"coreengine/pkg/types"
)

func testConfig() Config {
	return Config{
		MaxExposurePerSymbol: decimal.NewFromInt(100),
		MaxGlobalExposure:    decimal.NewFromInt(500),
		MaxSymbolsActive:     5,
		KillSwitchDropPct:    decimal.NewFromFloat(0.10),
		KillSwitchWindowSec:  60,
		MaxDailyLoss:         decimal.NewFromInt(50),
		CooldownAfterKill:    5 * time.Minute,
	}
}

func newTestManager() (*Manager, *bus.Bus) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	b := bus.NewBuilder().Build()
	return NewManager(testConfig(), b, logger), b
}

func TestProcessReportUnderLimits(t *testing.T) {
	t.Parallel()
	rm, _ := newTestManager()

	rm.processReport(PositionReport{
		Symbol:      "m1",
		ExposureUSD: decimal.NewFromInt(50),
		MidPrice:    decimal.NewFromFloat(0.50),
		Timestamp:   time.Now(),
	})

	if rm.IsKillSwitchActive() {
		t.Error("kill switch should not be active for a report under limits")
	}
}

func TestProcessReportPerSymbolBreach(t *testing.T) {
	t.Parallel()
	rm, b := newTestManager()

	rm.processReport(PositionReport{
		Symbol:      "m1",
		ExposureUSD: decimal.NewFromInt(150), // exceeds 100 limit
		MidPrice:    decimal.NewFromFloat(0.50),
		Timestamp:   time.Now(),
	})

	if !rm.IsKillSwitchActive() {
		t.Error("kill switch should be active after a per-symbol breach")
	}

	event, err := b.RiskReceiver().RecvTimeout(time.Second)
	if err != nil {
		t.Fatalf("risk event not published: %v", err)
	}
	if event.Kind != "per_symbol_limit" {
		t.Errorf("Kind = %q, want per_symbol_limit", event.Kind)
	}
	if event.Severity != types.RiskCritical {
		t.Errorf("Severity = %v, want Critical", event.Severity)
	}
}

func TestProcessReportGlobalExposureBreach(t *testing.T) {
	t.Parallel()
	rm, b := newTestManager()

	rm.processReport(PositionReport{Symbol: "m1", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})
	rm.processReport(PositionReport{Symbol: "m2", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})
	rm.processReport(PositionReport{Symbol: "m3", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})
	rm.processReport(PositionReport{Symbol: "m4", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})
	rm.processReport(PositionReport{Symbol: "m5", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})
	rm.processReport(PositionReport{Symbol: "m6", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})

	if !rm.IsKillSwitchActive() {
		t.Error("kill switch should be active once total exposure exceeds 500")
	}

	for {
		if _, err := drainRisk(b); err != nil {
			break
		}
	}
}

func drainRisk(b *bus.Bus) (types.RiskEvent, error) {
	return b.RiskReceiver().RecvTimeout(50 * time.Millisecond)
}

func TestRapidPriceMovementTriggersKill(t *testing.T) {
	t.Parallel()
	rm, _ := newTestManager()

	now := time.Now()
	rm.processReport(PositionReport{Symbol: "m1", ExposureUSD: decimal.Zero, MidPrice: decimal.NewFromInt(100), Timestamp: now})
	if rm.IsKillSwitchActive() {
		t.Fatal("kill switch should not fire on the anchor-setting report")
	}

	rm.processReport(PositionReport{Symbol: "m1", ExposureUSD: decimal.Zero, MidPrice: decimal.NewFromInt(85), Timestamp: now.Add(time.Second)})
	if !rm.IsKillSwitchActive() {
		t.Error("a 15%% price drop within the window should trigger the kill switch")
	}
}

func TestRemainingBudgetRespectsBothLimits(t *testing.T) {
	t.Parallel()
	rm, _ := newTestManager()

	rm.processReport(PositionReport{Symbol: "m1", ExposureUSD: decimal.NewFromInt(90), Timestamp: time.Now()})

	remaining := rm.RemainingBudget("m1")
	if !remaining.Equal(decimal.NewFromInt(10)) {
		t.Errorf("RemainingBudget(m1) = %s, want 10 (100 - 90 per-symbol headroom)", remaining)
	}
}
