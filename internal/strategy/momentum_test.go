package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

func snapshotsFromPrices(prices []int64) []MarketSnapshot {
	out := make([]MarketSnapshot, len(prices))
	for i, p := range prices {
		last := decimal.NewFromInt(p)
		out[i] = MarketSnapshot{
			Symbol:    "BTC-USD",
			Bid:       last.Sub(decimal.NewFromInt(10)),
			Ask:       last.Add(decimal.NewFromInt(10)),
			Last:      last,
			Timestamp: time.Now(),
		}
	}
	return out
}

// TestMomentumEmitsExactlyOneBuySignal matches spec.md §8 scenario 4:
// threshold 1%, window 5, prices [100..107] should emit exactly one Buy
// signal with confidence > 0.
func TestMomentumEmitsExactlyOneBuySignal(t *testing.T) {
	t.Parallel()

	cfg := DefaultMomentumConfig()
	cfg.LookbackPeriods = 5
	cfg.MomentumThreshold = decimal.NewFromFloat(0.01)
	strat := NewMomentum("test-momentum", cfg)

	if err := strat.Initialize(InitContext{AccountID: "acct-1"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	snapshots := snapshotsFromPrices([]int64{100, 101, 102, 103, 104, 105, 106, 107})
	decision, err := strat.Evaluate(Context{AccountID: "acct-1", Snapshots: snapshots, Now: time.Now()})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(decision.Signals) != 1 {
		t.Fatalf("Signals len = %d, want exactly 1", len(decision.Signals))
	}
	signal := decision.Signals[0]
	if signal.Side != types.Buy {
		t.Errorf("Side = %v, want Buy", signal.Side)
	}
	if signal.Confidence <= 0 {
		t.Errorf("Confidence = %v, want > 0", signal.Confidence)
	}
}

func TestMomentumNoSignalWithinThreshold(t *testing.T) {
	t.Parallel()

	cfg := DefaultMomentumConfig()
	cfg.MomentumThreshold = decimal.NewFromFloat(0.5) // 50%, nothing will trip it
	strat := NewMomentum("test", cfg)
	_ = strat.Initialize(InitContext{})

	snapshots := snapshotsFromPrices([]int64{100, 100, 101, 100, 100})
	decision, err := strat.Evaluate(Context{Snapshots: snapshots})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(decision.Signals) != 0 {
		t.Errorf("Signals len = %d, want 0 within threshold", len(decision.Signals))
	}
}

func TestMomentumDownwardGeneratesSell(t *testing.T) {
	t.Parallel()

	cfg := DefaultMomentumConfig()
	cfg.MomentumThreshold = decimal.NewFromFloat(0.01)
	strat := NewMomentum("test", cfg)
	_ = strat.Initialize(InitContext{})

	snapshots := snapshotsFromPrices([]int64{107, 106, 105, 104, 103, 102, 101, 100})
	decision, err := strat.Evaluate(Context{Snapshots: snapshots})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(decision.Signals) != 1 {
		t.Fatalf("Signals len = %d, want 1", len(decision.Signals))
	}
	if decision.Signals[0].Side != types.Sell {
		t.Errorf("Side = %v, want Sell", decision.Signals[0].Side)
	}
}

func TestMomentumNoSnapshotsNoSignal(t *testing.T) {
	t.Parallel()

	strat := NewMomentumWithDefaults("test")
	_ = strat.Initialize(InitContext{})

	decision, err := strat.Evaluate(Context{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(decision.Signals) != 0 {
		t.Errorf("Signals len = %d, want 0 with no snapshots", len(decision.Signals))
	}
}
