package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

// MomentumConfig configures Momentum (spec.md §8 scenario 4; grounded on
// the original's MomentumConfig: lookback window, a decimal threshold,
// a base position size, and a target exchange preference).
type MomentumConfig struct {
	LookbackPeriods  int
	MomentumThreshold decimal.Decimal
	BaseSize         decimal.Decimal
	TargetExchange   types.ExchangeID
}

// DefaultMomentumConfig matches the original's Default impl: a 5-period
// lookback, 0.5% threshold, 0.1-unit base size.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		LookbackPeriods:   5,
		MomentumThreshold: decimal.NewFromFloat(0.005),
		BaseSize:          decimal.NewFromFloat(0.1),
		TargetExchange:    types.BinanceUS,
	}
}

// Momentum is a rate-of-change strategy: it compares the most recent
// snapshot's last price against the price `lookback` snapshots back and
// emits a Buy when momentum exceeds +threshold, a Sell when it falls
// below -threshold, confidence scaled by how far momentum exceeds the
// threshold and capped at 1.0 (spec.md §8 scenario 4).
type Momentum struct {
	name        string
	cfg         MomentumConfig
	initialized bool
}

// NewMomentum creates a Momentum strategy with the given name and
// configuration.
func NewMomentum(name string, cfg MomentumConfig) *Momentum {
	return &Momentum{name: name, cfg: cfg}
}

// NewMomentumWithDefaults creates a Momentum strategy using
// DefaultMomentumConfig.
func NewMomentumWithDefaults(name string) *Momentum {
	return NewMomentum(name, DefaultMomentumConfig())
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Initialize(_ InitContext) error {
	m.initialized = true
	return nil
}

func (m *Momentum) Evaluate(ctx Context) (Decision, error) {
	if len(ctx.Snapshots) == 0 {
		return Decision{Logs: []string{"no market snapshots available"}}, nil
	}

	momentum, ok := m.calculateMomentum(ctx.Snapshots)
	if !ok {
		return Decision{}, nil
	}

	latest := ctx.Snapshots[len(ctx.Snapshots)-1]
	signal, ok := m.generateSignal(latest, momentum)
	if !ok {
		return Decision{Logs: []string{fmt.Sprintf("momentum %s within threshold, no signal", momentum)}}, nil
	}

	return Decision{
		Signals: []types.StrategySignal{signal},
		Logs:    []string{fmt.Sprintf("momentum %s triggered signal", momentum)},
	}, nil
}

// calculateMomentum is the rate-of-change (current-previous)/previous
// over min(lookback, len-1) snapshots back.
func (m *Momentum) calculateMomentum(snapshots []MarketSnapshot) (decimal.Decimal, bool) {
	if len(snapshots) < 2 {
		return decimal.Zero, false
	}

	lookback := m.cfg.LookbackPeriods
	if lookback > len(snapshots)-1 {
		lookback = len(snapshots) - 1
	}

	current := snapshots[len(snapshots)-1]
	prevIdx := len(snapshots) - 1 - lookback
	if prevIdx < 0 {
		prevIdx = 0
	}
	previous := snapshots[prevIdx]

	if previous.Last.IsZero() {
		return decimal.Zero, false
	}

	change := current.Last.Sub(previous.Last).Div(previous.Last)
	return change, true
}

func (m *Momentum) generateSignal(snapshot MarketSnapshot, momentum decimal.Decimal) (types.StrategySignal, bool) {
	exchange := m.cfg.TargetExchange

	switch {
	case momentum.GreaterThan(m.cfg.MomentumThreshold):
		confidence := momentum.Div(m.cfg.MomentumThreshold)
		if confidence.GreaterThan(decimal.NewFromInt(1)) {
			confidence = decimal.NewFromInt(1)
		}
		conf, _ := confidence.Float64()
		return types.StrategySignal{
			Exchange:   &exchange,
			Symbol:     snapshot.Symbol,
			Side:       types.Buy,
			OrderType:  types.OrderTypeMarket,
			Quantity:   m.cfg.BaseSize,
			Confidence: conf,
			Metadata:   map[string]string{},
		}, true

	case momentum.LessThan(m.cfg.MomentumThreshold.Neg()):
		confidence := momentum.Neg().Div(m.cfg.MomentumThreshold)
		if confidence.GreaterThan(decimal.NewFromInt(1)) {
			confidence = decimal.NewFromInt(1)
		}
		conf, _ := confidence.Float64()
		return types.StrategySignal{
			Exchange:   &exchange,
			Symbol:     snapshot.Symbol,
			Side:       types.Sell,
			OrderType:  types.OrderTypeMarket,
			Quantity:   m.cfg.BaseSize,
			Confidence: conf,
			Metadata:   map[string]string{},
		}, true

	default:
		return types.StrategySignal{}, false
	}
}
