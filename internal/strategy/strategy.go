// Package strategy hosts the strategy runner: a long-lived bus subscriber
// that feeds market events to exactly one Strategy implementation,
// maintains its rolling snapshot window and indicator state, and
// publishes any resulting signals back onto the bus (spec.md §4.6).
package strategy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreengine/internal/indicator"
	"coreengine/pkg/types"
)

// MarketSnapshot is the compact per-symbol view a strategy reasons about:
// the bid/ask/last of the most recent tick.
type MarketSnapshot struct {
	Symbol    string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Last      decimal.Decimal
	Timestamp time.Time
}

// InitContext is handed to Strategy.Initialize on the first event a
// runner processes, and again on each later event until Initialize
// returns nil.
type InitContext struct {
	StrategyID uuid.UUID
	AccountID  string
}

// Context is the evaluation context built fresh for every market event
// a runner dispatches to its strategy.
type Context struct {
	AccountID     string
	Snapshots     []MarketSnapshot
	CorrelationID uuid.UUID
	Now           time.Time
	LatestEvent   types.MarketEvent

	// Indicators holds each registered indicator's latest value, keyed
	// by Indicator.Name(), as of the candle the runner aggregated from
	// LatestEvent. Nil whenever LatestEvent is not a Tick event.
	Indicators map[string]indicator.Value
}

// Decision is what a strategy returns from one evaluation: zero or more
// signals plus any log lines for observability.
type Decision struct {
	Signals []types.StrategySignal
	Logs    []string
}

// Strategy is the capability set every strategy implementation exposes:
// a name, a one-time initialization hook, and a per-event evaluation
// function (spec.md §9 "Polymorphic strategy and connector
// abstractions").
type Strategy interface {
	Name() string
	Initialize(ctx InitContext) error
	Evaluate(ctx Context) (Decision, error)
}
