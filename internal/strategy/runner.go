package strategy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"coreengine/internal/bus"
	"coreengine/internal/indicator"
	"coreengine/internal/seq"
	"coreengine/pkg/types"
)

// snapshotWindow is the ring window size: a strategy runner sees the N
// most recent tick snapshots of the symbols it observes (spec.md §4.6,
// §9 "at small N (≈8), [shift-on-write] beats an index-tracked ring").
const snapshotWindow = 8

// Runner is a long-lived consumer of market events hosting exactly one
// Strategy. Its mutable state — snapshot window, indicator state,
// strategy, initialized flag — is guarded by a single mutex; the
// critical section never suspends, so a plain mutex is sufficient
// (spec.md §4.6 "Mutability discipline").
type Runner struct {
	mu sync.Mutex

	strategyID uuid.UUID
	accountID  string
	strategy   Strategy
	snapshots  [snapshotWindow]MarketSnapshot
	indicators *indicator.State
	initialized bool

	signalSender bus.Sender[types.SignalEvent]
	logger       *slog.Logger
}

// NewRunner creates a Runner hosting strategy on behalf of accountID,
// publishing signals through signalSender.
func NewRunner(strategy Strategy, signalSender bus.Sender[types.SignalEvent], accountID string, indicators *indicator.State, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if indicators == nil {
		indicators = indicator.NewState(256)
	}
	return &Runner{
		strategyID:   uuid.New(),
		accountID:    accountID,
		strategy:     strategy,
		indicators:   indicators,
		signalSender: signalSender,
		logger:       logger.With("component", "strategy_runner", "strategy", strategy.Name()),
	}
}

// Handle processes one market event: lazily initializes the strategy,
// rotates the snapshot window for Tick payloads, evaluates the
// strategy, and Try-publishes any resulting signals (spec.md §4.6).
func (r *Runner) Handle(event types.MarketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		if err := r.strategy.Initialize(InitContext{StrategyID: r.strategyID, AccountID: r.accountID}); err != nil {
			r.logger.Error("strategy initialization failed, dropping event", "error", err)
			return
		}
		r.initialized = true
	}

	var indicatorValues map[string]indicator.Value
	if event.Kind == types.MarketEventTick {
		r.shiftSnapshots(event)
		indicatorValues = r.updateIndicators(event)
	}

	ctx := Context{
		AccountID:     r.accountID,
		Snapshots:     append([]MarketSnapshot(nil), r.snapshots[:]...),
		CorrelationID: uuid.New(),
		Now:           time.Now(),
		LatestEvent:   event,
		Indicators:    indicatorValues,
	}

	decision, err := r.strategy.Evaluate(ctx)
	if err != nil {
		// spec.md §4.6/§5: strategy evaluation errors never kill the runner.
		r.logger.Error("strategy evaluation failed", "error", err)
		return
	}

	for _, logLine := range decision.Logs {
		r.logger.Debug("strategy log", "message", logLine)
	}

	for _, signal := range decision.Signals {
		r.publishSignal(event, signal)
	}
}

// updateIndicators aggregates event's tick into a degenerate one-tick
// candle (open=high=low=close=last) and advances the runner's indicator
// state, returning each indicator's new value keyed by name so Evaluate
// can read it off Context without reaching back into the runner.
func (r *Runner) updateIndicators(event types.MarketEvent) map[string]indicator.Value {
	candle := indicator.Candle{
		Open:      event.Tick.Last,
		High:      event.Tick.Last,
		Low:       event.Tick.Last,
		Close:     event.Tick.Last,
		Volume:    event.Tick.Volume24h,
		Timestamp: event.Tick.Timestamp,
	}

	values := r.indicators.Update(candle)
	indicators := r.indicators.Indicators()

	result := make(map[string]indicator.Value, len(indicators))
	for i, ind := range indicators {
		result[ind.Name()] = values[i]
	}
	return result
}

func (r *Runner) shiftSnapshots(event types.MarketEvent) {
	for i := 0; i < snapshotWindow-1; i++ {
		r.snapshots[i] = r.snapshots[i+1]
	}
	r.snapshots[snapshotWindow-1] = MarketSnapshot{
		Symbol:    event.Tick.Symbol,
		Bid:       event.Tick.Bid,
		Ask:       event.Tick.Ask,
		Last:      event.Tick.Last,
		Timestamp: event.Tick.Timestamp,
	}
}

func (r *Runner) publishSignal(parent types.MarketEvent, signal types.StrategySignal) {
	priority := types.PriorityNormal
	if signal.Confidence > 0.8 {
		priority = types.PriorityHigh
	}

	parentSeq := parent.Metadata.Sequence
	signalEvent := types.SignalEvent{
		Metadata: types.EventMetadata{
			Sequence:  seq.Next(),
			Source:    "strategy_runner",
			Priority:  priority,
			CreatedAt: time.Now(),
			ParentSeq: &parentSeq,
		},
		StrategyID: r.strategyID.String(),
		AccountID:  r.accountID,
		Priority:   priority,
		Signal:     signal,
	}

	if err := r.signalSender.Publish(signalEvent, bus.Try); err != nil {
		r.logger.Error("failed to publish strategy signal", "error", err)
	}
}

// Indicators returns the runner's owned indicator state, for strategies
// that want to feed OHLCV candles alongside tick snapshots.
func (r *Runner) Indicators() *indicator.State { return r.indicators }
