// Package bridge implements the order/execution bridge: the abstract
// collaborator that subscribes to the signal channel, resolves each
// signal into an order, hands it to an exchange client, and publishes
// the resulting executions back onto the bus (spec.md §4.8). The
// exchange client itself is out of scope — ExchangeClient is a
// capability interface any venue adapter can satisfy.
package bridge

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreengine/internal/bus"
	"coreengine/internal/orchestrator"
	"coreengine/internal/seq"
	"coreengine/pkg/types"
)

// ExchangeClient is the capability an order bridge needs from a venue:
// submit an order and report what happened. Real implementations talk
// to a REST/WebSocket trading API; this package ships only the
// interface and an in-memory reference implementation for tests.
type ExchangeClient interface {
	SubmitOrder(ctx context.Context, order types.OrderEvent) (types.ExecutionEvent, error)
}

// Bridge consumes SignalEvents, resolves them into OrderEvents (scaling
// quantity by the orchestrator's risk throttle and refusing outright
// under emergency halt), publishes the order, executes it against an
// ExchangeClient, and republishes the resulting ExecutionEvent.
type Bridge struct {
	signals      bus.Receiver[types.SignalEvent]
	orders       bus.Sender[types.OrderEvent]
	executions   bus.Sender[types.ExecutionEvent]
	risk         bus.Sender[types.RiskEvent]
	client       ExchangeClient
	orchestrator *orchestrator.Orchestrator
	logger       *slog.Logger
}

// New creates a Bridge wired to b's order/execution/risk channels.
func New(b *bus.Bus, client ExchangeClient, orch *orchestrator.Orchestrator, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		signals:      b.SignalReceiver(),
		orders:       b.OrderSender(),
		executions:   b.ExecutionSender(),
		risk:         b.RiskSender(),
		client:       client,
		orchestrator: orch,
		logger:       logger.With("component", "bridge"),
	}
}

// Run consumes signals until ctx is cancelled or the signal channel is
// closed.
func (br *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		signalEvent, err := br.signals.RecvAsync(ctx)
		if err != nil {
			if err == bus.Closed || err == bus.Join {
				return nil
			}
			return err
		}

		br.handle(ctx, signalEvent)
	}
}

func (br *Bridge) handle(ctx context.Context, signalEvent types.SignalEvent) {
	state := br.orchestrator.State()

	if state.EmergencyHalt {
		br.logger.Warn("refusing signal, emergency halt active", "strategy", signalEvent.StrategyID)
		return
	}

	order := br.resolveOrder(signalEvent, state.RiskThrottle)

	if err := br.orders.Publish(order, bus.Try); err != nil {
		br.logger.Error("failed to publish order", "error", err)
	}

	execution, err := br.client.SubmitOrder(ctx, order)
	if err != nil {
		br.logger.Error("order submission failed", "error", err, "order", order.ClientOrderID)
		execution = types.ExecutionEvent{
			Metadata:      br.childMetadata(signalEvent.Metadata, types.PriorityHigh),
			ClientOrderID: order.ClientOrderID,
			Exchange:      order.Exchange,
			Status:        types.OrderRejected,
		}
	}

	if err := br.executions.Publish(execution, bus.Try); err != nil {
		br.logger.Error("failed to publish execution", "error", err)
	}
}

func (br *Bridge) resolveOrder(signalEvent types.SignalEvent, throttle float64) types.OrderEvent {
	signal := signalEvent.Signal

	exchange := types.ExchangeID("")
	if signal.Exchange != nil {
		exchange = *signal.Exchange
	}

	quantity := signal.Quantity.Mul(decimal.NewFromFloat(throttle))

	return types.OrderEvent{
		Metadata:      br.childMetadata(signalEvent.Metadata, signalEvent.Priority),
		StrategyID:    signalEvent.StrategyID,
		AccountID:     signalEvent.AccountID,
		ClientOrderID: uuid.New().String(),
		Exchange:      exchange,
		Symbol:        signal.Symbol,
		Side:          signal.Side,
		Type:          signal.OrderType,
		Quantity:      quantity,
		LimitPrice:    signal.LimitPrice,
		Status:        types.OrderPending,
	}
}

func (br *Bridge) childMetadata(parent types.EventMetadata, priority types.Priority) types.EventMetadata {
	parentSeq := parent.Sequence
	return types.EventMetadata{
		Sequence:  seq.Next(),
		Source:    "bridge",
		Priority:  priority,
		ParentSeq: &parentSeq,
	}
}

// PublishRiskEvent lets collaborators (e.g. a risk manager) raise a
// RiskEvent through the same bridge wiring without duplicating the
// sender plumbing.
func (br *Bridge) PublishRiskEvent(event types.RiskEvent) error {
	return br.risk.Publish(event, bus.Try)
}
