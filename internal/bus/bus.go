// Package bus implements the five-channel, typed, bounded event bus that
// fans market ticks, signals, orders, executions, and risk events between
// pipeline stages and strategies. It is in-process only and at-most-once
// under overflow — there is no cross-restart durability, by design (see
// spec.md §1 Non-goals).
package bus

import "time"

const (
	defaultMarketCapacity    = 4096
	defaultSignalCapacity    = 2048
	defaultOrderCapacity     = 2048
	defaultExecutionCapacity = 4096
	defaultRiskCapacity      = 256
	defaultPublishTimeout    = time.Millisecond
)

// Builder configures channel capacities and the default publish timeout
// before Build allocates the bounded channels.
type Builder struct {
	marketCapacity    int
	signalCapacity    int
	orderCapacity     int
	executionCapacity int
	riskCapacity      int
	publishTimeout    time.Duration
}

// NewBuilder returns a Builder pre-populated with spec defaults
// (market=4096, signal=2048, order=2048, execution=4096, risk=256,
// publish timeout=1ms).
func NewBuilder() *Builder {
	return &Builder{
		marketCapacity:    defaultMarketCapacity,
		signalCapacity:    defaultSignalCapacity,
		orderCapacity:     defaultOrderCapacity,
		executionCapacity: defaultExecutionCapacity,
		riskCapacity:      defaultRiskCapacity,
		publishTimeout:    defaultPublishTimeout,
	}
}

func (b *Builder) MarketCapacity(n int) *Builder    { b.marketCapacity = n; return b }
func (b *Builder) SignalCapacity(n int) *Builder    { b.signalCapacity = n; return b }
func (b *Builder) OrderCapacity(n int) *Builder     { b.orderCapacity = n; return b }
func (b *Builder) ExecutionCapacity(n int) *Builder { b.executionCapacity = n; return b }
func (b *Builder) RiskCapacity(n int) *Builder      { b.riskCapacity = n; return b }
func (b *Builder) PublishTimeoutDefault(d time.Duration) *Builder {
	b.publishTimeout = d
	return b
}

// Build allocates the bounded channels and returns the ready Bus.
func (b *Builder) Build() *Bus {
	return &Bus{
		marketCh:       make(chan MarketEventT, b.marketCapacity),
		signalCh:       make(chan SignalEventT, b.signalCapacity),
		orderCh:        make(chan OrderEventT, b.orderCapacity),
		executionCh:    make(chan ExecutionEventT, b.executionCapacity),
		riskCh:         make(chan RiskEventT, b.riskCapacity),
		publishTimeout: b.publishTimeout,
	}
}

// Bus exposes typed senders and receivers for the five core event
// streams. Fan-out is by clone: each call to a *Sender/*Receiver accessor
// returns a wrapper around the same underlying channel, so multiple
// producers/consumers share delivery at-most-once per receiver clone —
// broadcast requires separate independent channels, not repeated receives
// on the same one.
type Bus struct {
	marketCh    chan MarketEventT
	signalCh    chan SignalEventT
	orderCh     chan OrderEventT
	executionCh chan ExecutionEventT
	riskCh      chan RiskEventT

	publishTimeout time.Duration
}

// PublishTimeout returns the bus's configured default publish timeout.
func (bus *Bus) PublishTimeout() time.Duration { return bus.publishTimeout }

func (bus *Bus) MarketSender() Sender[MarketEventT]     { return newSender(bus.marketCh) }
func (bus *Bus) MarketReceiver() Receiver[MarketEventT]  { return newReceiver(bus.marketCh) }
func (bus *Bus) SignalSender() Sender[SignalEventT]      { return newSender(bus.signalCh) }
func (bus *Bus) SignalReceiver() Receiver[SignalEventT]  { return newReceiver(bus.signalCh) }
func (bus *Bus) OrderSender() Sender[OrderEventT]        { return newSender(bus.orderCh) }
func (bus *Bus) OrderReceiver() Receiver[OrderEventT]    { return newReceiver(bus.orderCh) }
func (bus *Bus) ExecutionSender() Sender[ExecutionEventT] { return newSender(bus.executionCh) }
func (bus *Bus) ExecutionReceiver() Receiver[ExecutionEventT] {
	return newReceiver(bus.executionCh)
}
func (bus *Bus) RiskSender() Sender[RiskEventT]     { return newSender(bus.riskCh) }
func (bus *Bus) RiskReceiver() Receiver[RiskEventT] { return newReceiver(bus.riskCh) }
