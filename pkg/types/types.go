// Package types defines the shared vocabulary used across the event bus,
// data pipeline, and strategy runtime — exchange identifiers, trading
// pairs, market events, signals, orders, executions, and risk events.
// It has no dependency on any internal package so it
// can be imported by every layer.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ————————————————————————————————————————————————————————————————————————
// Exchange identity
// ————————————————————————————————————————————————————————————————————————

// ExchangeID names a venue. It is an open string type rather than a closed
// enum: new venues are added by config, not by a code change. A handful of
// well-known constants are provided for convenience and tests.
type ExchangeID string

const (
	Coinbase  ExchangeID = "coinbase"
	Kraken    ExchangeID = "kraken"
	BinanceUS ExchangeID = "binance_us"
	Oanda     ExchangeID = "oanda"
	Mock      ExchangeID = "mock"
)

// TradingPair is a value object: base asset, quote asset, and the
// exchange-native symbol string. Equality is by the triple.
type TradingPair struct {
	Base   string
	Quote  string
	Symbol string
}

func (p TradingPair) Equal(other TradingPair) bool {
	return p.Base == other.Base && p.Quote == other.Quote && p.Symbol == other.Symbol
}

func (p TradingPair) String() string {
	return p.Symbol
}

// ————————————————————————————————————————————————————————————————————————
// Market data
// ————————————————————————————————————————————————————————————————————————

// MarketTick is a point-in-time best-bid/best-ask/last-trade quote.
type MarketTick struct {
	Symbol    string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Last      decimal.Decimal
	Volume24h decimal.Decimal
	Timestamp time.Time
}

// Side is a BUY or SELL direction shared by ticks, signals, and orders.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType enumerates the order types the bridge understands.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// PriceLevel is one aggregated L2 book level.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// ————————————————————————————————————————————————————————————————————————
// Market event envelope
// ————————————————————————————————————————————————————————————————————————

// Priority classifies events for downstream observability and signal
// stamping; it carries no scheduling behavior of its own.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// EventMetadata carries provenance for a MarketEvent, SignalEvent,
// OrderEvent, or ExecutionEvent: a monotonic global sequence, a source
// descriptor, priority, creation time, and an optional parent sequence
// establishing causal lineage across channels.
type EventMetadata struct {
	Sequence  uint64
	Source    string
	Priority  Priority
	CreatedAt time.Time
	ParentSeq *uint64
}

// MarketEventKind discriminates MarketEvent payload variants.
type MarketEventKind string

const (
	MarketEventTick        MarketEventKind = "tick"
	MarketEventBookSnapshot MarketEventKind = "book_snapshot"
	MarketEventBookDelta   MarketEventKind = "book_delta"
	MarketEventTrade       MarketEventKind = "trade"
)

// MarketEvent is the envelope published on the bus's market channel. Only
// the fields relevant to Kind are populated; callers switch on Kind before
// reading payload fields, matching the sum-type shape of the original
// Rust enum translated into a single Go struct (simplest encoding that
// keeps exhaustive-switch ergonomics without an interface per variant).
type MarketEvent struct {
	Metadata EventMetadata
	Kind     MarketEventKind
	Exchange ExchangeID
	Pair     TradingPair

	// Tick payload
	Tick MarketTick

	// BookSnapshot / BookDelta payload
	Bids []PriceLevel
	Asks []PriceLevel
	Side Side // BookDelta only

	// Trade payload
	Price    decimal.Decimal
	Quantity decimal.Decimal
	TradeSide Side
	TradeTS   time.Time
}

// ————————————————————————————————————————————————————————————————————————
// Signals
// ————————————————————————————————————————————————————————————————————————

// StrategySignal is a strategy's recommendation, prior to resolution into
// an order.
type StrategySignal struct {
	Exchange    *ExchangeID // preference, may be nil (no preference)
	Symbol      string
	Side        Side
	OrderType   OrderType
	Quantity    decimal.Decimal
	LimitPrice  *decimal.Decimal
	Confidence  float64 // [0,1]
	Metadata    map[string]string
}

// SignalEvent is published on the signal channel.
type SignalEvent struct {
	Metadata   EventMetadata
	StrategyID string // uuid
	AccountID  string
	Priority   Priority
	Signal     StrategySignal
}

// ————————————————————————————————————————————————————————————————————————
// Orders & executions
// ————————————————————————————————————————————————————————————————————————

// OrderStatus is the lifecycle state of an OrderEvent.
type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderOpen            OrderStatus = "open"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderFilled          OrderStatus = "filled"
	OrderCancelled       OrderStatus = "cancelled"
	OrderRejected        OrderStatus = "rejected"
)

// Fill is one partial or complete execution against an order.
type Fill struct {
	Price     decimal.Decimal
	Quantity  decimal.Decimal
	Timestamp time.Time
}

// OrderEvent carries the resolved order parameters derived from a signal.
type OrderEvent struct {
	Metadata      EventMetadata
	StrategyID    string
	AccountID     string
	ClientOrderID string
	Exchange      ExchangeID
	Symbol        string
	Side          Side
	Type          OrderType
	Quantity      decimal.Decimal
	LimitPrice    *decimal.Decimal
	Status        OrderStatus
}

// ExecutionEvent reports a status transition or fill for an order.
type ExecutionEvent struct {
	Metadata      EventMetadata
	ClientOrderID string
	Exchange      ExchangeID
	Status        OrderStatus
	Fills         []Fill
}

// ————————————————————————————————————————————————————————————————————————
// Risk
// ————————————————————————————————————————————————————————————————————————

// RiskSeverity ranks a RiskEvent.
type RiskSeverity string

const (
	RiskInfo     RiskSeverity = "info"
	RiskWarn     RiskSeverity = "warn"
	RiskHigh     RiskSeverity = "high"
	RiskCritical RiskSeverity = "critical"
)

// RiskEvent reports a risk condition. Nothing in this module consumes the
// risk channel, so a Critical event does not by itself trigger the
// orchestrator's EmergencyHalt command.
type RiskEvent struct {
	Metadata   EventMetadata
	Severity   RiskSeverity
	Kind       string
	Message    string
	Detail     map[string]string
	OpenedAt   time.Time
	ResolvedAt *time.Time
}

// ————————————————————————————————————————————————————————————————————————
// Stream messages (connector → ingestion contract)
// ————————————————————————————————————————————————————————————————————————

// StreamMessageKind discriminates the raw messages a Connector yields.
type StreamMessageKind string

const (
	StreamTick        StreamMessageKind = "tick"
	StreamOrderUpdate StreamMessageKind = "order_update"
	StreamTrade       StreamMessageKind = "trade"
	StreamPing        StreamMessageKind = "ping"
	StreamPong        StreamMessageKind = "pong"
	StreamError       StreamMessageKind = "error"
)

// StreamMessage is the wire contract every Connector implementation
// produces, tagged with a Kind and carrying only the fields that Kind
// defines.
type StreamMessage struct {
	Kind   StreamMessageKind
	Symbol string

	// Tick fields
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Last      decimal.Decimal
	Volume24h decimal.Decimal
	Timestamp time.Time

	// OrderUpdate fields (L2 book delta or snapshot)
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Snapshot bool
	Bids     []PriceLevel
	Asks     []PriceLevel

	// Trade fields
	TradeSide Side

	// Error text
	ErrorText string
}

// RawMessage tags a StreamMessage with the exchange it arrived from —
// the unit the ingestion task forwards onto the raw channel.
type RawMessage struct {
	Exchange ExchangeID
	Message  StreamMessage
}
