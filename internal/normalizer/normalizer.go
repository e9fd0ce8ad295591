// Package normalizer is the single consumer of the ingestion raw channel.
// It parses raw StreamMessages into canonical MarketEvents, maintains the
// per-exchange/pair L2 books, and stamps every emitted event with a
// monotonic global sequence number (spec.md §4.3).
package normalizer

import (
	"log/slog"
	"strings"
	"time"

	"coreengine/internal/book"
	"coreengine/internal/seq"
	"coreengine/pkg/types"
)

func nextSequence() uint64 {
	return seq.Next()
}

// bookKey identifies one exchange/pair book.
type bookKey struct {
	exchange types.ExchangeID
	symbol   string
}

// Normalizer owns the per-exchange books exclusively — no lock is needed
// on the book map itself because only this single consumer ever touches
// it (spec.md §5 "Shared resources").
type Normalizer struct {
	books  map[bookKey]*book.Book
	logger *slog.Logger
}

// New creates an empty Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		books:  make(map[bookKey]*book.Book),
		logger: logger.With("component", "normalizer"),
	}
}

// Normalize turns one raw message into zero-or-one MarketEvent. Parse
// failures, liveness-only messages (Ping/Pong), and stream Errors all
// return ok=false without propagating an event (spec.md §4.3).
func (n *Normalizer) Normalize(raw types.RawMessage) (types.MarketEvent, bool) {
	msg := raw.Message

	switch msg.Kind {
	case types.StreamTick:
		return n.normalizeTick(raw.Exchange, msg), true

	case types.StreamOrderUpdate:
		return n.normalizeOrderUpdate(raw.Exchange, msg)

	case types.StreamTrade:
		return n.normalizeTrade(raw.Exchange, msg), true

	case types.StreamPing, types.StreamPong:
		return types.MarketEvent{}, false

	case types.StreamError:
		n.logger.Debug("stream error", "exchange", raw.Exchange, "error", msg.ErrorText)
		return types.MarketEvent{}, false

	default:
		return types.MarketEvent{}, false
	}
}

func (n *Normalizer) metadata(exchange types.ExchangeID, priority types.Priority) types.EventMetadata {
	return types.EventMetadata{
		Sequence:  nextSequence(),
		Source:    "normalizer." + strings.ToLower(string(exchange)),
		Priority:  priority,
		CreatedAt: time.Now(),
	}
}

func (n *Normalizer) normalizeTick(exchange types.ExchangeID, msg types.StreamMessage) types.MarketEvent {
	pair := parseSymbol(msg.Symbol)
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now() // spec.md §4.3: missing timestamp defaults to "now"
	}

	return types.MarketEvent{
		Metadata: n.metadata(exchange, types.PriorityHigh),
		Kind:     types.MarketEventTick,
		Exchange: exchange,
		Pair:     pair,
		Tick: types.MarketTick{
			Symbol:    msg.Symbol,
			Bid:       msg.Bid,
			Ask:       msg.Ask,
			Last:      msg.Last,
			Volume24h: msg.Volume24h,
			Timestamp: ts,
		},
	}
}

func (n *Normalizer) normalizeOrderUpdate(exchange types.ExchangeID, msg types.StreamMessage) (types.MarketEvent, bool) {
	pair, ok := tryParseSymbol(msg.Symbol)
	if !ok {
		n.logger.Debug("order update: unparseable pair, dropping", "exchange", exchange, "symbol", msg.Symbol)
		return types.MarketEvent{}, false
	}
	if msg.Price.IsZero() && !msg.Snapshot {
		// spec.md §4.3: zero price is treated as missing and the update
		// is dropped (snapshots may legitimately include a zero-priced
		// empty side, handled by the snapshot branch below).
		n.logger.Debug("order update: zero price, dropping", "exchange", exchange, "symbol", msg.Symbol)
		return types.MarketEvent{}, false
	}

	key := bookKey{exchange: exchange, symbol: msg.Symbol}
	b, ok := n.books[key]
	if !ok {
		b = book.New(exchange, pair, n.logger)
		n.books[key] = b
	}

	seq := nextSequence()

	if msg.Snapshot {
		b.ApplySnapshot(msg.Bids, msg.Asks, seq)
		bids, asks := b.Snapshot()
		return types.MarketEvent{
			Metadata: types.EventMetadata{Sequence: seq, Source: "normalizer." + strings.ToLower(string(exchange)), Priority: types.PriorityHigh, CreatedAt: time.Now()},
			Kind:     types.MarketEventBookSnapshot,
			Exchange: exchange,
			Pair:     pair,
			Bids:     bids,
			Asks:     asks,
		}, true
	}

	b.ApplyDelta(msg.Side, msg.Price, msg.Quantity, seq)
	event := types.MarketEvent{
		Metadata: types.EventMetadata{Sequence: seq, Source: "normalizer." + strings.ToLower(string(exchange)), Priority: types.PriorityHigh, CreatedAt: time.Now()},
		Kind:     types.MarketEventBookDelta,
		Exchange: exchange,
		Pair:     pair,
		Side:     msg.Side,
	}
	level := types.PriceLevel{Price: msg.Price, Quantity: msg.Quantity}
	if msg.Side == types.Sell {
		event.Asks = []types.PriceLevel{level}
	} else {
		event.Bids = []types.PriceLevel{level}
	}
	return event, true
}

func (n *Normalizer) normalizeTrade(exchange types.ExchangeID, msg types.StreamMessage) types.MarketEvent {
	pair := parseSymbol(msg.Symbol)
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return types.MarketEvent{
		Metadata:  n.metadata(exchange, types.PriorityHigh),
		Kind:      types.MarketEventTrade,
		Exchange:  exchange,
		Pair:      pair,
		Price:     msg.Price,
		Quantity:  msg.Quantity,
		TradeSide: msg.TradeSide,
		TradeTS:   ts,
	}
}

// Book returns the book for exchange/symbol, or nil if none exists yet.
func (n *Normalizer) Book(exchange types.ExchangeID, symbol string) *book.Book {
	return n.books[bookKey{exchange: exchange, symbol: symbol}]
}

// parseSymbol splits symbol on '-' or '_' into base/quote; if it can't be
// split, it synthesizes a degenerate pair with an empty quote (spec.md
// §4.3: "if parseable, use base/quote; else synthesize a degenerate
// pair").
func parseSymbol(symbol string) types.TradingPair {
	if pair, ok := tryParseSymbol(symbol); ok {
		return pair
	}
	return types.TradingPair{Base: symbol, Quote: "", Symbol: symbol}
}

func tryParseSymbol(symbol string) (types.TradingPair, bool) {
	parts := strings.FieldsFunc(symbol, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) < 2 {
		return types.TradingPair{}, false
	}
	return types.TradingPair{Base: parts[0], Quote: parts[1], Symbol: symbol}, true
}
