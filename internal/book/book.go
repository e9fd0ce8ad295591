// Package book maintains incremental per-exchange, per-pair L2 order
// books: two price-ordered maps (bids descending, asks ascending), each
// mapping price to aggregated quantity, owned exclusively by the
// normalizer — no lock is needed in that single-writer role, but Book
// still guards itself with an RWMutex so tests and any future reader can
// safely inspect it without coordinating with the normalizer by hand
// (spec.md §9: "if read access is ever needed outside the normalizer,
// publish snapshots on the bus rather than expose the book" — this
// package is that snapshot's source of truth).
package book

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

// Book is one exchange/pair's local L2 mirror.
type Book struct {
	mu       sync.RWMutex
	exchange types.ExchangeID
	pair     types.TradingPair

	bids      map[string]decimal.Decimal
	asks      map[string]decimal.Decimal
	bidPrices []decimal.Decimal // sorted descending
	askPrices []decimal.Decimal // sorted ascending

	lastSeq uint64
	logger  *slog.Logger
}

// New creates an empty book for exchange/pair.
func New(exchange types.ExchangeID, pair types.TradingPair, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{
		exchange: exchange,
		pair:     pair,
		bids:     make(map[string]decimal.Decimal),
		asks:     make(map[string]decimal.Decimal),
		logger:   logger.With("component", "book", "pair", pair.Symbol),
	}
}

// ApplySnapshot replaces both sides of the book wholesale.
func (b *Book) ApplySnapshot(bids, asks []types.PriceLevel, seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = make(map[string]decimal.Decimal, len(bids))
	b.asks = make(map[string]decimal.Decimal, len(asks))
	b.bidPrices = b.bidPrices[:0]
	b.askPrices = b.askPrices[:0]

	for _, lvl := range bids {
		if lvl.Quantity.IsZero() {
			continue
		}
		b.bids[lvl.Price.String()] = lvl.Quantity
		b.bidPrices = append(b.bidPrices, lvl.Price)
	}
	for _, lvl := range asks {
		if lvl.Quantity.IsZero() {
			continue
		}
		b.asks[lvl.Price.String()] = lvl.Quantity
		b.askPrices = append(b.askPrices, lvl.Price)
	}
	sort.Slice(b.bidPrices, func(i, j int) bool { return b.bidPrices[i].GreaterThan(b.bidPrices[j]) })
	sort.Slice(b.askPrices, func(i, j int) bool { return b.askPrices[i].LessThan(b.askPrices[j]) })

	b.checkSeq(seq)
	b.lastSeq = seq
}

// ApplyDelta applies a single incremental update. A zero quantity removes
// the level (spec.md §3 invariant b); a positive quantity replaces it.
// Out-of-order sequence numbers relative to the book's last applied
// sequence are still applied, flagged in a warning log — per spec.md §4.3
// "correctness depends on connector ordering per symbol", the normalizer
// does not reject stale-looking updates outright.
func (b *Book) ApplyDelta(side types.Side, price, quantity decimal.Decimal, seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkSeq(seq)
	b.lastSeq = seq

	switch side {
	case types.Buy:
		b.applyLevel(&b.bids, &b.bidPrices, price, quantity, true)
	case types.Sell:
		b.applyLevel(&b.asks, &b.askPrices, price, quantity, false)
	}
}

func (b *Book) checkSeq(seq uint64) {
	if b.lastSeq != 0 && seq <= b.lastSeq {
		b.logger.Warn("book update applied out of sequence",
			"last_seq", b.lastSeq, "update_seq", seq)
	}
}

func (b *Book) applyLevel(levels *map[string]decimal.Decimal, prices *[]decimal.Decimal, price, quantity decimal.Decimal, desc bool) {
	key := price.String()
	_, existed := (*levels)[key]

	if quantity.IsZero() {
		if existed {
			delete(*levels, key)
			*prices = removePrice(*prices, price)
		}
		return
	}

	(*levels)[key] = quantity
	if !existed {
		*prices = insertSorted(*prices, price, desc)
	}
}

func insertSorted(prices []decimal.Decimal, price decimal.Decimal, desc bool) []decimal.Decimal {
	idx := sort.Search(len(prices), func(i int) bool {
		if desc {
			return prices[i].LessThan(price)
		}
		return prices[i].GreaterThan(price)
	})
	prices = append(prices, decimal.Decimal{})
	copy(prices[idx+1:], prices[idx:])
	prices[idx] = price
	return prices
}

func removePrice(prices []decimal.Decimal, price decimal.Decimal) []decimal.Decimal {
	for i, p := range prices {
		if p.Equal(price) {
			return append(prices[:i], prices[i+1:]...)
		}
	}
	return prices
}

// BestBidAsk returns the top of book. ok is false if either side is empty.
func (b *Book) BestBidAsk() (bid, ask decimal.Decimal, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.bidPrices) == 0 || len(b.askPrices) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	return b.bidPrices[0], b.askPrices[0], true
}

// MidPrice returns (bestBid+bestAsk)/2.
func (b *Book) MidPrice() (decimal.Decimal, bool) {
	bid, ask, ok := b.BestBidAsk()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

// Snapshot returns a defensive copy of both sides, ordered.
func (b *Book) Snapshot() (bids, asks []types.PriceLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = make([]types.PriceLevel, 0, len(b.bidPrices))
	for _, p := range b.bidPrices {
		bids = append(bids, types.PriceLevel{Price: p, Quantity: b.bids[p.String()]})
	}
	asks = make([]types.PriceLevel, 0, len(b.askPrices))
	for _, p := range b.askPrices {
		asks = append(asks, types.PriceLevel{Price: p, Quantity: b.asks[p.String()]})
	}
	return bids, asks
}

// Valid reports the top-bid < top-ask invariant (spec.md §8 property 2).
// A one-sided or empty book is vacuously valid.
func (b *Book) Valid() bool {
	bid, ask, ok := b.BestBidAsk()
	if !ok {
		return true
	}
	return bid.LessThan(ask)
}

// LastSequence returns the last applied sequence number.
func (b *Book) LastSequence() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastSeq
}
