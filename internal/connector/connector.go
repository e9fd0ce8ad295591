// Package connector defines the abstract exchange-stream contract (C1)
// and a reference WebSocket implementation. A Connector is a capability
// set — connect, disconnect, subscribe, status — not an inheritance
// hierarchy; different venues are different concrete types behind the
// same interface (spec.md §9).
package connector

import (
	"context"

	"coreengine/pkg/types"
)

// Connector is the abstract stream source every ingestion task drives.
// Implementations must reconnect internally with exponential backoff
// capped at ~15s; Stream's channel never closes for transient errors,
// only on explicit Disconnect (cancelling the context passed to Connect
// stops reconnecting but leaves the channel open). REST-authenticated
// operations (place/cancel/get order) are intentionally absent from this
// interface — the core never depends on them (spec.md §4.1).
type Connector interface {
	// Connect establishes the underlying stream. It returns once the
	// first connection attempt succeeds or ctx is done.
	Connect(ctx context.Context) error

	// Disconnect tears down the stream and stops all reconnect attempts.
	Disconnect() error

	// IsConnected reports the current connection status.
	IsConnected() bool

	// Subscribe adds symbols to the live subscription set. Safe to call
	// before Connect; implementations replay subscriptions on reconnect.
	Subscribe(ctx context.Context, symbols []string) error

	// Stream returns the channel of messages yielded by this connector.
	// It behaves as a lazy, infinite sequence: callers range over it
	// until Disconnect closes it.
	Stream() <-chan types.StreamMessage
}
