// Package distributor bridges the normalizer's local output channel into
// the bus's market channel. It is a pure relay: its value is decoupling
// the normalizer from the bus's publication policy, so the bus can be
// swapped out in tests (spec.md §4.5).
package distributor

import (
	"context"
	"log/slog"

	"coreengine/internal/bus"
	"coreengine/pkg/types"
)

// Distributor relays normalized events onto a bus market sender.
type Distributor struct {
	sender bus.Sender[types.MarketEvent]
	logger *slog.Logger
	mode   bus.PublishMode
}

// New creates a Distributor publishing onto sender using mode (typically
// bus.Blocking, matching the normalizer's own back-pressure discipline —
// spec.md §5 "the normalizer uses Blocking send").
func New(sender bus.Sender[types.MarketEvent], mode bus.PublishMode, logger *slog.Logger) *Distributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Distributor{sender: sender, logger: logger.With("component", "distributor"), mode: mode}
}

// Run relays events from in until ctx is cancelled or in closes.
func (d *Distributor) Run(ctx context.Context, in <-chan types.MarketEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case evt, ok := <-in:
			if !ok {
				d.logger.Info("upstream channel closed, exiting")
				return nil
			}
			if err := d.sender.Publish(evt, d.mode); err != nil {
				d.logger.Warn("dropping market event, bus publish failed", "error", err, "sequence", evt.Metadata.Sequence)
			}
		}
	}
}
