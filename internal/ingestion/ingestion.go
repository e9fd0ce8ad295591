// Package ingestion runs one long-lived task per exchange: it owns a
// connector, tags every message it yields with the exchange id, and
// forwards the pair onto a raw channel using a blocking send so
// back-pressure propagates all the way to the WebSocket read loop
// (spec.md §4.2, §5 "Back-pressure").
package ingestion

import (
	"context"
	"log/slog"
	"time"

	"coreengine/internal/connector"
	"coreengine/pkg/types"
)

// Config parameterizes a single ingestion task.
type Config struct {
	Exchange  types.ExchangeID
	Connector connector.Connector
	Symbols   []string

	// Heartbeat, if non-zero, emits a synthetic Ping RawMessage on this
	// interval independent of connector traffic, to watchdog downstream
	// consumers. Mirrors IngestionConfig.with_heartbeat in the original.
	Heartbeat time.Duration
}

// Task streams one exchange's connector into an outbound raw channel.
type Task struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Task from cfg.
func New(cfg Config, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{cfg: cfg, logger: logger.With("component", "ingestion", "exchange", cfg.Exchange)}
}

// Run connects the configured connector, subscribes to its symbols, and
// forwards every stream message onto outbound tagged with the exchange
// id. It exits when the connector's stream closes, when outbound's
// receiver is gone (blocking send observes ctx cancellation instead,
// since Go channels have no send-side "receiver dropped" signal short of
// context), or when ctx is cancelled.
func (t *Task) Run(ctx context.Context, outbound chan<- types.RawMessage) error {
	if err := t.cfg.Connector.Connect(ctx); err != nil {
		return err
	}
	if err := t.cfg.Connector.Subscribe(ctx, t.cfg.Symbols); err != nil {
		return err
	}

	var heartbeatTicker *time.Ticker
	var heartbeatC <-chan time.Time
	if t.cfg.Heartbeat > 0 {
		heartbeatTicker = time.NewTicker(t.cfg.Heartbeat)
		defer heartbeatTicker.Stop()
		heartbeatC = heartbeatTicker.C
	}

	stream := t.cfg.Connector.Stream()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-stream:
			if !ok {
				t.logger.Info("stream ended")
				return nil
			}
			select {
			case outbound <- types.RawMessage{Exchange: t.cfg.Exchange, Message: msg}:
			case <-ctx.Done():
				return ctx.Err()
			}

		case <-heartbeatC:
			select {
			case outbound <- types.RawMessage{Exchange: t.cfg.Exchange, Message: types.StreamMessage{Kind: types.StreamPing}}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
