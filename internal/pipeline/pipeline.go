// Package pipeline wires together one ingestion task per exchange, a
// single normalizer, and the distributor, and owns their lifecycle. It
// follows the builder/handle shape of DataPipelineBuilder/DataPipelineHandle
// from the original design; shutdown cancels every stage through one
// shared context rather than stopping and joining the stages in order.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"coreengine/internal/bus"
	"coreengine/internal/distributor"
	"coreengine/internal/ingestion"
	"coreengine/internal/normalizer"
	"coreengine/pkg/types"
)

const (
	defaultRawCapacity        = 4096
	defaultNormalizedCapacity = 4096
)

// Builder accumulates per-exchange ingestion configs before Build spawns
// the pipeline's tasks.
type Builder struct {
	configs            []ingestion.Config
	bus                *bus.Bus
	rawCapacity        int
	normalizedCapacity int
	logger             *slog.Logger
}

// NewBuilder creates a Builder publishing onto b.
func NewBuilder(b *bus.Bus, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		bus:                b,
		rawCapacity:        defaultRawCapacity,
		normalizedCapacity: defaultNormalizedCapacity,
		logger:             logger,
	}
}

// WithExchange registers one ingestion task.
func (bld *Builder) WithExchange(cfg ingestion.Config) *Builder {
	bld.configs = append(bld.configs, cfg)
	return bld
}

func (bld *Builder) WithRawCapacity(n int) *Builder        { bld.rawCapacity = n; return bld }
func (bld *Builder) WithNormalizedCapacity(n int) *Builder { bld.normalizedCapacity = n; return bld }

// Build spawns one goroutine per ingestion config plus the normalizer and
// distributor, and returns a Handle for graceful shutdown. ctx governs
// the lifetime of every spawned goroutine.
func (bld *Builder) Build(ctx context.Context) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	rawCh := make(chan types.RawMessage, bld.rawCapacity)
	normalizedCh := make(chan types.MarketEvent, bld.normalizedCapacity)

	for _, cfg := range bld.configs {
		task := ingestion.New(cfg, bld.logger)
		group.Go(func() error {
			return task.Run(groupCtx, rawCh)
		})
	}

	norm := normalizer.New(bld.logger)
	group.Go(func() error {
		defer close(normalizedCh)
		return runNormalizer(groupCtx, norm, rawCh, normalizedCh)
	})

	dist := distributor.New(bld.bus.MarketSender(), bus.Blocking, bld.logger)
	group.Go(func() error {
		return dist.Run(groupCtx, normalizedCh)
	})

	return &Handle{
		cancel: cancel,
		group:  group,
		logger: bld.logger,
	}
}

func runNormalizer(ctx context.Context, n *normalizer.Normalizer, in <-chan types.RawMessage, out chan<- types.MarketEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-in:
			if !ok {
				return nil
			}
			evt, emit := n.Normalize(raw)
			if !emit {
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Handle lets the owner stop every pipeline goroutine. Shutdown cancels
// the context shared by the ingestion tasks, the normalizer and the
// distributor, then waits for all of them together; the stages are not
// stopped or joined in a fixed order, and events still buffered between
// stages at cancellation may be discarded.
type Handle struct {
	cancel context.CancelFunc
	group  *errgroup.Group
	logger *slog.Logger
}

// Shutdown cancels every goroutine and waits for them to exit. Errors
// other than context.Canceled are surfaced to the caller; a cancelled
// pipeline reports nil.
func (h *Handle) Shutdown() error {
	h.cancel()
	if err := h.group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
