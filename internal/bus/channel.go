package bus

import (
	"context"
	"time"
)

// PublishMode controls how Publish behaves when a channel is at capacity.
// It mirrors the three-case enum from the original design (Blocking, Try,
// Timeout(d)); Timeout carries its duration as a field since Go values
// can't attach a payload to a bare enum case the way Rust's can.
type PublishMode struct {
	kind    publishKind
	timeout time.Duration
}

type publishKind int

const (
	blockingKind publishKind = iota
	tryKind
	timeoutKind
)

// Blocking waits for capacity; the default for producers that must not
// drop (the normalizer's market publish).
var Blocking = PublishMode{kind: blockingKind}

// Try fails immediately with ErrFull if there is no capacity; the default
// for opportunistic paths (strategy signal publish).
var Try = PublishMode{kind: tryKind}

// Timeout blocks up to d for capacity, then fails with RecvTimeout, the
// same variant a timed receive returns. The default publish timeout across the bus is
// ~1ms so the hot path never stalls (spec.md §4.4).
func Timeout(d time.Duration) PublishMode {
	return PublishMode{kind: timeoutKind, timeout: d}
}

// Sender wraps a bounded channel with the three publish modes.
type Sender[T any] struct {
	ch chan T
}

func newSender[T any](ch chan T) Sender[T] { return Sender[T]{ch: ch} }

// Publish sends event according to mode.
func (s Sender[T]) Publish(event T, mode PublishMode) error {
	switch mode.kind {
	case blockingKind:
		s.ch <- event
		return nil
	case tryKind:
		select {
		case s.ch <- event:
			return nil
		default:
			return Full
		}
	default: // timeoutKind
		timer := time.NewTimer(mode.timeout)
		defer timer.Stop()
		select {
		case s.ch <- event:
			return nil
		case <-timer.C:
			return RecvTimeout
		}
	}
}

// TryPublish is shorthand for Publish(event, Try).
func (s Sender[T]) TryPublish(event T) error {
	return s.Publish(event, Try)
}

// Close closes the underlying channel, signalling shutdown to receivers.
// Only the owning producer should call this.
func (s Sender[T]) Close() { close(s.ch) }

// Receiver wraps a bounded channel with blocking, try, timed, and
// async-awaitable receive.
type Receiver[T any] struct {
	ch chan T
}

func newReceiver[T any](ch chan T) Receiver[T] { return Receiver[T]{ch: ch} }

// Recv blocks until an event is available or the channel is closed.
func (r Receiver[T]) Recv() (T, error) {
	v, ok := <-r.ch
	if !ok {
		var zero T
		return zero, Closed
	}
	return v, nil
}

// TryRecv returns immediately. The bool reports whether a value was
// available; when false with a nil error the channel was simply empty.
func (r Receiver[T]) TryRecv() (T, bool, error) {
	select {
	case v, ok := <-r.ch:
		if !ok {
			var zero T
			return zero, false, Closed
		}
		return v, true, nil
	default:
		var zero T
		return zero, false, nil
	}
}

// RecvTimeout blocks up to d for an event.
func (r Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case v, ok := <-r.ch:
		if !ok {
			var zero T
			return zero, Closed
		}
		return v, nil
	case <-timer.C:
		var zero T
		return zero, RecvTimeout
	}
}

// RecvAsync awaits the next event on a dedicated goroutine the way the
// original recv_async delegates to tokio::task::spawn_blocking, so a
// caller driven by an async-style event loop never starves other work
// while waiting. ctx cancellation surfaces as ErrJoin, mirroring a worker
// that never reports back.
func (r Receiver[T]) RecvAsync(ctx context.Context) (T, error) {
	type result struct {
		v   T
		err error
	}
	out := make(chan result, 1)
	go func() {
		v, err := r.Recv()
		out <- result{v, err}
	}()

	select {
	case res := <-out:
		return res.v, res.err
	case <-ctx.Done():
		var zero T
		return zero, Join
	}
}
