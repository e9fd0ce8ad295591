package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"coreengine/pkg/types"
)

func TestTryPublishFullReturnsFull(t *testing.T) {
	t.Parallel()
	b := NewBuilder().RiskCapacity(1).Build()
	sender := b.RiskSender()

	if err := sender.TryPublish(types.RiskEvent{Kind: "a"}); err != nil {
		t.Fatalf("first publish should succeed, got %v", err)
	}

	err := sender.TryPublish(types.RiskEvent{Kind: "b"})
	if !errors.Is(err, Full) {
		t.Fatalf("expected Full, got %v", err)
	}
}

func TestCapacityZeroTryAlwaysFull(t *testing.T) {
	t.Parallel()
	b := NewBuilder().RiskCapacity(0).Build()
	sender := b.RiskSender()

	if err := sender.TryPublish(types.RiskEvent{}); !errors.Is(err, Full) {
		t.Fatalf("expected Full on zero-capacity channel, got %v", err)
	}
}

func TestBlockingPublishCompletesAfterConsume(t *testing.T) {
	t.Parallel()
	b := NewBuilder().RiskCapacity(1).Build()
	sender := b.RiskSender()
	receiver := b.RiskReceiver()

	if err := sender.TryPublish(types.RiskEvent{Kind: "fill"}); err != nil {
		t.Fatalf("fill publish: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- sender.Publish(types.RiskEvent{Kind: "blocked"}, Blocking)
	}()

	select {
	case <-done:
		t.Fatal("blocking publish returned before receiver drained the channel")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := receiver.Recv(); err != nil {
		t.Fatalf("drain recv: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("blocking publish error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking publish never completed after capacity freed")
	}
}

func TestRecvTimeoutElapses(t *testing.T) {
	t.Parallel()
	b := NewBuilder().Build()
	receiver := b.RiskReceiver()

	_, err := receiver.RecvTimeout(5 * time.Millisecond)
	if !errors.Is(err, RecvTimeout) {
		t.Fatalf("expected RecvTimeout, got %v", err)
	}
}

func TestRecvClosedReturnsClosed(t *testing.T) {
	t.Parallel()
	b := NewBuilder().RiskCapacity(1).Build()
	sender := b.RiskSender()
	receiver := b.RiskReceiver()
	sender.Close()

	if _, err := receiver.Recv(); !errors.Is(err, Closed) {
		t.Fatalf("expected Closed, got %v", err)
	}
}

func TestRecvAsyncDeliversValue(t *testing.T) {
	t.Parallel()
	b := NewBuilder().Build()
	sender := b.RiskSender()
	receiver := b.RiskReceiver()

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = sender.TryPublish(types.RiskEvent{Kind: "async"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := receiver.RecvAsync(ctx)
	if err != nil {
		t.Fatalf("RecvAsync: %v", err)
	}
	if got.Kind != "async" {
		t.Errorf("Kind = %q, want async", got.Kind)
	}
}

func TestPublishTimeoutModeFailsWhenFull(t *testing.T) {
	t.Parallel()
	b := NewBuilder().RiskCapacity(1).Build()
	sender := b.RiskSender()

	if err := sender.TryPublish(types.RiskEvent{}); err != nil {
		t.Fatalf("fill: %v", err)
	}

	err := sender.Publish(types.RiskEvent{}, Timeout(5*time.Millisecond))
	if !errors.Is(err, RecvTimeout) {
		t.Fatalf("expected RecvTimeout, got %v", err)
	}
}

func TestDefaultCapacities(t *testing.T) {
	t.Parallel()
	b := NewBuilder().Build()
	if b.publishTimeout != time.Millisecond {
		t.Errorf("default publish timeout = %v, want 1ms", b.publishTimeout)
	}
	if cap(b.marketCh) != 4096 {
		t.Errorf("market capacity = %d, want 4096", cap(b.marketCh))
	}
	if cap(b.riskCh) != 256 {
		t.Errorf("risk capacity = %d, want 256", cap(b.riskCh))
	}
}
