package connector

import (
	"context"
	"sync/atomic"

	"coreengine/pkg/types"
)

// Mock is an in-memory Connector for tests: messages pushed via Push are
// delivered on Stream; Connect/Disconnect toggle IsConnected without any
// network activity.
type Mock struct {
	out       chan types.StreamMessage
	connected atomic.Bool
}

// NewMock creates a Mock connector with the given stream buffer capacity.
func NewMock(capacity int) *Mock {
	return &Mock{out: make(chan types.StreamMessage, capacity)}
}

func (m *Mock) Connect(ctx context.Context) error {
	m.connected.Store(true)
	return nil
}

func (m *Mock) Disconnect() error {
	m.connected.Store(false)
	close(m.out)
	return nil
}

func (m *Mock) IsConnected() bool { return m.connected.Load() }

func (m *Mock) Subscribe(ctx context.Context, symbols []string) error { return nil }

func (m *Mock) Stream() <-chan types.StreamMessage { return m.out }

// Push enqueues a message as if it arrived from the wire. It blocks if
// the stream buffer is full, matching the blocking-send back-pressure a
// real connector's read loop would experience.
func (m *Mock) Push(msg types.StreamMessage) {
	m.out <- msg
}
