package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

const (
	pingInterval     = 30 * time.Second // keepalive ping cadence
	readTimeout      = 90 * time.Second // ~3 missed pings triggers reconnect
	minReconnectWait = time.Second
	maxReconnectWait = 15 * time.Second // spec.md §4.1: capped at ~15s
	writeTimeout     = 10 * time.Second
	streamBufferSize = 1024
)

// wireMessage is the venue-agnostic shape dispatchMessage parses before
// translating into a types.StreamMessage. Real venues vary in field
// names; a concrete deployment would carry one parser per venue. This
// reference parser exists to exercise the reconnect/dispatch plumbing.
type wireMessage struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Bid       string  `json:"bid"`
	Ask       string  `json:"ask"`
	Last      string  `json:"last"`
	Volume24h string  `json:"volume_24h"`
	Side      string  `json:"side"`
	Price     string  `json:"price"`
	Quantity  string  `json:"quantity"`
	Snapshot  bool    `json:"snapshot"`
	Error     string  `json:"error"`
}

// WebSocket is the reference Connector implementation: it dials a single
// WebSocket endpoint, reconnects with exponential backoff on drop, sends
// periodic pings, and watches a read deadline so a silent server is
// detected without waiting for a TCP-level failure. Structure mirrors the
// teacher's exchange.WSFeed almost line for line (see DESIGN.md).
type WebSocket struct {
	url    string
	logger *slog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	subscribedMu sync.RWMutex
	subscribed   map[string]bool

	connected atomic.Bool

	out chan types.StreamMessage

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWebSocket creates a WebSocket connector for url. Call Connect to
// start the reconnect loop.
func NewWebSocket(url string, logger *slog.Logger) *WebSocket {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{
		url:        url,
		logger:     logger.With("component", "connector_ws"),
		subscribed: make(map[string]bool),
		out:        make(chan types.StreamMessage, streamBufferSize),
	}
}

func (w *WebSocket) Stream() <-chan types.StreamMessage { return w.out }

func (w *WebSocket) IsConnected() bool { return w.connected.Load() }

// Connect starts the background reconnect loop and returns once an
// attempt connects (failed attempts are retried with backoff) or ctx is
// cancelled.
func (w *WebSocket) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	connected := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(w.done)
		w.run(runCtx, func() { once.Do(func() { close(connected) }) })
	}()

	select {
	case <-connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect stops the reconnect loop and closes the stream channel.
func (w *WebSocket) Disconnect() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	close(w.out)
	return nil
}

func (w *WebSocket) Subscribe(ctx context.Context, symbols []string) error {
	w.subscribedMu.Lock()
	for _, s := range symbols {
		w.subscribed[s] = true
	}
	w.subscribedMu.Unlock()

	return w.writeJSON(map[string]any{
		"op":      "subscribe",
		"symbols": symbols,
	})
}

func (w *WebSocket) run(ctx context.Context, onConnected func()) {
	backoff := minReconnectWait

	for {
		err := w.connectAndRead(ctx, onConnected)
		w.connected.Store(false)
		if ctx.Err() != nil {
			return
		}

		w.logger.Warn("connector disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

func (w *WebSocket) connectAndRead(ctx context.Context, onConnected func()) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()

	defer func() {
		w.connMu.Lock()
		conn.Close()
		w.conn = nil
		w.connMu.Unlock()
	}()

	if err := w.resubscribe(); err != nil {
		return fmt.Errorf("resubscribe: %w", err)
	}

	w.connected.Store(true)
	onConnected()
	w.logger.Info("connector connected", "url", w.url)

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go w.pingLoop(pingCtx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		w.dispatchMessage(ctx, msg)
	}
}

func (w *WebSocket) resubscribe() error {
	w.subscribedMu.RLock()
	symbols := make([]string, 0, len(w.subscribed))
	for s := range w.subscribed {
		symbols = append(symbols, s)
	}
	w.subscribedMu.RUnlock()

	if len(symbols) == 0 {
		return nil
	}
	return w.writeJSON(map[string]any{"op": "subscribe", "symbols": symbols})
}

func (w *WebSocket) dispatchMessage(ctx context.Context, data []byte) {
	var wm wireMessage
	if err := json.Unmarshal(data, &wm); err != nil {
		w.logger.Debug("ignoring non-json message", "data", string(data))
		return
	}

	msg, ok := translate(wm)
	if !ok {
		w.logger.Debug("unknown stream message type", "type", wm.Type)
		return
	}

	// Blocking send: a full stream buffer stalls the read loop instead of
	// dropping the message, so back-pressure reaches the socket.
	select {
	case w.out <- msg:
	case <-ctx.Done():
	}
}

func translate(wm wireMessage) (types.StreamMessage, bool) {
	parseDec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}

	switch wm.Type {
	case "tick":
		return types.StreamMessage{
			Kind:      types.StreamTick,
			Symbol:    wm.Symbol,
			Bid:       parseDec(wm.Bid),
			Ask:       parseDec(wm.Ask),
			Last:      parseDec(wm.Last),
			Volume24h: parseDec(wm.Volume24h),
			Timestamp: time.Now(),
		}, true
	case "order_update":
		return types.StreamMessage{
			Kind:     types.StreamOrderUpdate,
			Symbol:   wm.Symbol,
			Side:     types.Side(wm.Side),
			Price:    parseDec(wm.Price),
			Quantity: parseDec(wm.Quantity),
			Snapshot: wm.Snapshot,
		}, true
	case "trade":
		return types.StreamMessage{
			Kind:      types.StreamTrade,
			Symbol:    wm.Symbol,
			Price:     parseDec(wm.Price),
			Quantity:  parseDec(wm.Quantity),
			TradeSide: types.Side(wm.Side),
			Timestamp: time.Now(),
		}, true
	case "ping":
		return types.StreamMessage{Kind: types.StreamPing}, true
	case "pong":
		return types.StreamMessage{Kind: types.StreamPong}, true
	case "error":
		return types.StreamMessage{Kind: types.StreamError, ErrorText: wm.Error}, true
	default:
		return types.StreamMessage{}, false
	}
}

func (w *WebSocket) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.writeMessage(websocket.TextMessage, []byte(`{"op":"ping"}`)); err != nil {
				w.logger.Warn("ping failed", "error", err)
				return
			}
		}
	}
}

func (w *WebSocket) writeJSON(v any) error {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("connector: not connected")
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(v)
}

func (w *WebSocket) writeMessage(msgType int, data []byte) error {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("connector: not connected")
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteMessage(msgType, data)
}
