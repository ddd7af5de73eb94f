package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/internal/queue"
	"github.com/driftworks/swaps/pkg/core"
	"github.com/driftworks/swaps/pkg/streaming"
)

const flushInterval = 250 * time.Millisecond

// Client streams swap announcements to the relay server. Announce only pushes
// onto the outbox; a background loop drains it to the connection, so the tick
// thread never touches the network.
type Client struct {
	conn      *connection
	cfg       config.RelayConfig
	sessionID string
	version   string
	outbox    *queue.Queue[core.SwapMessage]
	stop      chan struct{}
	log       *slog.Logger
}

// New creates a relay client with a fresh session ID.
func New(cfg config.RelayConfig, version string, log *slog.Logger) *Client {
	return &Client{
		conn:      newConnection(log),
		cfg:       cfg,
		sessionID: uuid.NewString(),
		version:   version,
		outbox:    queue.New[core.SwapMessage](),
		stop:      make(chan struct{}),
		log:       log,
	}
}

// Init connects, identifies the session with a hello, and starts the flush
// loop. The hello is cached for replay after a reconnect.
func (c *Client) Init() error {
	if err := c.conn.dial(c.cfg.URL, c.cfg.Secret); err != nil {
		return err
	}

	hello, err := marshalEnvelope(streaming.TypeHello, streaming.HelloPayload{
		SessionID: c.sessionID,
		Version:   c.version,
	})
	if err != nil {
		return err
	}

	c.conn.mu.Lock()
	c.conn.cachedHello = hello
	c.conn.mu.Unlock()

	if err := c.conn.sendAndWait(hello, streaming.TypeHello, ackTimeout); err != nil {
		return fmt.Errorf("relay handshake failed: %w", err)
	}

	go c.flushLoop()
	c.log.Info("Relay connected", "sessionId", c.sessionID)
	return nil
}

// Close flushes the outbox, sends a goodbye, and shuts the connection down.
// The drain gives the write loop time to put the flushed announcements and
// the goodbye on the wire before the socket closes under them.
func (c *Client) Close() error {
	close(c.stop)
	c.flush()

	if goodbye, err := marshalEnvelope(streaming.TypeGoodbye, streaming.HelloPayload{
		SessionID: c.sessionID,
	}); err == nil {
		c.conn.send(goodbye)
	}
	c.conn.drain(writeWait)
	return c.conn.close()
}

// Announce queues a swap change for delivery. Never blocks.
func (c *Client) Announce(msg core.SwapMessage) {
	c.outbox.Push(msg)
}

// OutboxDepth returns the number of queued, not yet flushed announcements.
func (c *Client) OutboxDepth() int {
	return c.outbox.Len()
}

func (c *Client) flushLoop() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.flush()
		}
	}
}

func (c *Client) flush() {
	for _, msg := range c.outbox.GetAndEmpty() {
		msgType := streaming.TypeSwapApplied
		if msg.EngineID == core.StockEngineID {
			msgType = streaming.TypeSwapStock
		}

		data, err := marshalEnvelope(msgType, streaming.SwapPayload{
			SessionID: c.sessionID,
			Swap:      msg,
		})
		if err != nil {
			c.log.Warn("Failed to marshal swap announcement", "error", err)
			continue
		}
		c.conn.send(data)
	}
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}
