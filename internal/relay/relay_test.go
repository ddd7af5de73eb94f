package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/pkg/core"
	"github.com/driftworks/swaps/pkg/streaming"
)

// Compile-time interface checks.
var (
	_ Relay = (*Client)(nil)
	_ Relay = Noop{}
)

// testServer creates an httptest server that upgrades to WebSocket, records
// received messages, and acks hello.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeHello {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func (m *messageLog) count(msgType string) int {
	n := 0
	for _, env := range m.all() {
		if env.Type == msgType {
			n++
		}
	}
	return n
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newClient(srv *httptest.Server) *Client {
	return New(config.RelayConfig{Enabled: true, URL: wsURL(srv), Secret: "s"}, "1.0.0", slog.Default())
}

func TestHandshake(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	c := newClient(srv)
	require.NoError(t, c.Init())
	defer c.Close()

	msgs := ml.all()
	require.NotEmpty(t, msgs)
	assert.Equal(t, streaming.TypeHello, msgs[0].Type)

	var hello streaming.HelloPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &hello))
	assert.NotEmpty(t, hello.SessionID)
	assert.Equal(t, "1.0.0", hello.Version)
}

func TestAnnounceFlushesToServer(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	c := newClient(srv)
	require.NoError(t, c.Init())
	defer c.Close()

	c.Announce(core.SwapMessage{VehicleKey: "car-1", EngineID: 7, TurboPressure: 1.2, FinalDrive: 3.7})
	c.Announce(core.SwapMessage{VehicleKey: "car-1", EngineID: core.StockEngineID})

	require.Eventually(t, func() bool {
		return ml.count(streaming.TypeSwapApplied) == 1 && ml.count(streaming.TypeSwapStock) == 1
	}, 2*time.Second, 10*time.Millisecond)

	for _, env := range ml.all() {
		if env.Type != streaming.TypeSwapApplied {
			continue
		}
		var payload streaming.SwapPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "car-1", payload.Swap.VehicleKey)
		assert.Equal(t, 7, payload.Swap.EngineID)
	}
}

func TestCloseFlushesOutbox(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	c := newClient(srv)
	require.NoError(t, c.Init())

	c.Announce(core.SwapMessage{VehicleKey: "car-1", EngineID: 7})
	require.NoError(t, c.Close())

	// Close drains the send channel before tearing down the socket, so the
	// queued announcement and the goodbye both reach the server.
	require.Eventually(t, func() bool {
		return ml.count(streaming.TypeSwapApplied) == 1 && ml.count(streaming.TypeGoodbye) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, c.OutboxDepth())
}

func TestHandshakeFailsWithoutAck(t *testing.T) {
	// Plain HTTP server: the upgrade fails outright.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newClient(srv)
	assert.Error(t, c.Init())
}

func TestNoopRelay(t *testing.T) {
	var r Relay = Noop{}
	require.NoError(t, r.Init())
	r.Announce(core.SwapMessage{EngineID: 7})
	assert.Zero(t, r.OutboxDepth())
	require.NoError(t, r.Close())
}
