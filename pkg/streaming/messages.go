package streaming

import (
	"encoding/json"

	"github.com/driftworks/swaps/pkg/core"
)

// Message type constants for the swap relay protocol.
const (
	TypeHello       = "hello"
	TypeSwapApplied = "swap_applied"
	TypeSwapStock   = "swap_stock"
	TypeGoodbye     = "goodbye"
)

// Envelope wraps every message sent over the relay connection.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the relay server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload identifies the session when the connection opens.
type HelloPayload struct {
	SessionID string `json:"sessionId"`
	Version   string `json:"version"`
}

// SwapPayload carries a swap change for one vehicle. TypeSwapApplied uses the
// full shape; TypeSwapStock carries EngineID 0 and zeroed tuning fields.
type SwapPayload struct {
	SessionID string           `json:"sessionId"`
	Swap      core.SwapMessage `json:"swap"`
}
