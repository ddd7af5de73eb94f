// Package relay streams local swap changes to the session relay server over
// WebSocket, so other players' clients can mirror them. Announcements are
// fire-and-forget from the tick thread; the network never blocks gameplay.
package relay

import "github.com/driftworks/swaps/pkg/core"

// Relay is the outbound side of swap synchronization.
type Relay interface {
	Init() error
	Close() error
	Announce(msg core.SwapMessage)
	OutboxDepth() int
}

// Noop is the relay used when synchronization is disabled.
type Noop struct{}

func (Noop) Init() error                   { return nil }
func (Noop) Close() error                  { return nil }
func (Noop) Announce(msg core.SwapMessage) {}
func (Noop) OutboxDepth() int              { return 0 }
