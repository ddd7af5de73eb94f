package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	granted bool
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (s *stubChecker) CheckEntitlement(ctx context.Context, featureKey string) (bool, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return s.granted, s.err
}

func waitResolved(t *testing.T, g *Gate) Status {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if g.Resolved() {
			return g.Status()
		}
		select {
		case <-deadline:
			t.Fatal("gate never resolved")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestGate_StartsPending(t *testing.T) {
	checker := &stubChecker{granted: true, release: make(chan struct{})}
	g := New(checker, "swaps", slog.Default())

	assert.Equal(t, Pending, g.Status())
	assert.False(t, g.Resolved())

	g.Start(context.Background())
	assert.Equal(t, Pending, g.Status())

	close(checker.release)
	assert.Equal(t, Granted, waitResolved(t, g))
}

func TestGate_ResolvesDenied(t *testing.T) {
	g := New(&stubChecker{granted: false}, "swaps", slog.Default())
	g.Start(context.Background())
	assert.Equal(t, Denied, waitResolved(t, g))
}

func TestGate_CheckErrorFailsClosed(t *testing.T) {
	g := New(&stubChecker{err: errors.New("network down")}, "swaps", slog.Default())
	g.Start(context.Background())
	assert.Equal(t, Denied, waitResolved(t, g))
}

func TestGate_StartIsIdempotent(t *testing.T) {
	checker := &stubChecker{granted: true}
	g := New(checker, "swaps", slog.Default())

	g.Start(context.Background())
	g.Start(context.Background())
	g.Start(context.Background())

	require.Equal(t, Granted, waitResolved(t, g))
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestGate_ResolutionIsMonotonic(t *testing.T) {
	checker := &stubChecker{granted: true}
	g := New(checker, "swaps", slog.Default())
	g.Start(context.Background())
	require.Equal(t, Granted, waitResolved(t, g))

	// Polling after resolution never reverts the status.
	for i := 0; i < 100; i++ {
		assert.Equal(t, Granted, g.Status())
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "granted", Granted.String())
	assert.Equal(t, "denied", Denied.String())
}
