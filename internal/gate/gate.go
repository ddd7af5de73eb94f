// Package gate models the asynchronous entitlement check guarding the swap
// feature. The check runs once in the background; its result is memoized and
// the transition out of Pending is monotonic - a resolved gate never reverts
// and is never re-queried.
package gate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Status is the tri-state result of the entitlement check.
type Status int32

const (
	Pending Status = iota
	Granted
	Denied
)

// String returns the status name for logs and the status read model.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Checker is the remote entitlement oracle. Implemented by api.Client.
type Checker interface {
	CheckEntitlement(ctx context.Context, featureKey string) (bool, error)
}

// Gate polls as Pending until the background check resolves. Failures of the
// check itself resolve to Denied - the feature fails closed.
type Gate struct {
	featureKey string
	checker    Checker
	log        *slog.Logger

	status atomic.Int32
	once   sync.Once
}

// New creates an unresolved gate.
func New(checker Checker, featureKey string, log *slog.Logger) *Gate {
	return &Gate{
		featureKey: featureKey,
		checker:    checker,
		log:        log,
	}
}

// Start launches the entitlement check. Safe to call more than once; only the
// first call does anything. The check runs to completion or to the end of the
// process - there is no cancellation beyond ctx.
func (g *Gate) Start(ctx context.Context) {
	g.once.Do(func() {
		go g.resolve(ctx)
	})
}

func (g *Gate) resolve(ctx context.Context) {
	granted, err := g.checker.CheckEntitlement(ctx, g.featureKey)
	if err != nil {
		g.log.Error("Entitlement check failed, feature stays disabled",
			"featureKey", g.featureKey, "error", err)
		g.status.CompareAndSwap(int32(Pending), int32(Denied))
		return
	}

	next := Denied
	if granted {
		next = Granted
	}
	if g.status.CompareAndSwap(int32(Pending), int32(next)) {
		g.log.Info("Entitlement check resolved",
			"featureKey", g.featureKey, "status", next.String())
	}
}

// Status returns the current gate state. Polled once per tick by the
// controller until it leaves Pending.
func (g *Gate) Status() Status {
	return Status(g.status.Load())
}

// Resolved reports whether the gate has left Pending.
func (g *Gate) Resolved() bool {
	return g.Status() != Pending
}
