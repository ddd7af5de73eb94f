// Package applier mutates a live vehicle's drivetrain and audio identity to
// match a target engine or the factory baseline. It is the only component
// that writes to vehicle handles; everything it does either fully succeeds or
// falls back to stock before returning.
package applier

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/driftworks/swaps/internal/catalog"
	"github.com/driftworks/swaps/pkg/core"
)

// EventSink receives apply outcomes for telemetry. Implemented by the influx
// manager; nil disables recording.
type EventSink interface {
	RecordApply(vehicleKey string, engineID int, applied bool, duration time.Duration)
}

// Applier applies engine swaps and stock reverts to live vehicles.
type Applier struct {
	catalog    *catalog.Catalog
	log        *slog.Logger
	sink       EventSink
	logEngines bool

	lastApplyNanos atomic.Int64
}

// New creates an applier bound to a loaded catalog. sink may be nil.
func New(cat *catalog.Catalog, log *slog.Logger, sink EventSink, logEngines bool) *Applier {
	return &Applier{
		catalog:    cat,
		log:        log,
		sink:       sink,
		logEngines: logEngines,
	}
}

// CaptureStock reads a vehicle's factory configuration. Called once per
// vehicle-load event, before any swap is applied; the snapshot is the
// rollback target for every stock revert until the next load event.
func (a *Applier) CaptureStock(v core.Vehicle) core.StockSnapshot {
	return core.StockSnapshot{
		SoundID:      v.Audio().Identity(),
		FinalDrive:   v.FinalDrive(),
		ClutchTorque: v.ClutchTorque(),
		Curve:        v.Engine(),
	}
}

// ApplyEngine mutates the vehicle to run the overridden engine. spec is nil
// when the override's engine ID is not in the catalog (stale ledger data);
// the vehicle then reverts to stock and the call reports false. For the
// local player the override is verified first - persisted data is never
// trusted for the acting player - and a verification failure also reverts to
// stock and reports false. Remote swaps skip verification; their origin
// already verified them.
func (a *Applier) ApplyEngine(v core.Vehicle, ov core.EngineOverride, spec *core.EngineSpec, snap core.StockSnapshot, isLocal bool) bool {
	start := time.Now()

	if spec == nil {
		a.log.Warn("Unable to find engine in catalog, applying stock",
			"vehicle", v.InstanceKey(), "engineId", ov.EngineID)
		a.ApplyStock(v, snap)
		a.record(v, ov.EngineID, false, start)
		return false
	}

	if isLocal && !a.verify(v, ov, *spec) {
		a.log.Warn("Engine verification failed, applying stock",
			"vehicle", v.InstanceKey(), "engineId", spec.ID)
		a.ApplyStock(v, snap)
		a.record(v, ov.EngineID, false, start)
		return false
	}

	// Tuning is per-vehicle: the override's turbo pressure wins over the
	// catalog default.
	curve := spec.Curve
	curve.TurboPressure = ov.TurboPressure

	v.CommitEngine(curve)
	v.SetFinalDrive(ov.FinalDrive)
	v.SetClutchTorque(spec.ClutchTorque)
	a.RebindSound(v, spec.SoundID)

	if a.logEngines {
		a.log.Debug("Engine applied",
			"vehicle", v.InstanceKey(), "engine", spec.Name, "engineId", spec.ID,
			"turbo", ov.TurboPressure, "finalDrive", ov.FinalDrive, "local", isLocal)
	}
	a.record(v, spec.ID, true, start)
	return true
}

// ApplyStock restores the vehicle's factory powertrain and sound from the
// snapshot captured at its load event.
func (a *Applier) ApplyStock(v core.Vehicle, snap core.StockSnapshot) {
	v.CommitEngine(snap.Curve)
	v.SetFinalDrive(snap.FinalDrive)
	v.SetClutchTorque(snap.ClutchTorque)
	a.RebindSound(v, snap.SoundID)

	if a.logEngines {
		a.log.Debug("Stock engine applied", "vehicle", v.InstanceKey())
	}
}

// RebindSound points the vehicle's engine audio at a new sound. The host
// audio component reads its identity field once at enable time, so the
// rebind is disable, swap identity, enable, restore identity. The core is
// single-threaded per tick; nothing observes the identity mid-sequence.
func (a *Applier) RebindSound(v core.Vehicle, soundID string) {
	audio := v.Audio()
	audio.Disable()
	previous := audio.Identity()
	audio.SetIdentity(soundID)
	audio.Enable()
	audio.SetIdentity(previous)
}

// verify is the anti-tamper check for the acting player: the stored turbo
// pressure must not exceed the catalog's, and the vehicle must be eligible.
// The unrestricted escape hatch waives both.
func (a *Applier) verify(v core.Vehicle, ov core.EngineOverride, spec core.EngineSpec) bool {
	if a.catalog.Unrestricted() {
		return true
	}
	return ov.TurboPressure <= spec.Curve.TurboPressure && a.catalog.IsEligible(v.ModelKey(), spec)
}

// LastApplyDuration returns how long the most recent apply took.
func (a *Applier) LastApplyDuration() time.Duration {
	return time.Duration(a.lastApplyNanos.Load())
}

func (a *Applier) record(v core.Vehicle, engineID int, applied bool, start time.Time) {
	d := time.Since(start)
	a.lastApplyNanos.Store(int64(d))
	if a.sink != nil {
		a.sink.RecordApply(v.InstanceKey(), engineID, applied, d)
	}
}
