// Package controller orchestrates the swap feature: it owns the "current
// swap" state for the loaded vehicle, reacts to vehicle-load and selection
// events, and keeps the ledger consistent with what is actually applied to
// the live vehicle. All transitions run on the host's tick thread.
package controller

import (
	"log/slog"

	"github.com/driftworks/swaps/internal/applier"
	"github.com/driftworks/swaps/internal/catalog"
	"github.com/driftworks/swaps/internal/gate"
	"github.com/driftworks/swaps/internal/ledger"
	"github.com/driftworks/swaps/pkg/core"
)

// Announcer publishes local swap changes to the relay. Implementations must
// not block the tick thread; nil disables announcements.
type Announcer interface {
	Announce(msg core.SwapMessage)
}

// EngineListItem is the presentation read model for one catalog entry.
type EngineListItem struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Active  bool   `json:"active"`
}

// Controller drives apply/revert transitions for the currently loaded
// vehicle.
type Controller struct {
	cat     *catalog.Catalog
	ledger  *ledger.Ledger
	gate    *gate.Gate
	applier *applier.Applier
	relay   Announcer
	log     *slog.Logger

	// dataLoaded is set once at construction: the catalog either loaded at
	// startup or the feature is dead for the session.
	dataLoaded bool
	granted    bool
	denied     bool

	vehicle core.Vehicle
	entry   *ledger.Entry
	snap    core.StockSnapshot
	hasSnap bool

	// remoteSnaps holds per-vehicle stock snapshots for remote players'
	// cars, captured on first contact so their reverts have a target.
	remoteSnaps map[string]core.StockSnapshot
}

// New creates a controller. cat may be nil when the catalog load failed; the
// controller then stays inactive for the whole session.
func New(cat *catalog.Catalog, led *ledger.Ledger, g *gate.Gate, app *applier.Applier, relay Announcer, log *slog.Logger) *Controller {
	return &Controller{
		cat:         cat,
		ledger:      led,
		gate:        g,
		applier:     app,
		relay:       relay,
		log:         log,
		dataLoaded:  cat != nil,
		remoteSnaps: make(map[string]core.StockSnapshot),
	}
}

// Active reports whether the feature is live: catalog loaded and gate
// granted.
func (c *Controller) Active() bool {
	return c.dataLoaded && c.granted
}

// Update runs once per host tick. Until the gate resolves it only polls the
// gate; after resolution it is a cheap no-op.
func (c *Controller) Update() {
	if !c.dataLoaded || c.denied || c.granted {
		return
	}

	switch c.gate.Status() {
	case gate.Pending:
		// keep waiting
	case gate.Granted:
		c.granted = true
		c.log.Info("Swap feature activated", "engines", c.cat.Len())
	case gate.Denied:
		c.denied = true
		c.log.Info("Swap feature denied for this session")
	}
}

// OnVehicleLoaded handles the local player's vehicle (re)load: capture the
// stock snapshot, look up or create the ledger entry, and re-apply its
// current swap. A persisted override the catalog no longer knows, or one
// that fails verification, is pruned so it is not retried every load.
func (c *Controller) OnVehicleLoaded(v core.Vehicle) {
	if !c.Active() {
		return
	}

	c.vehicle = v
	c.snap = c.applier.CaptureStock(v)
	c.hasSnap = true
	c.log.Debug("Vehicle loaded, stored stock engine", "vehicle", v.InstanceKey())

	entry := c.ledger.EntryFor(v.InstanceKey())
	if ov, ok := entry.Current(); ok {
		spec := c.lookupSpec(ov.EngineID)
		if !c.applier.ApplyEngine(v, ov, spec, c.snap, true) {
			entry.RemoveOverride(ov.EngineID)
			c.log.Info("Pruned rejected override", "vehicle", v.InstanceKey(), "engineId", ov.EngineID)
		}
	}
	c.entry = entry
}

// SelectEngine handles the user picking an engine (StockEngineID = stock)
// for the current vehicle. Reselecting the current engine is a no-op. The
// ledger either commits the new selection or rolls back to stock - it never
// ends up designating an engine the vehicle is not running.
func (c *Controller) SelectEngine(target int) {
	if !c.Active() || c.vehicle == nil || c.entry == nil || !c.hasSnap {
		return
	}
	if target == c.entry.CurrentID() {
		return
	}

	if target == core.StockEngineID {
		c.selectStock()
		return
	}

	spec, found := c.cat.EngineByID(target)
	if !found {
		c.log.Error("Selection references unknown engine", "engineId", target)
		return
	}

	if current, ok := c.entry.Current(); ok {
		c.switchEngine(current, spec)
	} else {
		c.engageEngine(spec)
	}
}

// selectStock removes the current override and restores the snapshot.
func (c *Controller) selectStock() {
	if current, ok := c.entry.Current(); ok {
		c.entry.RemoveOverride(current.EngineID)
	}
	c.applier.ApplyStock(c.vehicle, c.snap)
	c.announce(core.EngineOverride{EngineID: core.StockEngineID})
}

// switchEngine moves from one applied engine to another. The new spec is
// applied with the existing override's tuning first; only on success is the
// ledger switched (seeding a new override when the target has none yet). On
// failure the current override is pruned and the vehicle is already stock.
func (c *Controller) switchEngine(current core.EngineOverride, spec core.EngineSpec) {
	if c.applier.ApplyEngine(c.vehicle, current, &spec, c.snap, true) {
		if !c.entry.SetCurrent(spec.ID) {
			ov := c.seedOverride(spec)
			c.entry.AddOverride(ov)
			c.entry.SetCurrent(spec.ID)
		}
		cur, _ := c.entry.Current()
		c.announce(cur)
	} else {
		c.entry.RemoveOverride(current.EngineID)
		c.announce(core.EngineOverride{EngineID: core.StockEngineID})
	}
}

// engageEngine moves from stock to a specific engine, reusing a stored
// override when one exists and seeding one from catalog defaults otherwise.
// A failed application rolls the entry back to its prior state.
func (c *Controller) engageEngine(spec core.EngineSpec) {
	existed := c.entry.SetCurrent(spec.ID)
	if !existed {
		c.entry.AddOverride(c.seedOverride(spec))
		c.entry.SetCurrent(spec.ID)
	}

	ov, _ := c.entry.Current()
	if c.applier.ApplyEngine(c.vehicle, ov, &spec, c.snap, true) {
		c.announce(ov)
		return
	}

	// Drop the rejected override, stored or just seeded, rather than leave
	// the entry designating an engine the vehicle is not running.
	c.entry.RemoveOverride(spec.ID)
	c.announce(core.EngineOverride{EngineID: core.StockEngineID})
}

// seedOverride builds a fresh override from catalog defaults and the
// vehicle's present final drive.
func (c *Controller) seedOverride(spec core.EngineSpec) core.EngineOverride {
	return core.EngineOverride{
		EngineID:      spec.ID,
		TurboPressure: spec.Curve.TurboPressure,
		FinalDrive:    c.vehicle.FinalDrive(),
	}
}

// OnRemoteSwap applies another player's swap to their vehicle. Remote state
// is trusted as already verified by its origin; nothing is written to the
// local ledger. Requires the catalog, but not the gate - remote cars must
// sound right even for players without the feature.
func (c *Controller) OnRemoteSwap(v core.Vehicle, msg core.SwapMessage) {
	if !c.dataLoaded {
		return
	}

	snap, ok := c.remoteSnaps[v.InstanceKey()]
	if !ok {
		snap = c.applier.CaptureStock(v)
		c.remoteSnaps[v.InstanceKey()] = snap
	}

	if msg.EngineID == core.StockEngineID {
		c.applier.ApplyStock(v, snap)
		return
	}

	ov := core.EngineOverride{
		EngineID:      msg.EngineID,
		TurboPressure: msg.TurboPressure,
		FinalDrive:    msg.FinalDrive,
	}
	c.applier.ApplyEngine(v, ov, c.lookupSpec(msg.EngineID), snap, false)
}

// ReloadSound re-binds the current swap's sound after the host resets the
// vehicle's audio component.
func (c *Controller) ReloadSound() {
	if !c.Active() || c.vehicle == nil || c.entry == nil {
		return
	}
	ov, ok := c.entry.Current()
	if !ok {
		return
	}
	if spec, found := c.cat.EngineByID(ov.EngineID); found {
		c.applier.RebindSound(c.vehicle, spec.SoundID)
	}
}

// List builds the presentation read model for the current vehicle: every
// catalog entry with its visibility and whether it is the applied engine.
// The stock row is the UI's own; it is highlighted when CurrentEngineID
// reports StockEngineID.
func (c *Controller) List() []EngineListItem {
	if !c.Active() {
		return nil
	}

	currentID := core.StockEngineID
	if c.entry != nil {
		currentID = c.entry.CurrentID()
	}

	var modelKey string
	if c.vehicle != nil {
		modelKey = c.vehicle.ModelKey()
	}

	specs := c.cat.Engines()
	items := make([]EngineListItem, 0, len(specs))
	for _, spec := range specs {
		visible := c.cat.Unrestricted() || (spec.Enabled && c.cat.IsEligible(modelKey, spec))
		items = append(items, EngineListItem{
			ID:      spec.ID,
			Name:    spec.Name,
			Visible: visible,
			Active:  spec.ID == currentID,
		})
	}
	return items
}

// CurrentEngineID returns the applied engine for the current vehicle,
// StockEngineID when stock or inactive.
func (c *Controller) CurrentEngineID() int {
	if !c.Active() || c.entry == nil {
		return core.StockEngineID
	}
	return c.entry.CurrentID()
}

// CurrentVehicleKey returns the loaded vehicle's instance key, "" when none.
func (c *Controller) CurrentVehicleKey() string {
	if c.vehicle == nil {
		return ""
	}
	return c.vehicle.InstanceKey()
}

func (c *Controller) lookupSpec(engineID int) *core.EngineSpec {
	spec, found := c.cat.EngineByID(engineID)
	if !found {
		return nil
	}
	return &spec
}

func (c *Controller) announce(ov core.EngineOverride) {
	if c.relay == nil || c.vehicle == nil {
		return
	}
	c.relay.Announce(core.SwapMessage{
		VehicleKey:    c.vehicle.InstanceKey(),
		EngineID:      ov.EngineID,
		TurboPressure: ov.TurboPressure,
		FinalDrive:    ov.FinalDrive,
	})
}
