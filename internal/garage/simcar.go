package garage

import (
	"sync"

	"github.com/driftworks/swaps/pkg/core"
)

// SimAudio is the in-process audio component used by the demo harness and
// tests. BoundSound tracks what a real audio subsystem would have bound: the
// identity field as read at the last Enable call.
type SimAudio struct {
	mu         sync.Mutex
	identity   string
	enabled    bool
	boundSound string
}

func (a *SimAudio) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = false
}

func (a *SimAudio) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = true
	a.boundSound = a.identity
}

func (a *SimAudio) Identity() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

func (a *SimAudio) SetIdentity(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = name
}

// BoundSound reports the sound bound at the last Enable call.
func (a *SimAudio) BoundSound() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boundSound
}

// SimCar is an in-process core.Vehicle for the demo harness and tests. Safe
// for concurrent access - buffered handlers touch remote cars off the tick
// thread.
type SimCar struct {
	Key   string
	Model string

	mu           sync.Mutex
	engine       core.PowertrainCurve
	finalDrive   float32
	clutchTorque float32
	audio        *SimAudio
}

// NewSimCar creates a sim vehicle with the given factory configuration. The
// audio identity starts as the factory sound, already bound.
func NewSimCar(key, model, stockSound string, stock core.PowertrainCurve, finalDrive, clutchTorque float32) *SimCar {
	return &SimCar{
		Key:          key,
		Model:        model,
		engine:       stock,
		finalDrive:   finalDrive,
		clutchTorque: clutchTorque,
		audio: &SimAudio{
			identity:   stockSound,
			enabled:    true,
			boundSound: stockSound,
		},
	}
}

func (c *SimCar) InstanceKey() string { return c.Key }
func (c *SimCar) ModelKey() string    { return c.Model }

func (c *SimCar) Engine() core.PowertrainCurve {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

func (c *SimCar) CommitEngine(curve core.PowertrainCurve) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = curve
}

func (c *SimCar) FinalDrive() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalDrive
}

func (c *SimCar) SetFinalDrive(fd float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalDrive = fd
}

func (c *SimCar) ClutchTorque() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clutchTorque
}

func (c *SimCar) SetClutchTorque(ct float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clutchTorque = ct
}

func (c *SimCar) Audio() core.AudioController { return c.audio }

// BoundSound reports the sound the audio component currently plays.
func (c *SimCar) BoundSound() string { return c.audio.BoundSound() }
