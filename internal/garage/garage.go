// Package garage tracks the live vehicle handles the host has registered.
// Handlers resolve vehicle keys from host commands against this registry, so
// lookups sit on the per-tick path and stay lock-cheap.
package garage

import (
	"sync"

	"github.com/driftworks/swaps/pkg/core"
)

// Registry maps vehicle instance keys to live handles.
type Registry struct {
	m        sync.Mutex
	vehicles map[string]core.Vehicle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		vehicles: make(map[string]core.Vehicle),
	}
}

// Register adds or replaces the handle for a vehicle instance key.
func (r *Registry) Register(v core.Vehicle) {
	r.m.Lock()
	defer r.m.Unlock()
	r.vehicles[v.InstanceKey()] = v
}

// Unregister drops the handle for a vehicle instance key.
func (r *Registry) Unregister(instanceKey string) {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.vehicles, instanceKey)
}

// Get returns the handle for a vehicle instance key.
func (r *Registry) Get(instanceKey string) (core.Vehicle, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	v, ok := r.vehicles[instanceKey]
	return v, ok
}

// Len returns the number of registered vehicles.
func (r *Registry) Len() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.vehicles)
}

// Reset drops all handles, e.g. when the host tears the scene down.
func (r *Registry) Reset() {
	r.m.Lock()
	defer r.m.Unlock()
	r.vehicles = make(map[string]core.Vehicle)
}
