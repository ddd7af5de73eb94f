package garage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/pkg/core"
)

func newTestCar(key string) *SimCar {
	return NewSimCar(key, "muscle", "stock_v6", core.PowertrainCurve{MaxTorque: 400}, 3.7, 450)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	car := newTestCar("car-1")

	r.Register(car)

	got, ok := r.Get("car-1")
	require.True(t, ok)
	assert.Equal(t, "car-1", got.InstanceKey())
	assert.Equal(t, "muscle", got.ModelKey())
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestCar("car-1"))
	r.Register(newTestCar("car-1"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UnregisterAndReset(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestCar("car-1"))
	r.Register(newTestCar("car-2"))

	r.Unregister("car-1")
	assert.Equal(t, 1, r.Len())

	r.Reset()
	assert.Equal(t, 0, r.Len())
}

func TestSimCar_AudioBindsOnEnable(t *testing.T) {
	car := newTestCar("car-1")
	assert.Equal(t, "stock_v6", car.BoundSound())

	// Identity changes are only observed at enable time.
	audio := car.Audio()
	audio.SetIdentity("v8_sound")
	assert.Equal(t, "stock_v6", car.BoundSound())

	audio.Disable()
	audio.Enable()
	assert.Equal(t, "v8_sound", car.BoundSound())
}
