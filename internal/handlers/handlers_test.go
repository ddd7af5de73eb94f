package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/internal/applier"
	"github.com/driftworks/swaps/internal/catalog"
	"github.com/driftworks/swaps/internal/controller"
	"github.com/driftworks/swaps/internal/dispatcher"
	"github.com/driftworks/swaps/internal/garage"
	"github.com/driftworks/swaps/internal/gate"
	"github.com/driftworks/swaps/internal/ledger"
	"github.com/driftworks/swaps/internal/monitor"
	"github.com/driftworks/swaps/internal/relay"
	"github.com/driftworks/swaps/pkg/core"
)

var stockCurve = core.PowertrainCurve{
	MaxTorque:    400,
	MaxTorqueRPM: 4500,
	RevLimiter:   6500,
	IdleRPM:      800,
	CutRPM:       6800,
}

var v8Spec = core.EngineSpec{
	ID:           7,
	Name:         "V8",
	Rating:       5,
	Enabled:      true,
	ClutchTorque: 700,
	SoundID:      "v8_sound",
	Curve: core.PowertrainCurve{
		MaxTorque:     620,
		RevLimiter:    7500,
		TurboCharged:  true,
		TurboPressure: 1.2,
	},
}

type grantedChecker struct{}

func (grantedChecker) CheckEntitlement(ctx context.Context, featureKey string) (bool, error) {
	return true, nil
}

type fixture struct {
	dispatcher *dispatcher.Dispatcher
	garage     *garage.Registry
	controller *controller.Controller
}

type slogAdapter struct{ log *slog.Logger }

func (a slogAdapter) Debug(msg string, kv ...any) { a.log.Debug(msg, kv...) }
func (a slogAdapter) Info(msg string, kv ...any)  { a.log.Info(msg, kv...) }
func (a slogAdapter) Error(msg string, kv ...any) { a.log.Error(msg, kv...) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.New(
		[]core.EngineSpec{v8Spec},
		[]core.EligibilityRow{{ModelKey: "muscle", Rating: 5}},
		false,
	)
	led := ledger.NewLedger()
	g := gate.New(grantedChecker{}, "swaps", slog.Default())
	g.Start(context.Background())
	require.Eventually(t, g.Resolved, time.Second, time.Millisecond)

	app := applier.New(cat, slog.Default(), nil, false)
	ctrl := controller.New(cat, led, g, app, nil, slog.Default())
	reg := garage.NewRegistry()

	mon := monitor.NewService(monitor.Dependencies{
		Controller: ctrl,
		Gate:       g,
		Ledger:     led,
		Applier:    app,
		Relay:      relay.Noop{},
	})

	d, err := dispatcher.New(slogAdapter{slog.Default()})
	require.NoError(t, err)

	svc := NewService(Dependencies{
		Controller:       ctrl,
		Garage:           reg,
		Monitor:          mon,
		ExtensionVersion: "1.0.0",
	})
	svc.RegisterHandlers(d)

	return &fixture{dispatcher: d, garage: reg, controller: ctrl}
}

func (f *fixture) dispatch(t *testing.T, command string, args ...string) any {
	t.Helper()
	result, err := f.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return result
}

func newMuscleCar(key string) *garage.SimCar {
	return garage.NewSimCar(key, "muscle", "stock_v6", stockCurve, 3.7, 450)
}

func TestTickActivatesController(t *testing.T) {
	f := newFixture(t)
	require.False(t, f.controller.Active())

	f.dispatch(t, ":SWAPS:TICK:")

	assert.True(t, f.controller.Active())
}

func TestSelectFlow(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	car := newMuscleCar("car-1")
	f.garage.Register(car)
	f.dispatch(t, ":CAR:LOADED:", `"car-1"`)

	result := f.dispatch(t, ":SWAPS:SELECT:", `"7"`)

	assert.Equal(t, "7", result)
	assert.Equal(t, v8Spec.Curve.MaxTorque, car.Engine().MaxTorque)
	assert.Equal(t, "v8_sound", car.BoundSound())
}

func TestCarLoadedUnknownKey(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	_, err := f.dispatcher.Dispatch(dispatcher.Event{Command: ":CAR:LOADED:", Args: []string{`"nope"`}})

	assert.ErrorContains(t, err, "unknown vehicle key")
}

func TestSelectBadEngineID(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	_, err := f.dispatcher.Dispatch(dispatcher.Event{Command: ":SWAPS:SELECT:", Args: []string{`"x"`}})

	assert.ErrorContains(t, err, "bad engine id")
}

func TestRemoteSwap(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	remote := newMuscleCar("remote-1")
	f.garage.Register(remote)

	payload, err := json.Marshal(core.SwapMessage{
		VehicleKey: "remote-1", EngineID: 7, TurboPressure: 1.2, FinalDrive: 3.9,
	})
	require.NoError(t, err)

	result := f.dispatch(t, ":SWAPS:REMOTE:", string(payload))
	assert.Equal(t, "queued", result)

	require.Eventually(t, func() bool {
		return remote.BoundSound() == "v8_sound"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	car := newMuscleCar("car-1")
	f.garage.Register(car)
	f.dispatch(t, ":CAR:LOADED:", `"car-1"`)

	raw := f.dispatch(t, ":SWAPS:LIST:").(string)

	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, core.StockEngineID, resp.CurrentEngineID)
	require.Len(t, resp.Engines, 1)
	assert.True(t, resp.Engines[0].Visible)
}

func TestStatusAndVersion(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, ":SWAPS:TICK:")

	status := f.dispatch(t, ":STATUS:").(string)
	var decoded monitor.Status
	require.NoError(t, json.Unmarshal([]byte(status), &decoded))
	assert.True(t, decoded.Active)
	assert.Equal(t, "granted", decoded.GateStatus)

	assert.Equal(t, "1.0.0", f.dispatch(t, ":VERSION:"))
}
