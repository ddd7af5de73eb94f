package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/driftworks/swaps/internal/catalog"
	"github.com/driftworks/swaps/internal/garage"
	"github.com/driftworks/swaps/pkg/core"
	"github.com/driftworks/swaps/pkg/extension"
)

// demoChecker stands in for the entitlement service when running offline.
type demoChecker struct{}

func (demoChecker) CheckEntitlement(ctx context.Context, featureKey string) (bool, error) {
	return true, nil
}

// demoCatalog is the built-in engine set used when no swap service is
// reachable. IDs are stable so saved demo ledgers replay across runs.
func demoCatalog(unrestricted bool) *catalog.Catalog {
	engines := []core.EngineSpec{
		{
			ID:           7,
			Name:         "6.2L V8",
			Rating:       5,
			Enabled:      true,
			ClutchTorque: 700,
			SoundID:      "v8_na",
			Curve: core.PowertrainCurve{
				MaxTorque:    620,
				MaxTorqueRPM: 4800,
				RevLimiter:   7500,
				IdleRPM:      900,
				CutRPM:       7800,
			},
		},
		{
			ID:           9,
			Name:         "2.2L Turbo Boxer",
			Rating:       3,
			Enabled:      true,
			ClutchTorque: 450,
			SoundID:      "boxer_turbo",
			Curve: core.PowertrainCurve{
				MaxTorque:     420,
				MaxTorqueRPM:  4200,
				RevLimiter:    7200,
				IdleRPM:       850,
				CutRPM:        7400,
				TurboCharged:  true,
				TurboPressure: 1.1,
			},
		},
		{
			ID:           12,
			Name:         "1.3L Twin Rotor",
			Rating:       4,
			Enabled:      false,
			ClutchTorque: 380,
			SoundID:      "rotary",
			Curve: core.PowertrainCurve{
				MaxTorque:    300,
				MaxTorqueRPM: 6500,
				RevLimiter:   9000,
				IdleRPM:      1000,
				CutRPM:       9200,
			},
		},
	}
	rows := []core.EligibilityRow{
		{ModelKey: "demo_muscle", Rating: 5},
		{ModelKey: "demo_compact", Rating: 3},
	}
	return catalog.New(engines, rows, unrestricted)
}

var demoStockCurve = core.PowertrainCurve{
	MaxTorque:    380,
	MaxTorqueRPM: 4500,
	RevLimiter:   6500,
	IdleRPM:      800,
	CutRPM:       6800,
}

func call(command string, args ...string) {
	var response string
	if len(args) > 0 {
		response = extension.CallWithArgs(command, args)
	} else {
		response = extension.Call(command)
	}
	fmt.Printf("%-16s -> %s\n", command, response)
}

// runDemo walks one player session end to end: gate resolution, loading a
// car, swapping engines, a remote player's swap arriving, and reverting to
// stock.
func runDemo() {
	local := garage.NewSimCar("demo-1", "demo_muscle", "stock_v6", demoStockCurve, 3.7, 450)
	remote := garage.NewSimCar("demo-2", "demo_compact", "stock_i4", demoStockCurve, 4.1, 320)
	vehicleGarage.Register(local)
	vehicleGarage.Register(remote)

	// pump ticks until the gate resolves and the controller goes active
	for i := 0; i < 100 && !swapController.Active(); i++ {
		call(":SWAPS:TICK:")
		time.Sleep(50 * time.Millisecond)
	}
	if !swapController.Active() {
		Logger.Error("Controller never went active, aborting demo")
		return
	}

	call(":VERSION:")
	call(":CAR:LOADED:", local.Key)
	call(":SWAPS:LIST:")

	// swap to the V8, then tune back and forth
	call(":SWAPS:SELECT:", "7")
	fmt.Println("local engine:", local.Engine().MaxTorque, "Nm, sound:", local.BoundSound())

	call(":SWAPS:SELECT:", "9")
	call(":SWAPS:SELECT:", "7")
	call(":SWAPS:SOUND:")

	// a remote player's swap arrives over the session
	payload, _ := json.Marshal(core.SwapMessage{
		VehicleKey:    remote.Key,
		EngineID:      9,
		TurboPressure: 1.3,
		FinalDrive:    4.3,
	})
	call(":SWAPS:REMOTE:", string(payload))
	// remote swaps are buffered; give the worker a moment
	time.Sleep(200 * time.Millisecond)
	fmt.Println("remote sound:", remote.BoundSound())

	// back to stock and persist
	call(":SWAPS:SELECT:", strconv.Itoa(core.StockEngineID))
	call(":SAVE:")
	call(":STATUS:")
}
