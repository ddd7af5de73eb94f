// pkg/core/swap.go
package core

// EngineOverride is a per-vehicle tuning of one catalog engine. TurboPressure
// and FinalDrive belong to the vehicle, independent of catalog defaults.
type EngineOverride struct {
	EngineID      int     `json:"engineId"`
	TurboPressure float32 `json:"turboPressure"`
	FinalDrive    float32 `json:"finalDrive"`
}

// LedgerEntry is the persisted record of one vehicle's swaps: every override
// the player has configured and which of them (if any) is current.
// CurrentEngineID of StockEngineID means the vehicle runs stock.
type LedgerEntry struct {
	VehicleKey      string           `json:"vehicleKey"`
	CurrentEngineID int              `json:"currentEngineId"`
	Overrides       []EngineOverride `json:"overrides"`
}

// StockSnapshot captures a vehicle's factory powertrain and audio identity at
// load time. It is the rollback target for "set stock engine".
type StockSnapshot struct {
	SoundID      string          `json:"soundId"`
	FinalDrive   float32         `json:"finalDrive"`
	ClutchTorque float32         `json:"clutchTorque"`
	Curve        PowertrainCurve `json:"curve"`
}

// SwapMessage is the relay payload announcing a swap change for a vehicle.
// Inbound messages of this shape carry a remote player's swap, which is
// applied without verification - the origin already verified it.
type SwapMessage struct {
	VehicleKey    string  `json:"vehicleKey"`
	EngineID      int     `json:"engineId"`
	TurboPressure float32 `json:"turboPressure"`
	FinalDrive    float32 `json:"finalDrive"`
}
