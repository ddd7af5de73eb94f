// pkg/core/engine.go
package core

// StockEngineID is the reserved engine ID meaning "no swap" - the vehicle's
// factory powertrain. It is never stored as an override in the ledger.
const StockEngineID = 0

// EngineSpec is one catalog entry. Immutable after catalog load; it has no
// identity beyond its ID.
type EngineSpec struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Rating       int             `json:"rating"`
	Enabled      bool            `json:"enabled"`
	ClutchTorque float32         `json:"clutchTorque"`
	SoundID      string          `json:"soundId"`
	Curve        PowertrainCurve `json:"curve"`
}

// EligibilityRow grants vehicles of a model a rating. A vehicle qualifies for
// an engine when some row matches its model key with Rating >= spec.Rating.
type EligibilityRow struct {
	ModelKey string `json:"modelKey"`
	Rating   int    `json:"rating"`
}
