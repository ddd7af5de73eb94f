// pkg/core/curve.go
package core

// PowertrainCurve holds the physical parameters that describe an engine.
// It is a pure value type - copying it is the only way it moves between
// the catalog, the ledger and a live vehicle.
type PowertrainCurve struct {
	InertiaRatio     float32 `json:"inertiaRatio"`
	MaxTorque        float32 `json:"maxTorque"`
	MaxTorqueRPM     float32 `json:"maxTorqueRpm"`
	RevLimiter       float32 `json:"revLimiter"`
	RevLimiterStep   float32 `json:"revLimiterStep"`
	TurboCharged     bool    `json:"turboCharged"`
	TurboPressure    float32 `json:"turboPressure"`
	BrakeTorqueRatio float32 `json:"brakeTorqueRatio"`
	UseTC            bool    `json:"useTc"`
	IdleRPM          float32 `json:"idleRpm"`
	CutRPM           float32 `json:"cutRpm"`
}
