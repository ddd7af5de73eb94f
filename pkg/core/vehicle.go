// pkg/core/vehicle.go
package core

// AudioController is the capability surface of a vehicle's engine audio
// component. The host audio subsystem binds a sound by reading the identity
// field once at enable time, so rebinding is: Disable, SetIdentity, Enable,
// then restore the previous identity. Implementations must not let other
// readers observe the identity mid-sequence.
type AudioController interface {
	Disable()
	Enable()
	Identity() string
	SetIdentity(name string)
}

// Vehicle is the live vehicle handle the host exposes to the extension.
// InstanceKey identifies this particular vehicle for the ledger; ModelKey
// identifies its model for eligibility checks.
type Vehicle interface {
	InstanceKey() string
	ModelKey() string

	// Engine returns a copy of the live powertrain description.
	// CommitEngine writes a full description back in one call.
	Engine() PowertrainCurve
	CommitEngine(PowertrainCurve)

	FinalDrive() float32
	SetFinalDrive(float32)
	ClutchTorque() float32
	SetClutchTorque(float32)

	Audio() AudioController
}
