// Package locomotion derives per-frame pose parameters for a walking
// character:
// - Kinematic Sampler: ground speed and facing-relative direction from velocity
// - Lean Estimator: smoothed body lean from lateral acceleration and yaw rate
// - Bone Oscillator: optional sinusoidal wobble on one named bone
//
// The stages run in that order inside a single Update call. The package
// owns no loop of its own; an external scheduler (see pkg/scene) calls
// Update once per simulation frame with that frame's delta time.
package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotator is an orientation in degrees. Yaw rotates about the vertical
// axis with positive yaw turning to the right; at yaw 0 the character
// faces +X and +Y is to its right.
type Rotator struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Forward returns the horizontal facing direction as a unit vector.
func (r Rotator) Forward() mgl64.Vec2 {
	sin, cos := math.Sincos(r.Yaw * radPerDeg)
	return mgl64.Vec2{cos, sin}
}

// UnrotateHorizontal projects v onto the horizontal plane and expresses
// it in the facing frame: X forward, Y to the character's right.
func (r Rotator) UnrotateHorizontal(v mgl64.Vec3) mgl64.Vec2 {
	sin, cos := math.Sincos(r.Yaw * radPerDeg)
	return mgl64.Vec2{
		cos*v.X() + sin*v.Y(),
		-sin*v.X() + cos*v.Y(),
	}
}

// RotateHorizontal expresses a facing-frame vector (X forward, Y right)
// in world coordinates.
func (r Rotator) RotateHorizontal(v mgl64.Vec2) mgl64.Vec2 {
	sin, cos := math.Sincos(r.Yaw * radPerDeg)
	return mgl64.Vec2{
		cos*v.X() - sin*v.Y(),
		sin*v.X() + cos*v.Y(),
	}
}

// KinematicState is one frame's snapshot of the kinematic source.
// Velocity and acceleration are world-space; units are cm/s and cm/s^2
// to match the default lean multipliers.
type KinematicState struct {
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3
	Rotation     Rotator
}

// LocomotionFrame holds the derived quantities of the current frame.
// All fields are overwritten by every successful update; none persist.
type LocomotionFrame struct {
	// GroundSpeed is the magnitude of the horizontal velocity.
	GroundSpeed float64

	// Direction is the angle of the horizontal velocity relative to the
	// facing, in degrees within (-180, 180]. Zero means straight ahead,
	// positive means moving to the character's right. At near-zero speed
	// the previous value is retained.
	Direction float64

	// IsAccelerating reports whether the squared horizontal acceleration
	// exceeds a small epsilon.
	IsAccelerating bool
}

// LeanState persists across frames and is mutated only by the lean
// estimator.
type LeanState struct {
	// LeanAngle is the smoothed body lean in degrees, always within
	// [-MaxLeanAngle, MaxLeanAngle].
	LeanAngle float64

	// LastYawDegrees is the facing yaw recorded by the previous update,
	// used to estimate the instantaneous yaw rate. It is written on
	// every invocation that reaches the lean step.
	LastYawDegrees float64
}

// BoneState persists across frames and is mutated only by the bone
// oscillator.
type BoneState struct {
	// ProceduralTime is the accumulated phase time in seconds. It grows
	// monotonically and is never reset.
	ProceduralTime float64

	// Pitch and Yaw are the last oscillation offsets applied to the
	// configured bone, in degrees.
	Pitch float64
	Yaw   float64
}

// Params is the combined read-only output of one update, in the shape
// downstream consumers (pose blending, streaming, recording) want it.
type Params struct {
	GroundSpeed    float64 `json:"ground_speed"`
	Direction      float64 `json:"direction"`
	IsAccelerating bool    `json:"is_accelerating"`
	LeanAngle      float64 `json:"lean_angle"`
	BonePitch      float64 `json:"bone_pitch"`
	BoneYaw        float64 `json:"bone_yaw"`
	ProceduralTime float64 `json:"procedural_time"`
}
