// Package character simulates the capsule body that feeds the
// locomotion animator. The body integrates simple planar physics from
// continuous input axes and exposes its kinematic state through the
// locomotion.KinematicSource interface, so the animator treats it
// exactly like any other pose source (replays included).
//
// Units are centimeters, seconds and degrees throughout.
package character

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/strideworks/go-stride/pkg/locomotion"
)

// Capsule and movement constants for the character rig.
const (
	CapsuleRadius      = 42.0  // cm
	CapsuleHalfHeight  = 96.0  // cm
	OrientRotationRate = 540.0 // deg/s, rig-level orient-to-movement rate
	JumpImpulse        = 600.0 // cm/s
	AirControl         = 0.2
)

// Input carries one frame of control axes.
type Input struct {
	Forward float64 `json:"forward"` // -1..1, positive moves ahead
	Turn    float64 `json:"turn"`    // -1..1, positive turns right
	Stop    bool    `json:"stop"`    // zero the velocity immediately
}

// BodyConfig tunes the planar physics.
type BodyConfig struct {
	MaxSpeed float64 `json:"max_speed" yaml:"max_speed"` // cm/s
	Accel    float64 `json:"accel" yaml:"accel"`         // cm/s^2 toward the target velocity
	TurnRate float64 `json:"turn_rate" yaml:"turn_rate"` // deg/s at full turn input
	Friction float64 `json:"friction" yaml:"friction"`   // per-frame keep factor at 30 FPS
}

// DefaultBodyConfig returns the walking tuning.
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		MaxSpeed: 300,
		Accel:    800,
		TurnRate: 143.24, // 2.5 rad/s
		Friction: 0.85,
	}
}

// Body is the simulated character. All methods are safe for
// concurrent use; the scene runner steps it while readers snapshot.
type Body struct {
	mu sync.Mutex

	cfg      BodyConfig
	position mgl64.Vec3
	velocity mgl64.Vec3
	accel    mgl64.Vec3
	yaw      float64
	alive    bool
}

var _ locomotion.KinematicSource = (*Body)(nil)

// NewBody creates a live body at the origin facing +X.
func NewBody(cfg BodyConfig) *Body {
	return &Body{cfg: cfg, alive: true}
}

// Step advances the body by dt seconds under the given input.
// Rotation is applied before velocity so a turn held this frame
// already steers the acceleration target.
func (b *Body) Step(in Input, dt float64) {
	if dt <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}

	if in.Stop {
		b.velocity = mgl64.Vec3{}
	}

	b.yaw = locomotion.NormalizeDegrees(b.yaw + clampAxis(in.Turn)*b.cfg.TurnRate*dt)

	prev := b.velocity

	fwd := locomotion.Rotator{Yaw: b.yaw}.Forward()
	target := mgl64.Vec3{fwd.X(), fwd.Y(), 0}.Mul(clampAxis(in.Forward) * b.cfg.MaxSpeed)

	diff := target.Sub(b.velocity)
	if dist := diff.Len(); dist > 1e-3 {
		step := math.Min(b.cfg.Accel*dt, dist)
		b.velocity = b.velocity.Add(diff.Mul(step / dist))
	}

	// Ground friction, expressed frame-rate independently so a 120 Hz
	// tick bleeds the same speed per second as a 30 Hz one.
	b.velocity = b.velocity.Mul(math.Pow(b.cfg.Friction, dt*30))

	b.position = b.position.Add(b.velocity.Mul(dt))
	b.accel = b.velocity.Sub(prev).Mul(1 / dt)
}

// Pilot overrides the physics for one frame with an externally
// computed velocity and heading. Position integration and the
// finite-difference acceleration stay consistent with Step, so the
// animator sees the same kind of state either way.
func (b *Body) Pilot(velocity mgl64.Vec3, yaw float64, dt float64) {
	if dt <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}

	prev := b.velocity
	b.velocity = velocity
	b.yaw = locomotion.NormalizeDegrees(yaw)
	b.position = b.position.Add(b.velocity.Mul(dt))
	b.accel = b.velocity.Sub(prev).Mul(1 / dt)
}

// Snapshot implements locomotion.KinematicSource. A killed body
// reports ok=false so the animator drops its handle.
func (b *Body) Snapshot() (locomotion.KinematicState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return locomotion.KinematicState{}, false
	}
	return locomotion.KinematicState{
		Velocity:     b.velocity,
		Acceleration: b.accel,
		Rotation:     locomotion.Rotator{Yaw: b.yaw},
	}, true
}

// Kill marks the body dead. Snapshots fail from now on.
func (b *Body) Kill() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alive = false
}

// Alive reports whether the body still accepts steps and snapshots.
func (b *Body) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alive
}

// Reset moves a live body back to the origin at rest.
func (b *Body) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = mgl64.Vec3{}
	b.velocity = mgl64.Vec3{}
	b.accel = mgl64.Vec3{}
	b.yaw = 0
}

// Position returns the world position in centimeters.
func (b *Body) Position() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

// Velocity returns the world velocity in cm/s.
func (b *Body) Velocity() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.velocity
}

// Yaw returns the facing in degrees, normalized to (-180, 180].
func (b *Body) Yaw() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.yaw
}

func clampAxis(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
