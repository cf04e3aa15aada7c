package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/strideworks/go-stride/pkg/locomotion"
)

// Figure-8 route tuning.
const (
	pathRate    = 0.3 // route parameter advance per second
	pathWidth   = 300 // cm, half extent along X
	pathHeight  = 150 // cm, half extent along Y
	cruiseSpeed = 200 // cm/s toward the moving waypoint
	arriveDist  = 10  // cm, inside this the body coasts
	headingGain = 5   // heading correction per second
	coastKeep   = 0.9 // velocity keep factor while coasting
)

// Autopilot drives a body along a figure-8, exercising every branch
// of the locomotion pipeline: speed ramps, direction swings through
// the full circle and the heading lags the path enough to produce
// visible lean.
type Autopilot struct {
	elapsed float64
}

// NewAutopilot starts the route at its origin crossing.
func NewAutopilot() *Autopilot {
	return &Autopilot{}
}

// Reset restarts the route from the beginning.
func (p *Autopilot) Reset() {
	p.elapsed = 0
}

// Target returns the current waypoint in world centimeters.
func (p *Autopilot) Target() mgl64.Vec2 {
	t := p.elapsed * pathRate
	return mgl64.Vec2{pathWidth * math.Sin(t), pathHeight * math.Sin(2*t)}
}

// Drive advances the route by dt and steers the body toward it. The
// velocity is commanded directly; heading is smoothed toward the
// direction of travel so the facing trails the path like a walking
// character rather than snapping.
func (p *Autopilot) Drive(b *Body, dt float64) {
	if dt <= 0 {
		return
	}
	p.elapsed += dt

	target := p.Target()
	pos := b.Position()
	to := mgl64.Vec2{target.X() - pos.X(), target.Y() - pos.Y()}

	vel := b.Velocity()
	planar := mgl64.Vec2{vel.X(), vel.Y()}
	if dist := to.Len(); dist > arriveDist {
		planar = to.Mul(cruiseSpeed / dist)
	} else {
		planar = planar.Mul(coastKeep)
	}

	yaw := b.Yaw()
	if planar.Len() > arriveDist {
		desired := math.Atan2(planar.Y(), planar.X()) * 180 / math.Pi
		yaw += locomotion.DeltaDegrees(yaw, desired) * headingGain * dt
	}

	b.Pilot(mgl64.Vec3{planar.X(), planar.Y(), 0}, yaw, dt)
}
