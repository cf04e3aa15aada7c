package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Limb placement offsets in centimeters.
const (
	spineRatio    = 0.6 // spine top height as a fraction of body height
	shoulderRatio = 0.3 // hand rest height as a fraction of body height
	headRise      = 30  // neck riser above the spine top
	stanceHalf    = 20  // lateral half distance between the feet
	strideReach   = 30  // forward foot travel at full phase
	footLift      = 20  // foot lift at mid-swing
	handRest      = 40  // lateral hand offset
	armSwing      = 20  // hand travel opposite the legs
	handBob       = 10  // hand drop at full swing
)

// Pose is a world-space stick figure for one frame. Points marshal
// as [x, y] centimeter pairs.
type Pose struct {
	Hip       mgl64.Vec2 `json:"hip"`
	SpineTop  mgl64.Vec2 `json:"spine_top"`
	Head      mgl64.Vec2 `json:"head"`
	LeftHand  mgl64.Vec2 `json:"left_hand"`
	RightHand mgl64.Vec2 `json:"right_hand"`
	LeftFoot  mgl64.Vec2 `json:"left_foot"`
	RightFoot mgl64.Vec2 `json:"right_foot"`

	StridePhase float64 `json:"stride_phase"`
}

// Pose projects the rig into world space around the given hip
// position and facing. Lean foreshortens the lateral axis before the
// facing rotation is applied, which reads as the body tilting into
// the turn.
func (r *Rig) Pose(position mgl64.Vec2, yawDegrees, leanDegrees float64) Pose {
	r.mu.Lock()
	head := r.local[r.index["head"]]
	stride := r.stride
	r.mu.Unlock()

	x, y := position.X(), position.Y()
	rot := yawDegrees * math.Pi / 180
	cosR, sinR := math.Cos(rot), math.Sin(rot)
	cosLean := math.Cos(leanDegrees * math.Pi / 180)

	point := func(px, py float64) mgl64.Vec2 {
		pxl := px * cosLean
		return mgl64.Vec2{
			x + pxl*cosR - py*sinR,
			y + pxl*sinR + py*cosR,
		}
	}

	spineTop := point(0, r.props.BodyHeight*spineRatio)

	// The head rides the procedural bone rotation the animator wrote.
	pitchRad := head.Pitch * math.Pi / 180
	yawRad := head.Yaw * math.Pi / 180
	headPoint := mgl64.Vec2{
		spineTop.X() + r.props.HeadSize*math.Sin(yawRad)*cosR,
		spineTop.Y() + r.props.HeadSize*math.Cos(pitchRad) + headRise,
	}

	leftPhase := math.Sin(stride)
	rightPhase := math.Sin(stride + math.Pi)

	return Pose{
		Hip:      mgl64.Vec2{x, y},
		SpineTop: spineTop,
		Head:     headPoint,
		LeftFoot: point(
			-stanceHalf+leftPhase*strideReach,
			-r.props.LegLength+math.Abs(leftPhase)*footLift,
		),
		RightFoot: point(
			stanceHalf+rightPhase*strideReach,
			-r.props.LegLength+math.Abs(rightPhase)*footLift,
		),
		// Arms swing opposite the legs.
		LeftHand: point(
			-handRest-rightPhase*armSwing,
			r.props.BodyHeight*shoulderRatio-math.Abs(rightPhase)*handBob,
		),
		RightHand: point(
			handRest-leftPhase*armSwing,
			r.props.BodyHeight*shoulderRatio-math.Abs(leftPhase)*handBob,
		),
		StridePhase: stride,
	}
}
