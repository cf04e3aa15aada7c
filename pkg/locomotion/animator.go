package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Animator computes the locomotion pose parameters for one character.
// One instance per character; all state lives on the instance and is
// mutated only by Update, which must be called from a single goroutine.
type Animator struct {
	cfg Config

	source  KinematicSource
	resolve SourceResolver
	sink    SkeletonSink

	frame LocomotionFrame
	lean  LeanState
	bone  BoneState

	updates      uint64
	sourceMisses uint64
}

// Stats counts animator activity for diagnostics.
type Stats struct {
	Updates      uint64 `json:"updates"`
	SourceMisses uint64 `json:"source_misses"`
}

// New creates an animator. Construction touches no state: the source
// binds lazily on the first update, through the resolver, and again
// whenever the cached handle goes stale. Both resolver and sink may be
// nil; a nil sink only disables the bone write.
func New(cfg Config, resolve SourceResolver, sink SkeletonSink) *Animator {
	return &Animator{
		cfg:     cfg,
		resolve: resolve,
		sink:    sink,
	}
}

// Update advances the animator by one simulation frame.
//
// A non-positive delta is a full no-op: no sampling, no yaw
// bookkeeping, no phase accumulation. An unresolvable kinematic source
// skips the frame entirely and leaves every output frozen; one
// re-acquisition is attempted before giving up.
func (a *Animator) Update(deltaSeconds float64) {
	a.updates++

	if deltaSeconds <= 0 {
		return
	}

	snap, ok := a.snapshot()
	if !ok {
		a.sourceMisses++
		return
	}

	a.sampleKinematics(snap)
	a.updateLean(snap, deltaSeconds)
	a.updateBone(deltaSeconds)
}

// snapshot resolves the kinematic source, attempting one re-acquisition
// when the cached handle is stale.
func (a *Animator) snapshot() (KinematicState, bool) {
	if a.source != nil {
		if snap, ok := a.source.Snapshot(); ok {
			return snap, true
		}
		a.source = nil
	}
	if a.resolve == nil {
		return KinematicState{}, false
	}
	src := a.resolve()
	if src == nil {
		return KinematicState{}, false
	}
	snap, ok := src.Snapshot()
	if !ok {
		return KinematicState{}, false
	}
	a.source = src
	return snap, true
}

// sampleKinematics derives ground speed, direction and the
// acceleration flag from the frame snapshot.
func (a *Animator) sampleKinematics(k KinematicState) {
	local := k.Rotation.UnrotateHorizontal(k.Velocity)

	a.frame.GroundSpeed = local.Len()
	if a.frame.GroundSpeed > epsilon {
		// Commonly fed into blend spaces: 0 ahead, positive right.
		a.frame.Direction = math.Atan2(local.Y(), local.X()) * degPerRad
	}

	accel := mgl64.Vec2{k.Acceleration.X(), k.Acceleration.Y()}
	a.frame.IsAccelerating = accel.LenSqr() > epsilon
}

// updateLean combines lateral acceleration with the yaw rate into a
// smoothed lean angle.
func (a *Animator) updateLean(k KinematicState, dt float64) {
	// Local +Y means accelerating to the right relative to facing.
	localAccel := k.Rotation.UnrotateHorizontal(k.Acceleration)

	yawDelta := DeltaDegrees(a.lean.LastYawDegrees, k.Rotation.Yaw)
	yawRate := yawDelta / math.Max(dt, epsilon)
	a.lean.LastYawDegrees = k.Rotation.Yaw

	target := localAccel.Y()*a.cfg.Lean.AccelerationLeanMultiplier + yawRate*a.cfg.Lean.YawRateLeanMultiplier
	target = clamp(target, -a.cfg.Lean.MaxLeanAngle, a.cfg.Lean.MaxLeanAngle)

	a.lean.LeanAngle = InterpTo(a.lean.LeanAngle, target, dt, a.cfg.Lean.LeanInterpSpeed)
}

// updateBone accumulates the oscillator phase and, when a bone is
// configured and resolvable, applies the sinusoidal offsets. The phase
// advances even when the bone write is skipped.
func (a *Animator) updateBone(dt float64) {
	a.bone.ProceduralTime += dt

	if a.sink == nil || !a.cfg.Bone.Enabled() {
		return
	}
	index := a.sink.BoneIndex(a.cfg.Bone.Name)
	if index == BoneNotFound {
		return
	}

	phase := a.bone.ProceduralTime * a.cfg.Bone.Speed
	a.bone.Pitch = math.Sin(phase) * a.cfg.Bone.PitchAmplitude
	a.bone.Yaw = math.Cos(phase) * a.cfg.Bone.YawAmplitude

	a.sink.SetBoneLocalRotation(index, Rotator{Pitch: a.bone.Pitch, Yaw: a.bone.Yaw})
}

// Frame returns the derived quantities of the last update.
func (a *Animator) Frame() LocomotionFrame {
	return a.frame
}

// Lean returns the persistent lean state.
func (a *Animator) Lean() LeanState {
	return a.lean
}

// Bone returns the persistent oscillator state.
func (a *Animator) Bone() BoneState {
	return a.bone
}

// Params returns the combined outputs of the last update.
func (a *Animator) Params() Params {
	return Params{
		GroundSpeed:    a.frame.GroundSpeed,
		Direction:      a.frame.Direction,
		IsAccelerating: a.frame.IsAccelerating,
		LeanAngle:      a.lean.LeanAngle,
		BonePitch:      a.bone.Pitch,
		BoneYaw:        a.bone.Yaw,
		ProceduralTime: a.bone.ProceduralTime,
	}
}

// Config returns the animator tuning.
func (a *Animator) Config() Config {
	return a.cfg
}

// Stats returns activity counters.
func (a *Animator) Stats() Stats {
	return Stats{
		Updates:      a.updates,
		SourceMisses: a.sourceMisses,
	}
}
