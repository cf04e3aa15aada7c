// Package skeleton holds the stick-figure rig the animator writes
// into. The rig implements locomotion.SkeletonSink, so procedural
// bone rotations land here, and it derives a renderable world-space
// pose (walk cycle included) from the body's position and facing.
package skeleton

import (
	"math"
	"sync"

	"github.com/strideworks/go-stride/pkg/locomotion"
)

// Bone names in rig order. Indices are stable for the lifetime of a
// rig, which is what lets the animator cache a lookup.
var boneNames = []string{
	"pelvis",
	"spine_top",
	"head",
	"hand_l",
	"hand_r",
	"foot_l",
	"foot_r",
}

// Proportions sizes the rig in centimeters.
type Proportions struct {
	BodyHeight float64 `json:"body_height" yaml:"body_height"`
	HeadSize   float64 `json:"head_size" yaml:"head_size"`
	LegLength  float64 `json:"leg_length" yaml:"leg_length"`
	ArmLength  float64 `json:"arm_length" yaml:"arm_length"`
}

// DefaultProportions returns the 1.8 m reference rig.
func DefaultProportions() Proportions {
	return Proportions{
		BodyHeight: 180,
		HeadSize:   20,
		LegLength:  90,
		ArmLength:  60,
	}
}

// Rig is a named-bone skeleton. Safe for concurrent use.
type Rig struct {
	mu     sync.Mutex
	props  Proportions
	index  map[string]int
	local  []locomotion.Rotator
	stride float64
}

var _ locomotion.SkeletonSink = (*Rig)(nil)

// NewRig builds a rig with the canonical bone set.
func NewRig(props Proportions) *Rig {
	index := make(map[string]int, len(boneNames))
	for i, name := range boneNames {
		index[name] = i
	}
	return &Rig{
		props: props,
		index: index,
		local: make([]locomotion.Rotator, len(boneNames)),
	}
}

// BoneNames returns the rig's bones in index order.
func (r *Rig) BoneNames() []string {
	names := make([]string, len(boneNames))
	copy(names, boneNames)
	return names
}

// BoneIndex implements locomotion.SkeletonSink.
func (r *Rig) BoneIndex(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return locomotion.BoneNotFound
}

// SetBoneLocalRotation implements locomotion.SkeletonSink. Writes to
// unknown indices are dropped.
func (r *Rig) SetBoneLocalRotation(index int, rot locomotion.Rotator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.local) {
		return
	}
	r.local[index] = rot
}

// BoneRotation returns the last rotation written to a named bone.
func (r *Rig) BoneRotation(name string) (locomotion.Rotator, bool) {
	i := r.BoneIndex(name)
	if i == locomotion.BoneNotFound {
		return locomotion.Rotator{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local[i], true
}

// Walk cycle tuning. The stride advances with ground speed but never
// fully freezes, so an idling character keeps a faint weight shift.
const (
	stridePerMeter = 2.0 // phase radians per meter walked
	minStrideSpeed = 0.5 // m/s floor for the stride rate
)

// Advance accumulates the walk-cycle phase for a frame at the given
// ground speed (cm/s).
func (r *Rig) Advance(groundSpeed, dt float64) {
	if dt <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rate := math.Max(groundSpeed/100, minStrideSpeed) * stridePerMeter
	r.stride = math.Mod(r.stride+rate*dt, 2*math.Pi)
}

// StridePhase returns the current walk-cycle phase in radians.
func (r *Rig) StridePhase() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stride
}

// Proportions returns the rig sizing.
func (r *Rig) Proportions() Proportions {
	return r.props
}
