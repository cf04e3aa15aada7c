package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/strideworks/go-stride/pkg/locomotion"
)

type fixedSource struct {
	state locomotion.KinematicState
}

func (s *fixedSource) Snapshot() (locomotion.KinematicState, bool) {
	return s.state, true
}

func TestRigBoneIndices(t *testing.T) {
	r := NewRig(DefaultProportions())

	for i, name := range r.BoneNames() {
		if got := r.BoneIndex(name); got != i {
			t.Errorf("BoneIndex(%q) = %d, want %d", name, got, i)
		}
	}
	if got := r.BoneIndex("tail"); got != locomotion.BoneNotFound {
		t.Errorf("BoneIndex(tail) = %d, want BoneNotFound", got)
	}
}

func TestRigReceivesAnimatorWrites(t *testing.T) {
	r := NewRig(DefaultProportions())
	src := &fixedSource{}
	a := locomotion.New(locomotion.DefaultConfig(), func() locomotion.KinematicSource {
		return src
	}, r)

	for i := 0; i < 10; i++ {
		a.Update(0.1)
	}

	rot, ok := r.BoneRotation("head")
	if !ok {
		t.Fatal("head bone missing from rig")
	}
	bone := a.Bone()
	if math.Abs(rot.Pitch-bone.Pitch) > 1e-9 || math.Abs(rot.Yaw-bone.Yaw) > 1e-9 {
		t.Errorf("rig head rotation %+v does not match animator bone %+v", rot, bone)
	}
	if math.Abs(rot.Pitch-9.975) > 1e-3 {
		t.Errorf("head pitch = %v, want ~9.975", rot.Pitch)
	}
}

func TestRigDropsOutOfRangeWrites(t *testing.T) {
	r := NewRig(DefaultProportions())
	r.SetBoneLocalRotation(-1, locomotion.Rotator{Pitch: 45})
	r.SetBoneLocalRotation(99, locomotion.Rotator{Pitch: 45})

	for _, name := range r.BoneNames() {
		if rot, _ := r.BoneRotation(name); rot != (locomotion.Rotator{}) {
			t.Errorf("bone %q picked up an out-of-range write: %+v", name, rot)
		}
	}
}

func TestStrideAdvancesWithSpeedFloor(t *testing.T) {
	r := NewRig(DefaultProportions())

	// Idle still shuffles at the floor rate: 0.5 m/s * 2 = 1 rad/s.
	r.Advance(0, 1)
	if got := r.StridePhase(); math.Abs(got-1) > 1e-9 {
		t.Errorf("idle stride after 1s = %v, want 1", got)
	}

	// 2 m/s walks at 4 rad/s.
	r2 := NewRig(DefaultProportions())
	r2.Advance(200, 1)
	if got := r2.StridePhase(); math.Abs(got-4) > 1e-9 {
		t.Errorf("stride at 200 cm/s after 1s = %v, want 4", got)
	}
}

func TestStridePhaseWraps(t *testing.T) {
	r := NewRig(DefaultProportions())
	for i := 0; i < 1000; i++ {
		r.Advance(300, 0.1)
	}
	if got := r.StridePhase(); got < 0 || got >= 2*math.Pi {
		t.Errorf("stride phase = %v, want within [0, 2pi)", got)
	}
}

func TestStrideIgnoresNonPositiveDelta(t *testing.T) {
	r := NewRig(DefaultProportions())
	r.Advance(200, 0)
	r.Advance(200, -1)
	if got := r.StridePhase(); got != 0 {
		t.Errorf("stride advanced on non-positive delta: %v", got)
	}
}

func TestPoseAtRestFacingForward(t *testing.T) {
	r := NewRig(DefaultProportions())
	p := r.Pose(mgl64.Vec2{0, 0}, 0, 0)

	checks := []struct {
		name string
		got  mgl64.Vec2
		want mgl64.Vec2
	}{
		{"hip", p.Hip, mgl64.Vec2{0, 0}},
		{"spine_top", p.SpineTop, mgl64.Vec2{0, 108}},
		{"head", p.Head, mgl64.Vec2{0, 158}},
		{"left_foot", p.LeftFoot, mgl64.Vec2{-20, -90}},
		{"right_foot", p.RightFoot, mgl64.Vec2{20, -90}},
		{"left_hand", p.LeftHand, mgl64.Vec2{-40, 54}},
		{"right_hand", p.RightHand, mgl64.Vec2{40, 54}},
	}
	for _, c := range checks {
		if math.Abs(c.got.X()-c.want.X()) > 1e-9 || math.Abs(c.got.Y()-c.want.Y()) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPoseFollowsFacing(t *testing.T) {
	r := NewRig(DefaultProportions())
	p := r.Pose(mgl64.Vec2{100, 50}, 90, 0)

	// At yaw 90 the rig's vertical axis maps onto world -X.
	if math.Abs(p.SpineTop.X()-(100-108)) > 1e-9 || math.Abs(p.SpineTop.Y()-50) > 1e-9 {
		t.Errorf("spine_top at yaw 90 = %v, want (-8, 50)", p.SpineTop)
	}
}

func TestPoseLeanForeshortensLateral(t *testing.T) {
	r := NewRig(DefaultProportions())

	upright := r.Pose(mgl64.Vec2{0, 0}, 0, 0)
	leaned := r.Pose(mgl64.Vec2{0, 0}, 0, 60) // cos 60 = 0.5

	if math.Abs(upright.LeftFoot.X()+20) > 1e-9 {
		t.Fatalf("upright left foot X = %v, want -20", upright.LeftFoot.X())
	}
	if math.Abs(leaned.LeftFoot.X()+10) > 1e-9 {
		t.Errorf("leaned left foot X = %v, want -10", leaned.LeftFoot.X())
	}
	if math.Abs(leaned.LeftFoot.Y()-upright.LeftFoot.Y()) > 1e-9 {
		t.Errorf("lean moved the foot vertically: %v vs %v", leaned.LeftFoot.Y(), upright.LeftFoot.Y())
	}
}

func TestPoseHeadRidesBoneRotation(t *testing.T) {
	r := NewRig(DefaultProportions())
	r.SetBoneLocalRotation(r.BoneIndex("head"), locomotion.Rotator{Pitch: 90, Yaw: 90})

	p := r.Pose(mgl64.Vec2{0, 0}, 0, 0)

	// Pitch 90 drops the cos term, yaw 90 pushes the full head size
	// sideways.
	if math.Abs(p.Head.X()-20) > 1e-9 {
		t.Errorf("head X = %v, want 20", p.Head.X())
	}
	if math.Abs(p.Head.Y()-138) > 1e-9 {
		t.Errorf("head Y = %v, want 138", p.Head.Y())
	}
}

func TestPoseWalkCycleAntiphase(t *testing.T) {
	r := NewRig(DefaultProportions())
	r.Advance(0, math.Pi/2) // idle rate is 1 rad/s, so phase = pi/2

	p := r.Pose(mgl64.Vec2{0, 0}, 0, 0)
	if math.Abs(p.StridePhase-math.Pi/2) > 1e-9 {
		t.Fatalf("stride phase = %v, want pi/2", p.StridePhase)
	}

	// Left foot at full forward reach and lift, right foot mirrored.
	if math.Abs(p.LeftFoot.X()-10) > 1e-9 || math.Abs(p.LeftFoot.Y()+70) > 1e-9 {
		t.Errorf("left foot = %v, want (10, -70)", p.LeftFoot)
	}
	if math.Abs(p.RightFoot.X()+10) > 1e-9 || math.Abs(p.RightFoot.Y()+70) > 1e-9 {
		t.Errorf("right foot = %v, want (-10, -70)", p.RightFoot)
	}

	// Hands swing against the legs.
	if math.Abs(p.LeftHand.X()+20) > 1e-9 || math.Abs(p.LeftHand.Y()-44) > 1e-9 {
		t.Errorf("left hand = %v, want (-20, 44)", p.LeftHand)
	}
	if math.Abs(p.RightHand.X()-20) > 1e-9 || math.Abs(p.RightHand.Y()-44) > 1e-9 {
		t.Errorf("right hand = %v, want (20, 44)", p.RightHand)
	}
}
