package session

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/strideworks/go-stride/pkg/locomotion"
	"github.com/strideworks/go-stride/pkg/protocol"
)

// ReplaySource feeds recorded kinematics back through the locomotion
// source interface, one frame per Advance. Past the last frame it
// reports not-alive, so a consuming animator drops its handle the
// same way it would for a destroyed body.
type ReplaySource struct {
	mu     sync.Mutex
	frames []protocol.FrameData
	pos    int
}

var _ locomotion.KinematicSource = (*ReplaySource)(nil)

// NewReplaySource wraps loaded frames, positioned at the first one.
func NewReplaySource(frames []protocol.FrameData) *ReplaySource {
	return &ReplaySource{frames: frames}
}

// Snapshot implements locomotion.KinematicSource from the frame under
// the cursor.
func (r *ReplaySource) Snapshot() (locomotion.KinematicState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.frames) {
		return locomotion.KinematicState{}, false
	}
	f := r.frames[r.pos]
	return locomotion.KinematicState{
		Velocity:     mgl64.Vec3{f.VX, f.VY, 0},
		Acceleration: mgl64.Vec3{f.AX, f.AY, 0},
		Rotation:     locomotion.Rotator{Yaw: f.Yaw},
	}, true
}

// Frame returns the recorded frame under the cursor.
func (r *ReplaySource) Frame() (protocol.FrameData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.frames) {
		return protocol.FrameData{}, false
	}
	return r.frames[r.pos], true
}

// Delta returns the recorded time step leading into the frame under
// the cursor. Replaying with these deltas reproduces the original
// timing exactly, jitter included.
func (r *ReplaySource) Delta() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.frames) {
		return 0, false
	}
	if r.pos == 0 {
		return r.frames[0].T, true // scene clocks start at zero
	}
	return r.frames[r.pos].T - r.frames[r.pos-1].T, true
}

// Advance moves the cursor to the next frame. It returns false once
// the cursor passes the end.
func (r *ReplaySource) Advance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos < len(r.frames) {
		r.pos++
	}
	return r.pos < len(r.frames)
}

// Rewind puts the cursor back on the first frame.
func (r *ReplaySource) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = 0
}

// Len returns the number of recorded frames.
func (r *ReplaySource) Len() int {
	return len(r.frames)
}
