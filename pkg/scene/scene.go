// Package scene wires the character body, the locomotion animator and
// the skeleton rig into a fixed-rate simulation loop, and fans the
// completed frames out to listeners (websocket hub, recorder,
// telemetry).
package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/strideworks/go-stride/pkg/character"
	"github.com/strideworks/go-stride/pkg/locomotion"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/skeleton"
)

// Listener receives a value copy of every completed frame. Listeners
// run on the simulation goroutine and must not block.
type Listener func(protocol.FrameData)

// Config assembles a scene.
type Config struct {
	RateHz      float64 `json:"rate_hz" yaml:"rate_hz"`
	HistorySize int     `json:"history_size" yaml:"history_size"`
	Pilot       bool    `json:"pilot" yaml:"pilot"` // start with the autopilot engaged

	Body     character.BodyConfig `json:"body" yaml:"body"`
	Animator locomotion.Config    `json:"animator" yaml:"animator"`
	Rig      skeleton.Proportions `json:"rig" yaml:"rig"`
}

// DefaultConfig returns a 30 Hz scene with the autopilot engaged.
func DefaultConfig() Config {
	return Config{
		RateHz:      30,
		HistorySize: 1800, // one minute at 30 Hz
		Pilot:       true,
		Body:        character.DefaultBodyConfig(),
		Animator:    locomotion.DefaultConfig(),
		Rig:         skeleton.DefaultProportions(),
	}
}

// Scene owns the simulation. One Step runs at a time; everything a
// listener receives is a value copy, so no shared mutable state
// escapes the loop.
type Scene struct {
	mu sync.Mutex

	cfg      Config
	body     *character.Body
	pilot    *character.Autopilot
	pilotOn  bool
	animator *locomotion.Animator
	rig      *skeleton.Rig

	input     character.Input
	listeners []Listener

	clock    float64
	frames   uint64
	history  []protocol.FrameData
	histNext int
	latest   protocol.FrameData
	hasFrame bool

	running   bool
	startedAt time.Time
	sessionID string
}

// New builds a scene from the config.
func New(cfg Config) *Scene {
	if cfg.RateHz <= 0 {
		cfg.RateHz = 30
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 1800
	}

	s := &Scene{
		cfg:     cfg,
		body:    character.NewBody(cfg.Body),
		pilot:   character.NewAutopilot(),
		pilotOn: cfg.Pilot,
		rig:     skeleton.NewRig(cfg.Rig),
		history: make([]protocol.FrameData, 0, cfg.HistorySize),
	}

	// The resolver runs inside Step with the scene lock already held.
	// It must not take the lock itself.
	s.animator = locomotion.New(cfg.Animator, func() locomotion.KinematicSource {
		return s.body
	}, s.rig)

	return s
}

// Step advances the simulation by dt seconds and returns the produced
// frame. Non-positive deltas are ignored.
func (s *Scene) Step(dt float64) (protocol.FrameData, bool) {
	if dt <= 0 {
		return protocol.FrameData{}, false
	}

	s.mu.Lock()

	if s.pilotOn {
		s.pilot.Drive(s.body, dt)
	} else {
		s.body.Step(s.input, dt)
		s.input.Stop = false // stop is edge triggered
	}

	s.animator.Update(dt)

	frame := s.animator.Frame()
	lean := s.animator.Lean()
	bone := s.animator.Bone()

	s.rig.Advance(frame.GroundSpeed, dt)

	s.clock += dt
	idx := s.frames
	s.frames++

	pos := s.body.Position()
	vel := s.body.Velocity()
	yaw := s.body.Yaw()
	state, _ := s.body.Snapshot()
	pose := s.rig.Pose(mgl64.Vec2{pos.X(), pos.Y()}, yaw, lean.LeanAngle)

	f := protocol.FrameData{
		T:              s.clock,
		Index:          idx,
		X:              pos.X(),
		Y:              pos.Y(),
		Yaw:            yaw,
		VX:             vel.X(),
		VY:             vel.Y(),
		AX:             state.Acceleration.X(),
		AY:             state.Acceleration.Y(),
		Speed:          frame.GroundSpeed,
		Direction:      frame.Direction,
		Accelerating:   frame.IsAccelerating,
		Lean:           lean.LeanAngle,
		BonePitch:      bone.Pitch,
		BoneYaw:        bone.Yaw,
		ProceduralTime: bone.ProceduralTime,
		Pose:           posePoints(pose),
	}

	s.latest = f
	s.hasFrame = true
	s.pushHistory(f)

	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()

	for _, l := range ls {
		l(f)
	}
	return f, true
}

// Run drives the scene at the configured rate until the context is
// cancelled. The delta fed to Step is the measured wall time between
// ticks, not the nominal interval.
func (s *Scene) Run(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / s.cfg.RateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.mu.Lock()
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	fmt.Printf("🎬 Scene started (%.0f Hz)\n", s.cfg.RateHz)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			fmt.Println("🎬 Scene stopped")
			return
		case now := <-ticker.C:
			s.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// SetInput buffers control axes for the next step. Has no visible
// effect while the autopilot is engaged.
func (s *Scene) SetInput(in character.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = in
}

// EngagePilot switches between autopilot and buffered input. The
// route keeps its progress across toggles.
func (s *Scene) EngagePilot(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pilotOn = on
}

// PilotEngaged reports whether the autopilot is driving.
func (s *Scene) PilotEngaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pilotOn
}

// Reset replaces the body with a fresh one at the origin and restarts
// the autopilot route. The old body is killed, so the animator walks
// its re-acquisition path on the next frame.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.body
	s.body = character.NewBody(s.cfg.Body)
	s.pilot.Reset()
	s.input = character.Input{}
	old.Kill()
}

// AddListener registers a frame listener.
func (s *Scene) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Latest returns the most recent frame, if any step has run.
func (s *Scene) Latest() (protocol.FrameData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasFrame
}

// History returns the ring buffer contents in chronological order.
func (s *Scene) History() []protocol.FrameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.FrameData, 0, len(s.history))
	out = append(out, s.history[s.histNext:]...)
	out = append(out, s.history[:s.histNext]...)
	return out
}

// SetSessionID tags the scene state with the active recording id.
func (s *Scene) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

// State reports the running scene for the state message and /api.
func (s *Scene) State() protocol.SceneState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := protocol.SceneState{
		Running:   s.running,
		Pilot:     s.pilotOn,
		RateHz:    s.cfg.RateHz,
		Frames:    s.frames,
		SessionID: s.sessionID,
	}
	if s.running {
		st.Uptime = time.Since(s.startedAt).Seconds()
	}
	return st
}

// Stats are monotonic counters for diagnostics.
type Stats struct {
	Frames       uint64 `json:"frames"`
	SourceMisses uint64 `json:"source_misses"`
	Listeners    int    `json:"listeners"`
}

// Stats returns the loop counters.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Frames:       s.frames,
		SourceMisses: s.animator.Stats().SourceMisses,
		Listeners:    len(s.listeners),
	}
}

// Config returns the scene's assembled configuration.
func (s *Scene) Config() Config {
	return s.cfg
}

func (s *Scene) pushHistory(f protocol.FrameData) {
	if len(s.history) < cap(s.history) {
		s.history = append(s.history, f)
		return
	}
	s.history[s.histNext] = f
	s.histNext = (s.histNext + 1) % len(s.history)
}

func posePoints(p skeleton.Pose) protocol.PosePoints {
	return protocol.PosePoints{
		Hip:         [2]float64(p.Hip),
		SpineTop:    [2]float64(p.SpineTop),
		Head:        [2]float64(p.Head),
		LeftHand:    [2]float64(p.LeftHand),
		RightHand:   [2]float64(p.RightHand),
		LeftFoot:    [2]float64(p.LeftFoot),
		RightFoot:   [2]float64(p.RightFoot),
		StridePhase: p.StridePhase,
	}
}
