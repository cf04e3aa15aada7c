package character

import (
	"math"
	"testing"
)

func stepFor(b *Body, in Input, seconds float64, hz float64) {
	dt := 1.0 / hz
	for t := 0.0; t < seconds; t += dt {
		b.Step(in, dt)
	}
}

func TestBodyAcceleratesForward(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Forward: 1}, 2, 60)

	vel := b.Velocity()
	if vel.X() <= 100 {
		t.Errorf("forward speed = %v, want > 100 after 2s", vel.X())
	}
	if vel.X() >= DefaultBodyConfig().MaxSpeed {
		t.Errorf("forward speed = %v, friction should keep it under MaxSpeed", vel.X())
	}
	if math.Abs(vel.Y()) > 1e-9 {
		t.Errorf("lateral speed = %v, want 0 while facing +X", vel.Y())
	}
	if b.Position().X() <= 0 {
		t.Errorf("position X = %v, want > 0", b.Position().X())
	}
}

func TestBodyTurnRightIncreasesYaw(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Turn: 1}, 0.5, 60)

	want := DefaultBodyConfig().TurnRate * 0.5
	if got := b.Yaw(); math.Abs(got-want) > 1e-6 {
		t.Errorf("yaw = %v, want %v", got, want)
	}

	b.Reset()
	stepFor(b, Input{Turn: -1}, 0.5, 60)
	if got := b.Yaw(); math.Abs(got+want) > 1e-6 {
		t.Errorf("yaw after left turn = %v, want %v", got, -want)
	}
}

func TestBodyYawStaysNormalized(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Turn: 1}, 5, 60) // over 700 degrees of turning

	if yaw := b.Yaw(); yaw <= -180 || yaw > 180 {
		t.Errorf("yaw = %v outside (-180, 180]", yaw)
	}
}

func TestBodyInputAxesClamped(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Turn: 5}, 1, 60)

	want := DefaultBodyConfig().TurnRate
	if got := b.Yaw(); math.Abs(got-want) > 1e-6 {
		t.Errorf("yaw with over-range turn input = %v, want clamped to %v", got, want)
	}
}

func TestBodyFrictionBleedsCoasting(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Forward: 1}, 1, 60)
	if b.Velocity().Len() < 50 {
		t.Fatalf("body never got moving: %v cm/s", b.Velocity().Len())
	}

	stepFor(b, Input{}, 3, 60)
	if speed := b.Velocity().Len(); speed > 1 {
		t.Errorf("speed after 3s of coasting = %v, want < 1", speed)
	}
}

func TestBodyStopZeroesVelocity(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Forward: 1}, 1, 60)

	b.Step(Input{Stop: true}, 1.0/60.0)
	if speed := b.Velocity().Len(); speed != 0 {
		t.Errorf("speed after stop = %v, want 0", speed)
	}
}

func TestBodyAccelerationIsFiniteDifference(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	dt := 1.0 / 60.0
	b.Step(Input{Forward: 1}, dt)

	state, ok := b.Snapshot()
	if !ok {
		t.Fatal("snapshot failed on a live body")
	}
	want := state.Velocity.Mul(1 / dt) // started from rest
	if math.Abs(state.Acceleration.X()-want.X()) > 1e-9 {
		t.Errorf("acceleration = %v, want %v", state.Acceleration.X(), want.X())
	}
	if state.Acceleration.X() <= 0 {
		t.Errorf("acceleration X = %v, want > 0 when starting forward", state.Acceleration.X())
	}
}

func TestBodySnapshotFailsAfterKill(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	if _, ok := b.Snapshot(); !ok {
		t.Fatal("snapshot failed on a live body")
	}

	b.Kill()
	if _, ok := b.Snapshot(); ok {
		t.Error("snapshot succeeded on a killed body")
	}
	if b.Alive() {
		t.Error("Alive() = true after Kill")
	}

	// A dead body ignores further stepping.
	b.Step(Input{Forward: 1}, 1.0/60.0)
	if b.Position().Len() != 0 {
		t.Errorf("killed body moved to %v", b.Position())
	}
}

func TestBodyIgnoresNonPositiveDelta(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	b.Step(Input{Forward: 1, Turn: 1}, 0)
	b.Step(Input{Forward: 1, Turn: 1}, -0.1)

	if b.Velocity().Len() != 0 || b.Yaw() != 0 || b.Position().Len() != 0 {
		t.Errorf("body moved on non-positive delta: pos=%v yaw=%v", b.Position(), b.Yaw())
	}
}

func TestBodyReset(t *testing.T) {
	b := NewBody(DefaultBodyConfig())
	stepFor(b, Input{Forward: 1, Turn: 0.5}, 2, 60)

	b.Reset()
	if b.Position().Len() != 0 || b.Velocity().Len() != 0 || b.Yaw() != 0 {
		t.Errorf("reset left state behind: pos=%v vel=%v yaw=%v",
			b.Position(), b.Velocity(), b.Yaw())
	}
	if !b.Alive() {
		t.Error("reset body should stay alive")
	}
}
