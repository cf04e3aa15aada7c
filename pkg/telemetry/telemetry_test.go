package telemetry

import (
	"testing"

	"github.com/strideworks/go-stride/pkg/protocol"
)

func TestMailboxKeepsLatestFrame(t *testing.T) {
	p := New(DefaultConfig())

	if _, ok := p.takeLatest(); ok {
		t.Fatal("empty mailbox should have nothing to take")
	}

	p.Listen(protocol.FrameData{Index: 1})
	p.Listen(protocol.FrameData{Index: 2})
	p.Listen(protocol.FrameData{Index: 3})

	f, ok := p.takeLatest()
	if !ok {
		t.Fatal("mailbox should hold a frame")
	}
	if f.Index != 3 {
		t.Errorf("took frame %d, want the latest (3)", f.Index)
	}

	// Nothing new arrived, so the same frame is not published twice.
	if _, ok := p.takeLatest(); ok {
		t.Error("mailbox should be drained after take")
	}

	p.Listen(protocol.FrameData{Index: 4})
	if f, ok := p.takeLatest(); !ok || f.Index != 4 {
		t.Errorf("took frame %d (%v), want 4", f.Index, ok)
	}
}

func TestTopics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prefix = "walker"
	p := New(cfg)

	if got := p.FrameTopic(); got != "walker/frames" {
		t.Errorf("frame topic = %q, want walker/frames", got)
	}
	if got := p.StateTopic(); got != "walker/state" {
		t.Errorf("state topic = %q, want walker/state", got)
	}
}

func TestConfigIntervalFloor(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883"})
	if p.cfg.IntervalMS <= 0 {
		t.Errorf("interval = %d, want a positive default", p.cfg.IntervalMS)
	}
}

func TestNotConnected(t *testing.T) {
	p := New(DefaultConfig())
	if p.Connected() {
		t.Error("publisher should start disconnected")
	}
	if err := p.PublishState(protocol.SceneState{Running: true}); err == nil {
		t.Error("publishing without a connection should fail")
	}
	// Close without a connection is a no-op.
	p.Close()
}
