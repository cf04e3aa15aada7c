// replay: re-runs the locomotion animator over a recorded session and
// reports how far the regenerated pose parameters drift from the
// recorded ones.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/strideworks/go-stride/pkg/locomotion"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/session"
	"github.com/strideworks/go-stride/pkg/skeleton"
	"github.com/strideworks/go-stride/pkg/telemetry"
)

type column struct {
	name     string
	recorded func(protocol.FrameData) float64
	replayed func(locomotion.Params) float64

	maxDiff float64
	maxAt   uint64
}

func main() {
	dbPath := flag.String("db", "stride.db", "Session database")
	sessionID := flag.String("session", "", "Session to replay (empty lists sessions)")
	threshold := flag.Float64("threshold", 1e-6, "Divergence worth flagging")
	verbose := flag.Bool("v", false, "Print every flagged frame")
	broker := flag.String("broker", "", "Also re-publish the recording to this MQTT broker at session rate")
	flag.Parse()

	store, err := session.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *dbPath, err)
	}
	defer store.Close()

	if *sessionID == "" {
		listSessions(store)
		return
	}

	sess, err := store.GetSession(*sessionID)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}
	frames, err := store.LoadFrames(sess.ID)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("Session %s has no frames", sess.ID)
	}

	fmt.Printf("🔁 Replaying %q: %d frames at %.0f Hz\n\n", sess.Label, len(frames), sess.RateHz)

	cols := []column{
		{name: "speed",
			recorded: func(f protocol.FrameData) float64 { return f.Speed },
			replayed: func(p locomotion.Params) float64 { return p.GroundSpeed }},
		{name: "direction",
			recorded: func(f protocol.FrameData) float64 { return f.Direction },
			replayed: func(p locomotion.Params) float64 { return p.Direction }},
		{name: "lean",
			recorded: func(f protocol.FrameData) float64 { return f.Lean },
			replayed: func(p locomotion.Params) float64 { return p.LeanAngle }},
		{name: "bone_pitch",
			recorded: func(f protocol.FrameData) float64 { return f.BonePitch },
			replayed: func(p locomotion.Params) float64 { return p.BonePitch }},
		{name: "bone_yaw",
			recorded: func(f protocol.FrameData) float64 { return f.BoneYaw },
			replayed: func(p locomotion.Params) float64 { return p.BoneYaw }},
	}

	rs := session.NewReplaySource(frames)
	rig := skeleton.NewRig(skeleton.DefaultProportions())
	anim := locomotion.New(locomotion.DefaultConfig(), func() locomotion.KinematicSource {
		return rs
	}, rig)

	accelMismatches := 0
	checked := 0
	for {
		dt, ok := rs.Delta()
		if !ok {
			break
		}
		anim.Update(dt)

		f, _ := rs.Frame()
		p := anim.Params()
		checked++

		for i := range cols {
			d := math.Abs(cols[i].recorded(f) - cols[i].replayed(p))
			if d > cols[i].maxDiff {
				cols[i].maxDiff = d
				cols[i].maxAt = f.Index
			}
			if *verbose && d > *threshold {
				fmt.Printf("   frame %d %s: recorded %.9f replayed %.9f\n",
					f.Index, cols[i].name, cols[i].recorded(f), cols[i].replayed(p))
			}
		}
		if f.Accelerating != p.IsAccelerating {
			accelMismatches++
		}

		if !rs.Advance() {
			break
		}
	}

	fmt.Printf("   %-12s %-14s %s\n", "column", "max drift", "at frame")
	flagged := 0
	for _, c := range cols {
		marker := ""
		if c.maxDiff > *threshold {
			marker = "  ⚠️"
			flagged++
		}
		fmt.Printf("   %-12s %-14.3g %d%s\n", c.name, c.maxDiff, c.maxAt, marker)
	}
	fmt.Printf("   %-12s %d of %d frames\n", "accel flips", accelMismatches, checked)
	fmt.Println()

	if flagged == 0 && accelMismatches == 0 {
		fmt.Println("✅ Replay matches the recording")
	} else {
		fmt.Printf("⚠️  %d columns drift past %g\n", flagged, *threshold)
	}

	if *broker != "" {
		republish(sess, frames, *broker)
	}
}

// republish streams the recorded frames to an MQTT broker at the
// session rate, so live graph tooling can watch a recording.
func republish(sess session.Session, frames []protocol.FrameData, broker string) {
	cfg := telemetry.DefaultConfig()
	cfg.Broker = broker
	cfg.ClientID = "stride-replay"

	pub := telemetry.New(cfg)
	if err := pub.Connect(); err != nil {
		log.Fatalf("Failed to connect to %s: %v", broker, err)
	}
	defer pub.Close()

	interval := time.Duration(float64(time.Second) / sess.RateHz)
	fmt.Printf("\n📡 Re-publishing %d frames to %s every %v\n", len(frames), broker, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for _, f := range frames {
		if err := pub.PublishFrame(f); err != nil {
			log.Fatalf("Failed to publish frame %d: %v", f.Index, err)
		}
		<-ticker.C
	}
	fmt.Printf("✅ Re-published %d frames\n", pub.Published())
}

func listSessions(store *session.Store) {
	sessions, err := store.ListSessions()
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No recorded sessions. Run stride with -record first.")
		return
	}

	fmt.Printf("%-38s %-22s %-8s %s\n", "id", "started", "rate", "label")
	for _, s := range sessions {
		fmt.Printf("%-38s %-22s %-8.0f %s (%d frames)\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.RateHz, s.Label, s.Frames)
	}
}
