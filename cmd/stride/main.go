// stride: procedural locomotion server
// Runs the walking simulation and serves the dashboard, frame stream
// and observer feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strideworks/go-stride/internal/config"
	applog "github.com/strideworks/go-stride/internal/log"
	"github.com/strideworks/go-stride/pkg/character"
	"github.com/strideworks/go-stride/pkg/debug"
	"github.com/strideworks/go-stride/pkg/feed"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/scene"
	"github.com/strideworks/go-stride/pkg/session"
	"github.com/strideworks/go-stride/pkg/telemetry"
	"github.com/strideworks/go-stride/pkg/web"
)

var version = "1.0.0"

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.String("port", "", "Dashboard port (overrides config)")
	record := flag.Bool("record", false, "Record frames to the session store")
	label := flag.String("label", "", "Label for the recorded session")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every produced frame")
	flag.Parse()

	debug.Enabled = *debugFlag
	debug.Frames = *debugFrames

	logLevel := "info"
	if *debugFlag {
		logLevel = "debug"
	}
	applog.Init(logLevel)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	cfg.ApplyEnv()
	if *port != "" {
		cfg.Web.Port = *port
	}
	if *record {
		cfg.Session.Record = true
	}
	if *label != "" {
		cfg.Session.Label = *label
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println()
	fmt.Println("🚶 Stride v" + version)
	fmt.Printf("   Rate:  %.0f Hz\n", cfg.Scene.RateHz)
	fmt.Printf("   Pilot: %v\n", cfg.Scene.Pilot)
	fmt.Println()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down...")
		cancel()
	}()

	sc := scene.New(cfg.Scene)

	sc.AddListener(func(f protocol.FrameData) {
		debug.FrameLog("frame %d: speed=%.1f dir=%.1f lean=%.2f pitch=%.2f\n",
			f.Index, f.Speed, f.Direction, f.Lean, f.BonePitch)
	})

	// Session store
	var store *session.Store
	if cfg.Session.Path != "" {
		var err error
		store, err = session.Open(cfg.Session.Path)
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}
		defer store.Close()
	}

	// Recording
	var rec *session.Recorder
	if cfg.Session.Record {
		recLabel := cfg.Session.Label
		if recLabel == "" {
			recLabel = time.Now().Format("2006-01-02 15:04:05")
		}
		var err error
		rec, err = session.NewRecorder(store, recLabel, cfg.Scene.RateHz)
		if err != nil {
			log.Fatalf("Failed to start recorder: %v", err)
		}
		sc.AddListener(rec.Listen)
		sc.SetSessionID(rec.Session().ID)
		fmt.Printf("⏺️  Recording session %s (%s)\n", rec.Session().ID, recLabel)
	}

	// MQTT telemetry
	var pub *telemetry.Publisher
	if cfg.Telemetry.Enabled {
		pub = telemetry.New(cfg.Telemetry.MQTT)
		if err := pub.Connect(); err != nil {
			log.Printf("⚠️  Telemetry connect failed: %v", err)
			pub = nil
		} else {
			pub.PublishState(sc.State())
			sc.AddListener(pub.Listen)
			go pub.Run(ctx)
			defer pub.Close()
		}
	}

	// Dashboard and observer feed
	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web.Port, sc)
		if store != nil {
			srv.AttachStore(store)
		}

		feedHub := feed.NewHub(debug.Enabled)
		feedHub.OnInput(func(viewerID string, in *protocol.InputData) {
			sc.SetInput(character.Input{
				Forward: in.Forward,
				Turn:    in.Turn,
				Stop:    in.Stop,
			})
		})
		feedHub.OnPilot(func(viewerID string, p *protocol.PilotData) {
			sc.EngagePilot(p.Engaged)
			feedHub.SendState(viewerID, sc.State())
			if pub != nil {
				pub.PublishState(sc.State())
			}
		})
		feedHub.OnReset(func(viewerID string) {
			sc.Reset()
			feedHub.SendState(viewerID, sc.State())
			if pub != nil {
				pub.PublishState(sc.State())
			}
		})
		sc.AddListener(feedHub.Listen)
		srv.AttachFeed(feedHub)

		srv.StartAsync()
		defer srv.Shutdown()
	}

	// Run the simulation loop until shutdown
	sc.Run(ctx)

	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("Recorder close error: %v", err)
		} else {
			fmt.Printf("⏺️  Session %s saved\n", rec.Session().ID)
		}
	}

	fmt.Println("👋 Goodbye!")
}
