// report: renders charts for a recorded session
// Writes an HTML chart page and a set of PNG plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/strideworks/go-stride/pkg/report"
	"github.com/strideworks/go-stride/pkg/session"
)

func main() {
	dbPath := flag.String("db", "stride.db", "Session database")
	sessionID := flag.String("session", "", "Session to chart (empty picks the newest)")
	outDir := flag.String("out", "report", "Output directory")
	flag.Parse()

	store, err := session.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *dbPath, err)
	}
	defer store.Close()

	id := *sessionID
	var label string
	if id == "" {
		sessions, err := store.ListSessions()
		if err != nil {
			log.Fatalf("Failed to list sessions: %v", err)
		}
		if len(sessions) == 0 {
			log.Fatalf("No recorded sessions in %s", *dbPath)
		}
		id = sessions[0].ID
		label = sessions[0].Label
	} else {
		sess, err := store.GetSession(id)
		if err != nil {
			log.Fatalf("Failed to load session: %v", err)
		}
		label = sess.Label
	}

	frames, err := store.LoadFrames(id)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("Session %s has no frames", id)
	}

	fmt.Printf("📊 Charting %q: %d frames\n", label, len(frames))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outDir, err)
	}

	htmlPath := filepath.Join(*outDir, "report.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", htmlPath, err)
	}
	if err := report.RenderHTML(f, label, frames); err != nil {
		f.Close()
		log.Fatalf("Failed to render charts: %v", err)
	}
	f.Close()
	fmt.Printf("   %s\n", htmlPath)

	n, err := report.SavePlots(*outDir, frames)
	if err != nil {
		log.Fatalf("Failed to render plots: %v", err)
	}
	fmt.Printf("   %d PNG plots in %s\n", n, *outDir)

	fmt.Println("✅ Done")
}
