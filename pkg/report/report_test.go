package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strideworks/go-stride/pkg/protocol"
)

func sampleFrames(n int) []protocol.FrameData {
	frames := make([]protocol.FrameData, n)
	for i := range frames {
		t := float64(i) / 30.0
		frames[i] = protocol.FrameData{
			T:         t,
			Index:     uint64(i),
			X:         300 * math.Sin(0.3*t),
			Y:         150 * math.Sin(0.6*t),
			Speed:     150 + 50*math.Sin(t),
			Direction: 30 * math.Sin(0.5*t),
			Lean:      5 * math.Sin(0.8*t),
		}
	}
	return frames
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, "test run", sampleFrames(300)); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"echarts", "Ground Speed", "Body Lean", "Movement Direction", "Traveled Path"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderHTMLEmptyFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, "empty", nil); err == nil {
		t.Error("expected an error for an empty frame set")
	}
}

func TestRenderHTMLLongRun(t *testing.T) {
	// Runs longer than maxChartPoints are downsampled, not rejected.
	var buf bytes.Buffer
	if err := RenderHTML(&buf, "long run", sampleFrames(3 * maxChartPoints)); err != nil {
		t.Fatalf("RenderHTML failed on a long run: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("rendered page is empty")
	}
}

func TestSavePlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")

	count, err := SavePlots(dir, sampleFrames(300))
	if err != nil {
		t.Fatalf("SavePlots failed: %v", err)
	}
	if count != 4 {
		t.Errorf("wrote %d plots, want 4", count)
	}

	for _, name := range []string{"speed.png", "lean.png", "direction.png", "path.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing plot %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("plot %s is empty", name)
		}
	}
}

func TestSavePlotsEmptyFrames(t *testing.T) {
	if _, err := SavePlots(t.TempDir(), nil); err == nil {
		t.Error("expected an error for an empty frame set")
	}
}
