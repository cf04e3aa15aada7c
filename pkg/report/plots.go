package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/strideworks/go-stride/pkg/protocol"
)

// SavePlots writes PNG charts for the frames into dir: ground speed,
// lean and direction over time, and the traveled path. It returns the
// number of files written.
func SavePlots(dir string, frames []protocol.FrameData) (int, error) {
	if len(frames) == 0 {
		return 0, fmt.Errorf("no frames to plot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	series := []struct {
		file  string
		title string
		unit  string
		color color.Color
		value func(protocol.FrameData) float64
	}{
		{"speed.png", "Ground Speed", "cm/s", color.RGBA{R: 31, G: 119, B: 180, A: 255},
			func(f protocol.FrameData) float64 { return f.Speed }},
		{"lean.png", "Body Lean", "degrees", color.RGBA{R: 214, G: 39, B: 40, A: 255},
			func(f protocol.FrameData) float64 { return f.Lean }},
		{"direction.png", "Movement Direction", "degrees from facing", color.RGBA{R: 44, G: 160, B: 44, A: 255},
			func(f protocol.FrameData) float64 { return f.Direction }},
	}

	count := 0
	for _, s := range series {
		pts := make(plotter.XYs, 0, len(frames))
		for _, f := range frames {
			pts = append(pts, plotter.XY{X: f.T, Y: s.value(f)})
		}

		p := plot.New()
		p.Title.Text = s.title
		p.X.Label.Text = "Time (s)"
		p.Y.Label.Text = s.unit

		line, err := plotter.NewLine(pts)
		if err != nil {
			return count, fmt.Errorf("%s: %w", s.title, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1)
		p.Add(line)

		file := filepath.Join(dir, s.file)
		if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
			return count, fmt.Errorf("save %s: %w", s.file, err)
		}
		count++
	}

	if err := savePathPlot(filepath.Join(dir, "path.png"), frames); err != nil {
		return count, err
	}
	count++

	return count, nil
}

// savePathPlot draws the world-space trajectory on a square canvas.
func savePathPlot(file string, frames []protocol.FrameData) error {
	pts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		pts = append(pts, plotter.XY{X: f.X, Y: f.Y})
	}

	p := plot.New()
	p.Title.Text = "Traveled Path"
	p.X.Label.Text = "X (cm)"
	p.Y.Label.Text = "Y (cm)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("path line: %w", err)
	}
	line.Color = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return fmt.Errorf("save path plot: %w", err)
	}
	return nil
}
