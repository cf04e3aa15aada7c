// Package report renders recorded runs as charts: an interactive HTML
// page built with go-echarts, and PNG files built with gonum/plot for
// offline artifacts.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/strideworks/go-stride/pkg/protocol"
)

// maxChartPoints bounds the per-series payload of the HTML page.
// Longer runs are downsampled by stride.
const maxChartPoints = 4000

// viridis is the palette used for speed-colored path points.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderHTML writes an interactive chart page for the frames: ground
// speed, lean and direction over time, plus the traveled path colored
// by speed.
func RenderHTML(w io.Writer, title string, frames []protocol.FrameData) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to chart")
	}

	// Downsample by stride to stay within maxChartPoints
	stride := 1
	if len(frames) > maxChartPoints {
		stride = int(math.Ceil(float64(len(frames)) / float64(maxChartPoints)))
	}

	xs := make([]string, 0, len(frames)/stride+1)
	speed := make([]opts.LineData, 0, len(frames)/stride+1)
	lean := make([]opts.LineData, 0, len(frames)/stride+1)
	direction := make([]opts.LineData, 0, len(frames)/stride+1)
	for i := 0; i < len(frames); i += stride {
		f := frames[i]
		xs = append(xs, fmt.Sprintf("%.2f", f.T))
		speed = append(speed, opts.LineData{Value: f.Speed})
		lean = append(lean, opts.LineData{Value: f.Lean})
		direction = append(direction, opts.LineData{Value: f.Direction})
	}

	subtitle := fmt.Sprintf("frames=%d duration=%.1fs stride=%d",
		len(frames), frames[len(frames)-1].T, stride)

	speedLine := newTimeSeries("Ground Speed", subtitle, "cm/s")
	speedLine.SetXAxis(xs).AddSeries("speed", speed)

	leanLine := newTimeSeries("Body Lean", subtitle, "degrees")
	leanLine.SetXAxis(xs).AddSeries("lean", lean)

	dirLine := newTimeSeries("Movement Direction", subtitle, "degrees from facing")
	dirLine.SetXAxis(xs).AddSeries("direction", direction)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(speedLine, leanLine, dirLine, pathScatter(title, frames, stride))
	return page.Render(w)
}

// newTimeSeries builds a line chart with the scene clock on the x axis.
func newTimeSeries(title, subtitle, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit}),
	)
	return line
}

// pathScatter plots the traveled path in world space, colored by
// ground speed at each point.
func pathScatter(title string, frames []protocol.FrameData, stride int) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(frames)/stride+1)
	maxAbs := 0.0
	maxSpeed := 0.0
	for i := 0; i < len(frames); i += stride {
		f := frames[i]
		if math.Abs(f.X) > maxAbs {
			maxAbs = math.Abs(f.X)
		}
		if math.Abs(f.Y) > maxAbs {
			maxAbs = math.Abs(f.Y)
		}
		if f.Speed > maxSpeed {
			maxSpeed = f.Speed
		}
		data = append(data, opts.ScatterData{Value: []interface{}{f.X, f.Y, f.Speed}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	// Force a square plot by using equal width/height and symmetric axis ranges
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Traveled Path", Subtitle: "colored by ground speed (cm/s)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (cm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("path", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}
