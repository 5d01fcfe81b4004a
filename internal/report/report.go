// Package report summarizes a generation run and renders its foreground
// size distribution.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Summary holds descriptive statistics of accepted foreground sizes.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes statistics over values. The zero Summary is returned
// for no values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
	}
}

func (s Summary) String() string {
	if s.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("n=%d min=%.0f max=%.0f mean=%.1f std=%.1f", s.Count, s.Min, s.Max, s.Mean, s.StdDev)
}

// FormatElapsed renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Histogram writes a PNG histogram of values to path. lo and hi are drawn
// as the acceptance bounds.
func Histogram(path string, values []float64, bins int, lo, hi float64) error {
	if len(values) == 0 {
		return fmt.Errorf("no values to plot")
	}
	if bins < 1 {
		bins = 1
	}

	p := plot.New()
	p.Title.Text = "Accepted foreground pixels"
	p.X.Label.Text = "pixels"
	p.Y.Label.Text = "samples"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)

	for _, x := range []float64{lo, hi} {
		bound, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: float64(len(values))}})
		if err != nil {
			return fmt.Errorf("failed to build bound line: %w", err)
		}
		bound.Color = color.RGBA{R: 200, A: 255}
		bound.Width = vg.Points(1)
		p.Add(bound)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}
