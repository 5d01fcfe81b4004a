// Package region labels connected foreground regions of a binary mask,
// selects placement regions and estimates region orientation.
package region

import (
	"fmt"
	"image"
	"sort"

	"solar-snippet/internal/mask"
	"solar-snippet/internal/rng"
	"solar-snippet/pkg/geometry"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Synthetic fallback region geometry: the center is drawn from a
// FallbackWindow x FallbackWindow box around the mask center and the region
// is a FallbackBox x FallbackBox square around it.
const (
	FallbackWindow = 200
	FallbackBox    = 60
)

// Component is one 8-connected foreground region.
type Component struct {
	Label     int              // 1-based label, 0 for synthetic regions
	Size      int              // Pixel count
	Bounds    image.Rectangle  // Bounding box, Max exclusive
	Centroid  geometry.Point2D // Mean column (X) and row (Y)
	Synthetic bool             // Placeholder region owning no pixels
}

// Center returns the integer centroid, truncated toward zero.
func (c Component) Center() image.Point {
	return image.Pt(int(c.Centroid.X), int(c.Centroid.Y))
}

// Labels is the result of connected component labeling.
type Labels struct {
	Width      int
	Height     int
	Grid       []int32     // Row-major label per pixel, 0 = background
	Count      int         // Number of foreground components
	Components []Component // Components[i] has label i+1
}

// Label assigns each foreground pixel of m the label of its 8-connected
// component. Count is 0 when m has no foreground; an error is only returned
// when the labeling itself fails.
func Label(m *mask.Mask) (*Labels, error) {
	out := &Labels{
		Width:  m.Width(),
		Height: m.Height(),
		Grid:   make([]int32, m.Width()*m.Height()),
	}
	if len(out.Grid) == 0 || m.Empty() {
		return out, nil
	}

	src, err := gocv.NewMatFromBytes(m.Height(), m.Width(), gocv.MatTypeCV8UC1, m.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to wrap mask: %w", err)
	}
	defer src.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(src, &labels, &stats, &centroids)

	grid, err := labels.DataPtrInt32()
	if err != nil {
		return nil, fmt.Errorf("failed to read label grid: %w", err)
	}
	copy(out.Grid, grid)

	// Label 0 is the background.
	for l := 1; l < n; l++ {
		left := int(stats.GetIntAt(l, int(gocv.CC_STAT_LEFT)))
		top := int(stats.GetIntAt(l, int(gocv.CC_STAT_TOP)))
		width := int(stats.GetIntAt(l, int(gocv.CC_STAT_WIDTH)))
		height := int(stats.GetIntAt(l, int(gocv.CC_STAT_HEIGHT)))
		out.Components = append(out.Components, Component{
			Label:  l,
			Size:   int(stats.GetIntAt(l, int(gocv.CC_STAT_AREA))),
			Bounds: image.Rect(left, top, left+width, top+height),
			Centroid: geometry.Point2D{
				X: centroids.GetDoubleAt(l, 0),
				Y: centroids.GetDoubleAt(l, 1),
			},
		})
	}
	out.Count = len(out.Components)

	return out, nil
}

// Mask returns a mask holding only the pixels of label.
func (l *Labels) Mask(label int) *mask.Mask {
	m := mask.New(l.Width, l.Height)
	data := m.Data()
	for i, v := range l.Grid {
		if int(v) == label {
			data[i] = mask.On
		}
	}
	return m
}

// SelectLargest returns the component with the most pixels. Ties go to the
// lowest label. It reports false when there are no components.
func SelectLargest(l *Labels) (Component, bool) {
	if l.Count == 0 {
		return Component{}, false
	}
	best := l.Components[0]
	for _, c := range l.Components[1:] {
		if c.Size > best.Size {
			best = c
		}
	}
	return best, true
}

// Fallback explains why a selection produced a synthetic region.
type Fallback int

const (
	FallbackNone             Fallback = iota // A real component was sampled
	FallbackTooFewComponents                 // At most one component
	FallbackNoneQualified                    // No component reached the minimum size
)

func (f Fallback) String() string {
	switch f {
	case FallbackNone:
		return "none"
	case FallbackTooFewComponents:
		return "too-few-components"
	case FallbackNoneQualified:
		return "none-qualified"
	default:
		return "unknown"
	}
}

// Selection is a placement region chosen on a target mask.
type Selection struct {
	Component Component
	Fallback  Fallback
}

// Bounds returns the placement box.
func (s Selection) Bounds() image.Rectangle { return s.Component.Bounds }

// Center returns the placement center.
func (s Selection) Center() image.Point { return s.Component.Center() }

// SelectWeightedRandom picks a component of at least minPixelCount pixels
// with probability proportional to its size. With one or no components, or
// when none is large enough, it returns a synthetic region near the center of
// the mask instead.
func SelectWeightedRandom(l *Labels, minPixelCount int, src rng.Source) Selection {
	if l.Count <= 1 {
		return Selection{
			Component: SyntheticRegion(l.Width, l.Height, src),
			Fallback:  FallbackTooFewComponents,
		}
	}

	var candidates []Component
	var weights []float64
	for _, c := range l.Components {
		if c.Size >= minPixelCount {
			candidates = append(candidates, c)
			weights = append(weights, float64(c.Size))
		}
	}
	if len(candidates) == 0 {
		return Selection{
			Component: SyntheticRegion(l.Width, l.Height, src),
			Fallback:  FallbackNoneQualified,
		}
	}

	cum := floats.CumSum(make([]float64, len(weights)), weights)
	r := src.Float64() * cum[len(cum)-1]
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
	if i == len(cum) {
		i = len(cum) - 1
	}
	return Selection{Component: candidates[i]}
}

// SyntheticRegion returns a placeholder FallbackBox square whose center is
// uniform within the central FallbackWindow box of a width x height mask,
// clipped to the mask.
func SyntheticRegion(width, height int, src rng.Source) Component {
	half := FallbackWindow / 2
	cx := clampInt(rng.IntRange(src, width/2-half, width/2+half), 0, width-1)
	cy := clampInt(rng.IntRange(src, height/2-half, height/2+half), 0, height-1)

	box := FallbackBox / 2
	return Component{
		Bounds:    image.Rect(cx-box, cy-box, cx+box, cy+box),
		Centroid:  geometry.Point2D{X: float64(cx), Y: float64(cy)},
		Synthetic: true,
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
