package region

import (
	"math"

	"solar-snippet/internal/mask"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Orientation returns the angle in radians between the row axis and the
// major axis of the foreground pixel distribution of m, in [-pi/2, pi/2].
// The whole foreground is treated as one region. With zero or one
// foreground pixel the second moments are degenerate and (0, false) is
// returned.
func Orientation(m *mask.Mask) (float64, bool) {
	n := m.Count()
	if n <= 1 {
		return 0, false
	}

	// One observation per pixel: (row, column).
	pts := mat.NewDense(n, 2, nil)
	i := 0
	w := m.Width()
	for idx, v := range m.Data() {
		if v != mask.On {
			continue
		}
		pts.Set(i, 0, float64(idx/w))
		pts.Set(i, 1, float64(idx%w))
		i++
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, pts, nil)

	// Inertia tensor [[a, b], [b, c]] in row/column order.
	a := cov.At(1, 1)
	b := -cov.At(0, 1)
	c := cov.At(0, 0)

	eps := 1e-9 * (a + c)
	if math.Abs(a-c) <= eps {
		if b < -eps {
			return math.Pi / 4, true
		}
		return -math.Pi / 4, true
	}
	return 0.5 * math.Atan2(-2*b, c-a), true
}
