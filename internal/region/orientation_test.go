package region

import (
	"image"
	"math"
	"testing"

	"solar-snippet/internal/mask"

	"github.com/stretchr/testify/assert"
)

func TestOrientationDegenerate(t *testing.T) {
	angle, ok := Orientation(mask.New(20, 20))
	assert.False(t, ok)
	assert.Zero(t, angle)

	single := mask.New(20, 20)
	single.Set(4, 4, true)
	angle, ok = Orientation(single)
	assert.False(t, ok)
	assert.Zero(t, angle)
}

func TestOrientation(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *mask.Mask)
		want  float64
		abs   bool
	}{
		{
			name:  "vertical bar",
			build: func(m *mask.Mask) { fill(m, image.Rect(10, 2, 14, 38)) },
			want:  0,
		},
		{
			name:  "horizontal bar",
			build: func(m *mask.Mask) { fill(m, image.Rect(2, 10, 38, 14)) },
			want:  math.Pi / 2,
			abs:   true,
		},
		{
			name: "diagonal down right",
			build: func(m *mask.Mask) {
				for i := 0; i < 30; i++ {
					m.Set(i, i, true)
				}
			},
			want: math.Pi / 4,
		},
		{
			name: "diagonal up right",
			build: func(m *mask.Mask) {
				for i := 0; i < 30; i++ {
					m.Set(i, 29-i, true)
				}
			},
			want: -math.Pi / 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mask.New(40, 40)
			tt.build(m)
			angle, ok := Orientation(m)
			assert.True(t, ok)
			if tt.abs {
				angle = math.Abs(angle)
			}
			assert.InDelta(t, tt.want, angle, 1e-6)
		})
	}
}

func TestOrientationTilted(t *testing.T) {
	// A thin bar along a direction 30 degrees off the row axis.
	m := mask.New(100, 100)
	theta := 30 * math.Pi / 180
	for s := -40.0; s <= 40; s += 0.25 {
		r := 50 + s*math.Cos(theta)
		c := 50 + s*math.Sin(theta)
		m.Set(int(math.Round(c)), int(math.Round(r)), true)
	}

	angle, ok := Orientation(m)
	assert.True(t, ok)
	assert.InDelta(t, theta, angle, 0.05)
}
