package region

import (
	"image"
	"testing"

	"solar-snippet/internal/mask"
	"solar-snippet/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(m *mask.Mask, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, true)
		}
	}
}

func TestLabelEmptyMask(t *testing.T) {
	l, err := Label(mask.New(10, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Count)
	assert.Empty(t, l.Components)
	for _, v := range l.Grid {
		assert.Equal(t, int32(0), v)
	}
}

func TestLabelComponents(t *testing.T) {
	m := mask.New(40, 40)
	fill(m, image.Rect(2, 2, 12, 12))   // 100 px
	fill(m, image.Rect(20, 20, 35, 40)) // 300 px

	l, err := Label(m)
	require.NoError(t, err)
	require.Equal(t, 2, l.Count)

	sizes := []int{l.Components[0].Size, l.Components[1].Size}
	assert.ElementsMatch(t, []int{100, 300}, sizes)

	for _, c := range l.Components {
		switch c.Size {
		case 100:
			assert.Equal(t, image.Rect(2, 2, 12, 12), c.Bounds)
			assert.InDelta(t, 6.5, c.Centroid.X, 1e-9)
			assert.Equal(t, image.Pt(6, 6), c.Center())
		case 300:
			assert.Equal(t, image.Rect(20, 20, 35, 40), c.Bounds)
		}
		assert.Equal(t, c.Size, l.Mask(c.Label).Count())
	}
}

func TestLabelEightConnected(t *testing.T) {
	m := mask.New(5, 5)
	m.Set(1, 1, true)
	m.Set(2, 2, true)
	m.Set(3, 3, true)

	l, err := Label(m)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Count)
	assert.Equal(t, 3, l.Components[0].Size)
}

func TestSelectLargest(t *testing.T) {
	t.Run("no components", func(t *testing.T) {
		l, err := Label(mask.New(8, 8))
		require.NoError(t, err)
		_, ok := SelectLargest(l)
		assert.False(t, ok)
	})

	t.Run("ties go to lowest label", func(t *testing.T) {
		l := &Labels{Count: 3, Components: []Component{
			{Label: 1, Size: 5},
			{Label: 2, Size: 9},
			{Label: 3, Size: 9},
		}}
		c, ok := SelectLargest(l)
		require.True(t, ok)
		assert.Equal(t, 2, c.Label)
	})

	t.Run("largest of random masks", func(t *testing.T) {
		src := rng.New(3)
		for trial := 0; trial < 20; trial++ {
			m := mask.New(30, 30)
			for i := 0; i < 6; i++ {
				x, y := src.IntN(25), src.IntN(25)
				fill(m, image.Rect(x, y, x+1+src.IntN(5), y+1+src.IntN(5)))
			}
			l, err := Label(m)
			require.NoError(t, err)
			best, ok := SelectLargest(l)
			require.True(t, ok)
			for _, c := range l.Components {
				assert.GreaterOrEqual(t, best.Size, c.Size)
			}
		}
	})
}

func TestSelectWeightedRandomFallback(t *testing.T) {
	t.Run("all zero 300x300", func(t *testing.T) {
		l, err := Label(mask.New(300, 300))
		require.NoError(t, err)
		require.Equal(t, 0, l.Count)

		src := rng.New(11)
		for i := 0; i < 200; i++ {
			s := SelectWeightedRandom(l, 1500, src)
			require.Equal(t, FallbackTooFewComponents, s.Fallback)
			assert.True(t, s.Component.Synthetic)

			c := s.Center()
			assert.GreaterOrEqual(t, c.X, 50)
			assert.LessOrEqual(t, c.X, 250)
			assert.GreaterOrEqual(t, c.Y, 50)
			assert.LessOrEqual(t, c.Y, 250)
			assert.Equal(t, 60, s.Bounds().Dx())
			assert.Equal(t, 60, s.Bounds().Dy())
			assert.Equal(t, c, s.Bounds().Min.Add(image.Pt(30, 30)))
		}
	})

	t.Run("small mask clips the center", func(t *testing.T) {
		l, err := Label(mask.New(10, 10))
		require.NoError(t, err)

		src := rng.New(5)
		for i := 0; i < 100; i++ {
			c := SelectWeightedRandom(l, 1500, src).Center()
			assert.True(t, c.In(image.Rect(0, 0, 10, 10)), "center %v", c)
		}
	})

	t.Run("single component", func(t *testing.T) {
		m := mask.New(300, 300)
		fill(m, image.Rect(0, 0, 100, 100))
		l, err := Label(m)
		require.NoError(t, err)

		s := SelectWeightedRandom(l, 1500, rng.New(1))
		assert.Equal(t, FallbackTooFewComponents, s.Fallback)
	})

	t.Run("none qualified", func(t *testing.T) {
		m := mask.New(300, 300)
		fill(m, image.Rect(0, 0, 10, 10))
		fill(m, image.Rect(50, 50, 60, 60))
		l, err := Label(m)
		require.NoError(t, err)

		s := SelectWeightedRandom(l, 1500, rng.New(1))
		assert.Equal(t, FallbackNoneQualified, s.Fallback)
		assert.True(t, s.Component.Synthetic)
	})
}

func TestSelectWeightedRandomProportional(t *testing.T) {
	m := mask.New(100, 100)
	fill(m, image.Rect(0, 0, 10, 10))   // 100 px
	fill(m, image.Rect(50, 50, 70, 65)) // 300 px
	fill(m, image.Rect(90, 0, 92, 2))   // 4 px, below minimum
	l, err := Label(m)
	require.NoError(t, err)
	require.Equal(t, 3, l.Count)

	var qualified []Component
	for _, c := range l.Components {
		if c.Size >= 50 {
			qualified = append(qualified, c)
		}
	}
	require.Len(t, qualified, 2)

	// The draw walks the cumulative weights in label order.
	first := SelectWeightedRandom(l, 50, &rng.Scripted{Floats: []float64{0.01}})
	assert.Equal(t, FallbackNone, first.Fallback)
	assert.Equal(t, qualified[0], first.Component)

	last := SelectWeightedRandom(l, 50, &rng.Scripted{Floats: []float64{0.99}})
	assert.Equal(t, qualified[1], last.Component)

	src := rng.New(99)
	counts := map[int]int{}
	for i := 0; i < 4000; i++ {
		counts[SelectWeightedRandom(l, 50, src).Component.Size]++
	}
	assert.Zero(t, counts[4])
	assert.InDelta(t, 3.0, float64(counts[300])/float64(counts[100]), 0.6)
}

func TestFallbackString(t *testing.T) {
	assert.Equal(t, "none", FallbackNone.String())
	assert.Equal(t, "too-few-components", FallbackTooFewComponents.String())
	assert.Equal(t, "none-qualified", FallbackNoneQualified.String())
}
