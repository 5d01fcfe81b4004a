package composite

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"solar-snippet/internal/mask"
	"solar-snippet/internal/region"
	"solar-snippet/internal/rng"

	"github.com/rs/zerolog"
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

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// scene returns a 400x400 source with a 50x50 square object and a target
// image of the same size.
func scene() (*image.RGBA, *mask.Mask, *image.RGBA) {
	srcImg := solid(400, 400, color.RGBA{R: 20, G: 20, B: 120, A: 255})
	srcMask := mask.New(400, 400)
	fill(srcMask, image.Rect(100, 100, 150, 150))
	return srcImg, srcMask, solid(400, 400, color.RGBA{R: 150, G: 140, B: 130, A: 255})
}

func assertInside(t *testing.T, m *mask.Mask, r image.Rectangle) {
	t.Helper()
	b := m.Bounding()
	if b.Empty() {
		return
	}
	assert.True(t, b.In(r), "foreground %v escapes %v", b, r)
}

func TestCompositeEmptyTarget(t *testing.T) {
	srcImg, srcMask, dstImg := scene()
	c := New(DefaultParams(), rng.New(1), zerolog.Nop())

	_, err := c.Composite(srcImg, srcMask, dstImg, mask.New(400, 400))
	assert.True(t, errors.Is(err, ErrEmptyTarget))
}

func TestCompositeSizeMismatch(t *testing.T) {
	srcImg, srcMask, _ := scene()
	c := New(DefaultParams(), rng.New(1), zerolog.Nop())

	small := solid(100, 100, color.RGBA{A: 255})
	m := mask.New(100, 100)
	fill(m, image.Rect(10, 10, 50, 50))

	_, err := c.Composite(srcImg, srcMask, small, m)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = c.Composite(srcImg, mask.New(10, 10), small, m)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestCompositeSquareOnSingleBlob(t *testing.T) {
	srcImg, srcMask, dstImg := scene()
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(160, 160, 210, 200))
	require.Equal(t, 2000, dstMask.Count())

	// Center (200, 200), no jitter, no perturbations.
	src := &rng.Scripted{Ints: []int{100, 100, 25, 25, 10}, Fallback: 0.99}
	c := New(DefaultParams(), src, zerolog.Nop())

	res, err := c.Composite(srcImg, srcMask, dstImg, dstMask)
	require.NoError(t, err)

	// One component is not enough for a real selection.
	assert.Equal(t, region.FallbackTooFewComponents, res.Region.Fallback)
	assert.Equal(t, image.Rect(170, 170, 230, 230), res.Region.Bounds())
	assert.Equal(t, image.Pt(175, 175), res.Anchor)
	assert.Empty(t, res.Applied)

	assert.GreaterOrEqual(t, res.Foreground, 1)
	assert.LessOrEqual(t, res.Foreground, 2500)
	assert.Equal(t, res.Foreground, res.Mask.Count())
	assertInside(t, res.Mask, res.Region.Bounds())
}

func TestCompositeContainment(t *testing.T) {
	srcImg, srcMask, dstImg := scene()
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(120, 130, 200, 190))
	fill(dstMask, image.Rect(220, 210, 280, 270))
	fill(dstMask, image.Rect(10, 10, 20, 20))

	for seed := uint64(1); seed <= 25; seed++ {
		c := New(DefaultParams(), rng.New(seed), zerolog.Nop())
		res, err := c.Composite(srcImg, srcMask, dstImg, dstMask)
		require.NoError(t, err)

		assert.Equal(t, region.FallbackNone, res.Region.Fallback)
		assert.GreaterOrEqual(t, res.Region.Component.Size, 1500)
		assertInside(t, res.Mask, res.Region.Bounds())
		assertInside(t, res.Mask, image.Rect(100, 100, 300, 300))
		assert.Greater(t, res.Foreground, 0, "seed %d", seed)

		// Everything outside the keep window is black.
		assert.Equal(t, color.RGBA{A: 255}, res.Image.RGBAAt(5, 5))
		assert.Equal(t, color.RGBA{A: 255}, res.Image.RGBAAt(350, 320))
	}
}

func TestCompositeLeavesInputsUntouched(t *testing.T) {
	srcImg, srcMask, dstImg := scene()
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(120, 130, 200, 190))
	fill(dstMask, image.Rect(220, 210, 280, 270))

	srcPix := append([]uint8(nil), srcImg.Pix...)
	dstPix := append([]uint8(nil), dstImg.Pix...)
	srcData := append([]uint8(nil), srcMask.Data()...)
	dstData := append([]uint8(nil), dstMask.Data()...)

	c := New(DefaultParams(), rng.New(7), zerolog.Nop())
	_, err := c.Composite(srcImg, srcMask, dstImg, dstMask)
	require.NoError(t, err)

	assert.Equal(t, srcPix, srcImg.Pix)
	assert.Equal(t, dstPix, dstImg.Pix)
	assert.Equal(t, srcData, srcMask.Data())
	assert.Equal(t, dstData, dstMask.Data())
}

func TestCompositeEmptySourcePastesNothing(t *testing.T) {
	_, _, dstImg := scene()
	srcImg := solid(400, 400, color.RGBA{R: 255, A: 255})
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(120, 130, 200, 190))
	fill(dstMask, image.Rect(220, 210, 280, 270))

	c := New(DefaultParams(), rng.New(3), zerolog.Nop())
	res, err := c.Composite(srcImg, mask.New(400, 400), dstImg, dstMask)
	require.NoError(t, err)

	assert.True(t, res.EmptyPatch)
	assert.Equal(t, 0, res.Foreground)
	assert.Equal(t, color.RGBA{R: 150, G: 140, B: 130, A: 255}, res.Image.RGBAAt(200, 200))
}

func TestCompositeDeterministicForSeed(t *testing.T) {
	srcImg, srcMask, dstImg := scene()
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(120, 130, 200, 190))
	fill(dstMask, image.Rect(220, 210, 280, 270))

	a, err := New(DefaultParams(), rng.New(42), zerolog.Nop()).Composite(srcImg, srcMask, dstImg, dstMask)
	require.NoError(t, err)
	b, err := New(DefaultParams(), rng.New(42), zerolog.Nop()).Composite(srcImg, srcMask, dstImg, dstMask)
	require.NoError(t, err)

	assert.Equal(t, a.Anchor, b.Anchor)
	assert.Equal(t, a.Rotation, b.Rotation)
	assert.Equal(t, a.Applied, b.Applied)
	assert.Equal(t, a.Mask.Data(), b.Mask.Data())
	assert.Equal(t, a.Image.Pix, b.Image.Pix)
}

func TestResizeSkipIsRecorded(t *testing.T) {
	srcImg := solid(400, 400, color.RGBA{R: 200, A: 255})
	srcMask := mask.New(400, 400)
	srcMask.Set(50, 50, true)
	dstImg := solid(400, 400, color.RGBA{A: 255})
	dstMask := mask.New(400, 400)
	fill(dstMask, image.Rect(120, 130, 200, 190))
	fill(dstMask, image.Rect(220, 210, 280, 270))

	params := DefaultParams().WithoutPerturbations()
	params.Resize = Perturbation{Probability: 1, Range: Range{Min: 0.5, Max: 0.5}}

	// A single pixel patch turned by a quarter turn stays 1x1 and cannot
	// shrink. Float64 always returns 0 so every gate opens.
	src := &rng.Scripted{Ints: []int{25, 25, 10}, Fallback: 0}
	res, err := New(params.WithJitter(25, 10), src, zerolog.Nop()).Composite(srcImg, srcMask, dstImg, dstMask)
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, StepResize, res.Skipped[0].Step)
	assert.Empty(t, res.Applied)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.NoError(t, DefaultParams().WithoutPerturbations().Validate())

	bad := DefaultParams()
	bad.Brightness.Probability = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultParams().WithCanvas(image.Pt(100, 100), image.Pt(200, 200))
	assert.Error(t, bad.Validate())

	bad = DefaultParams()
	bad.Color.Range = Range{Min: 1.1, Max: 0.9}
	assert.Error(t, bad.Validate())
}

func TestCompositeAlignsBarWithTargetDiagonal(t *testing.T) {
	srcImg := solid(400, 400, color.RGBA{R: 20, G: 20, B: 120, A: 255})
	srcMask := mask.New(400, 400)
	fill(srcMask, image.Rect(50, 50, 58, 110))

	tests := []struct {
		name   string
		onBar  func(x, y int) bool
		target float64
	}{
		{
			name:   "down right",
			onBar:  func(x, y int) bool { return x-y >= -10 && x-y <= 10 },
			target: math.Pi / 4,
		},
		{
			name:   "up right",
			onBar:  func(x, y int) bool { return x+y >= 329 && x+y <= 349 },
			target: -math.Pi / 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dstMask := mask.New(400, 400)
			for y := 120; y < 220; y++ {
				for x := 120; x < 220; x++ {
					if tt.onBar(x, y) {
						dstMask.Set(x, y, true)
					}
				}
			}
			barSize := dstMask.Count()
			require.GreaterOrEqual(t, barSize, 1500)
			fill(dstMask, image.Rect(240, 240, 290, 290))

			// The bar is labelled first, so a low draw selects it.
			src := &rng.Scripted{Floats: []float64{0.1}, Fallback: 0.99}
			params := DefaultParams().WithoutPerturbations().WithJitter(0, 0)
			res, err := New(params, src, zerolog.Nop()).Composite(srcImg, srcMask, solid(400, 400, color.RGBA{A: 255}), dstMask)
			require.NoError(t, err)

			require.Equal(t, region.FallbackNone, res.Region.Fallback)
			require.Equal(t, barSize, res.Region.Component.Size)
			assert.Equal(t, image.Rect(120, 120, 220, 220), res.Region.Bounds())

			assert.InDelta(t, 0, res.PatchAngle, 1e-9)
			assert.InDelta(t, tt.target, res.TargetAngle, 0.02)
			assert.InDelta(t, tt.target*180/math.Pi, res.Rotation, 1)

			// Nothing is clipped, so the pasted bar keeps its full length and
			// follows the roof diagonal.
			assert.Greater(t, res.Foreground, 350)
			got, ok := region.Orientation(res.Mask)
			require.True(t, ok)
			assert.InDelta(t, res.TargetAngle, got, 3*math.Pi/180)
			assertInside(t, res.Mask, res.Region.Bounds())
		})
	}
}
