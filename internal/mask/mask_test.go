package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(w, h int, r image.Rectangle) *Mask {
	m := New(w, h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestFromBytesThreshold(t *testing.T) {
	m := FromBytes(4, 1, []uint8{0, 50, 51, 200}, 50)
	assert.Equal(t, []uint8{Off, Off, On, On}, m.Data())
}

func TestBinarizeIdempotent(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 4)
	}

	once := FromGray(g, 0)
	twice := once.Binarize(0)
	assert.Equal(t, once.Data(), twice.Data())

	for _, v := range twice.Data() {
		assert.Contains(t, []uint8{Off, On}, v)
	}
	assert.Equal(t, once.Data(), once.Binarize(128).Data())
}

func TestFromImageUsesLuma(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(1, 0, color.RGBA{R: 10, A: 255})
	m := FromImage(img)

	assert.False(t, m.At(0, 0))
	assert.True(t, m.At(1, 0))
}

func TestFromImageTransparentWhiteIsForeground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	img.SetNRGBA(2, 0, color.NRGBA{A: 255})
	m := FromImage(img)

	assert.False(t, m.At(0, 0))
	assert.True(t, m.At(1, 0))
	assert.False(t, m.At(2, 0))
}

func TestCountAndEmpty(t *testing.T) {
	m := New(10, 10)
	assert.True(t, m.Empty())
	assert.Equal(t, 0, m.Count())

	m = square(10, 10, image.Rect(2, 2, 5, 6))
	assert.False(t, m.Empty())
	assert.Equal(t, 12, m.Count())
	assert.Equal(t, image.Rect(2, 2, 5, 6), m.Bounding())
}

func TestClearOutside(t *testing.T) {
	m := square(10, 10, image.Rect(0, 0, 10, 10))
	m.ClearOutside(image.Rect(3, 4, 6, 8))

	assert.Equal(t, 12, m.Count())
	assert.Equal(t, image.Rect(3, 4, 6, 8), m.Bounding())
}

func TestCropOutsideIsOff(t *testing.T) {
	m := square(5, 5, image.Rect(0, 0, 5, 5))
	c := m.Crop(image.Rect(3, 3, 7, 7))

	require.Equal(t, 4, c.Width())
	assert.Equal(t, 4, c.Count())
	assert.True(t, c.At(1, 1))
	assert.False(t, c.At(2, 2))
}

func TestPasteClipped(t *testing.T) {
	dst := New(20, 20)
	src := square(6, 6, image.Rect(0, 0, 6, 6))

	n := dst.Paste(src, image.Pt(8, 8), image.Rect(10, 10, 20, 20))
	assert.Equal(t, 16, n)
	assert.Equal(t, 16, dst.Count())
	assert.Equal(t, image.Rect(10, 10, 14, 14), dst.Bounding())

	// Pasting past the canvas edge never panics.
	n = dst.Paste(src, image.Pt(17, -3), dst.Bounds())
	assert.Equal(t, 9, n)
}

func TestToGrayAndAlpha(t *testing.T) {
	m := square(3, 3, image.Rect(1, 1, 2, 2))
	g := m.ToGray()
	assert.Equal(t, uint8(255), g.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)

	a := m.Alpha()
	assert.Equal(t, color.Alpha{A: 255}, a.At(1, 1))
	assert.Equal(t, color.Alpha{}, a.At(2, 2))
}
