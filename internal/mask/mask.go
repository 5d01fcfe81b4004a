// Package mask implements the binary segmentation mask shared by every stage
// of the compositing pipeline. Pixels are stored one byte each and are always
// either Off (0) or On (255).
package mask

import (
	"image"
	"image/color"

	"solar-snippet/pkg/colorutil"
)

// Pixel values of a binary mask.
const (
	Off uint8 = 0
	On  uint8 = 255
)

// Mask is a binary mask of width x height pixels with origin (0, 0).
type Mask struct {
	width  int
	height int
	data   []uint8
}

// New creates an empty (all Off) mask.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// FromBytes builds a mask from row-major gray levels. Values above
// threshold become On. The input slice is not retained.
func FromBytes(width, height int, data []uint8, threshold uint8) *Mask {
	m := New(width, height)
	n := min(len(data), len(m.data))
	for i := 0; i < n; i++ {
		if data[i] > threshold {
			m.data[i] = On
		}
	}
	return m
}

// FromGray thresholds a gray image into a mask.
func FromGray(g *image.Gray, threshold uint8) *Mask {
	b := g.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.height; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+m.width]
		for x, v := range row {
			if v > threshold {
				m.data[y*m.width+x] = On
			}
		}
	}
	return m
}

// FromImage converts any image to luma and sets every non-zero pixel On.
func FromImage(img image.Image) *Mask {
	if g, ok := img.(*image.Gray); ok {
		return FromGray(g, 0)
	}
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if colorutil.LumaOf(img.At(b.Min.X+x, b.Min.Y+y)) > 0 {
				m.data[y*m.width+x] = On
			}
		}
	}
	return m
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At reports whether (x, y) is On. Coordinates outside the mask are Off.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.data[y*m.width+x] == On
}

// Set turns (x, y) On or Off. Coordinates outside the mask are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	if on {
		m.data[y*m.width+x] = On
	} else {
		m.data[y*m.width+x] = Off
	}
}

// Data returns the underlying row-major pixel slice. Callers must only
// write On or Off into it.
func (m *Mask) Data() []uint8 {
	return m.data
}

// Count returns the number of On pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v == On {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no On pixels.
func (m *Mask) Empty() bool {
	for _, v := range m.data {
		if v != Off {
			return false
		}
	}
	return true
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	clone := New(m.width, m.height)
	copy(clone.data, m.data)
	return clone
}

// Binarize returns a copy where pixels above threshold are On.
// Binarizing an already binary mask with any threshold below 255 returns an
// identical mask.
func (m *Mask) Binarize(threshold uint8) *Mask {
	return FromBytes(m.width, m.height, m.data, threshold)
}

// ClearOutside turns Off every pixel outside r.
func (m *Mask) ClearOutside(r image.Rectangle) {
	r = r.Intersect(m.Bounds())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !(image.Point{X: x, Y: y}).In(r) {
				m.data[y*m.width+x] = Off
			}
		}
	}
}

// Crop returns a new mask holding the pixels of r. Parts of r outside the
// mask are Off.
func (m *Mask) Crop(r image.Rectangle) *Mask {
	out := New(r.Dx(), r.Dy())
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			if m.At(r.Min.X+x, r.Min.Y+y) {
				out.data[y*out.width+x] = On
			}
		}
	}
	return out
}

// Paste turns On every pixel of m covered by an On pixel of src placed with
// its origin at at, restricted to clip. It returns the number of pixels set.
func (m *Mask) Paste(src *Mask, at image.Point, clip image.Rectangle) int {
	area := src.Bounds().Add(at).Intersect(clip).Intersect(m.Bounds())
	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if src.data[(y-at.Y)*src.width+(x-at.X)] == On {
				m.data[y*m.width+x] = On
				n++
			}
		}
	}
	return n
}

// Bounding returns the smallest rectangle holding every On pixel, or the
// empty rectangle when the mask is empty.
func (m *Mask) Bounding() image.Rectangle {
	r := image.Rectangle{}
	found := false
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.data[y*m.width+x] != On {
				continue
			}
			if !found {
				r = image.Rect(x, y, x+1, y+1)
				found = true
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

// ToGray returns the mask as an 8-bit gray image for encoding.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(m.Bounds())
	copy(g.Pix, m.data)
	return g
}

// alphaView adapts a mask to image.Image with the alpha color model.
type alphaView struct{ m *Mask }

func (v alphaView) ColorModel() color.Model { return color.AlphaModel }
func (v alphaView) Bounds() image.Rectangle { return v.m.Bounds() }
func (v alphaView) At(x, y int) color.Color {
	if v.m.At(x, y) {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// Alpha exposes the mask as an alpha image usable as a drawing stencil.
func (m *Mask) Alpha() image.Image {
	return alphaView{m: m}
}
