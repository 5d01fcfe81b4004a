package image

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ToMat converts an RGBA image to a 4-channel Mat in RGBA channel order.
// The returned Mat owns its data and must be closed by the caller.
func ToMat(img *image.RGBA) (gocv.Mat, error) {
	img = ToRGBA(img)
	b := img.Bounds()
	if b.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	wrapped, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap image: %w", err)
	}
	defer wrapped.Close()
	return wrapped.Clone(), nil
}

// FromMat converts a 4-channel 8-bit Mat back to an RGBA image.
func FromMat(m gocv.Mat) (*image.RGBA, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if m.Type() != gocv.MatTypeCV8UC4 {
		return nil, fmt.Errorf("expected 8-bit 4-channel mat, got type %v", m.Type())
	}
	img := image.NewRGBA(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(img.Pix, m.ToBytes())
	return img, nil
}

// GrayToMat converts an 8-bit gray image to a single channel Mat.
// The returned Mat owns its data and must be closed by the caller.
func GrayToMat(g *image.Gray) (gocv.Mat, error) {
	b := g.Bounds()
	if b.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	pix := g.Pix
	if b.Min != (image.Point{}) || g.Stride != b.Dx() {
		tight := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(tight.Pix[y*tight.Stride:], g.Pix[y*g.Stride:y*g.Stride+b.Dx()])
		}
		pix = tight.Pix
	}
	wrapped, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap gray image: %w", err)
	}
	defer wrapped.Close()
	return wrapped.Clone(), nil
}

// GrayFromMat converts a single channel 8-bit Mat to a gray image.
func GrayFromMat(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("expected 8-bit single channel mat, got type %v", m.Type())
	}
	g := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(g.Pix, m.ToBytes())
	return g, nil
}
