package image

import (
	"image"

	"solar-snippet/internal/mask"
	"solar-snippet/pkg/colorutil"

	"golang.org/x/image/draw"
)

// CloneRGBA returns a deep copy of img.
func CloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Opaque sets the alpha of every pixel of img to 255 in place.
func Opaque(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*b.Dx()]
		for i := 3; i < len(row); i += 4 {
			row[i] = 255
		}
	}
}

// PasteMasked draws src onto dst with the origin of src at at. Only pixels
// whose stencil value is On are copied, and only inside clip. src must be
// opaque; stencil must have the size of src.
func PasteMasked(dst, src *image.RGBA, stencil *mask.Mask, at image.Point, clip image.Rectangle) {
	r := src.Bounds().Add(at).Intersect(clip).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	sp := r.Min.Sub(at)
	draw.DrawMask(dst, r, src, sp, stencil.Alpha(), sp, draw.Over)
}

// CenterWindow returns the size x size window centered in bounds, clipped
// to bounds.
func CenterWindow(bounds image.Rectangle, size image.Point) image.Rectangle {
	min := image.Pt(
		bounds.Min.X+(bounds.Dx()-size.X)/2,
		bounds.Min.Y+(bounds.Dy()-size.Y)/2,
	)
	return image.Rectangle{Min: min, Max: min.Add(size)}.Intersect(bounds)
}

// KeepWindow blacks out every pixel of img outside window. This is the same
// as cropping to window and padding back to the original size with black.
func KeepWindow(img *image.RGBA, window image.Rectangle) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !(image.Point{X: x, Y: y}).In(window) {
				img.SetRGBA(x, y, colorutil.Black)
			}
		}
	}
}
