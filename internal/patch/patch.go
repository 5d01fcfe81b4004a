// Package patch isolates the dominant object of a source image.
package patch

import (
	"fmt"
	"image"

	imgutil "solar-snippet/internal/image"
	"solar-snippet/internal/mask"
	"solar-snippet/internal/region"

	"golang.org/x/image/draw"
)

// Patch is an object cut out of a source image together with a mask that
// holds only that object's pixels. Image and Mask have the same size.
type Patch struct {
	Image  *image.RGBA
	Mask   *mask.Mask
	Source image.Rectangle // bounds in the source image; empty for the placeholder
	Size   int             // foreground pixel count
}

// Empty reports whether p is the 1x1 black placeholder returned for a mask
// without foreground.
func (p Patch) Empty() bool {
	return p.Size == 0
}

// Placeholder returns the 1x1 black patch with an empty mask.
func Placeholder() Patch {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	imgutil.Opaque(img)
	return Patch{Image: img, Mask: mask.New(1, 1)}
}

// Extract crops img and m to the largest connected component of m. The
// returned mask contains only that component, other objects falling inside
// the bounding box are cleared.
func Extract(img *image.RGBA, m *mask.Mask) (Patch, error) {
	if img.Bounds().Size() != m.Bounds().Size() {
		return Patch{}, fmt.Errorf("image %v and mask %v differ in size", img.Bounds().Size(), m.Bounds().Size())
	}

	labels, err := region.Label(m)
	if err != nil {
		return Patch{}, fmt.Errorf("failed to label source mask: %w", err)
	}
	largest, ok := region.SelectLargest(labels)
	if !ok {
		return Placeholder(), nil
	}

	r := largest.Bounds
	crop := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	src := imgutil.ToRGBA(img)
	draw.Draw(crop, crop.Bounds(), src, r.Min, draw.Src)

	return Patch{
		Image:  crop,
		Mask:   labels.Mask(largest.Label).Crop(r),
		Source: r,
		Size:   largest.Size,
	}, nil
}
