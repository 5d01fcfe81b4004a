// Package augment holds the geometric and photometric perturbations applied
// to an object patch before it is pasted. Every operation returns a new
// image and leaves its input untouched.
package augment

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	imgutil "solar-snippet/internal/image"
	"solar-snippet/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrDegenerateSize is returned when a resize would produce an image with a
// zero dimension.
var ErrDegenerateSize = errors.New("degenerate target size")

// Rotate turns img counter-clockwise by degrees about its center with
// bicubic resampling. The canvas grows so that no corner is clipped and
// the uncovered area is black.
func Rotate(img *image.RGBA, degrees float64) (*image.RGBA, error) {
	src, err := imgutil.ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	defer src.Close()

	xf, size := geometry.ExpandedRotation(src.Cols(), src.Rows(), degrees)
	dst := warp(src, xf, size, color.RGBA{A: 255})
	defer dst.Close()

	return imgutil.FromMat(dst)
}

// RotateGray is Rotate for single channel coverage images. The uncovered
// area is zero.
func RotateGray(g *image.Gray, degrees float64) (*image.Gray, error) {
	src, err := imgutil.GrayToMat(g)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	defer src.Close()

	xf, size := geometry.ExpandedRotation(src.Cols(), src.Rows(), degrees)
	dst := warp(src, xf, size, color.RGBA{})
	defer dst.Close()

	return imgutil.GrayFromMat(dst)
}

func warp(src gocv.Mat, xf geometry.AffineTransform, size image.Point, border color.RGBA) gocv.Mat {
	m := xf.ToMatrix()
	transformMat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer transformMat.Close()
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			transformMat.SetDoubleAt(r, c, m[r][c])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, transformMat, size,
		gocv.InterpolationCubic, gocv.BorderConstant, border)
	return dst
}

// ScaledSize returns size scaled by factor with each dimension truncated
// toward zero. It fails with ErrDegenerateSize when either dimension
// drops below one pixel.
func ScaledSize(size image.Point, factor float64) (image.Point, error) {
	out := image.Pt(int(float64(size.X)*factor), int(float64(size.Y)*factor))
	if out.X < 1 || out.Y < 1 {
		return image.Point{}, fmt.Errorf("%w: %dx%d scaled by %.3f", ErrDegenerateSize, size.X, size.Y, factor)
	}
	return out, nil
}

// Resize scales img by factor with bicubic resampling.
func Resize(img *image.RGBA, factor float64) (*image.RGBA, error) {
	size, err := ScaledSize(img.Bounds().Size(), factor)
	if err != nil {
		return nil, err
	}
	src, err := imgutil.ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, size, 0, 0, gocv.InterpolationCubic)

	return imgutil.FromMat(dst)
}

// ResizeGray is Resize for single channel coverage images.
func ResizeGray(g *image.Gray, factor float64) (*image.Gray, error) {
	size, err := ScaledSize(g.Bounds().Size(), factor)
	if err != nil {
		return nil, err
	}
	src, err := imgutil.GrayToMat(g)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, size, 0, 0, gocv.InterpolationCubic)

	return imgutil.GrayFromMat(dst)
}
