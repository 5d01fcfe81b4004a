package augment

import (
	"fmt"
	"image"

	imgutil "solar-snippet/internal/image"

	"gocv.io/x/gocv"
)

// Each enhancement interpolates between img and a degenerate version of it:
// out = factor*img + (1-factor)*degenerate, saturated to 8 bits. A factor of
// 1 returns the image unchanged, 0 returns the degenerate image.

// Brightness scales the image toward black.
func Brightness(img *image.RGBA, factor float64) (*image.RGBA, error) {
	return enhance(img, factor, func(src gocv.Mat) (gocv.Mat, error) {
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 255), src.Rows(), src.Cols(), gocv.MatTypeCV8UC4), nil
	})
}

// Contrast blends toward a flat gray at the rounded mean luma of the image.
func Contrast(img *image.RGBA, factor float64) (*image.RGBA, error) {
	return enhance(img, factor, func(src gocv.Mat) (gocv.Mat, error) {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

		mean := gocv.NewMat()
		defer mean.Close()
		stddev := gocv.NewMat()
		defer stddev.Close()
		gocv.MeanStdDev(gray, &mean, &stddev)
		if mean.Empty() {
			return gocv.NewMat(), fmt.Errorf("no mean for %dx%d image", src.Cols(), src.Rows())
		}

		level := float64(int(mean.GetDoubleAt(0, 0) + 0.5))
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(level, level, level, 255), src.Rows(), src.Cols(), gocv.MatTypeCV8UC4), nil
	})
}

// Color blends toward the grayscale version of the image. Factors above 1
// saturate colors.
func Color(img *image.RGBA, factor float64) (*image.RGBA, error) {
	return enhance(img, factor, func(src gocv.Mat) (gocv.Mat, error) {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

		deg := gocv.NewMat()
		gocv.CvtColor(gray, &deg, gocv.ColorGrayToRGBA)
		return deg, nil
	})
}

// Sharpness blends toward a smoothed image. Factors below 1 soften.
func Sharpness(img *image.RGBA, factor float64) (*image.RGBA, error) {
	return enhance(img, factor, func(src gocv.Mat) (gocv.Mat, error) {
		kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
		defer kernel.Close()
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				kernel.SetFloatAt(r, c, 1.0/13)
			}
		}
		kernel.SetFloatAt(1, 1, 5.0/13)

		deg := gocv.NewMat()
		gocv.Filter2D(src, &deg, gocv.MatTypeCV8U, kernel, image.Pt(-1, -1), 0, gocv.BorderReplicate)
		return deg, nil
	})
}

func enhance(img *image.RGBA, factor float64, degenerate func(gocv.Mat) (gocv.Mat, error)) (*image.RGBA, error) {
	img = imgutil.ToRGBA(img)
	src, err := imgutil.ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	defer src.Close()

	deg, err := degenerate(src)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	defer deg.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.AddWeighted(src, factor, deg, 1.0-factor, 0, &dst)

	out, err := imgutil.FromMat(dst)
	if err != nil {
		return nil, err
	}
	// Alpha follows the input; the degenerate images are opaque.
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = img.Pix[i]
	}
	return out, nil
}

// GaussianBlur blurs img with standard deviation radius. A non-positive
// radius returns a copy.
func GaussianBlur(img *image.RGBA, radius float64) (*image.RGBA, error) {
	if radius <= 0 {
		return imgutil.CloneRGBA(imgutil.ToRGBA(img)), nil
	}
	src, err := imgutil.ToMat(img)
	if err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Point{}, radius, radius, gocv.BorderReplicate)

	return imgutil.FromMat(dst)
}
