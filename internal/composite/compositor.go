// Package composite pastes a source object onto a target scene. The object
// is aligned with the chosen placement region, randomly perturbed and
// clipped to the region, and the result is cut down to the central window
// of the canvas.
package composite

import (
	"errors"
	"fmt"
	"image"
	"math"

	"solar-snippet/internal/augment"
	imgutil "solar-snippet/internal/image"
	"solar-snippet/internal/mask"
	"solar-snippet/internal/patch"
	"solar-snippet/internal/region"
	"solar-snippet/internal/rng"

	"github.com/rs/zerolog"
)

// ErrEmptyTarget is returned when the target mask has no foreground.
var ErrEmptyTarget = errors.New("target mask has no foreground")

// ErrSizeMismatch is returned when inputs do not share the expected sizes.
var ErrSizeMismatch = errors.New("size mismatch")

// Step names a perturbation applied to the patch.
type Step string

const (
	StepBrightness Step = "brightness"
	StepContrast   Step = "contrast"
	StepColor      Step = "color"
	StepResize     Step = "resize"
	StepBlur       Step = "blur"
	StepSharpness  Step = "sharpness"
)

// Applied records a perturbation and the factor it was applied with.
type Applied struct {
	Step  Step
	Value float64
}

// Skipped records a perturbation that was drawn but could not be applied.
type Skipped struct {
	Step   Step
	Value  float64
	Reason string
}

// Result is a composited sample plus what happened while producing it.
type Result struct {
	Image *image.RGBA
	Mask  *mask.Mask

	Region      region.Selection
	Anchor      image.Point // Top-left of the pasted patch
	Rotation    float64     // Degrees, counter-clockwise
	TargetAngle float64     // Radians
	PatchAngle  float64     // Radians
	Applied     []Applied
	Skipped     []Skipped
	EmptyPatch  bool
	Foreground  int // On pixels in Mask
}

// Compositor produces augmented samples. It is not safe for concurrent use
// because it shares one random source.
type Compositor struct {
	params Params
	rng    rng.Source
	log    zerolog.Logger
}

// New creates a compositor drawing all randomness from src.
func New(params Params, src rng.Source, log zerolog.Logger) *Compositor {
	return &Compositor{params: params, rng: src, log: log}
}

// Params returns the compositor parameters.
func (c *Compositor) Params() Params {
	return c.params
}

// Composite pastes the dominant object of the source onto the target. The
// inputs are never modified. The output mask holds only the pasted object,
// restricted to the placement region and the central keep window.
func (c *Compositor) Composite(srcImg *image.RGBA, srcMask *mask.Mask, dstImg *image.RGBA, dstMask *mask.Mask) (Result, error) {
	if err := c.checkSizes(srcImg, srcMask, dstImg, dstMask); err != nil {
		return Result{}, err
	}

	srcBin := srcMask.Binarize(0)
	dstBin := dstMask.Binarize(0)
	if dstBin.Empty() {
		return Result{}, ErrEmptyTarget
	}

	labels, err := region.Label(dstBin)
	if err != nil {
		return Result{}, fmt.Errorf("failed to label target mask: %w", err)
	}
	sel := region.SelectWeightedRandom(labels, c.params.MinPlacementPixels, c.rng)
	if sel.Fallback != region.FallbackNone {
		c.log.Debug().Str("reason", sel.Fallback.String()).Msg("Using synthetic placement region")
	}
	box := sel.Bounds().Intersect(dstBin.Bounds())

	target := dstBin.Clone()
	target.ClearOutside(box)

	p, err := patch.Extract(srcImg, srcBin)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract source patch: %w", err)
	}
	if p.Empty() {
		c.log.Debug().Msg("Source mask has no foreground, nothing will be pasted")
	}

	res := Result{Region: sel, EmptyPatch: p.Empty()}
	res.Anchor = c.anchor(box, p.Image.Bounds().Size())

	targetAngle, ok := region.Orientation(target)
	if !ok {
		c.log.Debug().Msg("Target region too small for orientation, using 0")
	}
	patchAngle, ok := region.Orientation(p.Mask)
	if !ok {
		c.log.Debug().Msg("Patch too small for orientation, using 0")
	}
	res.TargetAngle, res.PatchAngle = targetAngle, patchAngle
	res.Rotation = (targetAngle-patchAngle)*180/math.Pi +
		float64(rng.IntRange(c.rng, -c.params.RotationJitter, c.params.RotationJitter))

	obj, err := augment.Rotate(p.Image, res.Rotation)
	if err != nil {
		return Result{}, err
	}
	coverage, err := augment.RotateGray(p.Mask.ToGray(), res.Rotation)
	if err != nil {
		return Result{}, err
	}

	obj, coverage, err = c.perturb(obj, coverage, &res)
	if err != nil {
		return Result{}, err
	}
	imgutil.Opaque(obj)
	stencil := mask.FromGray(coverage, c.params.StencilThreshold)

	out := imgutil.CloneRGBA(imgutil.ToRGBA(dstImg))
	outMask := mask.New(dstBin.Width(), dstBin.Height())
	if !p.Empty() {
		imgutil.PasteMasked(out, obj, stencil, res.Anchor, box)
		outMask.Paste(stencil, res.Anchor, box)
	}

	window := imgutil.CenterWindow(out.Bounds(), c.params.Keep)
	imgutil.KeepWindow(out, window)
	outMask.ClearOutside(window)

	res.Image = out
	res.Mask = outMask
	res.Foreground = outMask.Count()
	return res, nil
}

func (c *Compositor) checkSizes(srcImg *image.RGBA, srcMask *mask.Mask, dstImg *image.RGBA, dstMask *mask.Mask) error {
	if srcImg.Bounds().Size() != srcMask.Bounds().Size() {
		return fmt.Errorf("%w: source image %v, source mask %v", ErrSizeMismatch, srcImg.Bounds().Size(), srcMask.Bounds().Size())
	}
	if dstImg.Bounds().Size() != dstMask.Bounds().Size() {
		return fmt.Errorf("%w: target image %v, target mask %v", ErrSizeMismatch, dstImg.Bounds().Size(), dstMask.Bounds().Size())
	}
	if c.params.Canvas != (image.Point{}) && dstImg.Bounds().Size() != c.params.Canvas {
		return fmt.Errorf("%w: target %v, canvas %v", ErrSizeMismatch, dstImg.Bounds().Size(), c.params.Canvas)
	}
	return nil
}

// anchor centers a patch of size in box, jitters it and clamps it back so
// the unrotated patch fits the box. When the patch is larger than the box
// the top-left corner of the box wins.
func (c *Compositor) anchor(box image.Rectangle, size image.Point) image.Point {
	center := box.Min.Add(box.Max).Div(2)
	at := center.Sub(size.Div(2))
	at.X += rng.IntRange(c.rng, -c.params.PlacementJitter, c.params.PlacementJitter)
	at.Y += rng.IntRange(c.rng, -c.params.PlacementJitter, c.params.PlacementJitter)

	at.X = max(box.Min.X, min(at.X, box.Max.X-size.X))
	at.Y = max(box.Min.Y, min(at.Y, box.Max.Y-size.Y))
	return at
}
