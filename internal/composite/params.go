package composite

import (
	"fmt"
	"image"
)

// Range is a closed-open interval for uniformly drawn factors.
type Range struct {
	Min float64
	Max float64
}

// Perturbation is a randomly gated photometric or geometric step.
type Perturbation struct {
	Probability float64
	Range       Range
}

// Params controls placement and augmentation of the pasted object.
type Params struct {
	Canvas image.Point // Expected target size; zero accepts any size
	Keep   image.Point // Central window kept in the output, rest is black

	MinPlacementPixels int   // Components below this size are never placement regions
	StencilThreshold   uint8 // Coverage above this value is foreground after warping

	PlacementJitter int // Max anchor offset per axis, pixels
	RotationJitter  int // Max extra rotation, degrees

	Brightness Perturbation
	Contrast   Perturbation
	Color      Perturbation
	Resize     Perturbation

	// Filter gates one of blur or sharpness. BlurShare is the conditional
	// probability of picking blur.
	Filter     Perturbation
	BlurShare  float64
	BlurRadius Range
	Sharpness  Range
}

// DefaultParams returns the parameters used for 400x400 aerial tiles.
func DefaultParams() Params {
	return Params{
		Canvas: image.Pt(400, 400),
		Keep:   image.Pt(200, 200),

		// 1500 px keeps rooftops large enough to hold a panel at this scale
		MinPlacementPixels: 1500,
		StencilThreshold:   50,

		PlacementJitter: 25,
		RotationJitter:  10,

		Brightness: Perturbation{Probability: 0.3, Range: Range{Min: 0.9, Max: 1.1}},
		Contrast:   Perturbation{Probability: 0.3, Range: Range{Min: 0.9, Max: 1.1}},
		Color:      Perturbation{Probability: 0.3, Range: Range{Min: 0.95, Max: 1.05}},
		Resize:     Perturbation{Probability: 0.3, Range: Range{Min: 0.85, Max: 1.1}},

		Filter:     Perturbation{Probability: 0.3},
		BlurShare:  0.7,
		BlurRadius: Range{Min: 0, Max: 0.3},
		Sharpness:  Range{Min: 0, Max: 0.3},
	}
}

// WithCanvas returns a copy of params for a different tile and keep size.
func (p Params) WithCanvas(canvas, keep image.Point) Params {
	p.Canvas = canvas
	p.Keep = keep
	return p
}

// WithMinPlacementPixels returns a copy of params with a new minimum
// placement region size.
func (p Params) WithMinPlacementPixels(n int) Params {
	p.MinPlacementPixels = n
	return p
}

// WithJitter returns a copy of params with custom placement and rotation
// jitter.
func (p Params) WithJitter(placement, rotation int) Params {
	p.PlacementJitter = placement
	p.RotationJitter = rotation
	return p
}

// WithoutPerturbations returns a copy of params where no photometric or
// resize step ever fires. Rotation alignment still happens.
func (p Params) WithoutPerturbations() Params {
	p.Brightness.Probability = 0
	p.Contrast.Probability = 0
	p.Color.Probability = 0
	p.Resize.Probability = 0
	p.Filter.Probability = 0
	return p
}

// Validate checks that params describe a usable configuration.
func (p Params) Validate() error {
	if p.Canvas.X < 0 || p.Canvas.Y < 0 {
		return fmt.Errorf("canvas %v must not be negative", p.Canvas)
	}
	if p.Keep.X <= 0 || p.Keep.Y <= 0 {
		return fmt.Errorf("keep window %v must be positive", p.Keep)
	}
	if p.Canvas != (image.Point{}) && (p.Keep.X > p.Canvas.X || p.Keep.Y > p.Canvas.Y) {
		return fmt.Errorf("keep window %v larger than canvas %v", p.Keep, p.Canvas)
	}
	if p.MinPlacementPixels < 0 {
		return fmt.Errorf("min placement pixels %d must not be negative", p.MinPlacementPixels)
	}
	if p.PlacementJitter < 0 || p.RotationJitter < 0 {
		return fmt.Errorf("jitter must not be negative")
	}
	for name, pert := range map[string]Perturbation{
		"brightness": p.Brightness,
		"contrast":   p.Contrast,
		"color":      p.Color,
		"resize":     p.Resize,
		"filter":     p.Filter,
	} {
		if pert.Probability < 0 || pert.Probability > 1 {
			return fmt.Errorf("%s probability %.3f outside [0, 1]", name, pert.Probability)
		}
		if pert.Range.Max < pert.Range.Min {
			return fmt.Errorf("%s range [%.3f, %.3f] is inverted", name, pert.Range.Min, pert.Range.Max)
		}
	}
	if p.BlurShare < 0 || p.BlurShare > 1 {
		return fmt.Errorf("blur share %.3f outside [0, 1]", p.BlurShare)
	}
	if p.BlurRadius.Max < p.BlurRadius.Min || p.Sharpness.Max < p.Sharpness.Min {
		return fmt.Errorf("filter ranges are inverted")
	}
	if p.Resize.Probability > 0 && p.Resize.Range.Min <= 0 {
		return fmt.Errorf("resize factor must be positive")
	}
	return nil
}
