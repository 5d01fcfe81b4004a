package composite

import (
	"errors"
	"image"

	"solar-snippet/internal/augment"
	"solar-snippet/internal/rng"
)

// perturb applies the randomly gated steps in a fixed order. Each gate is
// drawn before its factor. Coverage follows the image through geometric
// steps only.
func (c *Compositor) perturb(obj *image.RGBA, coverage *image.Gray, res *Result) (*image.RGBA, *image.Gray, error) {
	var err error

	enhancements := []struct {
		step Step
		pert Perturbation
		fn   func(*image.RGBA, float64) (*image.RGBA, error)
	}{
		{StepBrightness, c.params.Brightness, augment.Brightness},
		{StepContrast, c.params.Contrast, augment.Contrast},
		{StepColor, c.params.Color, augment.Color},
	}
	for _, e := range enhancements {
		if !rng.Chance(c.rng, e.pert.Probability) {
			continue
		}
		f := rng.Uniform(c.rng, e.pert.Range.Min, e.pert.Range.Max)
		if obj, err = e.fn(obj, f); err != nil {
			return nil, nil, err
		}
		res.Applied = append(res.Applied, Applied{Step: e.step, Value: f})
	}

	if rng.Chance(c.rng, c.params.Resize.Probability) {
		f := rng.Uniform(c.rng, c.params.Resize.Range.Min, c.params.Resize.Range.Max)
		obj, coverage, err = resizeBoth(obj, coverage, f)
		switch {
		case errors.Is(err, augment.ErrDegenerateSize):
			c.log.Debug().Err(err).Msg("Skipping resize")
			res.Skipped = append(res.Skipped, Skipped{Step: StepResize, Value: f, Reason: err.Error()})
		case err != nil:
			return nil, nil, err
		default:
			res.Applied = append(res.Applied, Applied{Step: StepResize, Value: f})
		}
	}

	if rng.Chance(c.rng, c.params.Filter.Probability) {
		if rng.Chance(c.rng, c.params.BlurShare) {
			r := rng.Uniform(c.rng, c.params.BlurRadius.Min, c.params.BlurRadius.Max)
			if obj, err = augment.GaussianBlur(obj, r); err != nil {
				return nil, nil, err
			}
			res.Applied = append(res.Applied, Applied{Step: StepBlur, Value: r})
		} else {
			f := rng.Uniform(c.rng, c.params.Sharpness.Min, c.params.Sharpness.Max)
			if obj, err = augment.Sharpness(obj, f); err != nil {
				return nil, nil, err
			}
			res.Applied = append(res.Applied, Applied{Step: StepSharpness, Value: f})
		}
	}

	return obj, coverage, nil
}

// resizeBoth scales image and coverage together. On failure the inputs are
// returned unchanged along with the error.
func resizeBoth(obj *image.RGBA, coverage *image.Gray, f float64) (*image.RGBA, *image.Gray, error) {
	scaled, err := augment.Resize(obj, f)
	if err != nil {
		return obj, coverage, err
	}
	scaledCov, err := augment.ResizeGray(coverage, f)
	if err != nil {
		return obj, coverage, err
	}
	return scaled, scaledCov, nil
}
