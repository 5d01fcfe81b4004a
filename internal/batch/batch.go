// Package batch drives the compositor over two sample pools and writes the
// accepted pairs to disk.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solar-snippet/internal/composite"
	"solar-snippet/internal/dataset"
	imgutil "solar-snippet/internal/image"
	"solar-snippet/internal/manifest"
	"solar-snippet/internal/pool"
	"solar-snippet/internal/report"

	"github.com/rs/zerolog"
)

// Recorder receives every accepted sample.
type Recorder interface {
	RecordSample(manifest.Sample) error
}

// Options controls acceptance and output locations.
type Options struct {
	ImageDir      string
	MaskDir       string
	MinForeground int // Inclusive
	MaxForeground int // Inclusive
}

// Rejection names why a composite was not written.
type Rejection string

const (
	RejectTooSmall Rejection = "too_small"
	RejectTooLarge Rejection = "too_large"
)

// Report summarizes a Generate call.
type Report struct {
	Requested         int
	Attempted         int
	Accepted          int
	Rejected          map[Rejection]int
	EmptyTargets      int
	LoadFailures      int
	CompositeFailures int
	SourceRefills     int
	TargetRefills     int
	Foregrounds       []float64 // Foreground pixel count per accepted sample
	Elapsed           time.Duration
}

// ElapsedString returns the elapsed time as HH:MM:SS.
func (r Report) ElapsedString() string {
	return report.FormatElapsed(r.Elapsed)
}

// Orchestrator runs the generation loop. It is single-threaded.
type Orchestrator struct {
	comp     *composite.Compositor
	sources  *pool.Pool[dataset.Pair]
	targets  *pool.Pool[dataset.Pair]
	opts     Options
	load     func(dataset.Pair) (dataset.Sample, error)
	recorder Recorder
	runID    string
	log      zerolog.Logger
}

// New creates an orchestrator. Pools refill themselves when they run dry.
func New(comp *composite.Compositor, sources, targets *pool.Pool[dataset.Pair], opts Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		comp:    comp,
		sources: sources,
		targets: targets,
		opts:    opts,
		load:    dataset.Load,
		log:     log,
	}
}

// WithRecorder makes the orchestrator report accepted samples of runID to r.
func (o *Orchestrator) WithRecorder(r Recorder, runID string) *Orchestrator {
	o.recorder = r
	o.runID = runID
	return o
}

// Generate makes count attempts and writes every accepted pair as <n>.png
// with n counting up from 1, so at most count pairs are written. Failures
// of single pairs are logged and skipped. Only setup and write errors stop
// the loop; the report is still returned with the progress made so far.
func (o *Orchestrator) Generate(count int) (Report, error) {
	start := time.Now()
	rep := Report{Requested: count, Rejected: map[Rejection]int{}}
	if o.sources == nil || o.targets == nil {
		return rep, pool.ErrEmpty
	}

	srcRefills, dstRefills := o.sources.Refills(), o.targets.Refills()
	finish := func(err error) (Report, error) {
		rep.SourceRefills = o.sources.Refills() - srcRefills
		rep.TargetRefills = o.targets.Refills() - dstRefills
		rep.Elapsed = time.Since(start)
		return rep, err
	}

	if count < 0 {
		return finish(fmt.Errorf("count %d must not be negative", count))
	}
	for _, dir := range []string{o.opts.ImageDir, o.opts.MaskDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return finish(fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	next := 1
	for i := 0; i < count; i++ {
		rep.Attempted++
		srcPair := o.sources.Draw()
		dstPair := o.targets.Draw()

		src, err := o.load(srcPair)
		if err != nil {
			rep.LoadFailures++
			o.log.Warn().Err(err).Str("source", srcPair.Stem).Msg("Skipping source that failed to load")
			continue
		}
		dst, err := o.load(dstPair)
		if err != nil {
			rep.LoadFailures++
			o.log.Warn().Err(err).Str("target", dstPair.Stem).Msg("Skipping target that failed to load")
			continue
		}

		res, err := o.comp.Composite(src.Image, src.Mask, dst.Image, dst.Mask)
		if errors.Is(err, composite.ErrEmptyTarget) {
			rep.EmptyTargets++
			o.log.Debug().Str("target", dstPair.Stem).Msg("Target mask is empty")
			continue
		}
		if err != nil {
			rep.CompositeFailures++
			o.log.Warn().Err(err).Str("source", srcPair.Stem).Str("target", dstPair.Stem).Msg("Composite failed")
			continue
		}

		if reason, ok := o.reject(res.Foreground); ok {
			rep.Rejected[reason]++
			o.log.Debug().Int("foreground", res.Foreground).Str("reason", string(reason)).Msg("Rejected composite")
			continue
		}

		name := fmt.Sprintf("%d.png", next)
		imagePath := filepath.Join(o.opts.ImageDir, name)
		maskPath := filepath.Join(o.opts.MaskDir, name)
		if err := imgutil.SavePNG(imagePath, res.Image); err != nil {
			return finish(err)
		}
		if err := imgutil.SavePNG(maskPath, res.Mask.ToGray()); err != nil {
			return finish(err)
		}

		if o.recorder != nil {
			err := o.recorder.RecordSample(manifest.Sample{
				RunID:         o.runID,
				Index:         next,
				SourceStem:    srcPair.Stem,
				TargetStem:    dstPair.Stem,
				Rotation:      res.Rotation,
				Foreground:    res.Foreground,
				Fallback:      res.Region.Fallback.String(),
				Perturbations: describe(res),
				ImagePath:     imagePath,
				MaskPath:      maskPath,
			})
			if err != nil {
				return finish(err)
			}
		}

		rep.Accepted++
		rep.Foregrounds = append(rep.Foregrounds, float64(res.Foreground))
		o.log.Debug().
			Int("n", next).
			Str("source", srcPair.Stem).
			Str("target", dstPair.Stem).
			Int("foreground", res.Foreground).
			Float64("rotation", res.Rotation).
			Msg("Wrote composite")
		next++
	}

	return finish(nil)
}

func (o *Orchestrator) reject(foreground int) (Rejection, bool) {
	switch {
	case foreground < o.opts.MinForeground:
		return RejectTooSmall, true
	case foreground > o.opts.MaxForeground:
		return RejectTooLarge, true
	}
	return "", false
}

// describe lists applied and skipped perturbations as step=value pairs.
func describe(res composite.Result) string {
	var parts []string
	for _, a := range res.Applied {
		parts = append(parts, fmt.Sprintf("%s=%.3f", a.Step, a.Value))
	}
	for _, s := range res.Skipped {
		parts = append(parts, fmt.Sprintf("%s=skipped", s.Step))
	}
	return strings.Join(parts, ",")
}
