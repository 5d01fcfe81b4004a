// Package main provides the entry point for the solar-snippet generator.
// It pastes solar panels cut from labeled source tiles onto rooftops of
// labeled target tiles and writes the accepted pairs as new training data.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"solar-snippet/internal/batch"
	"solar-snippet/internal/composite"
	"solar-snippet/internal/config"
	"solar-snippet/internal/dataset"
	"solar-snippet/internal/logging"
	"solar-snippet/internal/manifest"
	"solar-snippet/internal/pool"
	"solar-snippet/internal/report"
	"solar-snippet/internal/rng"
	"solar-snippet/internal/version"

	"github.com/rs/zerolog"
)

const appName = "solar-snippet"

func main() {
	configPath := flag.String("config", "", "Path to TOML configuration")
	envPath := flag.String("env", ".env", "Path to optional env file")
	seed := flag.Int64("seed", -1, "Random seed (overrides config)")
	count := flag.Int("count", -1, "Number of attempts, at least 1 (overrides config count and factor)")
	out := flag.String("out", "", "Output root (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", appName, version.String())
		return
	}

	if err := config.LoadEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed >= 0 {
		cfg.Seed = uint64(*seed)
	}
	if *count >= 0 {
		if err := cfg.OverrideCount(*count); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -count: %v\n", err)
			os.Exit(1)
		}
	}
	if *out != "" {
		cfg.Output.Root = *out
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(appName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Info().Str("version", version.Version).Uint64("seed", cfg.Seed).Msg("Starting")

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Generation failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	sources, err := loadPairs(cfg.Source, cfg.SourceFilter, cfg.CheckDimensions, logger.With().Str("pool", "source").Logger())
	if err != nil {
		return err
	}
	targets, err := loadPairs(cfg.Target, nil, cfg.CheckDimensions, logger.With().Str("pool", "target").Logger())
	if err != nil {
		return err
	}

	requested := cfg.Requested(len(sources))
	logger.Info().
		Int("sources", len(sources)).
		Int("targets", len(targets)).
		Int("requested", requested).
		Msg("Pools ready")

	src := rng.New(cfg.Seed)
	sourcePool, err := pool.New(sources, src)
	if err != nil {
		return fmt.Errorf("source pool: %w", err)
	}
	targetPool, err := pool.New(targets, src)
	if err != nil {
		return fmt.Errorf("target pool: %w", err)
	}

	comp := composite.New(cfg.Composite, src, logger.With().Str("component", "composite").Logger())
	orch := batch.New(comp, sourcePool, targetPool, batch.Options{
		ImageDir:      cfg.ImageDir(),
		MaskDir:       cfg.MaskDir(),
		MinForeground: cfg.MinForeground,
		MaxForeground: cfg.MaxForeground,
	}, logger.With().Str("component", "batch").Logger())

	var store *manifest.Store
	var runRow manifest.Run
	if cfg.Output.Manifest != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.Manifest), 0o755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
		store, err = manifest.Open(cfg.Output.Manifest, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		runRow, err = store.StartRun(cfg.Seed, requested)
		if err != nil {
			return err
		}
		orch.WithRecorder(store, runRow.ID)
		logger.Info().Str("run", runRow.ID).Str("manifest", cfg.Output.Manifest).Msg("Recording manifest")
	}

	rep, genErr := orch.Generate(requested)

	if store != nil {
		if err := store.FinishRun(runRow.ID, rep.Attempted, rep.Accepted, rep.Elapsed); err != nil {
			logger.Warn().Err(err).Msg("Failed to finish manifest run")
		}
	}
	if genErr != nil {
		return genErr
	}

	logger.Info().
		Int("accepted", rep.Accepted).
		Int("attempted", rep.Attempted).
		Int("too_small", rep.Rejected[batch.RejectTooSmall]).
		Int("too_large", rep.Rejected[batch.RejectTooLarge]).
		Int("empty_targets", rep.EmptyTargets).
		Int("load_failures", rep.LoadFailures).
		Int("composite_failures", rep.CompositeFailures).
		Str("foreground", report.Summarize(rep.Foregrounds).String()).
		Str("elapsed", rep.ElapsedString()).
		Msg("Generation finished")

	if cfg.Output.Report != "" && len(rep.Foregrounds) > 0 {
		if err := report.Histogram(cfg.Output.Report, rep.Foregrounds, 20,
			float64(cfg.MinForeground), float64(cfg.MaxForeground)); err != nil {
			logger.Warn().Err(err).Msg("Failed to render report")
		} else {
			logger.Info().Str("path", cfg.Output.Report).Msg("Wrote report")
		}
	}
	return nil
}

// loadPairs lists, filters and checks one image/mask directory pair.
func loadPairs(dirs config.Dirs, filter []string, checkDims bool, logger zerolog.Logger) ([]dataset.Pair, error) {
	listing, err := dataset.ListPairs(dirs.Images, dirs.Masks)
	if err != nil {
		return nil, err
	}
	for _, f := range listing.UnmatchedImages {
		logger.Warn().Str("file", f).Msg("Image without mask, skipping")
	}
	for _, f := range listing.UnmatchedMasks {
		logger.Warn().Str("file", f).Msg("Mask without image, skipping")
	}

	pairs := dataset.Filter(listing.Pairs, filter)
	if len(filter) > 0 {
		logger.Info().Strs("filter", filter).Int("kept", len(pairs)).Int("total", len(listing.Pairs)).Msg("Filtered pairs")
	}

	if checkDims {
		var bad []dataset.Mismatch
		pairs, bad = dataset.CheckDimensions(pairs)
		for _, m := range bad {
			ev := logger.Warn().Str("stem", m.Pair.Stem)
			if m.Err != nil {
				ev = ev.Err(m.Err)
			} else {
				ev = ev.Str("image", fmt.Sprintf("%dx%d", m.ImageSize.X, m.ImageSize.Y)).
					Str("mask", fmt.Sprintf("%dx%d", m.MaskSize.X, m.MaskSize.Y))
			}
			ev.Msg("Dropping pair with mismatched dimensions")
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no usable pairs in %s and %s", dirs.Images, dirs.Masks)
	}
	return pairs, nil
}
