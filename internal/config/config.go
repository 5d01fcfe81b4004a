// Package config loads generator settings from a TOML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"solar-snippet/internal/composite"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DataRootEnv names the environment variable used as base directory for
// relative paths when the file does not set data_root.
const DataRootEnv = "SNIPPET_DATA_ROOT"

// Dirs is an image directory and its mask directory.
type Dirs struct {
	Images string
	Masks  string
}

// Output describes where accepted pairs and run artifacts go.
type Output struct {
	Root     string
	ImageDir string // Relative to Root
	MaskDir  string // Relative to Root
	Manifest string // SQLite file; empty disables the manifest
	Report   string // Histogram PNG; empty disables the report
}

// Config is the full generator configuration.
type Config struct {
	DataRoot string

	Source       Dirs
	SourceFilter []string
	Target       Dirs
	Output       Output

	Seed   uint64
	Count  int     // Explicit number of outputs; 0 derives it from Factor
	Factor float64 // Outputs per source pair

	MinForeground   int
	MaxForeground   int
	CheckDimensions bool
	LogLevel        string

	Composite composite.Params
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: Dirs{Images: "source/images", Masks: "source/masks"},
		Target: Dirs{Images: "target/images", Masks: "target/masks"},
		Output: Output{
			Root:     "snippet",
			ImageDir: "images_positive",
			MaskDir:  "masks_positive",
		},
		Seed:            42,
		Factor:          5,
		MinForeground:   200,
		MaxForeground:   10000,
		CheckDimensions: true,
		LogLevel:        "info",
		Composite:       composite.DefaultParams(),
	}
}

// LoadEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads path over the defaults, resolves relative paths and
// validates the result. An empty path uses the defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := overlay(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if cfg.DataRoot == "" {
		cfg.DataRoot = strings.TrimSpace(os.Getenv(DataRootEnv))
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve joins relative directories with DataRoot.
func (c *Config) Resolve() {
	if c.DataRoot == "" {
		return
	}
	for _, p := range []*string{
		&c.Source.Images, &c.Source.Masks,
		&c.Target.Images, &c.Target.Masks,
		&c.Output.Root, &c.Output.Manifest, &c.Output.Report,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.DataRoot, *p)
		}
	}
}

// ImageDir returns the output image directory.
func (c Config) ImageDir() string { return filepath.Join(c.Output.Root, c.Output.ImageDir) }

// MaskDir returns the output mask directory.
func (c Config) MaskDir() string { return filepath.Join(c.Output.Root, c.Output.MaskDir) }

// Requested returns how many pairs to generate for a source pool of
// sourcePairs: Count when set, otherwise Factor times the pool size
// rounded up.
func (c Config) Requested(sourcePairs int) int {
	if c.Count > 0 {
		return c.Count
	}
	return int(math.Ceil(float64(sourcePairs) * c.Factor))
}

// OverrideCount replaces Count with an explicit number of attempts, which
// also takes precedence over Factor. Zero is rejected because it would
// silently fall back to the factor.
func (c *Config) OverrideCount(n int) error {
	if n < 1 {
		return fmt.Errorf("count override %d must be positive", n)
	}
	c.Count = n
	return nil
}

// Validate checks the configuration for values the generator cannot use.
func (c Config) Validate() error {
	if c.Source.Images == "" || c.Source.Masks == "" {
		return fmt.Errorf("source image and mask directories are required")
	}
	if c.Target.Images == "" || c.Target.Masks == "" {
		return fmt.Errorf("target image and mask directories are required")
	}
	if c.Output.Root == "" || c.Output.ImageDir == "" || c.Output.MaskDir == "" {
		return fmt.Errorf("output directories are required")
	}
	if c.Output.ImageDir == c.Output.MaskDir {
		return fmt.Errorf("output image and mask directories must differ")
	}
	if c.Count < 0 {
		return fmt.Errorf("count %d must not be negative", c.Count)
	}
	if c.Count == 0 && c.Factor <= 0 {
		return fmt.Errorf("either count or a positive factor is required")
	}
	if c.MinForeground < 0 || c.MaxForeground < c.MinForeground {
		return fmt.Errorf("foreground window [%d, %d] is invalid", c.MinForeground, c.MaxForeground)
	}
	if err := c.Composite.Validate(); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	return nil
}

type dirsFile struct {
	Images string   `toml:"images"`
	Masks  string   `toml:"masks"`
	Filter []string `toml:"filter"`
}

type outputFile struct {
	Root     string `toml:"root"`
	Images   string `toml:"images"`
	Masks    string `toml:"masks"`
	Manifest string `toml:"manifest"`
	Report   string `toml:"report"`
}

type perturbationFile struct {
	Probability float64 `toml:"probability"`
	Min         float64 `toml:"min"`
	Max         float64 `toml:"max"`
}

type compositeFile struct {
	Canvas             []int            `toml:"canvas"`
	Keep               []int            `toml:"keep"`
	MinPlacementPixels int              `toml:"min_placement_pixels"`
	StencilThreshold   int              `toml:"stencil_threshold"`
	PlacementJitter    int              `toml:"placement_jitter"`
	RotationJitter     int              `toml:"rotation_jitter"`
	Brightness         perturbationFile `toml:"brightness"`
	Contrast           perturbationFile `toml:"contrast"`
	Color              perturbationFile `toml:"color"`
	Resize             perturbationFile `toml:"resize"`
	Filter             perturbationFile `toml:"filter"`
	BlurShare          float64          `toml:"blur_share"`
	BlurRadius         perturbationFile `toml:"blur_radius"`
	Sharpness          perturbationFile `toml:"sharpness"`
}

type fileConfig struct {
	DataRoot        string        `toml:"data_root"`
	Seed            int64         `toml:"seed"`
	Count           int           `toml:"count"`
	Factor          float64       `toml:"factor"`
	MinForeground   int           `toml:"min_foreground"`
	MaxForeground   int           `toml:"max_foreground"`
	CheckDimensions bool          `toml:"check_dimensions"`
	LogLevel        string        `toml:"log_level"`
	Source          dirsFile      `toml:"source"`
	Target          dirsFile      `toml:"target"`
	Output          outputFile    `toml:"output"`
	Composite       compositeFile `toml:"composite"`
}

func overlay(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	setString(meta, &cfg.DataRoot, raw.DataRoot, "data_root")
	if meta.IsDefined("seed") {
		cfg.Seed = uint64(raw.Seed)
	}
	if meta.IsDefined("count") {
		cfg.Count = raw.Count
	}
	if meta.IsDefined("factor") {
		cfg.Factor = raw.Factor
	}
	if meta.IsDefined("min_foreground") {
		cfg.MinForeground = raw.MinForeground
	}
	if meta.IsDefined("max_foreground") {
		cfg.MaxForeground = raw.MaxForeground
	}
	if meta.IsDefined("check_dimensions") {
		cfg.CheckDimensions = raw.CheckDimensions
	}
	setString(meta, &cfg.LogLevel, raw.LogLevel, "log_level")

	setString(meta, &cfg.Source.Images, raw.Source.Images, "source", "images")
	setString(meta, &cfg.Source.Masks, raw.Source.Masks, "source", "masks")
	if meta.IsDefined("source", "filter") {
		cfg.SourceFilter = normalize(raw.Source.Filter)
	}
	setString(meta, &cfg.Target.Images, raw.Target.Images, "target", "images")
	setString(meta, &cfg.Target.Masks, raw.Target.Masks, "target", "masks")

	setString(meta, &cfg.Output.Root, raw.Output.Root, "output", "root")
	setString(meta, &cfg.Output.ImageDir, raw.Output.Images, "output", "images")
	setString(meta, &cfg.Output.MaskDir, raw.Output.Masks, "output", "masks")
	setString(meta, &cfg.Output.Manifest, raw.Output.Manifest, "output", "manifest")
	setString(meta, &cfg.Output.Report, raw.Output.Report, "output", "report")

	return overlayComposite(&cfg.Composite, meta, raw.Composite)
}

func overlayComposite(p *composite.Params, meta toml.MetaData, raw compositeFile) error {
	if meta.IsDefined("composite", "canvas") {
		pt, err := point(raw.Canvas, "canvas")
		if err != nil {
			return err
		}
		p.Canvas = pt
	}
	if meta.IsDefined("composite", "keep") {
		pt, err := point(raw.Keep, "keep")
		if err != nil {
			return err
		}
		p.Keep = pt
	}
	if meta.IsDefined("composite", "min_placement_pixels") {
		*p = p.WithMinPlacementPixels(raw.MinPlacementPixels)
	}
	if meta.IsDefined("composite", "stencil_threshold") {
		if raw.StencilThreshold < 0 || raw.StencilThreshold > 255 {
			return fmt.Errorf("stencil_threshold %d outside [0, 255]", raw.StencilThreshold)
		}
		p.StencilThreshold = uint8(raw.StencilThreshold)
	}
	if meta.IsDefined("composite", "placement_jitter") {
		p.PlacementJitter = raw.PlacementJitter
	}
	if meta.IsDefined("composite", "rotation_jitter") {
		p.RotationJitter = raw.RotationJitter
	}
	if meta.IsDefined("composite", "blur_share") {
		p.BlurShare = raw.BlurShare
	}

	perturbations := []struct {
		key string
		dst *composite.Perturbation
		src perturbationFile
	}{
		{"brightness", &p.Brightness, raw.Brightness},
		{"contrast", &p.Contrast, raw.Contrast},
		{"color", &p.Color, raw.Color},
		{"resize", &p.Resize, raw.Resize},
		{"filter", &p.Filter, raw.Filter},
	}
	for _, pt := range perturbations {
		if meta.IsDefined("composite", pt.key, "probability") {
			pt.dst.Probability = pt.src.Probability
		}
		overlayRange(&pt.dst.Range, meta, pt.src, pt.key)
	}
	overlayRange(&p.BlurRadius, meta, raw.BlurRadius, "blur_radius")
	overlayRange(&p.Sharpness, meta, raw.Sharpness, "sharpness")
	return nil
}

func overlayRange(dst *composite.Range, meta toml.MetaData, src perturbationFile, key string) {
	if meta.IsDefined("composite", key, "min") {
		dst.Min = src.Min
	}
	if meta.IsDefined("composite", key, "max") {
		dst.Max = src.Max
	}
}

func setString(meta toml.MetaData, dst *string, v string, key ...string) {
	if meta.IsDefined(key...) {
		*dst = strings.TrimSpace(v)
	}
}

func point(v []int, name string) (image.Point, error) {
	if len(v) != 2 {
		return image.Point{}, fmt.Errorf("%s must be [width, height]", name)
	}
	return image.Pt(v[0], v[1]), nil
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
