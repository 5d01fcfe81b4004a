// Command compositetest runs one composite on explicit files and prints
// what the compositor decided.
package main

import (
	"flag"
	"fmt"
	"os"

	"solar-snippet/internal/composite"
	"solar-snippet/internal/dataset"
	imgutil "solar-snippet/internal/image"
	"solar-snippet/internal/logging"
	"solar-snippet/internal/rng"
)

func main() {
	srcImage := flag.String("src-image", "", "Source image containing the object")
	srcMask := flag.String("src-mask", "", "Source mask")
	dstImage := flag.String("dst-image", "", "Target scene image")
	dstMask := flag.String("dst-mask", "", "Target scene mask")
	outImage := flag.String("out-image", "composite.png", "Where to write the composited image")
	outMask := flag.String("out-mask", "composite_mask.png", "Where to write the composited mask")
	seed := flag.Uint64("seed", 42, "Random seed")
	plain := flag.Bool("plain", false, "Disable photometric and resize perturbations")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *srcImage == "" || *srcMask == "" || *dstImage == "" || *dstMask == "" {
		fmt.Println("Usage: compositetest -src-image <path> -src-mask <path> -dst-image <path> -dst-mask <path> [-seed 42] [-plain]")
		os.Exit(1)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.Init("compositetest", level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	src, err := dataset.Load(dataset.Pair{Stem: "source", Image: *srcImage, Mask: *srcMask})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load source: %v\n", err)
		os.Exit(1)
	}
	dst, err := dataset.Load(dataset.Pair{Stem: "target", Image: *dstImage, Mask: *dstMask})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load target: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Source: %dx%d, %d foreground pixels\n", src.Image.Bounds().Dx(), src.Image.Bounds().Dy(), src.Mask.Count())
	fmt.Printf("Target: %dx%d, %d foreground pixels\n", dst.Image.Bounds().Dx(), dst.Image.Bounds().Dy(), dst.Mask.Count())

	params := composite.DefaultParams().WithCanvas(dst.Image.Bounds().Size(), composite.DefaultParams().Keep)
	if *plain {
		params = params.WithoutPerturbations()
	}
	if err := params.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %v\n", err)
		os.Exit(1)
	}

	comp := composite.New(params, rng.New(*seed), logger)
	res, err := comp.Composite(src.Image, src.Mask, dst.Image, dst.Mask)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Composite failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nPlacement region: %v (fallback: %s)\n", res.Region.Bounds(), res.Region.Fallback)
	if !res.Region.Component.Synthetic {
		fmt.Printf("  component %d, %d pixels\n", res.Region.Component.Label, res.Region.Component.Size)
	}
	fmt.Printf("Anchor: %v\n", res.Anchor)
	fmt.Printf("Angles: target %.3f rad, patch %.3f rad, rotation %.1f deg\n", res.TargetAngle, res.PatchAngle, res.Rotation)
	if res.EmptyPatch {
		fmt.Println("Source has no foreground, nothing pasted")
	}
	for _, a := range res.Applied {
		fmt.Printf("  applied %-10s %.3f\n", a.Step, a.Value)
	}
	for _, s := range res.Skipped {
		fmt.Printf("  skipped %-10s %.3f: %s\n", s.Step, s.Value, s.Reason)
	}
	fmt.Printf("Foreground: %d pixels\n", res.Foreground)

	if err := imgutil.SavePNG(*outImage, res.Image); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save image: %v\n", err)
		os.Exit(1)
	}
	if err := imgutil.SavePNG(*outMask, res.Mask.ToGray()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save mask: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %s and %s\n", *outImage, *outMask)
}
