// Package dataset finds image/mask pairs on disk and loads them.
package dataset

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	imgutil "solar-snippet/internal/image"
	"solar-snippet/internal/mask"
)

// Pair is an image file and the mask file sharing its stem.
type Pair struct {
	Stem  string
	Image string
	Mask  string
}

// Listing is the result of pairing an image directory with a mask
// directory.
type Listing struct {
	Pairs           []Pair
	UnmatchedImages []string
	UnmatchedMasks  []string
}

// ListPairs matches files of imageDir and maskDir by file name without
// extension. Files without a partner are reported and left out. Pairs are
// sorted by stem.
func ListPairs(imageDir, maskDir string) (Listing, error) {
	images, dupImages, err := listByStem(imageDir)
	if err != nil {
		return Listing{}, err
	}
	masks, dupMasks, err := listByStem(maskDir)
	if err != nil {
		return Listing{}, err
	}

	out := Listing{UnmatchedImages: dupImages, UnmatchedMasks: dupMasks}
	for stem, img := range images {
		m, ok := masks[stem]
		if !ok {
			out.UnmatchedImages = append(out.UnmatchedImages, img)
			continue
		}
		out.Pairs = append(out.Pairs, Pair{Stem: stem, Image: img, Mask: m})
	}
	for stem, m := range masks {
		if _, ok := images[stem]; !ok {
			out.UnmatchedMasks = append(out.UnmatchedMasks, m)
		}
	}

	sort.Slice(out.Pairs, func(i, j int) bool { return out.Pairs[i].Stem < out.Pairs[j].Stem })
	sort.Strings(out.UnmatchedImages)
	sort.Strings(out.UnmatchedMasks)
	return out, nil
}

// listByStem maps stems to paths for every supported image in dir. A second
// file with an already seen stem is returned as a duplicate.
func listByStem(dir string) (map[string]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	byStem := make(map[string]string)
	var dups []string
	for _, e := range entries {
		if e.IsDir() || !imgutil.IsSupportedFormat(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, ok := byStem[stem]; ok {
			dups = append(dups, path)
			continue
		}
		byStem[stem] = path
	}
	return byStem, dups, nil
}

// Filter keeps pairs whose image or mask path contains any of substrings.
// No substrings keeps everything.
func Filter(pairs []Pair, substrings []string) []Pair {
	if len(substrings) == 0 {
		return pairs
	}
	var out []Pair
	for _, p := range pairs {
		for _, s := range substrings {
			if strings.Contains(p.Image, s) || strings.Contains(p.Mask, s) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Mismatch is a pair dropped by CheckDimensions.
type Mismatch struct {
	Pair      Pair
	ImageSize image.Point
	MaskSize  image.Point
	Err       error
}

// CheckDimensions reads only the file headers and drops pairs whose image
// and mask sizes differ or whose headers cannot be read.
func CheckDimensions(pairs []Pair) ([]Pair, []Mismatch) {
	var ok []Pair
	var bad []Mismatch
	for _, p := range pairs {
		is, err := imgutil.DecodeSize(p.Image)
		if err != nil {
			bad = append(bad, Mismatch{Pair: p, Err: err})
			continue
		}
		ms, err := imgutil.DecodeSize(p.Mask)
		if err != nil {
			bad = append(bad, Mismatch{Pair: p, ImageSize: is, Err: err})
			continue
		}
		if is != ms {
			bad = append(bad, Mismatch{Pair: p, ImageSize: is, MaskSize: ms})
			continue
		}
		ok = append(ok, p)
	}
	return ok, bad
}

// Sample is a decoded pair.
type Sample struct {
	Pair  Pair
	Image *image.RGBA
	Mask  *mask.Mask
}

// Load decodes the image as RGBA and the mask as luma with every non-zero
// pixel marked as foreground.
func Load(p Pair) (Sample, error) {
	img, err := imgutil.LoadRGBA(p.Image)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to load image of %s: %w", p.Stem, err)
	}
	m, err := imgutil.LoadMask(p.Mask)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to load mask of %s: %w", p.Stem, err)
	}
	return Sample{Pair: p, Image: img, Mask: m}, nil
}
