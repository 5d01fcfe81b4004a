// Package colorutil provides shared color utilities for the snippet generator.
package colorutil

import (
	"image/color"
)

// Black is the opaque fill used when padding and clearing canvases.
var Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// Luma converts 8-bit RGB to a single gray level using the ITU-R 601-2
// weights (L = R*299/1000 + G*587/1000 + B*114/1000).
func Luma(r, g, b uint8) uint8 {
	// Fixed point with rounding, matches the usual "L" conversion.
	v := (uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 1<<15) >> 16
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// LumaOf converts any color to its 8-bit gray level. Alpha is ignored, so a
// non-premultiplied pixel keeps its color channels even when fully
// transparent.
func LumaOf(c color.Color) uint8 {
	switch v := c.(type) {
	case color.Gray:
		return v.Y
	case color.RGBA:
		return Luma(v.R, v.G, v.B)
	case color.NRGBA:
		return Luma(v.R, v.G, v.B)
	case color.NRGBA64:
		return Luma(uint8(v.R>>8), uint8(v.G>>8), uint8(v.B>>8))
	}
	r, g, b, _ := c.RGBA()
	return Luma(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
