// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation returns a rotation transform around the origin.
func Rotation(radians float64) AffineTransform {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// ToMatrix returns the transform as a [2][3]float64 array.
func (t AffineTransform) ToMatrix() [2][3]float64 {
	return [2][3]float64{
		{t.A, t.B, t.TX},
		{t.C, t.D, t.TY},
	}
}

// RotationAbout returns a rotation by degrees around center in image
// coordinates (y down). Positive angles turn the image counter-clockwise
// on screen.
func RotationAbout(center Point2D, degrees float64) AffineTransform {
	rad := degrees * math.Pi / 180
	return Translation(center.X, center.Y).
		Compose(Rotation(-rad)).
		Compose(Translation(-center.X, -center.Y))
}

// ExpandedRotation returns the transform that rotates a width x height
// canvas by degrees about its center and shifts the result so that nothing
// is clipped, together with the size of the enlarged canvas.
func ExpandedRotation(width, height int, degrees float64) (AffineTransform, image.Point) {
	w, h := float64(width), float64(height)
	rot := RotationAbout(Point2D{X: w / 2, Y: h / 2}, degrees)

	corners := []Point2D{
		rot.Apply(Point2D{X: 0, Y: 0}),
		rot.Apply(Point2D{X: w, Y: 0}),
		rot.Apply(Point2D{X: 0, Y: h}),
		rot.Apply(Point2D{X: w, Y: h}),
	}
	bb := BoundingBox(corners)

	// Snap near-integers so 90 degree turns keep exact sizes.
	nw := int(math.Ceil(bb.Width - 1e-6))
	nh := int(math.Ceil(bb.Height - 1e-6))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	shift := Translation(
		float64(nw)/2-(bb.X+bb.Width/2),
		float64(nh)/2-(bb.Y+bb.Height/2),
	)
	return shift.Compose(rot), image.Pt(nw, nh)
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
