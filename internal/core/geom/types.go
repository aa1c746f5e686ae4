// Package geom holds the small 2D value types shared by the particle engine
// and the render hosts. All coordinates are canvas-space: x grows to the
// right, y grows downward.
package geom

import "math"

// Point represents a 2D point in canvas space
type Point struct {
	X, Y float64
}

// Vector represents a 2D displacement or rate (units per second)
type Vector struct {
	DX, DY float64
}

// Size represents the extent of a drawing surface
type Size struct {
	Width, Height float64
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Scale returns v multiplied by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{DX: v.DX * s, DY: v.DY * s}
}

// Len returns the magnitude of v.
func (v Vector) Len() float64 {
	return math.Hypot(v.DX, v.DY)
}

// Center returns the midpoint of the surface.
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// BottomCenter returns the middle of the bottom edge, the default launch point.
func (s Size) BottomCenter() Point {
	return Point{X: s.Width / 2, Y: s.Height}
}

// SizeFromInts converts integer screen dimensions.
func SizeFromInts(width, height int) Size {
	return Size{Width: float64(width), Height: float64(height)}
}
