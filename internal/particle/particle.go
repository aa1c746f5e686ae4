// Package particle implements the confetti lifecycle engine: burst emission,
// per-tick kinematics and age-based expiration for a live set of particles.
package particle

import (
	"time"

	"chosenoffset.com/confetti/internal/core/geom"
)

// ID identifies a particle within its System. IDs are never reused.
type ID uint64

// Color is an opaque palette tag; the renderer decides the actual RGBA.
type Color uint8

// Palette entries
const (
	ColorRed Color = iota
	ColorBlue
	ColorGreen
	ColorYellow
	ColorPink
	ColorPurple
	ColorOrange
	ColorCyan
)

var colorNames = [...]string{"red", "blue", "green", "yellow", "pink", "purple", "orange", "cyan"}

// Colors returns the full palette in declaration order.
func Colors() []Color {
	return []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPink, ColorPurple, ColorOrange, ColorCyan}
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// Shape is the primitive a particle is drawn with.
type Shape uint8

const (
	ShapeRectangle Shape = iota
	ShapeCircle
)

// Shapes returns every drawable shape.
func Shapes() []Shape {
	return []Shape{ShapeRectangle, ShapeCircle}
}

func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Particle is one confetti piece. Identity is carried by ID alone; every
// other field is state that changes from tick to tick.
type Particle struct {
	ID       ID
	Position geom.Point
	Velocity geom.Vector // units per second
	// Acceleration is always zero; gravity is applied straight to Velocity.
	Acceleration    geom.Vector
	CreatedAt       time.Time
	Lifespan        time.Duration
	Color           Color
	Shape           Shape
	Rotation        float64 // radians
	AngularVelocity float64 // radians per second
}

// Equal reports whether p and other are the same particle, regardless of
// how far either snapshot has been advanced.
func (p Particle) Equal(other Particle) bool {
	return p.ID == other.ID
}

// Age returns how long the particle has existed at now.
func (p Particle) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// Expired reports whether the particle has outlived its lifespan at now.
func (p Particle) Expired(now time.Time) bool {
	return p.Age(now) > p.Lifespan
}

// step advances kinematic state by dt seconds: gravity, then damping, then
// rotation, then position.
func (p *Particle) step(dt, gravity, damping float64) {
	p.Velocity.DY += gravity * dt

	p.Velocity.DX *= damping
	p.Velocity.DY *= damping

	p.Rotation += p.AngularVelocity * dt

	p.Position = p.Position.Add(p.Velocity.Scale(dt))
}
