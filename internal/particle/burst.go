package particle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"chosenoffset.com/confetti/internal/core/geom"
)

// ErrInvalidConfiguration is returned when physics or burst parameters
// cannot produce valid particles.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Range is validated as a closed interval and sampled half-open, [Min, Max).
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Validate checks that the range is finite and not inverted.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%w: range [%v, %v] is not finite", ErrInvalidConfiguration, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: range [%v, %v] is inverted", ErrInvalidConfiguration, r.Min, r.Max)
	}
	return nil
}

// contains reports whether v lies in [Min, Max].
func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// maxLifespanSeconds is the first lifespan that no longer fits a time.Duration.
var maxLifespanSeconds = float64(math.MaxInt64) / float64(time.Second)

// BurstConfig holds the distributions a burst samples from.
//
// Angles are radians in canvas space where y grows downward: an angle of
// -π/2 points straight up, and a particle launched at angle a with speed s
// starts with velocity (cos(a)*s, sin(a)*s).
type BurstConfig struct {
	// EmissionAngle is the spread of launch directions.
	EmissionAngle Range
	// Speed bounds the initial speed in units per second.
	Speed Range
	// Lifespan bounds particle duration in seconds.
	Lifespan Range
	// AngularVelocity bounds the spin rate in radians per second.
	AngularVelocity Range
}

// DefaultBurst returns an upward fan of 60 degrees with the stock speed,
// lifespan and spin distributions.
func DefaultBurst() BurstConfig {
	return BurstConfig{
		EmissionAngle:   Range{Min: Degrees(-120), Max: Degrees(-60)},
		Speed:           Range{Min: 150, Max: 400},
		Lifespan:        Range{Min: 3, Max: 6},
		AngularVelocity: Range{Min: -math.Pi, Max: math.Pi},
	}
}

// Validate rejects empty, inverted or non-physical ranges.
func (c BurstConfig) Validate() error {
	checks := []struct {
		name string
		r    Range
	}{
		{"emission angle", c.EmissionAngle},
		{"speed", c.Speed},
		{"lifespan", c.Lifespan},
		{"angular velocity", c.AngularVelocity},
	}
	for _, check := range checks {
		if err := check.r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	if c.Speed.Min < 0 {
		return fmt.Errorf("speed: %w: minimum %v is negative", ErrInvalidConfiguration, c.Speed.Min)
	}
	if c.Lifespan.Min <= 0 || secondsToDuration(c.Lifespan.Min) <= 0 {
		return fmt.Errorf("lifespan: %w: minimum %v must be at least 1ns", ErrInvalidConfiguration, c.Lifespan.Min)
	}
	if c.Lifespan.Max >= maxLifespanSeconds {
		return fmt.Errorf("lifespan: %w: maximum %v overflows a duration", ErrInvalidConfiguration, c.Lifespan.Max)
	}
	return nil
}

// Physics holds the tunable constants of the integrator.
type Physics struct {
	// Gravity is the downward acceleration in units per second squared.
	Gravity float64
	// Damping is the fraction of velocity kept each tick, in (0, 1].
	Damping float64
	// MaxStep caps the elapsed time applied by a single Update so a stalled
	// host does not launch particles across the canvas.
	MaxStep time.Duration
}

// DefaultPhysics returns the stock confetti tuning.
func DefaultPhysics() Physics {
	return Physics{
		Gravity: 150,
		Damping: 0.99,
		MaxStep: 50 * time.Millisecond,
	}
}

// Validate checks the damping interval and step ceiling.
func (p Physics) Validate() error {
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("gravity: %w: %v is not finite", ErrInvalidConfiguration, p.Gravity)
	}
	if !(p.Damping > 0 && p.Damping <= 1) {
		return fmt.Errorf("damping: %w: %v is outside (0, 1]", ErrInvalidConfiguration, p.Damping)
	}
	if p.MaxStep <= 0 {
		return fmt.Errorf("max step: %w: %v must be positive", ErrInvalidConfiguration, p.MaxStep)
	}
	return nil
}

func velocityFromPolar(angle, speed float64) geom.Vector {
	return geom.Vector{DX: math.Cos(angle) * speed, DY: math.Sin(angle) * speed}
}

// Degrees converts an angle in degrees to radians.
func Degrees(d float64) float64 {
	return d * math.Pi / 180
}

// secondsToDuration converts a sampled lifespan without truncating to whole seconds.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
