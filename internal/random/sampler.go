// Package random provides uniform sampling helpers over an injectable
// random source. Visual variety is the only goal; callers that want
// reproducible runs in tests can pass a seeded source.
package random

import (
	"math"
	"math/rand"
	"time"
)

// Sampler draws uniform values from a configurable random source.
// It is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a new Sampler with the given random source.
// A nil source is replaced by one seeded from the current time.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// Uniform returns a value in [min, max). When min == max it returns min.
func (s *Sampler) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.rng.Float64()*(max-min)
}

// Intn returns a value in [0, n). n must be positive.
func (s *Sampler) Intn(n int) int {
	return s.rng.Intn(n)
}

// Angle returns an angle in radians covering a full turn, [0, 2π).
func (s *Sampler) Angle() float64 {
	return s.rng.Float64() * 2 * math.Pi
}
