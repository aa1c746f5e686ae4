// Package simulation provides configuration for the confetti simulation and
// its host. Settings are loaded from JSON or YAML files on top of defaults so
// a partial file only overrides what it names.
package simulation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/confetti/internal/audio"
	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/ui/hud"
)

// Supported render backends
const (
	BackendEbiten   = "ebiten"
	BackendTerminal = "terminal"
)

// Config holds all simulation and host settings
type Config struct {
	// Integrator constants
	Physics PhysicsConfig `json:"physics" yaml:"physics"`

	// Burst distributions and size
	Burst BurstConfig `json:"burst" yaml:"burst"`

	// Host window
	Window WindowConfig `json:"window" yaml:"window"`

	// Overlay
	HUD hud.Config `json:"hud" yaml:"hud"`

	// Burst sound cue
	Audio audio.Config `json:"audio" yaml:"audio"`

	// Backend is "ebiten" or "terminal"
	Backend string `json:"backend" yaml:"backend"`
}

// PhysicsConfig defines the per-tick integration
type PhysicsConfig struct {
	Gravity   float64 `json:"gravity" yaml:"gravity"`         // Units per second squared, downward
	Damping   float64 `json:"damping" yaml:"damping"`         // Velocity kept per tick, (0, 1]
	MaxStepMS float64 `json:"max_step_ms" yaml:"max_step_ms"` // Ceiling on one tick's elapsed time
}

// BurstConfig defines what a single launch produces
type BurstConfig struct {
	Count        int     `json:"count" yaml:"count"`                 // Particles per launch
	ConfettiSize float64 `json:"confetti_size" yaml:"confetti_size"` // Drawn edge length / diameter

	EmissionAngleDegrees particle.Range `json:"emission_angle_degrees" yaml:"emission_angle_degrees"` // -90 is straight up
	Speed                particle.Range `json:"speed" yaml:"speed"`                                   // Units per second
	LifespanSeconds      particle.Range `json:"lifespan_seconds" yaml:"lifespan_seconds"`
	AngularVelocity      particle.Range `json:"angular_velocity" yaml:"angular_velocity"` // Radians per second
}

// WindowConfig defines the host window
type WindowConfig struct {
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
	Title     string `json:"title" yaml:"title"`
	Resizable bool   `json:"resizable" yaml:"resizable"`
}

// DefaultConfig returns the stock confetti settings
func DefaultConfig() *Config {
	physics := particle.DefaultPhysics()
	burst := particle.DefaultBurst()

	return &Config{
		Physics: PhysicsConfig{
			Gravity:   physics.Gravity,
			Damping:   physics.Damping,
			MaxStepMS: float64(physics.MaxStep) / float64(time.Millisecond),
		},
		Burst: BurstConfig{
			Count:                150,
			ConfettiSize:         10,
			EmissionAngleDegrees: particle.Range{Min: -120, Max: -60},
			Speed:                burst.Speed,
			LifespanSeconds:      burst.Lifespan,
			AngularVelocity:      burst.AngularVelocity,
		},
		Window: WindowConfig{
			Width:     800,
			Height:    600,
			Title:     "Confetti",
			Resizable: true,
		},
		HUD:     hud.DefaultConfig(),
		Audio:   audio.DefaultConfig(),
		Backend: BackendEbiten,
	}
}

// LoadConfig loads config from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse simulation config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse simulation config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks every section. Errors wrap particle.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if err := c.ParticlePhysics().Validate(); err != nil {
		return err
	}
	if err := c.ParticleBurst().Validate(); err != nil {
		return err
	}
	if c.Burst.Count < 0 {
		return fmt.Errorf("burst count: %w: %d is negative", particle.ErrInvalidConfiguration, c.Burst.Count)
	}
	if !(c.Burst.ConfettiSize > 0) || math.IsInf(c.Burst.ConfettiSize, 0) {
		return fmt.Errorf("confetti size: %w: %v must be positive", particle.ErrInvalidConfiguration, c.Burst.ConfettiSize)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: %w: %dx%d", particle.ErrInvalidConfiguration, c.Window.Width, c.Window.Height)
	}
	switch c.Backend {
	case BackendEbiten, BackendTerminal:
	default:
		return fmt.Errorf("backend: %w: unknown backend %q", particle.ErrInvalidConfiguration, c.Backend)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio: %w: sample rate %d", particle.ErrInvalidConfiguration, c.Audio.SampleRate)
	}
	return nil
}

// ParticlePhysics converts the physics section to engine units.
func (c *Config) ParticlePhysics() particle.Physics {
	return particle.Physics{
		Gravity: c.Physics.Gravity,
		Damping: c.Physics.Damping,
		MaxStep: time.Duration(c.Physics.MaxStepMS * float64(time.Millisecond)),
	}
}

// ParticleBurst converts the burst section to engine units.
func (c *Config) ParticleBurst() particle.BurstConfig {
	return particle.BurstConfig{
		EmissionAngle: particle.Range{
			Min: particle.Degrees(c.Burst.EmissionAngleDegrees.Min),
			Max: particle.Degrees(c.Burst.EmissionAngleDegrees.Max),
		},
		Speed:           c.Burst.Speed,
		Lifespan:        c.Burst.LifespanSeconds,
		AngularVelocity: c.Burst.AngularVelocity,
	}
}
