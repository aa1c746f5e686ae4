// Package hud draws the text overlay on top of the confetti: live particle
// count, running totals and key hints.
package hud

import (
	"fmt"
	"image/color"

	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/render"
)

// Config defines what to display in the HUD
type Config struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	ShowStats bool    `json:"show_stats" yaml:"show_stats"` // Live / emitted / expired counters
	ShowHints bool    `json:"show_hints" yaml:"show_hints"` // Key bindings
	Position  string  `json:"position" yaml:"position"`     // "top-left", "top-right", "bottom-left", "bottom-right"
	Opacity   float64 `json:"opacity" yaml:"opacity"`       // Background opacity (0-1)
}

// DefaultConfig returns a sensible default HUD configuration
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		ShowStats: true,
		ShowHints: true,
		Position:  "top-left",
		Opacity:   0.6,
	}
}

// Stats accumulates counters from particle system events.
type Stats struct {
	Live    int
	Emitted int
	Expired int
	Bursts  int
}

// Observe folds one system event into the counters. It is shaped to be
// passed straight to particle.System.Subscribe.
func (s *Stats) Observe(e particle.Event) {
	s.Live = e.Live
	s.Emitted += e.Emitted
	s.Expired += e.Expired
	if e.Kind == particle.EventEmitted {
		s.Bursts++
	}
}

// HUD manages the heads-up display
type HUD struct {
	config       Config
	renderer     render.Renderer
	screenWidth  int
	screenHeight int
	stats        Stats
	physics      *particle.Physics
	padding      int
	lineSpacing  int
}

// New creates a new HUD with the given configuration
func New(config Config, r render.Renderer, screenWidth, screenHeight int) *HUD {
	return &HUD{
		config:       config,
		renderer:     r,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		padding:      8,
		lineSpacing:  4,
	}
}

// Stats exposes the counters so they can be subscribed to the system.
func (h *HUD) Stats() *Stats {
	return &h.stats
}

// SetPhysics shows the integrator constants under the counters.
func (h *HUD) SetPhysics(p particle.Physics) {
	h.physics = &p
}

// SetScreenSize updates the screen dimensions
func (h *HUD) SetScreenSize(width, height int) {
	h.screenWidth = width
	h.screenHeight = height
}

// Lines returns the text rows the HUD would draw, top to bottom.
func (h *HUD) Lines() []string {
	var lines []string
	if h.config.ShowStats {
		lines = append(lines,
			fmt.Sprintf("Live: %d", h.stats.Live),
			fmt.Sprintf("Bursts: %d  Emitted: %d  Expired: %d", h.stats.Bursts, h.stats.Emitted, h.stats.Expired),
		)
		if h.physics != nil {
			lines = append(lines, fmt.Sprintf("Gravity: %.0f  Damping: %.2f  Step: %v", h.physics.Gravity, h.physics.Damping, h.physics.MaxStep))
		}
	}
	if h.config.ShowHints {
		lines = append(lines, "SPACE/click: launch  C: clear  H: hide  ESC: quit")
	}
	return lines
}

// Draw renders the HUD panel onto screen.
func (h *HUD) Draw(screen render.Image) {
	if !h.config.Enabled {
		return
	}
	lines := h.Lines()
	if len(lines) == 0 {
		return
	}

	panelW, panelH := 0, h.padding
	for _, line := range lines {
		w, lh := h.renderer.MeasureText(line, 1)
		if w > panelW {
			panelW = w
		}
		panelH += lh + h.lineSpacing
	}
	panelW += 2 * h.padding
	panelH += h.padding - h.lineSpacing

	x, y := h.anchor(panelW, panelH)

	if h.config.Opacity > 0 {
		a := uint8(clamp01(h.config.Opacity) * 255)
		render.FillRect(screen, h.renderer, float32(x), float32(y), float32(panelW), float32(panelH), color.NRGBA{0, 0, 0, a})
	}

	textY := y + h.padding
	for _, line := range lines {
		h.renderer.DrawText(screen, line, x+h.padding, textY, color.White, 1)
		_, lh := h.renderer.MeasureText(line, 1)
		textY += lh + h.lineSpacing
	}
}

// anchor returns the top-left corner of a panel of the given size.
func (h *HUD) anchor(w, ht int) (int, int) {
	margin := 10
	switch h.config.Position {
	case "top-right":
		return h.screenWidth - w - margin, margin
	case "bottom-left":
		return margin, h.screenHeight - ht - margin
	case "bottom-right":
		return h.screenWidth - w - margin, h.screenHeight - ht - margin
	default:
		return margin, margin
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
