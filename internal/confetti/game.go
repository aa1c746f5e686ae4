// Package confetti hosts a particle.System inside a render.Game: it turns
// input into bursts, ticks the system once per frame and draws the result.
package confetti

import (
	"log"
	"time"

	"chosenoffset.com/confetti/internal/audio"
	"chosenoffset.com/confetti/internal/core/geom"
	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/render"
	"chosenoffset.com/confetti/internal/simulation"
	"chosenoffset.com/confetti/internal/ui/hud"
)

// Game holds the running simulation and its presentation state.
type Game struct {
	ScreenWidth  int
	ScreenHeight int

	Config   *simulation.Config
	System   *particle.System
	Renderer render.Renderer
	InputMgr render.InputManager
	Audio    *audio.Player // nil plays nothing

	// HUD
	GameHUD *hud.HUD
	ShowHUD bool

	burst       particle.BurstConfig
	clock       func() time.Time
	unsubscribe func()
}

// NewGame wires a system to a renderer and input source. The HUD is
// subscribed to the system's events until Close is called.
func NewGame(cfg *simulation.Config, sys *particle.System, r render.Renderer, input render.InputManager, player *audio.Player) *Game {
	g := &Game{
		ScreenWidth:  cfg.Window.Width,
		ScreenHeight: cfg.Window.Height,
		Config:       cfg,
		System:       sys,
		Renderer:     r,
		InputMgr:     input,
		Audio:        player,
		GameHUD:      hud.New(cfg.HUD, r, cfg.Window.Width, cfg.Window.Height),
		ShowHUD:      cfg.HUD.Enabled,
		burst:        cfg.ParticleBurst(),
		clock:        time.Now,
	}
	g.GameHUD.SetPhysics(sys.Physics())
	g.unsubscribe = sys.Subscribe(g.GameHUD.Stats().Observe)
	return g
}

// SetClock replaces the frame clock on both the host and its system so
// burst timestamps and update times share one time base.
func (g *Game) SetClock(clock func() time.Time) {
	g.clock = clock
	g.System.SetClock(clock)
}

// Close detaches the HUD from the system.
func (g *Game) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// Bounds returns the current canvas size.
func (g *Game) Bounds() geom.Size {
	return geom.SizeFromInts(g.ScreenWidth, g.ScreenHeight)
}

// Update handles input and advances the simulation by one tick.
func (g *Game) Update() error {
	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrTerminated
	}

	// Clear all confetti with C
	if g.InputMgr.IsKeyJustPressed(render.KeyC) {
		g.System.Clear()
	}

	// Toggle overlay with H
	if g.InputMgr.IsKeyJustPressed(render.KeyH) {
		g.ShowHUD = !g.ShowHUD
	}

	if g.InputMgr.IsKeyJustPressed(render.KeySpace) || g.InputMgr.IsKeyJustPressed(render.KeyEnter) {
		g.Launch(g.Bounds().BottomCenter())
	}
	if g.InputMgr.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		x, y := g.InputMgr.GetCursorPosition()
		g.Launch(geom.Point{X: float64(x), Y: float64(y)})
	}

	g.System.Update(g.clock(), g.Bounds())
	return nil
}

// Launch emits one configured burst at origin and plays the cue.
func (g *Game) Launch(origin geom.Point) {
	if err := g.System.EmitBurst(g.Config.Burst.Count, origin, g.Bounds(), g.burst); err != nil {
		log.Printf("Warning: Failed to launch confetti: %v", err)
		return
	}
	if err := g.Audio.Chirp(); err != nil {
		log.Printf("Warning: Failed to play burst sound: %v", err)
	}
}

// Layout follows the outside size so bursts always start at the visible
// bottom edge.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.ScreenWidth, g.ScreenHeight = outsideWidth, outsideHeight
		g.GameHUD.SetScreenSize(outsideWidth, outsideHeight)
	}
	return g.ScreenWidth, g.ScreenHeight
}
