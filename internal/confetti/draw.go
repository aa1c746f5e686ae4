package confetti

import (
	"image/color"
	"time"

	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/render"
)

// Background is the canvas colour behind the confetti.
var Background = color.NRGBA{R: 16, G: 16, B: 24, A: 255}

var palette = map[particle.Color]color.NRGBA{
	particle.ColorRed:    {R: 239, G: 68, B: 68, A: 255},
	particle.ColorBlue:   {R: 59, G: 130, B: 246, A: 255},
	particle.ColorGreen:  {R: 34, G: 197, B: 94, A: 255},
	particle.ColorYellow: {R: 250, G: 204, B: 21, A: 255},
	particle.ColorPink:   {R: 236, G: 72, B: 153, A: 255},
	particle.ColorPurple: {R: 168, G: 85, B: 247, A: 255},
	particle.ColorOrange: {R: 249, G: 115, B: 22, A: 255},
	particle.ColorCyan:   {R: 6, G: 182, B: 212, A: 255},
}

// PaletteColor maps a palette tag to an opaque colour. Unknown tags are white.
func PaletteColor(c particle.Color) color.NRGBA {
	if clr, ok := palette[c]; ok {
		return clr
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

// Opacity fades a particle linearly from 1 at creation to 0 at the end of
// its lifespan.
func Opacity(p particle.Particle, now time.Time) float64 {
	if p.Lifespan <= 0 {
		return 0
	}
	o := 1 - float64(p.Age(now))/float64(p.Lifespan)
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}

// Draw renders the confetti in emission order, then the HUD on top.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(Background)

	now := g.clock()
	for _, p := range g.System.Particles() {
		g.drawParticle(screen, p, now)
	}

	if g.ShowHUD {
		g.GameHUD.Draw(screen)
	}
}

func (g *Game) drawParticle(screen render.Image, p particle.Particle, now time.Time) {
	alpha := Opacity(p, now)
	if alpha <= 0 {
		return
	}
	clr := PaletteColor(p.Color)
	clr.A = uint8(alpha * 255)

	size := g.Config.Burst.ConfettiSize
	switch p.Shape {
	case particle.ShapeCircle:
		g.Renderer.FillCircle(screen, float32(p.Position.X), float32(p.Position.Y), float32(size/2), clr)
	default:
		q := render.RotatedRect(p.Position.X, p.Position.Y, size, size, p.Rotation)
		render.FillQuad(screen, g.Renderer, q, clr)
	}
}
