package confetti

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/confetti/internal/core/geom"
	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/random"
	"chosenoffset.com/confetti/internal/render"
	"chosenoffset.com/confetti/internal/render/rendertest"
	"chosenoffset.com/confetti/internal/simulation"
)

var epoch = time.Date(2025, time.April, 23, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	game  *Game
	input *rendertest.Input
	clock *fakeClock
}

func newFixture(t *testing.T, mutate func(*simulation.Config)) *fixture {
	t.Helper()
	cfg := simulation.DefaultConfig()
	cfg.Burst.Count = 20
	if mutate != nil {
		mutate(cfg)
	}

	sys, err := particle.NewSystem(cfg.ParticlePhysics(), random.NewSampler(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	input := rendertest.NewInput()
	clock := &fakeClock{now: epoch}
	g := NewGame(cfg, sys, rendertest.NewRenderer(), input, nil)
	g.SetClock(clock.Now)
	t.Cleanup(g.Close)

	return &fixture{game: g, input: input, clock: clock}
}

// frame runs one tick with whatever input is staged, then releases it.
func (f *fixture) frame(t *testing.T) error {
	t.Helper()
	err := f.game.Update()
	f.input.Reset()
	return err
}

func TestSpaceLaunchesFromBottomCenter(t *testing.T) {
	f := newFixture(t, nil)

	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	ps := f.game.System.Particles()
	require.Len(t, ps, 20)
	for _, p := range ps {
		assert.Equal(t, geom.Point{X: 400, Y: 600}, p.Position, "first tick only seeds the clock")
		assert.Equal(t, epoch, p.CreatedAt)
	}
}

func TestEnterAlsoLaunches(t *testing.T) {
	f := newFixture(t, nil)

	f.input.Tap(render.KeyEnter)
	require.NoError(t, f.frame(t))

	assert.Equal(t, 20, f.game.System.Len())
}

func TestClickLaunchesAtCursor(t *testing.T) {
	f := newFixture(t, nil)

	f.input.Click(120, 90)
	require.NoError(t, f.frame(t))

	for _, p := range f.game.System.Particles() {
		assert.Equal(t, geom.Point{X: 120, Y: 90}, p.Position)
	}
}

func TestTicksMoveConfetti(t *testing.T) {
	f := newFixture(t, nil)
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	f.clock.Advance(16 * time.Millisecond)
	require.NoError(t, f.frame(t))

	for _, p := range f.game.System.Particles() {
		assert.Less(t, p.Position.Y, 600.0, "bursts fly upward")
	}
}

func TestClearKeyRemovesEverything(t *testing.T) {
	f := newFixture(t, nil)
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))
	require.Equal(t, 20, f.game.System.Len())

	f.input.Tap(render.KeyC)
	require.NoError(t, f.frame(t))

	assert.Zero(t, f.game.System.Len())
	assert.Equal(t, 20, f.game.GameHUD.Stats().Expired)
}

func TestEscapeTerminates(t *testing.T) {
	f := newFixture(t, nil)

	f.input.Tap(render.KeyEscape)
	assert.ErrorIs(t, f.frame(t), render.ErrTerminated)
}

func TestInvalidBurstIsLoggedNotFatal(t *testing.T) {
	f := newFixture(t, func(cfg *simulation.Config) { cfg.Burst.Count = -1 })

	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	assert.Zero(t, f.game.System.Len())
}

func TestConfettiExpiresAfterLifespan(t *testing.T) {
	f := newFixture(t, nil)
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	// 50ms steps so no tick is clamped.
	for i := 0; i < 140; i++ {
		f.clock.Advance(50 * time.Millisecond)
		require.NoError(t, f.frame(t))
	}

	assert.Zero(t, f.game.System.Len())
}

func TestDrawRendersEveryLiveParticle(t *testing.T) {
	f := newFixture(t, func(cfg *simulation.Config) { cfg.HUD.Enabled = false })
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	screen := rendertest.NewImage(800, 600)
	f.game.Draw(screen)

	require.NotEmpty(t, screen.Fills)
	assert.Equal(t, Background, screen.Fills[0])
	assert.Equal(t, 20, len(screen.Triangles)+len(screen.Circles))
	assert.Empty(t, screen.Texts)

	for _, c := range screen.Circles {
		assert.Equal(t, float32(5), c.Radius)
	}
}

func TestDrawSkipsFadedParticles(t *testing.T) {
	f := newFixture(t, func(cfg *simulation.Config) { cfg.HUD.Enabled = false })
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	// Past every lifespan but not yet ticked, so the particles are still live.
	f.clock.Advance(7 * time.Second)
	screen := rendertest.NewImage(800, 600)
	f.game.Draw(screen)

	assert.Equal(t, 20, f.game.System.Len())
	assert.Empty(t, screen.Triangles)
	assert.Empty(t, screen.Circles)
}

func TestHUDToggleAndStats(t *testing.T) {
	f := newFixture(t, nil)
	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))

	stats := f.game.GameHUD.Stats()
	assert.Equal(t, 1, stats.Bursts)
	assert.Equal(t, 20, stats.Emitted)
	assert.Equal(t, 20, stats.Live)

	screen := rendertest.NewImage(800, 600)
	f.game.Draw(screen)
	require.Len(t, screen.Texts, 4)
	assert.Equal(t, "Gravity: 150  Damping: 0.99  Step: 50ms", screen.Texts[2].Text)

	f.input.Tap(render.KeyH)
	require.NoError(t, f.frame(t))
	screen = rendertest.NewImage(800, 600)
	f.game.Draw(screen)
	assert.Empty(t, screen.Texts)
}

func TestLayoutTracksWindow(t *testing.T) {
	f := newFixture(t, nil)

	w, h := f.game.Layout(1024, 768)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	f.input.Tap(render.KeySpace)
	require.NoError(t, f.frame(t))
	assert.Equal(t, geom.Point{X: 512, Y: 768}, f.game.System.Particles()[0].Position)
}

func TestOpacity(t *testing.T) {
	p := particle.Particle{CreatedAt: epoch, Lifespan: 2 * time.Second}

	assert.InDelta(t, 1.0, Opacity(p, epoch), 1e-12)
	assert.InDelta(t, 0.5, Opacity(p, epoch.Add(time.Second)), 1e-12)
	assert.Zero(t, Opacity(p, epoch.Add(3*time.Second)))
	assert.Zero(t, Opacity(particle.Particle{CreatedAt: epoch}, epoch))
}

func TestPaletteCoversEveryColor(t *testing.T) {
	seen := map[[3]uint8]bool{}
	for _, c := range particle.Colors() {
		clr := PaletteColor(c)
		assert.Equal(t, uint8(255), clr.A)
		seen[[3]uint8{clr.R, clr.G, clr.B}] = true
	}
	assert.Len(t, seen, len(particle.Colors()))
}
