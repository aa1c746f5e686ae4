package particle

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/confetti/internal/core/geom"
	"chosenoffset.com/confetti/internal/random"
)

var (
	epoch  = time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	canvas = geom.Size{Width: 400, Height: 800}
)

func newTestSystem(t *testing.T, physics Physics) *System {
	t.Helper()
	s, err := NewSystem(physics, random.NewSampler(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	s.SetClock(func() time.Time { return epoch })
	return s
}

// put inserts a hand-built particle, bypassing burst sampling.
func put(s *System, p Particle) {
	putID(s, s.nextID+1, p)
}

func putID(s *System, id ID, p Particle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.nextID {
		s.nextID = id
	}
	p.ID = id
	s.particles[id] = p
	s.order = append(s.order, id)
}

func fixture(velocity geom.Vector, lifespan time.Duration) Particle {
	return Particle{
		Position:        geom.Point{X: 100, Y: 100},
		Velocity:        velocity,
		CreatedAt:       epoch,
		Lifespan:        lifespan,
		Color:           ColorCyan,
		Shape:           ShapeCircle,
		Rotation:        0.5,
		AngularVelocity: 2,
	}
}

func TestNewSystemRejectsBadPhysics(t *testing.T) {
	_, err := NewSystem(Physics{Gravity: 150, Damping: 0, MaxStep: time.Second}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewSystem(Physics{Gravity: 150, Damping: 1.5, MaxStep: time.Second}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewSystem(Physics{Gravity: 150, Damping: 0.99}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestFirstUpdateSeedsClockWithoutMotion(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	put(s, fixture(geom.Vector{DX: 10, DY: -20}, 5*time.Second))

	s.Update(epoch.Add(time.Second), canvas)

	p := s.Particles()[0]
	assert.Equal(t, geom.Point{X: 100, Y: 100}, p.Position)
	assert.Equal(t, geom.Vector{DX: 10, DY: -20}, p.Velocity)

	last, ok := s.LastUpdate()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Second), last)
}

func TestGravityIntegration(t *testing.T) {
	physics := Physics{Gravity: 150, Damping: 1, MaxStep: 50 * time.Millisecond}
	s := newTestSystem(t, physics)
	put(s, fixture(geom.Vector{DX: 0, DY: -200}, 5*time.Second))

	s.Update(epoch, canvas)
	s.Update(epoch.Add(20*time.Millisecond), canvas)

	p := s.Particles()[0]
	assert.InDelta(t, -200+150*0.02, p.Velocity.DY, 1e-9)
	assert.InDelta(t, 100+(-200+150*0.02)*0.02, p.Position.Y, 1e-9)
	assert.InDelta(t, 0.5+2*0.02, p.Rotation, 1e-9)
}

func TestElapsedIsClampedToMaxStep(t *testing.T) {
	physics := Physics{Gravity: 0, Damping: 1, MaxStep: 50 * time.Millisecond}
	s := newTestSystem(t, physics)
	put(s, fixture(geom.Vector{DX: 100, DY: 0}, time.Hour))

	s.Update(epoch, canvas)
	s.Update(epoch.Add(3*time.Second), canvas)

	p := s.Particles()[0]
	assert.InDelta(t, 100+100*0.05, p.Position.X, 1e-9)
}

func TestDampingShrinksSpeedWithoutFlippingSign(t *testing.T) {
	physics := Physics{Gravity: 0, Damping: 0.9, MaxStep: 50 * time.Millisecond}
	s := newTestSystem(t, physics)
	put(s, fixture(geom.Vector{DX: 30, DY: -40}, time.Hour))

	now := epoch
	s.Update(now, canvas)
	prev := s.Particles()[0].Velocity
	for i := 0; i < 50; i++ {
		now = now.Add(16 * time.Millisecond)
		s.Update(now, canvas)
		v := s.Particles()[0].Velocity

		assert.Less(t, v.Len(), prev.Len())
		assert.Greater(t, v.DX, 0.0)
		assert.Less(t, v.DY, 0.0)
		prev = v
	}
}

func TestZeroElapsedLeavesKinematicsButExpires(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	put(s, fixture(geom.Vector{DX: 5, DY: 5}, time.Second))
	put(s, fixture(geom.Vector{DX: 5, DY: 5}, 10*time.Second))

	now := epoch.Add(500 * time.Millisecond)
	s.Update(now, canvas)
	s.Update(now.Add(16*time.Millisecond), canvas)
	before := s.Particles()
	require.Len(t, before, 2)

	// Same timestamp again: nothing moves.
	s.Update(now.Add(16*time.Millisecond), canvas)
	after := s.Particles()
	require.Len(t, after, 2)
	for i := range before {
		assert.Equal(t, before[i].Position, after[i].Position)
		assert.Equal(t, before[i].Velocity, after[i].Velocity)
		assert.Equal(t, before[i].Rotation, after[i].Rotation)
	}

	// A burst stamped in the past can expire on a zero-length tick.
	late := epoch.Add(2 * time.Second)
	s.Update(late, canvas)
	require.Equal(t, 1, s.Len())

	short := DefaultBurst()
	short.Lifespan = Range{Min: 0.5, Max: 1}
	require.NoError(t, s.EmitBurst(4, geom.Point{}, canvas, short))
	require.Equal(t, 5, s.Len())

	s.Update(late, canvas)
	assert.Equal(t, 1, s.Len())
}

func TestExpiryHappensOnFirstTickPastLifespan(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	put(s, fixture(geom.Vector{}, time.Second))
	id := s.Particles()[0].ID

	var lastAge time.Duration
	for _, offset := range []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, time.Second} {
		now := epoch.Add(offset)
		s.Update(now, canvas)
		p, ok := s.get(id)
		require.True(t, ok, "removed early at %v", offset)
		assert.GreaterOrEqual(t, p.Age(now), lastAge)
		lastAge = p.Age(now)
	}

	s.Update(epoch.Add(time.Second+time.Nanosecond), canvas)
	_, ok := s.get(id)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestParticlesMayLeaveBounds(t *testing.T) {
	physics := Physics{Gravity: 0, Damping: 1, MaxStep: time.Second}
	s := newTestSystem(t, physics)
	put(s, fixture(geom.Vector{DX: -5000, DY: 0}, time.Hour))

	s.Update(epoch, canvas)
	s.Update(epoch.Add(time.Second), canvas)

	require.Equal(t, 1, s.Len())
	assert.Less(t, s.Particles()[0].Position.X, 0.0)
}

func TestOrderIndependence(t *testing.T) {
	physics := DefaultPhysics()
	inputs := []Particle{
		fixture(geom.Vector{DX: 10, DY: -300}, 2*time.Second),
		fixture(geom.Vector{DX: -40, DY: -150}, 400*time.Millisecond),
		fixture(geom.Vector{DX: 0, DY: 0}, 3*time.Second),
		fixture(geom.Vector{DX: 99, DY: 12}, 300*time.Millisecond),
	}

	run := func(order []int) map[ID]Particle {
		s := newTestSystem(t, physics)
		for _, i := range order {
			putID(s, ID(100+i), inputs[i])
		}
		now := epoch
		for i := 0; i < 30; i++ {
			s.Update(now, canvas)
			now = now.Add(17 * time.Millisecond)
		}
		out := make(map[ID]Particle)
		for _, p := range s.Particles() {
			out[p.ID] = p
		}
		return out
	}

	forward := run([]int{0, 1, 2, 3})
	reversed := run([]int{3, 2, 1, 0})
	shuffled := run([]int{2, 0, 3, 1})

	assert.Equal(t, forward, reversed)
	assert.Equal(t, forward, shuffled)
	assert.Len(t, forward, 2)
}

func TestEmitBurstCardinalityAndOrigin(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	origin := geom.Point{X: 200, Y: 400}

	require.NoError(t, s.EmitBurst(40, origin, canvas, DefaultBurst()))
	require.NoError(t, s.EmitBurst(25, origin, canvas, DefaultBurst()))
	assert.Equal(t, 65, s.Len())

	burst := DefaultBurst()
	ids := make(map[ID]bool)
	for _, p := range s.Particles() {
		assert.Equal(t, origin, p.Position)
		assert.Equal(t, epoch, p.CreatedAt)
		assert.Equal(t, geom.Vector{}, p.Acceleration)
		assert.False(t, ids[p.ID], "duplicate id %d", p.ID)
		ids[p.ID] = true

		speed := p.Velocity.Len()
		assert.True(t, speed >= burst.Speed.Min-1e-9 && speed <= burst.Speed.Max+1e-9, "speed %v", speed)
		assert.Less(t, p.Velocity.DY, 0.0, "default fan launches upward")

		angle := math.Atan2(p.Velocity.DY, p.Velocity.DX)
		assert.True(t, angle >= burst.EmissionAngle.Min-1e-9 && angle <= burst.EmissionAngle.Max+1e-9, "angle %v", angle)

		assert.GreaterOrEqual(t, p.Lifespan, 3*time.Second)
		assert.LessOrEqual(t, p.Lifespan, 6*time.Second)
		assert.True(t, burst.AngularVelocity.contains(p.AngularVelocity))
		assert.GreaterOrEqual(t, p.Rotation, 0.0)
		assert.Less(t, p.Rotation, 2*math.Pi)
	}
}

func TestEmitBurstLeavesExistingParticlesAlone(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	put(s, fixture(geom.Vector{DX: 1, DY: 2}, time.Second))
	before := s.Particles()[0]

	require.NoError(t, s.EmitBurst(10, geom.Point{X: 5, Y: 5}, canvas, DefaultBurst()))

	after := s.Particles()
	require.Len(t, after, 11)
	assert.Equal(t, before, after[0])
}

func TestEmitBurstZeroCountIsNoop(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	require.NoError(t, s.EmitBurst(0, geom.Point{}, canvas, DefaultBurst()))
	assert.Zero(t, s.Len())
}

func TestLongLifespanStaysPositive(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	long := DefaultBurst()
	long.Lifespan = Range{Min: 1e9, Max: 1e9}

	require.NoError(t, s.EmitBurst(5, geom.Point{}, canvas, long))
	s.Update(epoch, canvas)
	s.Update(epoch.Add(time.Second), canvas)

	assert.Equal(t, 5, s.Len())
	for _, p := range s.Particles() {
		assert.Positive(t, p.Lifespan)
	}
}

func TestEmitBurstRejectsInvalidConfiguration(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())

	inverted := DefaultBurst()
	inverted.Speed = Range{Min: 400, Max: 150}
	err := s.EmitBurst(10, geom.Point{}, canvas, inverted)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	noLife := DefaultBurst()
	noLife.Lifespan = Range{Min: 0, Max: 2}
	err = s.EmitBurst(10, geom.Point{}, canvas, noLife)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	// Lifespans must survive conversion to a positive time.Duration.
	overflow := DefaultBurst()
	overflow.Lifespan = Range{Min: 1e11, Max: 1e11}
	err = s.EmitBurst(10, geom.Point{}, canvas, overflow)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	subNanosecond := DefaultBurst()
	subNanosecond.Lifespan = Range{Min: 1e-10, Max: 1e-10}
	err = s.EmitBurst(10, geom.Point{}, canvas, subNanosecond)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	nan := DefaultBurst()
	nan.EmissionAngle = Range{Min: math.NaN(), Max: 1}
	err = s.EmitBurst(10, geom.Point{}, canvas, nan)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	err = s.EmitBurst(-1, geom.Point{}, canvas, DefaultBurst())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	assert.Zero(t, s.Len())
}

func TestBurstExpiresAfterTenSeconds(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())

	require.NoError(t, s.EmitBurst(150, geom.Point{X: 200, Y: 400}, canvas, DefaultBurst()))
	require.Equal(t, 150, s.Len())

	s.Update(epoch.Add(10*time.Second), canvas)
	assert.Zero(t, s.Len())
}

func TestListenersSeeEveryMutation(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) {
		// Reading from inside a listener must not deadlock.
		_ = s.Len()
		events = append(events, e)
	})

	require.NoError(t, s.EmitBurst(5, geom.Point{}, canvas, DefaultBurst()))
	s.Update(epoch, canvas)
	s.Update(epoch.Add(7*time.Second), canvas)
	require.NoError(t, s.EmitBurst(3, geom.Point{}, canvas, DefaultBurst()))
	s.Clear()

	require.Len(t, events, 5)
	assert.Equal(t, Event{Kind: EventEmitted, At: epoch, Live: 5, Emitted: 5}, events[0])
	assert.Equal(t, EventUpdated, events[1].Kind)
	assert.Equal(t, 5, events[1].Live)
	assert.Equal(t, Event{Kind: EventUpdated, At: epoch.Add(7 * time.Second), Live: 0, Expired: 5}, events[2])
	assert.Equal(t, 3, events[3].Emitted)
	assert.Equal(t, Event{Kind: EventCleared, At: epoch, Expired: 3}, events[4])

	unsubscribe()
	s.Update(epoch.Add(8*time.Second), canvas)
	assert.Len(t, events, 5)
}

func TestClearResetsClock(t *testing.T) {
	s := newTestSystem(t, DefaultPhysics())
	s.Update(epoch, canvas)
	s.Clear()

	_, ok := s.LastUpdate()
	assert.False(t, ok)
}

func TestEqualityIsByID(t *testing.T) {
	a := fixture(geom.Vector{DX: 1}, time.Second)
	a.ID = 7
	b := a
	b.Position = geom.Point{X: -1, Y: -1}
	b.Rotation = 3

	assert.True(t, a.Equal(b))

	b.ID = 8
	assert.False(t, a.Equal(b))
}
