package particle

import (
	"fmt"
	"sync"
	"time"

	"chosenoffset.com/confetti/internal/core/geom"
	"chosenoffset.com/confetti/internal/random"
)

// EventKind says which operation produced an Event.
type EventKind int

const (
	EventEmitted EventKind = iota
	EventUpdated
	EventCleared
)

// Event is delivered to listeners after a mutation has completed.
type Event struct {
	Kind    EventKind
	At      time.Time
	Live    int // particles in the system after the mutation
	Emitted int // particles added by this call
	Expired int // particles removed by this call
}

// Listener receives change notifications. It runs on the caller's goroutine
// after the system lock is released, so it may read Particles.
type Listener func(Event)

// System owns the live set of particles.
//
// All mutation goes through Update, EmitBurst and Clear. They are serialized
// by an internal mutex so a renderer reading Particles from another goroutine
// never sees a half-applied tick, but the intended discipline is a single
// writer driving the system once per frame.
type System struct {
	mu sync.Mutex

	physics Physics
	sampler *random.Sampler
	clock   func() time.Time

	particles map[ID]Particle
	order     []ID // emission order, used as draw order
	nextID    ID

	lastUpdate    time.Time
	hasLastUpdate bool

	listeners      map[int]Listener
	nextListenerID int
}

// NewSystem creates an empty System. A nil sampler gets a time-seeded one.
func NewSystem(physics Physics, sampler *random.Sampler) (*System, error) {
	if err := physics.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create particle system: %w", err)
	}
	if sampler == nil {
		sampler = random.NewSampler(nil)
	}
	return &System{
		physics:   physics,
		sampler:   sampler,
		clock:     time.Now,
		particles: make(map[ID]Particle),
		listeners: make(map[int]Listener),
	}, nil
}

// SetClock replaces the clock used to stamp new bursts. It must share a
// time base with the now values passed to Update.
func (s *System) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Physics returns the integrator constants.
func (s *System) Physics() Physics {
	return s.physics
}

// Update advances every live particle by the time elapsed since the previous
// call and then drops particles whose age exceeds their lifespan.
//
// The first call only seeds the clock. Elapsed time is clamped to
// [0, Physics.MaxStep]. bounds is accepted for boundary handling but
// particles are never clipped or removed by position.
func (s *System) Update(now time.Time, bounds geom.Size) {
	s.mu.Lock()

	elapsed := time.Duration(0)
	if s.hasLastUpdate {
		elapsed = now.Sub(s.lastUpdate)
	}
	s.lastUpdate = now
	s.hasLastUpdate = true

	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.physics.MaxStep {
		elapsed = s.physics.MaxStep
	}
	dt := elapsed.Seconds()

	// Visit a snapshot of membership; expiry is applied afterwards so that
	// no decision made in the loop changes which particles the loop sees.
	snapshot := make([]ID, len(s.order))
	copy(snapshot, s.order)

	var expired map[ID]struct{}
	for _, id := range snapshot {
		p := s.particles[id]
		// A zero step is a pure expiry check; damping is per tick and would
		// otherwise still shrink velocity.
		if dt > 0 {
			p.step(dt, s.physics.Gravity, s.physics.Damping)
		}
		if p.Expired(now) {
			if expired == nil {
				expired = make(map[ID]struct{})
			}
			expired[id] = struct{}{}
			continue
		}
		s.particles[id] = p
	}

	if len(expired) > 0 {
		kept := s.order[:0]
		for _, id := range s.order {
			if _, gone := expired[id]; gone {
				delete(s.particles, id)
				continue
			}
			kept = append(kept, id)
		}
		s.order = kept
	}

	event := Event{Kind: EventUpdated, At: now, Live: len(s.order), Expired: len(expired)}
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners, event)
}

// EmitBurst creates count particles at origin, each sampled independently
// from burst, and adds them to the live set. All particles of one burst share
// a creation timestamp taken from the system clock. Existing particles are
// left untouched.
//
// The configuration is validated before anything is created; on error the
// system is unchanged. bounds is accepted for symmetry with Update and does
// not clip the spawn position.
func (s *System) EmitBurst(count int, origin geom.Point, bounds geom.Size, burst BurstConfig) error {
	if count < 0 {
		return fmt.Errorf("%w: burst count %d is negative", ErrInvalidConfiguration, count)
	}
	if err := burst.Validate(); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	s.mu.Lock()

	createdAt := s.clock()
	colors := Colors()
	shapes := Shapes()

	for i := 0; i < count; i++ {
		angle := s.sampler.Uniform(burst.EmissionAngle.Min, burst.EmissionAngle.Max)
		speed := s.sampler.Uniform(burst.Speed.Min, burst.Speed.Max)
		velocity := velocityFromPolar(angle, speed)

		s.nextID++
		p := Particle{
			ID:              s.nextID,
			Position:        origin,
			Velocity:        velocity,
			CreatedAt:       createdAt,
			Lifespan:        secondsToDuration(s.sampler.Uniform(burst.Lifespan.Min, burst.Lifespan.Max)),
			Color:           colors[s.sampler.Intn(len(colors))],
			Shape:           shapes[s.sampler.Intn(len(shapes))],
			Rotation:        s.sampler.Angle(),
			AngularVelocity: s.sampler.Uniform(burst.AngularVelocity.Min, burst.AngularVelocity.Max),
		}
		s.particles[p.ID] = p
		s.order = append(s.order, p.ID)
	}

	event := Event{Kind: EventEmitted, At: createdAt, Live: len(s.order), Emitted: count}
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners, event)
	return nil
}

// Clear drops every particle and forgets the previous update time.
func (s *System) Clear() {
	s.mu.Lock()
	removed := len(s.order)
	s.particles = make(map[ID]Particle)
	s.order = nil
	s.hasLastUpdate = false
	event := Event{Kind: EventCleared, At: s.clock(), Expired: removed}
	listeners := s.listenerSnapshot()
	s.mu.Unlock()

	notify(listeners, event)
}

// Particles returns a copy of the live particles in emission order.
func (s *System) Particles() []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Particle, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.particles[id])
	}
	return out
}

// get returns the live particle with the given id.
func (s *System) get(id ID) (Particle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.particles[id]
	return p, ok
}

// Len returns the number of live particles.
func (s *System) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// LastUpdate returns the now value of the most recent Update, if any.
func (s *System) LastUpdate() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate, s.hasLastUpdate
}

// Subscribe registers l for change notifications and returns a function
// that removes it again.
func (s *System) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// listenerSnapshot must be called with s.mu held.
func (s *System) listenerSnapshot() []Listener {
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, e Event) {
	for _, l := range listeners {
		l(e)
	}
}
