package swarm

import "math/rand"

// Option configures a Simulation at construction time.
type Option func(*Simulation)

// WithSeed seeds the agent constants and spawn jitter for deterministic runs.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- visual randomness only
	}
}

// WithClock replaces the system clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(s *Simulation) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithEffects sets the provider that receives celebration burst requests.
func WithEffects(e Effects) Option {
	return func(s *Simulation) {
		if e != nil {
			s.effects = e
		}
	}
}

// WithLog records simulation events to sl.
func WithLog(sl *SimLog) Option {
	return func(s *Simulation) {
		if sl != nil {
			s.log = sl
		}
	}
}
