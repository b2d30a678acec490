package swarm

// BurstRequest asks an effects provider for one celebration burst.
type BurstRequest struct {
	Origin    Vec2 // normalized to the surface, (0.5,0.5) is the centre
	Particles int
	Spread    float64 // degrees
	Palette   []string
	Cycle     int // celebration cycle the burst belongs to
	Index     int // position in the cycle's burst schedule
}

// Effects consumes burst requests. Requests are fire-and-forget: the
// simulation never waits on or inspects the outcome, and never calls
// RequestBurst while holding its own lock.
type Effects interface {
	RequestBurst(req BurstRequest)
}

// EffectsFunc adapts a plain function to Effects.
type EffectsFunc func(BurstRequest)

func (f EffectsFunc) RequestBurst(req BurstRequest) { f(req) }

// MultiEffects fans a request out to several providers in order.
type MultiEffects []Effects

func (m MultiEffects) RequestBurst(req BurstRequest) {
	for _, e := range m {
		if e != nil {
			e.RequestBurst(req)
		}
	}
}

type noEffects struct{}

func (noEffects) RequestBurst(BurstRequest) {}
