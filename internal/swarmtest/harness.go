// Package swarmtest provides a deterministic harness for driving a
// swarm.Simulation on virtual time.
package swarmtest

import (
	"fmt"
	"sync"
	"time"

	"github.com/Garsondee/Particle-Header/internal/swarm"
)

// harnessEpoch is where every TestSim clock starts.
var harnessEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TestSim is a headless simulation harness used by tests and the headless
// report. It drives a Simulation on a ManualClock, advancing virtual time by
// one frame per tick, and records every burst request it receives.
type TestSim struct {
	Width     float64 // viewport, not surface
	Height    float64
	Params    swarm.Params
	FrameTime time.Duration

	Sim      *swarm.Simulation
	Clock    *swarm.ManualClock
	SimLog   *swarm.SimLog
	Reporter *swarm.CaptureReporter

	seed   int64
	extra  swarm.Effects
	mu     sync.Mutex
	bursts []swarm.BurstRequest
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // surface, seed, tuning, verbose: applied before the Simulation exists
	simOptInput                      // pointer and hover state: applied after construction
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSurface sets the viewport dimensions.
func WithSurface(w, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Width = w
		ts.Height = h
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = swarm.NewSimLog(v)
	}}
}

// WithTuning adjusts the parameters before the simulation is built.
func WithTuning(fn func(*swarm.Params)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		fn(&ts.Params)
	}}
}

// WithFrameTime sets how much virtual time passes per tick.
func WithFrameTime(d time.Duration) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.FrameTime = d
	}}
}

// WithExtraEffects forwards burst requests to e as well as recording them.
func WithExtraEffects(e swarm.Effects) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.extra = e
	}}
}

// WithPointer places the pointer before the first tick.
func WithPointer(x, y float64) SimOption {
	return SimOption{simOptInput, func(ts *TestSim) {
		ts.Sim.PointerMove(x, y)
	}}
}

// NewTestSim constructs a TestSim from the given options in two ordered passes:
//  1. Infrastructure (surface, seed, tuning, verbose)
//  2. Build the Simulation, then apply input options
//
// It panics if the options describe an unusable surface; tests should not
// need to check that.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Width:     1280,
		Height:    720,
		Params:    swarm.DefaultParams(),
		FrameTime: time.Second / 60,
		SimLog:    swarm.NewSimLog(false),
		seed:      1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	ts.Clock = swarm.NewManualClock(harnessEpoch)
	sim, err := swarm.New(ts.Params, ts.Width, ts.Height,
		swarm.WithSeed(ts.seed),
		swarm.WithClock(ts.Clock),
		swarm.WithEffects(swarm.EffectsFunc(ts.recordBurst)),
		swarm.WithLog(ts.SimLog),
	)
	if err != nil {
		panic(fmt.Sprintf("NewTestSim: %v", err))
	}
	ts.Sim = sim
	ts.Reporter = swarm.NewCaptureReporter(0)
	sim.Subscribe(ts.Reporter.Collect)

	for _, o := range opts {
		if o.kind == simOptInput {
			o.fn(ts)
		}
	}
	return ts
}

func (ts *TestSim) recordBurst(req swarm.BurstRequest) {
	ts.mu.Lock()
	ts.bursts = append(ts.bursts, req)
	extra := ts.extra
	ts.mu.Unlock()
	if extra != nil {
		extra.RequestBurst(req)
	}
}

// Bursts returns a copy of every burst request received so far.
func (ts *TestSim) Bursts() []swarm.BurstRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]swarm.BurstRequest, len(ts.bursts))
	copy(out, ts.bursts)
	return out
}

// Elapsed returns the virtual time since the harness started.
func (ts *TestSim) Elapsed() time.Duration {
	return ts.Clock.Now().Sub(harnessEpoch)
}

// MoveTo moves the pointer.
func (ts *TestSim) MoveTo(x, y float64) {
	ts.Sim.PointerMove(x, y)
}

// Leave moves the pointer off the surface, far enough away that it exerts
// no force on any agent.
func (ts *TestSim) Leave() {
	ts.Sim.PointerMove(-1e4, -1e4)
}

// RunTicks advances the simulation n frames: virtual time first, then one tick.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Clock.Advance(ts.FrameTime)
		ts.Sim.Tick()
	}
}

// RunFor ticks at the frame rate until d of virtual time has passed.
func (ts *TestSim) RunFor(d time.Duration) {
	end := ts.Clock.Now().Add(d)
	for ts.Clock.Now().Before(end) {
		step := ts.FrameTime
		if rem := end.Sub(ts.Clock.Now()); rem < step {
			step = rem
		}
		ts.Clock.Advance(step)
		ts.Sim.Tick()
	}
}

// Advance moves virtual time without ticking, firing any due timeline steps.
func (ts *TestSim) Advance(d time.Duration) {
	ts.Clock.Advance(d)
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.RunTicks(1)
		if predicate(ts) {
			return ts.Sim.TickCount()
		}
	}
	return -1
}

// CaptureAll walks the pointer from free agent to free agent, lowest id
// first, until the celebration starts. Agents that cannot be reached from
// outside the protected region are skipped; if none can be reached the
// pointer leaves the surface for a tick so they drift back home. It returns
// the number of ticks used, or -1 if maxTicks ran out first.
func (ts *TestSim) CaptureAll(maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		snap := ts.Sim.Snapshot()
		if snap.State != swarm.StateActive {
			return i
		}
		if at, ok := ts.nextAim(snap); ok {
			ts.MoveTo(at.X, at.Y)
		} else {
			ts.Leave()
		}
		ts.RunTicks(1)
	}
	if ts.Sim.State() != swarm.StateActive {
		return maxTicks
	}
	return -1
}

// nextAim picks the pointer position that captures the lowest-id free agent
// that can be captured at all.
func (ts *TestSim) nextAim(snap *swarm.Snapshot) (swarm.Vec2, bool) {
	for _, a := range snap.Agents {
		if a.Captured {
			continue
		}
		at := ts.reachable(snap, a.Pos)
		if at.Dist(a.Pos) < ts.Params.CaptureRadius-0.5 {
			return at, true
		}
	}
	return swarm.Vec2{}, false
}

// reachable returns the on-surface point closest to p that is not over the
// protected region.
func (ts *TestSim) reachable(snap *swarm.Snapshot, p swarm.Vec2) swarm.Vec2 {
	at := swarm.Vec2{X: clampTo(p.X, 0, snap.Width), Y: clampTo(p.Y, 0, snap.Height)}
	r := snap.Region
	if !r.Contains(at) {
		return at
	}
	const margin = 1
	candidates := []swarm.Vec2{
		{X: at.X, Y: r.Y - margin},
		{X: at.X, Y: r.Y + r.H + margin},
		{X: r.X - margin, Y: at.Y},
		{X: r.X + r.W + margin, Y: at.Y},
	}
	best := at
	bestD := -1.0
	for _, c := range candidates {
		if c.X < 0 || c.Y < 0 || c.X > snap.Width || c.Y > snap.Height {
			continue
		}
		if d := c.Dist(p); bestD < 0 || d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func clampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Close shuts the simulation down.
func (ts *TestSim) Close() {
	ts.Sim.Close()
}
