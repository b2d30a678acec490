package swarm

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// ErrNoSurface is returned by New when the render surface has no area. The
// host decides whether that is fatal; the hero animation simply does not start.
var ErrNoSurface = errors.New("swarm: render surface has zero extent")

// Simulation is the particle field, the pointer tracker and the capture game
// behind one lock. Input methods may be called from any goroutine; Tick reads
// the input state exactly once at its start.
type Simulation struct {
	mu sync.Mutex

	params  Params
	seed    int64
	clock   Clock
	rng     *rand.Rand
	effects Effects
	log     *SimLog

	field   *Field
	tracker *Tracker
	game    *CaptureGame
	timers  *timerGroup

	tick    int
	links   []Link
	closed  bool
	subs    map[int]func(*Snapshot)
	nextSub int
	outbox  []BurstRequest
}

// New builds a simulation for a viewport of viewW x viewH. The render surface
// is viewW wide and viewH*SurfaceHeight tall.
func New(p Params, viewW, viewH float64, opts ...Option) (*Simulation, error) {
	if p.Cols <= 0 || p.Rows <= 0 || p.TotalParticles < 0 {
		return nil, fmt.Errorf("swarm: invalid grid %dx%d for %d particles", p.Cols, p.Rows, p.TotalParticles)
	}
	w := viewW
	h := viewH * p.SurfaceHeight
	if w <= 0 || h <= 0 {
		return nil, ErrNoSurface
	}

	s := &Simulation{
		params:  p,
		seed:    1,
		clock:   NewRealClock(),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- visual randomness only
		effects: noEffects{},
		log:     NewSimLog(false),
		subs:    make(map[int]func(*Snapshot)),
	}
	for _, o := range opts {
		o(s)
	}

	// Agents keep a pointer to s.params; later copies of p are not seen.
	s.field = newField(&s.params, w, h, s.rng)
	s.tracker = newTracker(w, h, &s.params)
	s.game = newCaptureGame(len(s.field.agents))
	s.timers = newTimerGroup(s.clock)
	return s, nil
}

// Seed returns the seed the agents were generated from.
func (s *Simulation) Seed() int64 { return s.seed }

// Params returns a copy of the tuning in use.
func (s *Simulation) Params() Params { return s.params }

// Log returns the structured event log.
func (s *Simulation) Log() *SimLog { return s.log }

// Now reads the simulation clock.
func (s *Simulation) Now() time.Time { return s.clock.Now() }

// --- Input ---

// PointerMove records a mouse position in surface coordinates.
func (s *Simulation) PointerMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptInput() {
		return
	}
	s.tracker.move(Vec2{x, y})
	s.log.AddVerbose(s.tick, "--", "pointer", "move", fmt.Sprintf("(%.0f,%.0f) inside=%t", x, y, s.tracker.Inside()), 0)
}

// TouchMove records a touch-move. Only the first point is used; an empty
// slice means the touch left the surface.
func (s *Simulation) TouchMove(points []Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptInput() {
		return
	}
	s.tracker.touch(points)
	s.log.AddVerbose(s.tick, "--", "pointer", "touch", fmt.Sprintf("points=%d inside=%t", len(points), s.tracker.Inside()), float64(len(points)))
}

// SetHoveringContent tells the tracker whether the pointer is over protected
// content that the host lays out itself.
func (s *Simulation) SetHoveringContent(h bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptInput() {
		return
	}
	s.tracker.setHover(h)
}

// Resize reports a new viewport size. It reports whether the layout changed.
func (s *Simulation) Resize(viewW, viewH float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	out := s.field.resize(s.clock.Now(), viewW, viewH, s.game.State())
	s.log.Add(s.tick, "--", "layout", out.String(), fmt.Sprintf("%.0fx%.0f", viewW, viewH), viewW)
	if out != resizeApplied {
		return false
	}
	w, h := s.field.Size()
	s.tracker.layout(w, h, &s.params)
	return true
}

// acceptInput reports whether tracker updates are allowed. Callers hold s.mu.
func (s *Simulation) acceptInput() bool {
	return !s.closed && !s.game.State().Locked()
}

// --- Tick ---

// Tick advances every agent by one frame, records captures, starts the
// celebration when the last agent is caught, and publishes a snapshot to
// subscribers.
func (s *Simulation) Tick() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tick++
	now := s.clock.Now()
	env := tickEnv{
		pointer:  s.tracker.Pointer(),
		inside:   s.tracker.Inside(),
		hovering: s.tracker.Hovering(),
		state:    s.game.State(),
		visible:  s.game.dotsVisible,
	}

	s.links = s.field.links(s.links[:0])
	ids := s.field.step(&env)
	full := s.game.record(ids, now)
	for _, id := range ids {
		a := s.field.agent(id)
		s.log.Add(s.tick, a.label(), "capture", "new",
			fmt.Sprintf("count=%d/%d", s.game.Count(), s.game.Total()), float64(s.game.Count()))
	}
	if full {
		s.celebrateLocked(now, "full_capture")
	}
	if s.log.Verbose() {
		for _, a := range s.field.agents {
			s.log.AddVerbose(s.tick, a.label(), "agent", "speed", fmt.Sprintf("%.2f", a.vel.Len()), a.vel.Len())
		}
	}

	var snap *Snapshot
	var subs []func(*Snapshot)
	if len(s.subs) > 0 {
		snap = s.snapshotLocked(now)
		subs = s.subscribersLocked()
	}
	out := s.takeOutboxLocked()
	s.mu.Unlock()

	s.flush(out)
	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe registers fn to receive a snapshot after every tick. The returned
// cancel function removes it; calling cancel more than once is harmless.
func (s *Simulation) Subscribe(fn func(*Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Simulation) subscribersLocked() []func(*Snapshot) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(*Snapshot), len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}

// --- Celebration ---

// Trigger forces a celebration regardless of capture progress. It is a no-op
// while a celebration is already running. It reports whether a new cycle began.
func (s *Simulation) Trigger() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	started := s.celebrateLocked(s.clock.Now(), "external_trigger")
	out := s.takeOutboxLocked()
	s.mu.Unlock()
	s.flush(out)
	return started
}

// TriggerHook returns a zero-argument function that forces a celebration,
// suitable for wiring to a button or key.
func (s *Simulation) TriggerHook() func() {
	return func() { s.Trigger() }
}

// celebrateLocked enters Celebrating and schedules the timeline. Callers hold s.mu.
func (s *Simulation) celebrateLocked(now time.Time, reason string) bool {
	prev := s.game.State()
	if !s.game.begin(now) {
		s.log.Add(s.tick, "--", "state", "trigger_ignored", fmt.Sprintf("%s while %s", reason, prev), 0)
		return false
	}
	cycle := s.game.Cycle()
	s.log.Add(s.tick, "--", "state", "change",
		fmt.Sprintf("%s → %s (%s)", prev, s.game.State(), reason), float64(cycle))

	p := &s.params
	for i, off := range p.BurstOffsets {
		req := s.burstRequest(cycle, i)
		if off <= 0 {
			s.queueBurstLocked(req)
			continue
		}
		s.timers.after(off, s.onTimer(cycle, func() { s.queueBurstLocked(req) }))
	}
	s.timers.after(p.ResetAfter, s.onTimer(cycle, s.resetLocked))
	s.timers.after(p.ResetAfter+p.RevealAfter, s.onTimer(cycle, s.revealLocked))
	return true
}

func (s *Simulation) burstRequest(cycle, index int) BurstRequest {
	p := &s.params
	palette := make([]string, len(p.BurstPalette))
	copy(palette, p.BurstPalette)
	return BurstRequest{
		Origin:    p.BurstOrigin,
		Particles: p.BurstParticles,
		Spread:    p.BurstSpread,
		Palette:   palette,
		Cycle:     cycle,
		Index:     index,
	}
}

func (s *Simulation) queueBurstLocked(req BurstRequest) {
	s.outbox = append(s.outbox, req)
	s.log.Add(s.tick, "--", "effects", "burst",
		fmt.Sprintf("cycle=%d #%d particles=%d", req.Cycle, req.Index, req.Particles), float64(req.Index))
}

// onTimer wraps a timeline step. The step runs under s.mu and only if the
// simulation is still open and still in the cycle that scheduled it.
func (s *Simulation) onTimer(cycle int, fn func()) func() {
	return func() {
		s.mu.Lock()
		if s.closed || s.game.Cycle() != cycle {
			s.mu.Unlock()
			return
		}
		fn()
		out := s.takeOutboxLocked()
		s.mu.Unlock()
		s.flush(out)
	}
}

// resetLocked clears the capture set at the reset boundary.
func (s *Simulation) resetLocked() {
	cleared := s.game.Count()
	prev := s.game.State()
	s.game.reset()
	s.field.release()
	s.log.Add(s.tick, "--", "timeline", "reset", fmt.Sprintf("cleared=%d", cleared), float64(cleared))
	s.log.Add(s.tick, "--", "state", "change", fmt.Sprintf("%s → %s", prev, s.game.State()), float64(s.game.Cycle()))
}

// revealLocked fades the dots back in and re-opens capture.
func (s *Simulation) revealLocked() {
	prev := s.game.State()
	s.game.reveal()
	s.timers.forget()
	s.log.Add(s.tick, "--", "timeline", "reveal", "dots visible", 0)
	s.log.Add(s.tick, "--", "state", "change", fmt.Sprintf("%s → %s", prev, s.game.State()), float64(s.game.Cycle()))
}

func (s *Simulation) takeOutboxLocked() []BurstRequest {
	if len(s.outbox) == 0 {
		return nil
	}
	out := s.outbox
	s.outbox = nil
	return out
}

// flush hands queued bursts to the effects provider. Callers must not hold s.mu.
func (s *Simulation) flush(reqs []BurstRequest) {
	for _, r := range reqs {
		s.effects.RequestBurst(r)
	}
}

// --- Teardown ---

// Close cancels every pending timeline callback and drops all subscribers.
// Every later call on the simulation is a no-op. Close is idempotent.
func (s *Simulation) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.subs = make(map[int]func(*Snapshot))
	s.outbox = nil
	s.mu.Unlock()

	n := s.timers.close()
	s.log.Add(s.tick, "--", "timeline", "closed", fmt.Sprintf("cancelled=%d", n), float64(n))
}

// Closed reports whether Close has been called.
func (s *Simulation) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// --- Read side ---

// Snapshot returns a read-only copy of the current state.
func (s *Simulation) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.clock.Now())
}

// State returns the lifecycle state.
func (s *Simulation) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.State()
}

// CapturedCount returns the size of the capture set.
func (s *Simulation) CapturedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Count()
}

// TickCount returns how many ticks have run.
func (s *Simulation) TickCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *Simulation) snapshotLocked(now time.Time) *Snapshot {
	w, h := s.field.Size()
	hovering := s.tracker.Hovering()
	state := s.game.State()
	count := s.game.Count()
	scale := 1 + float64(count)*s.params.DotGrowthStep

	snap := &Snapshot{
		Tick:        s.tick,
		Time:        now,
		State:       state,
		Cycle:       s.game.Cycle(),
		Width:       w,
		Height:      h,
		Pointer:     s.tracker.Pointer(),
		Inside:      s.tracker.Inside(),
		Hovering:    hovering,
		Region:      s.tracker.Region(),
		Agents:      make([]AgentView, len(s.field.agents)),
		Links:       append([]Link(nil), s.links...),
		WinMessage:  s.game.showWin,
		DotsVisible: s.game.dotsVisible,
		DotScale:    scale,
	}
	for i, a := range s.field.agents {
		snap.Agents[i] = viewOf(a, state, hovering, scale)
	}

	c := Counter{
		Count:   count,
		Total:   s.game.Total(),
		Anchor:  snap.Pointer,
		Visible: state == StateActive && snap.Inside,
		Flash:   s.game.flashing(now, s.params.CaptureFlash),
	}
	if id := s.game.anchorID(); id >= 0 {
		if a := s.field.agent(id); a != nil {
			c.Anchor = a.pos
			c.HasAnchor = true
		}
	}
	snap.Counter = c
	return snap
}
