// Package replay records the inputs that reach a swarm.Simulation and plays
// them back on a ManualClock. Recordings carry the seed and a fingerprint of
// the tuning; playback refuses anything else and then reproduces the original
// run frame for frame.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is written into every recording. Version 2 added the
// tuning fingerprint.
const FormatVersion = 2

// Kind names an input event.
type Kind string

const (
	KindPointer Kind = "pointer"
	KindTouch   Kind = "touch"
	KindHover   Kind = "hover"
	KindResize  Kind = "resize"
	KindTrigger Kind = "trigger"
	KindTick    Kind = "tick"
)

// Event is one input, stamped with its offset from the start of the
// recording in microseconds.
type Event struct {
	AtUs   int64        `msgpack:"t"`
	Kind   Kind         `msgpack:"k"`
	X      float64      `msgpack:"x,omitempty"`
	Y      float64      `msgpack:"y,omitempty"`
	Points [][2]float64 `msgpack:"p,omitempty"`
	On     bool         `msgpack:"b,omitempty"`
	W      float64      `msgpack:"w,omitempty"`
	H      float64      `msgpack:"h,omitempty"`
}

// At is the event offset as a duration.
func (e Event) At() time.Duration { return time.Duration(e.AtUs) * time.Microsecond }

// Recording is a complete replayable session.
type Recording struct {
	Version    int     `msgpack:"version"`
	Seed       int64   `msgpack:"seed"`
	Tuning     uint64  `msgpack:"tuning"` // TuningHash of the recorded Params
	ViewW      float64 `msgpack:"viewW"`
	ViewH      float64 `msgpack:"viewH"`
	DurationUs int64   `msgpack:"durationUs"`
	Events     []Event `msgpack:"events"`
}

// Duration is the recorded session length.
func (r *Recording) Duration() time.Duration {
	return time.Duration(r.DurationUs) * time.Microsecond
}

// Ticks counts the recorded frames.
func (r *Recording) Ticks() int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == KindTick {
			n++
		}
	}
	return n
}

// Validate checks the header and that events are in time order.
func (r *Recording) Validate() error {
	if r.Version != FormatVersion {
		return fmt.Errorf("unsupported replay version %d (want %d)", r.Version, FormatVersion)
	}
	if r.Tuning == 0 {
		return errors.New("replay has no tuning fingerprint")
	}
	if r.ViewW <= 0 || r.ViewH <= 0 {
		return fmt.Errorf("replay viewport %.0fx%.0f has no area", r.ViewW, r.ViewH)
	}
	var last int64
	for i, e := range r.Events {
		if e.AtUs < last {
			return fmt.Errorf("event %d (%s) at %dus is before the previous event at %dus", i, e.Kind, e.AtUs, last)
		}
		last = e.AtUs
	}
	if r.DurationUs < last {
		return fmt.Errorf("duration %dus ends before the last event at %dus", r.DurationUs, last)
	}
	return nil
}

// --- Recorder ---

// Recorder forwards inputs to a simulation and records them. Use it in place
// of the simulation's own input methods.
type Recorder struct {
	mu    sync.Mutex
	sim   *swarm.Simulation
	start time.Time
	rec   Recording
}

// NewRecorder starts recording sim at its current clock reading. viewW and
// viewH are the viewport the simulation was created with.
func NewRecorder(sim *swarm.Simulation, viewW, viewH float64) *Recorder {
	return &Recorder{
		sim:   sim,
		start: sim.Now(),
		rec: Recording{
			Version: FormatVersion,
			Seed:    sim.Seed(),
			Tuning:  TuningHash(sim.Params()),
			ViewW:   viewW,
			ViewH:   viewH,
		},
	}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	e.AtUs = r.sim.Now().Sub(r.start).Microseconds()
	if n := len(r.rec.Events); n > 0 && e.AtUs < r.rec.Events[n-1].AtUs {
		e.AtUs = r.rec.Events[n-1].AtUs
	}
	r.rec.Events = append(r.rec.Events, e)
	r.mu.Unlock()
}

// PointerMove records and forwards a pointer move.
func (r *Recorder) PointerMove(x, y float64) {
	r.add(Event{Kind: KindPointer, X: x, Y: y})
	r.sim.PointerMove(x, y)
}

// TouchMove records and forwards a touch move.
func (r *Recorder) TouchMove(points []swarm.Vec2) {
	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = [2]float64{p.X, p.Y}
	}
	r.add(Event{Kind: KindTouch, Points: pts})
	r.sim.TouchMove(points)
}

// SetHoveringContent records and forwards the explicit hover flag.
func (r *Recorder) SetHoveringContent(h bool) {
	r.add(Event{Kind: KindHover, On: h})
	r.sim.SetHoveringContent(h)
}

// Resize records and forwards a viewport change.
func (r *Recorder) Resize(viewW, viewH float64) bool {
	r.add(Event{Kind: KindResize, W: viewW, H: viewH})
	return r.sim.Resize(viewW, viewH)
}

// Trigger records and forwards an external celebration trigger.
func (r *Recorder) Trigger() bool {
	r.add(Event{Kind: KindTrigger})
	return r.sim.Trigger()
}

// Tick records and forwards one frame.
func (r *Recorder) Tick() {
	r.add(Event{Kind: KindTick})
	r.sim.Tick()
}

// Len is the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rec.Events)
}

// Recording returns a copy of everything recorded so far, with the duration
// set to the simulation's current clock offset.
func (r *Recorder) Recording() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.rec
	out.Events = append([]Event(nil), r.rec.Events...)
	out.DurationUs = r.sim.Now().Sub(r.start).Microseconds()
	if n := len(out.Events); n > 0 && out.DurationUs < out.Events[n-1].AtUs {
		out.DurationUs = out.Events[n-1].AtUs
	}
	return &out
}

// --- Playback ---

// ErrSeedMismatch is returned by Play when the simulation was not built from
// the recording's seed.
var ErrSeedMismatch = errors.New("replay: simulation seed differs from recording")

// ErrTuningMismatch is returned when a recording is played under Params
// other than the ones it was recorded with.
var ErrTuningMismatch = errors.New("replay: tuning differs from recording")

// TuningHash fingerprints p. Equal Params always hash equal.
func TuningHash(p swarm.Params) uint64 {
	h := fnv.New64a()
	if data, err := msgpack.Marshal(&p); err == nil {
		_, _ = h.Write(data)
	} else {
		fmt.Fprintf(h, "%#v", p)
	}
	if sum := h.Sum64(); sum != 0 {
		return sum
	}
	return 1
}

func checkTuning(rec *Recording, p swarm.Params) error {
	if got := TuningHash(p); got != rec.Tuning {
		return fmt.Errorf("%w: params %016x, recording %016x", ErrTuningMismatch, got, rec.Tuning)
	}
	return nil
}

// NewSimulation builds a simulation and manual clock matching rec. The clock
// starts at start.
func NewSimulation(rec *Recording, p swarm.Params, start time.Time, opts ...swarm.Option) (*swarm.Simulation, *swarm.ManualClock, error) {
	if err := rec.Validate(); err != nil {
		return nil, nil, err
	}
	if err := checkTuning(rec, p); err != nil {
		return nil, nil, err
	}
	clock := swarm.NewManualClock(start)
	opts = append(opts, swarm.WithSeed(rec.Seed), swarm.WithClock(clock))
	sim, err := swarm.New(p, rec.ViewW, rec.ViewH, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build replay simulation: %w", err)
	}
	return sim, clock, nil
}

// Play applies every event of rec to sim, advancing clock to each event's
// offset first, and finally to the recorded duration. Offsets are measured
// from clock's reading when Play is called.
func Play(rec *Recording, sim *swarm.Simulation, clock *swarm.ManualClock) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if sim.Seed() != rec.Seed {
		return fmt.Errorf("%w: sim %d, recording %d", ErrSeedMismatch, sim.Seed(), rec.Seed)
	}
	if err := checkTuning(rec, sim.Params()); err != nil {
		return err
	}
	start := clock.Now()
	advanceTo := func(at time.Duration) {
		if d := start.Add(at).Sub(clock.Now()); d > 0 {
			clock.Advance(d)
		}
	}
	for i, e := range rec.Events {
		advanceTo(e.At())
		if err := apply(sim, e); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	advanceTo(rec.Duration())
	return nil
}

func apply(sim *swarm.Simulation, e Event) error {
	switch e.Kind {
	case KindPointer:
		sim.PointerMove(e.X, e.Y)
	case KindTouch:
		pts := make([]swarm.Vec2, len(e.Points))
		for i, p := range e.Points {
			pts[i] = swarm.Vec2{X: p[0], Y: p[1]}
		}
		sim.TouchMove(pts)
	case KindHover:
		sim.SetHoveringContent(e.On)
	case KindResize:
		sim.Resize(e.W, e.H)
	case KindTrigger:
		sim.Trigger()
	case KindTick:
		sim.Tick()
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

// --- Files ---

// Encode writes rec as msgpack.
func Encode(w io.Writer, rec *Recording) error {
	if err := msgpack.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

// Decode reads and validates a msgpack recording.
func Decode(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid replay: %w", err)
	}
	return &rec, nil
}

// Save writes rec to path.
func Save(path string, rec *Recording) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write replay file: %w", err)
	}
	return nil
}

// Load reads a recording from path.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied replay path
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}
