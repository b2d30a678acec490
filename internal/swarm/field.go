package swarm

import (
	"math/rand"
	"time"
)

// Link is a proximity line between two agents, drawn with Alpha in [0,20].
type Link struct {
	A, B  int // agent ids, A < B in iteration order
	Alpha float64
}

// resizeOutcome is what Field.resize did with a resize event.
type resizeOutcome int

const (
	resizeApplied    resizeOutcome = iota
	resizeDropped                  // inside the throttle window
	resizeIgnored                  // celebration lock-out
	resizeDegenerate               // zero or negative extent
)

func (r resizeOutcome) String() string {
	switch r {
	case resizeApplied:
		return "resize_applied"
	case resizeDropped:
		return "resize_dropped"
	case resizeIgnored:
		return "resize_ignored"
	case resizeDegenerate:
		return "resize_degenerate"
	default:
		return "resize_unknown"
	}
}

// Field owns the fixed agent population laid out on a Cols x Rows grid.
type Field struct {
	params *Params
	agents []*agent // ordered by id

	width  float64 // surface extent
	height float64

	lastResize time.Time // zero until the first applied resize
}

// newField lays out TotalParticles agents column by column. Agent id i sits
// in column i/Rows, row i%Rows, so ids are deterministic for a surface size.
func newField(p *Params, width, height float64, rng *rand.Rand) *Field {
	f := &Field{
		params: p,
		width:  width,
		height: height,
		agents: make([]*agent, 0, p.TotalParticles),
	}
	extent := Vec2{width, height}
	for col := 0; col < p.Cols; col++ {
		for row := 0; row < p.Rows; row++ {
			if len(f.agents) >= p.TotalParticles {
				break
			}
			target := f.cellCentre(col, row)
			f.agents = append(f.agents, newAgent(len(f.agents), col, row, target, extent, p, rng))
		}
	}
	return f
}

// gridGeometry returns the grid's top-left corner and cell size for the
// current surface.
func (f *Field) gridGeometry() (start, cell Vec2) {
	gw := f.width * f.params.GridFill
	gh := f.height * f.params.GridFill
	start = Vec2{(f.width - gw) / 2, (f.height - gh) / 2}
	cell = Vec2{gw / float64(f.params.Cols), gh / float64(f.params.Rows)}
	return start, cell
}

func (f *Field) cellCentre(col, row int) Vec2 {
	start, cell := f.gridGeometry()
	return Vec2{
		X: start.X + cell.X*(float64(col)+0.5),
		Y: start.Y + cell.Y*(float64(row)+0.5),
	}
}

// retarget recomputes every rest target from the current surface size.
// Positions and velocities are left alone so agents drift to the new grid.
func (f *Field) retarget() {
	for _, a := range f.agents {
		a.target = f.cellCentre(a.col, a.row)
	}
}

// resize applies a viewport change subject to the lock-out and throttle.
func (f *Field) resize(now time.Time, viewW, viewH float64, state GameState) resizeOutcome {
	if state.Locked() {
		return resizeIgnored
	}
	w := viewW
	h := viewH * f.params.SurfaceHeight
	if w <= 0 || h <= 0 {
		return resizeDegenerate
	}
	if !f.lastResize.IsZero() && now.Sub(f.lastResize) < f.params.ResizeThrottle {
		return resizeDropped
	}
	f.lastResize = now
	f.width = w
	f.height = h
	f.retarget()
	return resizeApplied
}

// contains reports whether p lies on the surface, edges included.
func (f *Field) contains(p Vec2) bool {
	return p.X >= 0 && p.X <= f.width && p.Y >= 0 && p.Y <= f.height
}

// links collects proximity lines between each agent and the agents after it.
func (f *Field) links(dst []Link) []Link {
	p := f.params
	for i, a := range f.agents {
		if a.opacity <= p.LinkOpacity {
			continue
		}
		for _, b := range f.agents[i+1:] {
			if b.opacity <= p.LinkOpacity {
				continue
			}
			d := a.pos.Dist(b.pos)
			if d >= p.LinkDistance {
				continue
			}
			alpha := mapRange(d, 0, p.LinkDistance, 20, 0) * (a.opacity / maxOpacity) * (b.opacity / maxOpacity)
			dst = append(dst, Link{A: a.id, B: b.id, Alpha: alpha})
		}
	}
	return dst
}

// step advances every agent once and returns the ids captured this tick.
func (f *Field) step(env *tickEnv) []int {
	var captured []int
	for _, a := range f.agents {
		if a.update(env, f.params) {
			captured = append(captured, a.id)
		}
	}
	return captured
}

// release clears every agent's captured flag.
func (f *Field) release() {
	for _, a := range f.agents {
		a.captured = false
	}
}

func (f *Field) agent(id int) *agent {
	if id < 0 || id >= len(f.agents) {
		return nil
	}
	return f.agents[id]
}

// Size returns the current surface extent.
func (f *Field) Size() (w, h float64) {
	return f.width, f.height
}
