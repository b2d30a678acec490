package swarm

import "time"

// WinMessage is shown while a celebration runs.
const WinMessage = "Congratulations! You've collected all dots!"

// AgentView is a read-only copy of one agent's state for renderers.
type AgentView struct {
	ID       int
	Col, Row int
	Pos      Vec2
	Vel      Vec2
	Target   Vec2
	Radius   float64
	MaxSpeed float64
	MaxForce float64
	Opacity  float64 // 0..255
	Captured bool
	Variant  Variant
	Diameter float64 // draw size in pixels
	Alpha    float64 // fill alpha 0..255, opacity already applied
}

// Drawn reports whether a renderer should draw the agent at all.
func (v AgentView) Drawn() bool { return v.Opacity > 0 }

// Counter is what the on-screen capture counter shows.
type Counter struct {
	Count     int
	Total     int
	Anchor    Vec2 // first captured agent, or the pointer when HasAnchor is false
	HasAnchor bool
	Visible   bool
	Flash     bool // a capture happened recently
}

// Snapshot is the published, read-only state after a tick.
type Snapshot struct {
	Tick  int
	Time  time.Time
	State GameState
	Cycle int

	Width, Height float64
	Pointer       Vec2
	Inside        bool
	Hovering      bool
	Region        Rect

	Agents []AgentView
	Links  []Link

	Counter     Counter
	WinMessage  bool
	DotsVisible bool
	DotScale    float64
}

// Agent returns the view for id.
func (s *Snapshot) Agent(id int) (AgentView, bool) {
	if id < 0 || id >= len(s.Agents) {
		return AgentView{}, false
	}
	return s.Agents[id], true
}

// viewOf builds the render view of a.
func viewOf(a *agent, state GameState, hovering bool, dotScale float64) AgentView {
	v := AgentView{
		ID:       a.id,
		Col:      a.col,
		Row:      a.row,
		Pos:      a.pos,
		Vel:      a.vel,
		Target:   a.target,
		Radius:   a.radius,
		MaxSpeed: a.maxSpeed,
		MaxForce: a.maxForce,
		Opacity:  a.opacity,
		Captured: a.captured,
	}
	fade := a.opacity / maxOpacity
	switch {
	case a.captured && state == StateActive && !hovering:
		v.Variant = VariantCaptured
		v.Diameter = a.radius * 2.5 * dotScale
		v.Alpha = 200 * fade
	case a.captured && state == StateActive:
		v.Variant = VariantCapturedWaiting
		v.Diameter = a.radius * 2.5 * dotScale
		v.Alpha = 50 * fade
	default:
		v.Variant = VariantFree
		v.Diameter = a.radius * 2
		home := clamp(a.pos.Dist(a.target), 0, 100)
		v.Alpha = mapRange(home, 0, 100, 90, 40) * fade
	}
	return v
}
