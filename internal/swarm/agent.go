package swarm

import (
	"fmt"
	"math"
	"math/rand"
)

const maxOpacity = 255

// agent is one steering particle. Only the Field holds agents; everything
// outside the package sees them through AgentView copies keyed by id.
type agent struct {
	id       int
	col, row int // grid cell, fixed for the agent's lifetime

	pos    Vec2
	vel    Vec2
	acc    Vec2
	target Vec2 // rest target, the cell centre

	radius   float64
	maxSpeed float64
	maxForce float64

	captured bool
	opacity  float64
}

// tickEnv is the read-once-per-tick input every agent sees.
type tickEnv struct {
	pointer  Vec2
	inside   bool
	hovering bool
	state    GameState
	visible  bool
}

func uniform(rng *rand.Rand, r FloatRange) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// newAgent places an agent near target with randomized constants drawn from p.
func newAgent(id, col, row int, target Vec2, extent Vec2, p *Params, rng *rand.Rand) *agent {
	jx := (rng.Float64()*2 - 1) * extent.X * p.SpawnJitter
	jy := (rng.Float64()*2 - 1) * extent.Y * p.SpawnJitter
	heading := rng.Float64() * 2 * math.Pi
	speed := uniform(rng, p.InitialSpeed)
	a := &agent{
		id:       id,
		col:      col,
		row:      row,
		pos:      Vec2{target.X + jx, target.Y + jy},
		vel:      Vec2{math.Cos(heading) * speed, math.Sin(heading) * speed},
		target:   target,
		radius:   uniform(rng, p.Radius),
		maxSpeed: uniform(rng, p.MaxSpeed),
		maxForce: uniform(rng, p.MaxForce),
		opacity:  maxOpacity,
	}
	// The spawn velocity may not exceed the agent's own cap.
	a.vel = a.vel.Limit(a.maxSpeed)
	return a
}

func (a *agent) label() string {
	return fmt.Sprintf("P%02d", a.id)
}

func (a *agent) applyForce(f Vec2) {
	a.acc = a.acc.Add(f)
}

// pointerForce is the repel/attract force a free agent feels from the pointer.
func (a *agent) pointerForce(pointer Vec2, p *Params) Vec2 {
	toPointer := pointer.Sub(a.pos)
	d := toPointer.Len()
	switch {
	case d < p.RepelRadius:
		return toPointer.WithLen(-(p.RepelRadius - d) * p.RepelGain)
	case d < p.AttractRadius:
		return toPointer.WithLen((d - p.RepelRadius) * p.AttractGain)
	default:
		return Vec2{}
	}
}

// arrivalForce steers toward the rest target, slowing inside ArrivalRadius.
func (a *agent) arrivalForce(p *Params) Vec2 {
	desired := a.target.Sub(a.pos)
	d := desired.Len()
	speed := a.maxSpeed
	if d < p.ArrivalRadius {
		speed = mapRange(d, 0, p.ArrivalRadius, 0, a.maxSpeed)
	}
	desired = desired.WithLen(speed)
	steer := desired.Sub(a.vel).Limit(a.maxForce)
	return steer.Scale(p.SteerScale)
}

// update advances the agent one tick. It reports whether the agent was
// captured during this tick.
func (a *agent) update(env *tickEnv, p *Params) bool {
	d := a.pos.Dist(env.pointer)

	newly := false
	if !a.captured && env.state == StateActive && env.inside && d < p.CaptureRadius && !env.hovering {
		a.captured = true
		newly = true
	}

	if a.captured {
		// Waiting captured agents freeze in place.
		if env.state == StateActive && !env.hovering {
			a.vel = env.pointer.Sub(a.pos).WithLen(a.maxSpeed * p.HomingSpeedScale)
			a.pos = a.pos.Lerp(env.pointer, p.HomingLerp)
		}
	} else {
		if !env.state.Locked() {
			a.applyForce(a.pointerForce(env.pointer, p))
		}
		a.applyForce(a.arrivalForce(p))
		a.vel = a.vel.Add(a.acc).Limit(a.maxSpeed)
		a.pos = a.pos.Add(a.vel)
		a.acc = Vec2{}
	}

	if env.visible {
		a.opacity = math.Min(a.opacity+p.FadeInStep, maxOpacity)
	} else {
		a.opacity = math.Max(a.opacity-p.FadeOutStep, 0)
	}
	return newly
}
