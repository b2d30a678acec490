package swarm

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func testAgent(x, y float64) *agent {
	return &agent{
		id:       0,
		pos:      Vec2{x, y},
		target:   Vec2{x, y},
		radius:   3,
		maxSpeed: 2,
		maxForce: 0.2,
		opacity:  maxOpacity,
	}
}

func activeEnv(px, py float64) *tickEnv {
	return &tickEnv{
		pointer: Vec2{px, py},
		inside:  true,
		state:   StateActive,
		visible: true,
	}
}

// --- Capture rule ---

func TestAgent_CapturedAtDistance50(t *testing.T) {
	p := DefaultParams()
	a := testAgent(100, 100)
	if !a.update(activeEnv(150, 100), &p) {
		t.Fatal("agent 50px from the pointer should be captured this tick")
	}
	if !a.captured {
		t.Fatal("captured flag not set")
	}
}

func TestAgent_CaptureIsIrreversible(t *testing.T) {
	p := DefaultParams()
	a := testAgent(100, 100)
	a.update(activeEnv(150, 100), &p)
	env := activeEnv(1000, 1000)
	for i := 0; i < 10; i++ {
		if a.update(env, &p) {
			t.Fatal("an already captured agent reported a second capture")
		}
	}
	if !a.captured {
		t.Fatal("agent released without a reset")
	}
}

func TestAgent_CaptureBlocked(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name string
		env  tickEnv
	}{
		{"outside surface", tickEnv{pointer: Vec2{150, 100}, inside: false, state: StateActive}},
		{"hovering content", tickEnv{pointer: Vec2{150, 100}, inside: true, hovering: true, state: StateActive}},
		{"celebrating", tickEnv{pointer: Vec2{150, 100}, inside: true, state: StateCelebrating}},
		{"resetting", tickEnv{pointer: Vec2{150, 100}, inside: true, state: StateResetting}},
		{"exactly at capture radius", tickEnv{pointer: Vec2{160, 100}, inside: true, state: StateActive}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testAgent(100, 100)
			env := tc.env
			if a.update(&env, &p) || a.captured {
				t.Fatalf("agent captured although %s", tc.name)
			}
		})
	}
}

// --- Pointer force ---

func TestAgent_AttractAt150(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	f := a.pointerForce(Vec2{150, 0}, &p)
	if math.Abs(f.X-0.3) > eps || math.Abs(f.Y) > eps {
		t.Fatalf("force at 150px = %+v, want (0.3, 0) toward the pointer", f)
	}
}

func TestAgent_RepelInsideRadius(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	f := a.pointerForce(Vec2{60, 0}, &p)
	// -(120-60)*0.05 = -3, pointing away from the pointer.
	if math.Abs(f.X+3) > eps || math.Abs(f.Y) > eps {
		t.Fatalf("force at 60px = %+v, want (-3, 0)", f)
	}
}

func TestAgent_NoForceBeyondAttractRadius(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	if f := a.pointerForce(Vec2{0, 250}, &p); f != (Vec2{}) {
		t.Fatalf("force at 250px = %+v, want zero", f)
	}
}

func TestAgent_PointerForceSuppressedWhileLocked(t *testing.T) {
	p := DefaultParams()

	active := testAgent(0, 0)
	active.update(activeEnv(150, 0), &p)
	if math.Abs(active.vel.X-0.3) > eps {
		t.Fatalf("active: vel.X = %.4f, want 0.3", active.vel.X)
	}

	locked := testAgent(0, 0)
	env := activeEnv(150, 0)
	env.state = StateCelebrating
	locked.update(env, &p)
	if locked.vel != (Vec2{}) {
		t.Fatalf("celebrating: vel = %+v, want zero (agent rests on its target)", locked.vel)
	}
}

// --- Captured behaviour ---

func TestAgent_HomingSpeedAndLerp(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	a.captured = true
	a.update(activeEnv(100, 0), &p)

	if got, want := a.vel.Len(), 2*a.maxSpeed; math.Abs(got-want) > eps {
		t.Fatalf("homing speed = %.4f, want %.4f", got, want)
	}
	if math.Abs(a.pos.X-10) > eps || math.Abs(a.pos.Y) > eps {
		t.Fatalf("pos after one homing tick = %+v, want (10, 0)", a.pos)
	}
}

func TestAgent_CapturedFreezesWhileWaiting(t *testing.T) {
	p := DefaultParams()
	for _, env := range []tickEnv{
		{pointer: Vec2{100, 0}, inside: true, hovering: true, state: StateActive, visible: true},
		{pointer: Vec2{100, 0}, inside: true, state: StateCelebrating, visible: true},
	} {
		a := testAgent(0, 0)
		a.captured = true
		a.vel = Vec2{1, 1}
		env := env
		a.update(&env, &p)
		if a.pos != (Vec2{0, 0}) || a.vel != (Vec2{1, 1}) {
			t.Fatalf("state=%s hovering=%t: agent moved to %+v vel %+v", env.state, env.hovering, a.pos, a.vel)
		}
	}
}

// --- Free motion ---

func TestAgent_FreeSpeedCapped(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	a.target = Vec2{500, 500}
	a.vel = Vec2{10, 0}
	// Off-surface pointer: no capture, but the repel force still pushes.
	env := activeEnv(30, 30)
	env.inside = false
	for i := 0; i < 50; i++ {
		a.update(env, &p)
		if s := a.vel.Len(); s > a.maxSpeed+eps {
			t.Fatalf("tick %d: free speed %.4f exceeds cap %.4f", i, s, a.maxSpeed)
		}
	}
}

func TestAgent_ArrivalConverges(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	a.target = Vec2{40, 30}
	env := activeEnv(5000, 5000)
	env.inside = false
	for i := 0; i < 2000; i++ {
		a.update(env, &p)
	}
	if d := a.pos.Dist(a.target); d > 1 {
		t.Fatalf("agent still %.2fpx from its target after 2000 ticks", d)
	}
}

// --- Opacity ---

func TestAgent_OpacityFadeClamped(t *testing.T) {
	p := DefaultParams()
	a := testAgent(0, 0)
	a.opacity = 10
	env := activeEnv(5000, 5000)
	env.visible = false
	a.update(env, &p)
	if a.opacity != 0 {
		t.Fatalf("fade-out below zero: opacity=%.1f", a.opacity)
	}

	a.opacity = 250
	env.visible = true
	a.update(env, &p)
	if a.opacity != maxOpacity {
		t.Fatalf("fade-in above max: opacity=%.1f", a.opacity)
	}
}

func TestNewAgent_RandomConstantsInRange(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test
	extent := Vec2{1280, 684}
	target := Vec2{640, 342}
	for i := 0; i < 200; i++ {
		a := newAgent(i, 0, 0, target, extent, &p, rng)
		if a.radius < p.Radius.Min || a.radius > p.Radius.Max {
			t.Fatalf("radius %.2f out of range", a.radius)
		}
		if a.maxSpeed < p.MaxSpeed.Min || a.maxSpeed > p.MaxSpeed.Max {
			t.Fatalf("maxSpeed %.2f out of range", a.maxSpeed)
		}
		if a.maxForce < p.MaxForce.Min || a.maxForce > p.MaxForce.Max {
			t.Fatalf("maxForce %.2f out of range", a.maxForce)
		}
		if math.Abs(a.pos.X-target.X) > extent.X*p.SpawnJitter+eps ||
			math.Abs(a.pos.Y-target.Y) > extent.Y*p.SpawnJitter+eps {
			t.Fatalf("spawn %+v too far from target %+v", a.pos, target)
		}
		if a.vel.Len() > a.maxSpeed+eps {
			t.Fatalf("spawn speed %.2f above cap %.2f", a.vel.Len(), a.maxSpeed)
		}
		if a.opacity != maxOpacity {
			t.Fatalf("spawn opacity %.1f, want %d", a.opacity, maxOpacity)
		}
	}
}
