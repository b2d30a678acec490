package swarm

import "testing"

func TestTracker_StartsCentredOutside(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1000, 600, &p)
	if tr.Pointer() != (Vec2{500, 300}) {
		t.Fatalf("initial pointer %+v, want centre", tr.Pointer())
	}
	if tr.Inside() {
		t.Fatal("pointer inside before any input")
	}
}

func TestTracker_Bounds(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1000, 600, &p)
	cases := []struct {
		at     Vec2
		inside bool
	}{
		{Vec2{10, 10}, true},
		{Vec2{0, 0}, true},
		{Vec2{1000, 600}, true},
		{Vec2{-1, 10}, false},
		{Vec2{10, 601}, false},
		{Vec2{1e9, -1e9}, false},
	}
	for _, tc := range cases {
		tr.move(tc.at)
		if tr.Inside() != tc.inside {
			t.Errorf("move(%+v): inside=%t want %t", tc.at, tr.Inside(), tc.inside)
		}
		if tr.Pointer() != tc.at {
			t.Errorf("move(%+v): pointer not recorded", tc.at)
		}
	}
}

func TestTracker_TouchUsesFirstPoint(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1000, 600, &p)
	tr.touch([]Vec2{{100, 100}, {900, 500}})
	if tr.Pointer() != (Vec2{100, 100}) || !tr.Inside() {
		t.Fatalf("touch: pointer %+v inside=%t", tr.Pointer(), tr.Inside())
	}
	tr.touch(nil)
	if tr.Inside() {
		t.Fatal("touch with no points should leave the surface")
	}
}

func TestTracker_ProtectedRegion(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1000, 600, &p)
	r := tr.Region()
	if r != (Rect{X: 372, Y: 236, W: 256, H: 128}) {
		t.Fatalf("region %+v, want 256x128 centred", r)
	}
	tr.move(Vec2{500, 300})
	if !tr.Hovering() {
		t.Fatal("centre of the surface should be over protected content")
	}
	tr.move(Vec2{100, 100})
	if tr.Hovering() {
		t.Fatal("corner should not be over protected content")
	}
	tr.setHover(true)
	if !tr.Hovering() {
		t.Fatal("explicit hover flag ignored")
	}
}

func TestTracker_LayoutRecentresRegion(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1000, 600, &p)
	tr.move(Vec2{300, 150})
	tr.layout(600, 300, &p)
	if r := tr.Region(); r.X != 172 || r.Y != 86 {
		t.Fatalf("region after layout %+v", r)
	}
	if !tr.Hovering() {
		t.Fatal("pointer at the new centre should now hover the region")
	}
}

func TestTracker_ShrinkLeavesPointerOutside(t *testing.T) {
	p := DefaultParams()
	tr := newTracker(1280, 684, &p)
	tr.move(Vec2{1200, 300})
	if !tr.Inside() {
		t.Fatal("pointer at (1200,300) should be inside a 1280 wide surface")
	}
	tr.layout(800, 684, &p)
	if tr.Inside() {
		t.Fatal("pointer beyond the shrunk surface still reads as inside")
	}
	tr.layout(1280, 684, &p)
	if tr.Inside() {
		t.Fatal("growing the surface back should not re-enter a pointer that has not moved")
	}
	tr.move(Vec2{1200, 300})
	if !tr.Inside() {
		t.Fatal("move after regrow should read as inside")
	}
	tr.layout(1280, 400, &p)
	if !tr.Inside() {
		t.Fatal("pointer still covered by the new surface dropped out")
	}
}

func TestTracker_ZeroRegionDisablesHover(t *testing.T) {
	p := DefaultParams()
	p.ProtectedWidth, p.ProtectedHeight = 0, 0
	tr := newTracker(1000, 600, &p)
	tr.move(Vec2{500, 300})
	if tr.Hovering() {
		t.Fatal("empty region reported hover")
	}
}
