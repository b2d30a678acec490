package confetti

import (
	"image/color"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/Garsondee/Particle-Header/internal/swarm"
)

func centreBurst(n int, palette ...string) swarm.BurstRequest {
	return swarm.BurstRequest{
		Origin:    swarm.Vec2{X: 0.5, Y: 0.5},
		Particles: n,
		Spread:    70,
		Palette:   palette,
	}
}

func TestRequestBurst_SpawnsAtOrigin(t *testing.T) {
	s := New(1000, 600, 1)
	s.RequestBurst(centreBurst(100, "#9b87f5"))

	pieces := s.Pieces()
	if len(pieces) != 100 {
		t.Fatalf("pieces = %d, want 100", len(pieces))
	}
	for i, p := range pieces {
		if p.Pos != (swarm.Vec2{X: 500, Y: 300}) {
			t.Fatalf("piece %d spawned at %+v", i, p.Pos)
		}
		if p.Vel.Y >= 0 {
			t.Fatalf("piece %d launched downward: %+v", i, p.Vel)
		}
		// 70° spread keeps every launch within 35° of vertical.
		if math.Abs(p.Vel.X) > math.Abs(p.Vel.Y)*math.Tan(35*math.Pi/180)+1e-9 {
			t.Fatalf("piece %d outside spread: %+v", i, p.Vel)
		}
		if p.Burst != 1 || p.Alpha() != 1 {
			t.Fatalf("piece %d burst=%d alpha=%v", i, p.Burst, p.Alpha())
		}
	}
	if s.Bursts() != 1 {
		t.Fatalf("Bursts = %d", s.Bursts())
	}
}

func TestRequestBurst_ZeroParticlesIgnored(t *testing.T) {
	s := New(1000, 600, 1)
	s.RequestBurst(centreBurst(0, "#fff"))
	if s.Len() != 0 || s.Bursts() != 0 {
		t.Fatalf("len=%d bursts=%d", s.Len(), s.Bursts())
	}
}

func TestRequestBurst_ColoursStayNearPalette(t *testing.T) {
	s := New(800, 600, 3)
	s.RequestBurst(centreBurst(200, "#ff0000"))
	for _, p := range s.Pieces() {
		c := p.Color
		if c.A != 0xff || c.R < 200 || c.G > 60 || c.B > 60 {
			t.Fatalf("shade %+v drifted away from red", c)
		}
	}
}

func TestRequestBurst_BadPaletteFallsBackToWhite(t *testing.T) {
	s := New(800, 600, 3)
	s.RequestBurst(centreBurst(5, "not-a-colour"))
	for _, p := range s.Pieces() {
		if p.Color.R != p.Color.G || p.Color.G != p.Color.B {
			t.Fatalf("fallback shade not grey: %+v", p.Color)
		}
	}
}

func TestUpdate_GravityAndExpiry(t *testing.T) {
	s := New(1000, 600, 7)
	s.RequestBurst(centreBurst(50, "#0EA5E9"))

	for i := 0; i < 30; i++ {
		s.Update(1.0 / 60)
	}
	for _, p := range s.Pieces() {
		if p.Pos.Y >= 300 {
			t.Fatalf("piece fell below origin after half a second: %+v", p.Pos)
		}
	}

	// Past the longest lifetime nothing survives.
	for i := 0; i < 240; i++ {
		s.Update(1.0 / 60)
	}
	if s.Len() != 0 {
		t.Fatalf("%d pieces outlived maxLife", s.Len())
	}
}

func TestUpdate_NonPositiveDtIsNoop(t *testing.T) {
	s := New(1000, 600, 7)
	s.RequestBurst(centreBurst(3, "#fff"))
	before := s.Pieces()
	s.Update(0)
	s.Update(-1)
	if !reflect.DeepEqual(before, s.Pieces()) {
		t.Fatal("Update with dt<=0 moved pieces")
	}
}

func TestMaxPiecesDropsOldest(t *testing.T) {
	s := New(1000, 600, 1)
	s.SetMaxPieces(150)
	s.RequestBurst(centreBurst(100, "#fff"))
	s.RequestBurst(centreBurst(100, "#fff"))
	pieces := s.Pieces()
	if len(pieces) != 150 {
		t.Fatalf("len = %d, want 150", len(pieces))
	}
	if pieces[0].Burst != 1 || pieces[len(pieces)-1].Burst != 2 {
		t.Fatalf("oldest not dropped first: first=%d last=%d", pieces[0].Burst, pieces[len(pieces)-1].Burst)
	}
	for _, p := range pieces[50:] {
		if p.Burst != 2 {
			t.Fatal("second burst pieces missing")
		}
	}
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() []Piece {
		s := New(1000, 600, 42)
		s.RequestBurst(centreBurst(40, "#9b87f5", "#D946EF"))
		for i := 0; i < 20; i++ {
			s.Update(1.0 / 60)
		}
		return s.Pieces()
	}
	if !reflect.DeepEqual(run(), run()) {
		t.Fatal("same seed produced different confetti")
	}
}

func TestSetSurfaceMovesLaterOrigins(t *testing.T) {
	s := New(1000, 600, 1)
	s.SetSurface(200, 100)
	s.RequestBurst(centreBurst(1, "#fff"))
	if p := s.Pieces()[0]; p.Pos != (swarm.Vec2{X: 100, Y: 50}) {
		t.Fatalf("origin %+v", p.Pos)
	}
}

func TestAlpha(t *testing.T) {
	cases := []struct {
		age, life, want float64
	}{
		{0, 3, 1},
		{2, 3, 1},
		{2.5, 3, 0.5},
		{3, 3, 0},
		{1, 0, 0},
	}
	for _, c := range cases {
		if got := (Piece{Age: c.age, Life: c.life}).Alpha(); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Alpha(age=%v life=%v) = %v, want %v", c.age, c.life, got, c.want)
		}
	}
}

func TestToShade(t *testing.T) {
	cases := []struct {
		c       color.RGBA
		h, s, v float64
	}{
		{color.RGBA{R: 255}, 0, 1, 1},
		{color.RGBA{G: 255}, 120, 1, 1},
		{color.RGBA{B: 255}, 240, 1, 1},
		{color.RGBA{R: 128, G: 128, B: 128}, 0, 0, 128.0 / 255},
	}
	for _, c := range cases {
		got := toShade(c.c)
		if math.Abs(got.h-c.h) > 1e-9 || math.Abs(got.s-c.s) > 1e-9 || math.Abs(got.v-c.v) > 1e-9 {
			t.Errorf("toShade(%+v) = %+v", c.c, got)
		}
	}
}

func TestConcurrentBurstsAndUpdates(t *testing.T) {
	s := New(1000, 600, 5)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.RequestBurst(centreBurst(10, "#fff"))
				s.Update(1.0 / 120)
				_ = s.Pieces()
			}
		}()
	}
	wg.Wait()
	if s.Bursts() != 100 {
		t.Fatalf("Bursts = %d, want 100", s.Bursts())
	}
}
