// Package confetti simulates celebration bursts as a flat list of falling
// paper pieces. It implements swarm.Effects and knows nothing about how the
// pieces are drawn.
package confetti

import (
	"image/color"
	"math"
	"math/rand"
	"sync"

	"github.com/Garsondee/Particle-Header/internal/config"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/aquilax/go-perlin"
	"github.com/crazy3lf/colorconv"
)

// Piece is one paper fragment. Positions are in surface pixels.
type Piece struct {
	Pos   swarm.Vec2
	Vel   swarm.Vec2
	Angle float64 // radians
	Spin  float64 // radians per second
	W, H  float64
	Color color.RGBA
	Age   float64 // seconds
	Life  float64 // seconds
	Burst int     // burst serial, starting at 1
	phase float64
}

// Alpha is the piece's opacity in [0,1]. Pieces fade out over the last
// third of their life.
func (p Piece) Alpha() float64 {
	if p.Life <= 0 {
		return 0
	}
	left := (p.Life - p.Age) / p.Life
	if left >= 1.0/3 {
		return 1
	}
	if left <= 0 {
		return 0
	}
	return left * 3
}

// Tuning for the piece physics. Speeds are pixels per second.
const (
	minLaunchSpeed = 380.0
	maxLaunchSpeed = 720.0
	gravity        = 620.0
	airDrag        = 1.6 // velocity decay per second
	flutterGain    = 140.0
	flutterFreq    = 1.3
	minLife        = 2.2
	maxLife        = 3.6
	hueJitter      = 8.0 // degrees
	valueJitter    = 0.15

	// DefaultMaxPieces bounds the live piece count; the oldest pieces are
	// dropped first.
	DefaultMaxPieces = 2000
)

// System owns the live confetti. All methods are safe for concurrent use.
type System struct {
	mu        sync.Mutex
	width     float64
	height    float64
	rng       *rand.Rand
	noise     *perlin.Perlin
	pieces    []Piece
	maxPieces int
	bursts    int
	clock     float64
}

// New returns an empty system for a surface of width×height pixels.
func New(width, height float64, seed int64) *System {
	return &System{
		width:     width,
		height:    height,
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- visual jitter only
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		maxPieces: DefaultMaxPieces,
	}
}

// SetSurface updates the surface used to place normalized burst origins.
// Live pieces keep their pixel positions.
func (s *System) SetSurface(width, height float64) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// SetMaxPieces changes the live piece cap. Values below one are ignored.
func (s *System) SetMaxPieces(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.maxPieces = n
	s.trimLocked()
	s.mu.Unlock()
}

// RequestBurst spawns req.Particles pieces at the normalized origin, fanned
// upward across req.Spread degrees.
func (s *System) RequestBurst(req swarm.BurstRequest) {
	if req.Particles <= 0 {
		return
	}
	palette := shadesOf(config.Palette(req.Palette))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bursts++
	origin := swarm.Vec2{X: req.Origin.X * s.width, Y: req.Origin.Y * s.height}
	spread := req.Spread * math.Pi / 180
	for i := 0; i < req.Particles; i++ {
		dir := -math.Pi/2 + (s.rng.Float64()-0.5)*spread
		speed := minLaunchSpeed + s.rng.Float64()*(maxLaunchSpeed-minLaunchSpeed)
		base := palette[s.rng.Intn(len(palette))]
		s.pieces = append(s.pieces, Piece{
			Pos:   origin,
			Vel:   swarm.Vec2{X: math.Cos(dir) * speed, Y: math.Sin(dir) * speed},
			Angle: s.rng.Float64() * 2 * math.Pi,
			Spin:  (s.rng.Float64() - 0.5) * 12,
			W:     4 + s.rng.Float64()*4,
			H:     2 + s.rng.Float64()*3,
			Color: base.jitter(s.rng),
			Life:  minLife + s.rng.Float64()*(maxLife-minLife),
			Burst: s.bursts,
			phase: s.rng.Float64() * 100,
		})
	}
	s.trimLocked()
}

// Update advances every piece by dt seconds and drops the expired ones.
func (s *System) Update(dt float64) {
	if dt <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock += dt
	decay := math.Exp(-airDrag * dt)
	kept := s.pieces[:0]
	for _, p := range s.pieces {
		p.Age += dt
		if p.Age >= p.Life || p.Pos.Y > s.height+40 {
			continue
		}
		drift := s.noise.Noise1D(s.clock*flutterFreq+p.phase) * flutterGain
		p.Vel.X = p.Vel.X*decay + drift*dt
		p.Vel.Y = p.Vel.Y*decay + gravity*dt
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Angle += p.Spin * dt
		kept = append(kept, p)
	}
	s.pieces = kept
}

// Pieces returns a copy of the live pieces, oldest first.
func (s *System) Pieces() []Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Piece(nil), s.pieces...)
}

// Len is the live piece count.
func (s *System) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pieces)
}

// Bursts is the number of bursts received so far.
func (s *System) Bursts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bursts
}

// Clear drops every live piece.
func (s *System) Clear() {
	s.mu.Lock()
	s.pieces = s.pieces[:0]
	s.mu.Unlock()
}

func (s *System) trimLocked() {
	if over := len(s.pieces) - s.maxPieces; over > 0 {
		s.pieces = append(s.pieces[:0], s.pieces[over:]...)
	}
}

// --- Colour ---

type shade struct {
	h, s, v float64 // h in degrees, s and v in [0,1]
}

func shadesOf(cols []color.RGBA) []shade {
	out := make([]shade, len(cols))
	for i, c := range cols {
		out[i] = toShade(c)
	}
	return out
}

// jitter nudges hue and brightness so a burst reads as paper, not paint.
func (sh shade) jitter(rng *rand.Rand) color.RGBA {
	h := math.Mod(sh.h+(rng.Float64()*2-1)*hueJitter+360, 360)
	v := sh.v * (1 - rng.Float64()*valueJitter)
	r, g, b, err := colorconv.HSVToRGB(h, sh.s, v)
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func toShade(c color.RGBA) shade {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	d := hi - lo
	sh := shade{v: hi}
	if hi > 0 {
		sh.s = d / hi
	}
	if d == 0 {
		return sh
	}
	switch hi {
	case r:
		sh.h = 60 * math.Mod((g-b)/d, 6)
	case g:
		sh.h = 60 * ((b-r)/d + 2)
	default:
		sh.h = 60 * ((r-g)/d + 4)
	}
	if sh.h < 0 {
		sh.h += 360
	}
	return sh
}
