// Package audio plays a short synthesized chime for every celebration burst.
package audio

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	chimeDuration = 900 * time.Millisecond
	chimeAttack   = 6 * time.Millisecond
	sparkleDelay  = 70 * time.Millisecond
	sparkleLength = 400 * time.Millisecond

	// baseVolume is the Volume (log2 gain) of a burst of referenceParticles.
	baseVolume         = -1.5
	referenceParticles = 100
	maxVoices          = 8
)

// Burst notes climb a major pentatonic scale from C5, one step per burst in
// the cycle.
var pentatonic = []float64{523.25, 587.33, 659.25, 783.99, 880.00, 1046.50}

// Chime is a swarm.Effects provider. RequestBurst never blocks on playback.
type Chime struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	device bool
	muted  bool
	closed bool
	played int
}

// NewChime opens the default audio device. When that fails the chime stays
// usable but silent.
func NewChime(muted bool) *Chime {
	c := &Chime{mixer: &beep.Mixer{}, muted: muted}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Printf("[Audio] Warning: %v (audio disabled)", fmt.Errorf("failed to open audio device: %w", err))
		return c
	}
	speaker.Play(c.mixer)
	c.device = true
	return c
}

// NewSilentChime returns a chime that never touches an audio device.
func NewSilentChime() *Chime {
	return &Chime{mixer: &beep.Mixer{}}
}

// RequestBurst queues one chime voice for req.
func (c *Chime) RequestBurst(req swarm.BurstRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.muted {
		return
	}
	c.played++
	if !c.device {
		return
	}
	v := voice(req, sampleRate)
	speaker.Lock()
	if c.mixer.Len() < maxVoices {
		c.mixer.Add(v)
	}
	speaker.Unlock()
}

// SetMuted silences later bursts. Voices already playing finish.
func (c *Chime) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// Muted reports the mute flag.
func (c *Chime) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Played counts bursts that were voiced (not muted or closed), whether or not
// a device was available.
func (c *Chime) Played() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}

// Close stops every voice. Later bursts are ignored. Safe to call twice.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.device {
		speaker.Lock()
		c.mixer.Clear()
		speaker.Unlock()
	}
}

// voice builds the streamer for one burst: a bell tone picked by the burst's
// position in its cycle, plus a short octave sparkle, scaled by burst size.
func voice(req swarm.BurstRequest, rate beep.SampleRate) beep.Streamer {
	freq := pentatonic[noteIndex(req.Index)]

	fund := newEnvelope(newSine(freq, chimeDuration, rate), chimeDuration, chimeAttack, rate)
	over := newEnvelope(newSine(freq*2, sparkleLength, rate), sparkleLength, chimeAttack, rate)
	sparkle := beep.Seq(beep.Silence(rate.N(sparkleDelay)), over)

	mixed := beep.Mix(
		&effects.Volume{Streamer: fund, Base: 2, Volume: -0.5},
		&effects.Volume{Streamer: sparkle, Base: 2, Volume: -2},
	)
	return &effects.Volume{Streamer: mixed, Base: 2, Volume: burstVolume(req.Particles)}
}

func noteIndex(i int) int {
	if i < 0 {
		i = -i
	}
	return i % len(pentatonic)
}

// burstVolume grows by half a doubling for every doubling of particles.
func burstVolume(particles int) float64 {
	if particles < 1 {
		particles = 1
	}
	v := baseVolume + 0.5*math.Log2(float64(particles)/referenceParticles)
	return math.Min(v, 0)
}

// --- Synthesis ---

type sine struct {
	freq     float64
	phase    float64
	position int
	length   int
	rate     beep.SampleRate
}

func newSine(freq float64, d time.Duration, rate beep.SampleRate) *sine {
	return &sine{freq: freq, length: rate.N(d), rate: rate}
}

func (s *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.position >= s.length {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = v
		samples[i][1] = v
		s.phase += s.freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sine) Err() error { return nil }

// envelope ramps in over attack and then decays exponentially so the tail
// reaches about -60 dB at the end of d.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	total    int
	tau      float64 // samples
}

func newEnvelope(s beep.Streamer, d, attack time.Duration, rate beep.SampleRate) *envelope {
	total := rate.N(d)
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		total:    total,
		tau:      float64(total) / math.Log(1000),
	}
}

func (e *envelope) gain(pos int) float64 {
	if pos >= e.total {
		return 0
	}
	g := math.Exp(-float64(pos) / e.tau)
	if e.attack > 0 && pos < e.attack {
		g *= float64(pos) / float64(e.attack)
	}
	return g
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		g := e.gain(e.position)
		samples[i][0] *= g
		samples[i][1] *= g
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
